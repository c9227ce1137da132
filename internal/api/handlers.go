package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tickerdeck/pkg/models"
)

// handleGetScreens returns the current record of every screen.
func (s *Server) handleGetScreens(w http.ResponseWriter, r *http.Request) {
	states := s.hub.States()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"screens": states,
		"count":   len(states),
	})
}

// handleGetScreen returns one screen's full display record.
func (s *Server) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.hub.Screen(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "screen not found")
		return
	}
	writeJSON(w, http.StatusOK, scr.State())
}

// handleGetChart returns just the chart region of a screen.
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.hub.Screen(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "screen not found")
		return
	}

	state := scr.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interval":    state.Interval,
		"chart":       state.Chart,
		"chart_error": state.ChartError,
	})
}

// handleSetInterval switches a screen's chart span and triggers an immediate
// chart refetch.
func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.hub.Screen(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "screen not found")
		return
	}

	var body struct {
		Interval string `json:"interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	interval, err := models.ParseInterval(body.Interval)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scr.SetInterval(interval)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"screen":   scr.ID(),
		"interval": interval,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
