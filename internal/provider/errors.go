package provider

import "errors"

// Upstream failure modes that callers surface as distinct user-visible
// messages. Soft errors arrive inside HTTP 200 bodies and are detected by
// payload shape, never by status code.
var (
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrMalformedSeries = errors.New("malformed or missing series")
	ErrEmptySeries     = errors.New("empty series")
)
