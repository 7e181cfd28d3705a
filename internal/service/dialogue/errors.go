package dialogue

import "errors"

var (
	ErrBadRequest          = errors.New("missing username or message")
	ErrUpstreamUnavailable = errors.New("completion service unavailable")
	ErrUpstreamTimeout     = errors.New("completion service timed out")
	ErrUpstreamFormat      = errors.New("invalid AI response format")
)

// outcome maps an error to the label used in metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, ErrUpstreamFormat):
		return "format"
	default:
		return "internal"
	}
}
