package tagbridge

import "errors"

// Diagnostic taxonomy. None of these ever reach the trigger caller; the
// Bridge logs them and records the reason.
var (
	ErrMissingField      = errors.New("missing required field")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrFormatInvalid     = errors.New("invalid format")
	ErrUnrecognizedValue = errors.New("unrecognized value")
	ErrUnknownAction     = errors.New("unknown action")
	ErrPermissionDenied  = errors.New("notification permission not granted")
)

// Reason maps an error onto a short, metric-safe label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrFormatInvalid):
		return "format_invalid"
	case errors.Is(err, ErrUnrecognizedValue):
		return "unrecognized_value"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	default:
		return "other"
	}
}
