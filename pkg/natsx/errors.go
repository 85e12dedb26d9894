package natsx

import "errors"

var (
	// ErrInvalidToken is returned when a subject token breaks the naming rules.
	ErrInvalidToken = errors.New("invalid subject token")
	// ErrInvalidClass is returned when a subject class is not in AllowedClasses.
	ErrInvalidClass = errors.New("subject class not allowed")
)
