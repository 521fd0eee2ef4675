package marketplace

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"  // no response at all
	KindRejected ErrorKind = "rejected" // 4xx: bad input, unauthorized, not found
	KindBackend  ErrorKind = "backend"  // 5xx
)

// Error is what every failed call surfaces. Message carries the
// backend-supplied error text when one was returned.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("marketplace: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("marketplace: %s: %s", e.Kind, e.Message)
}

// Classify extracts the taxonomy kind from any error returned by this
// package. Wrapped errors are unwrapped; anything else counts as a network
// failure since no classified response was seen.
func Classify(err error) ErrorKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindNetwork
}

// Reason returns the user-facing message for a failed call, falling back to
// a generic line when the backend said nothing useful.
func Reason(err error) string {
	var me *Error
	if errors.As(err, &me) && me.Message != "" && me.Kind == KindRejected {
		return me.Message
	}
	return "The marketplace is unavailable right now. Please try again."
}

func IsRejected(err error) bool { return Classify(err) == KindRejected }

// IsUnauthorized reports a 401/403 rejection, used to degrade silently to an
// anonymous state instead of showing an error banner.
func IsUnauthorized(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Status == 401 || me.Status == 403
	}
	return false
}
