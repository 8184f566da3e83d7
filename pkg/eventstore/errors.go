package eventstore

import (
	"errors"
	"fmt"
	"net/http"
)

// StoreError reports a failed call against the event store.
type StoreError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

// Error renders the failure for display, e.g.
// "Failed to create event: 500 Internal Server Error: database unavailable".
func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "Failed to " + e.Op
	if e.Status != 0 {
		msg += fmt.Sprintf(": %d %s", e.Status, http.StatusText(e.Status))
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying transport or decoding error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound reports whether err is a store 404.
func IsNotFound(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Status == http.StatusNotFound
}
