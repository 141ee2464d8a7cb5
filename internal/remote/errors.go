package remote

import (
	"errors"
	"fmt"
)

// RejectedError is a 4xx semantic rejection from the backend (validation
// failure, unknown restaurant, ...). It is never retried automatically; the
// item is surfaced for manual correction instead.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("remote rejected request: status %d: %s", e.Status, e.Body)
}

// Retryable reports whether a submission failure is transient. Network
// errors, timeouts and 5xx responses are retryable; RejectedError is not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var rejected *RejectedError
	return !errors.As(err, &rejected)
}
