package models

import (
	"errors"
	"fmt"
)

// RemoteError is returned by every remote call that did not succeed, either
// because the server answered with a non-success status or because the
// request never completed. StatusCode is 0 for transport failures.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("remote error %d", e.StatusCode)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ServerMessage returns the message the server sent with a failed response,
// or "" when err is not a RemoteError or carries no message.
func ServerMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
