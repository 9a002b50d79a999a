package status

import "fmt"

// Error is a client-facing protocol violation. Message is what gets
// sent back as the error response body.
type Error struct {
	Status  Status
	Message string
}

func NewError(status Status, message string) Error {
	return Error{Status: status, Message: message}
}

func (e Error) Error() string {
	return fmt.Sprintf("%d %s: %q", e.Status.Code, e.Status.Reason, e.Message)
}
