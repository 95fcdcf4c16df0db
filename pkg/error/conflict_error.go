package error

import "net/http"

// ConflictError signals that an operation collides with an assignment
// already in place (e.g. a ticket being served by another agent).
// It must reach the caller, never be swallowed.
type ConflictError string

func (err ConflictError) Error() string {
	return string(err)
}

func (err ConflictError) ErrCode() string {
	return "CONFLICT_ERROR"
}

func (err ConflictError) StatusCode() int {
	return http.StatusConflict
}
