package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed product ids, out-of-bounds
	// quantities and nil references where a product was required.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is returned when an index lies outside a collection.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidPage is returned for page numbers outside [0, page count].
	ErrInvalidPage = errors.New("invalid page reference")
	// ErrNotFound is returned when a product or basket line does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated is returned for identity access in anonymous mode,
	// basket mutation by a non-owner, and server status 200.
	ErrNotAuthenticated = errors.New("you must be an authenticated non-anonymous user")
)

// Status codes reported by the server in the StatusCode field.
const (
	StatusOK               = 0
	StatusNotAuthenticated = 200
)

// APIError reports a non-zero server status that has no specific meaning to the client.
type APIError struct {
	Command    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api command %q failed with status %d: %s", e.Command, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api command %q failed with status %d", e.Command, e.StatusCode)
}

// CheckStatus converts the StatusCode of a decoded response into an error.
func CheckStatus(command string, rec Record) error {
	switch code := rec.Int("StatusCode"); code {
	case StatusOK:
		return nil
	case StatusNotAuthenticated:
		return fmt.Errorf("%s: %w", command, ErrNotAuthenticated)
	default:
		return &APIError{Command: command, StatusCode: code, Message: rec.String("StatusInfo")}
	}
}
