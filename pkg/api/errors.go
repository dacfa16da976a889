package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures and non-2xx statuses.
	ErrTransport = errors.New("api: transport failure")
	// ErrUnsuccessful matches every *APIError.
	ErrUnsuccessful = errors.New("api: unsuccessful response")
	// ErrMalformed means the body was not the expected envelope.
	ErrMalformed = errors.New("api: malformed response")
)

// APIError is a decoded envelope whose retcode is not zero.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: retcode %d", e.Code)
	}
	return fmt.Sprintf("api: retcode %d: %s", e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnsuccessful
}
