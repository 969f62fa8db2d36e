package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a request does not finish before its deadline
	ErrTimeout = errors.New("request timed out")
	// ErrMalformedResponse is returned when the reply lacks the expected fields
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is returned for non-2xx replies
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ExternalCallError wraps any failure of a call to the model endpoint
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}
