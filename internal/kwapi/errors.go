package kwapi

import (
	"errors"
	"fmt"
)

// Decoding failures wrapped by DecodeError.
var (
	// ErrMissingData indicates a 2xx response without a data field.
	ErrMissingData = errors.New("response has no data field")

	// ErrMissingKeyword indicates a data entry whose keyword is absent or null.
	ErrMissingKeyword = errors.New("data entry has no keyword")
)

// APIError reports a non-2xx response. Body holds the response body verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status code: %d. Error: %s", e.StatusCode, e.Body)
}

// DecodeError reports a 2xx response body that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse API response as JSON: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError reports a failure to send the request or read the response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send request to keyword data API: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
