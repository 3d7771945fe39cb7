package myquran

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the API answered but holds no data for the request.
var ErrNotFound = errors.New("myquran: not found")

// APIError is a transport, status or decoding failure talking to the API.
type APIError struct {
	Endpoint string
	// Status is the HTTP status code, zero when no response was received.
	Status int
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("myquran %s: http %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("myquran %s: %v", e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// HTTPStatus lets netutil.Classify tell upstream 4xx from 5xx.
func (e *APIError) HTTPStatus() int { return e.Status }

// Code names the failure for structured logs.
func (e *APIError) Code() string {
	if e.Status != 0 {
		return fmt.Sprintf("MYQURAN_HTTP_%d", e.Status)
	}
	return "MYQURAN_TRANSPORT"
}
