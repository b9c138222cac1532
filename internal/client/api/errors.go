package api

import "fmt"

// NetworkError means the request never reached the habit service.
type NetworkError struct {
	// URL is the request target.
	URL string
	// Err is the underlying transport error.
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError is a non-2xx response with a structured error payload.
type ServiceError struct {
	// StatusCode is the HTTP status returned.
	StatusCode int
	// Message is the error field from the response body, if any.
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("service error: status %d: %s", e.StatusCode, e.Message)
}
