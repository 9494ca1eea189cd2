package dupr

import "fmt"

// APIError represents an error response from the DUPR API
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("DUPR API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// AuthenticationError represents a login or token failure
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("Authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// NewAPIError creates a new DUPR API error
func NewAPIError(endpoint string, status int, message string, cause error) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    message,
		Cause:      cause,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string, cause error) *AuthenticationError {
	return &AuthenticationError{
		Message: message,
		Cause:   cause,
	}
}
