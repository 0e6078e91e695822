package models

// APIError is the body of every failed response
type APIError struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// Application error codes, sent next to the message when a client needs to
// tell failures with the same status apart.
const (
	CodeEmailExists = 100
)

// NewAPIError creates a new API error with the given message and optional code
func NewAPIError(message string, code ...int) APIError {
	err := APIError{Message: message}
	if len(code) > 0 {
		err.Code = code[0]
	}
	return err
}
