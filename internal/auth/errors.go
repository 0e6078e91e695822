package auth

import "errors"

// CredentialError is a caller error raised while resolving credentials.
// All of them are answered with 401 and Message as the body.
type CredentialError struct {
	Code    string
	Message string
}

func (e *CredentialError) Error() string {
	return e.Message
}

// Is matches on Code so that errors carrying a more specific message still
// match their sentinel.
func (e *CredentialError) Is(target error) bool {
	t, ok := target.(*CredentialError)
	return ok && t.Code == e.Code
}

var (
	ErrNotAuthorized       = &CredentialError{Code: "not_authorized", Message: "Not authorized"}
	ErrMalformedCredential = &CredentialError{Code: "malformed_credential", Message: "Malformed credential"}
	ErrInvalidToken        = &CredentialError{Code: "invalid_token", Message: "Invalid token"}
	ErrTokenExpired        = &CredentialError{Code: "token_expired", Message: "Token expired"}
	ErrInvalidSecret       = &CredentialError{Code: "invalid_secret", Message: "Invalid secret"}

	ErrNoCredentials       = &CredentialError{Code: "no_credentials", Message: "No credentials"}
	ErrInvalidCredentials  = &CredentialError{Code: "invalid_credentials", Message: "Invalid credentials"}
	ErrNoRefreshToken      = &CredentialError{Code: "no_refresh_token", Message: "No refresh token"}
	ErrInvalidRefreshToken = &CredentialError{Code: "invalid_refresh_token", Message: "Invalid refresh token"}
	ErrGrantEnded          = &CredentialError{Code: "grant_ended", Message: "Grant ended"}
)

// ErrTokenStillValid is returned when a refresh is requested for an access
// token that has not expired. It is a bad request, not a credential failure.
var ErrTokenStillValid = errors.New("Token is valid. No need to refresh")

// ErrNotFound is returned by the stores when no record matches
var ErrNotFound = errors.New("record not found")

func malformed(message string) error {
	return &CredentialError{Code: ErrMalformedCredential.Code, Message: message}
}
