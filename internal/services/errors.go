package services

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ServiceError is a caller error with the HTTP status it is answered with.
// Code optionally tells apart errors sharing a status.
type ServiceError struct {
	Status  int
	Message string
	Code    int
}

func (e *ServiceError) Error() string {
	return e.Message
}

func badRequest(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrBadUUID            = &ServiceError{Status: http.StatusBadRequest, Message: "Bad UUID"}
	ErrNoData             = &ServiceError{Status: http.StatusBadRequest, Message: "No data"}
	ErrNothingToUpdate    = &ServiceError{Status: http.StatusBadRequest, Message: "Nothing to update"}
	ErrUserNotFound       = &ServiceError{Status: http.StatusNotFound, Message: "User not found"}
	ErrInvalidOldPassword = &ServiceError{Status: http.StatusUnauthorized, Message: "Invalid old password"}
	ErrConsumerNotFound   = &ServiceError{Status: http.StatusBadRequest, Message: "Consumer not found"}
	ErrPhrasebookNotFound = &ServiceError{Status: http.StatusNotFound, Message: "Phrasebook not found"}
	ErrPhraseNotFound     = &ServiceError{Status: http.StatusNotFound, Message: "Phrase not found"}
	ErrPhraseExists       = &ServiceError{Status: http.StatusBadRequest, Message: "Phrase already exists"}
	ErrNameRange          = &ServiceError{Status: http.StatusBadRequest, Message: "Name must be in range 1..100"}
	ErrTextRange          = &ServiceError{Status: http.StatusBadRequest, Message: "Text must be in range 1..200"}
	ErrLangsNotAllowed    = &ServiceError{Status: http.StatusBadRequest, Message: "Updating langs not allowed"}
	ErrMissingPhraseData  = &ServiceError{Status: http.StatusBadRequest, Message: "Missing required data ('text1', 'text2', 'lang1', 'lang2')"}
)

// ParseID validates a path identifier and returns it in canonical form
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrBadUUID
	}
	return id.String(), nil
}

func present(s *string) bool {
	return s != nil && *s != ""
}
