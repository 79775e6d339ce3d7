package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusValidation     = http.StatusUnprocessableEntity
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
)

// Maximum length of the detail string returned for internal failures.
const maxInternalDetailLength = 100

var (
	ErrInternalServer      = errors.New("Internal server error")
	ErrValidation          = errors.New("Validation failed")
	ErrNotFound            = errors.New("Product niet gevonden")
	ErrConflict            = errors.New("record changed concurrently")
	ErrStorage             = errors.New("storage error")
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

var errorMap = map[error]int{
	ErrInternalServer:      ErrStatusInternalServer,
	ErrValidation:          ErrStatusValidation,
	ErrNotFound:            ErrStatusNotFound,
	ErrConflict:            ErrStatusConflict,
	ErrStorage:             ErrStatusInternalServer,
	ErrDatabaseUnavailable: ErrStatusInternalServer,
}

// GetErrorStatusCode returns the status of the known sentinel wrapped by err.
// Unknown errors map to 500.
func GetErrorStatusCode(err error) int {
	for sentinel, errStatusCode := range errorMap {
		if errors.Is(err, sentinel) {
			return errStatusCode
		}
	}

	return errorMap[ErrInternalServer]
}

// Detail returns the client-facing message for err. Not-found errors always
// carry the sentinel message; internal errors are truncated.
func Detail(err error) string {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound.Error()
	}

	msg := err.Error()
	if GetErrorStatusCode(err) >= http.StatusInternalServerError {
		runes := []rune(msg)
		if len(runes) > maxInternalDetailLength {
			msg = string(runes[:maxInternalDetailLength])
		}
	}

	return msg
}
