package errors

import (
	goerrors "errors"
	"net/http"
)

// MapToHTTPStatus translates the error taxonomy into the status code
// returned to REST callers.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerrors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case goerrors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case goerrors.Is(err, ErrSearchDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
