package handler

import (
	"errors"
	"net/http"

	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

// StatusFor maps an application error to an HTTP status. Unknown errors map
// to 500.
func StatusFor(err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
