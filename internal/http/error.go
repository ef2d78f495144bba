package http

import (
	"context"
	"errors"
	"net/http"

	inErrors "github.com/okidwi/storefront/internal/errors"
)

// The error taxonomy mapped to HTTP statuses; anything unrecognized is a 500.
var errorStatus = map[error]int{
	inErrors.ErrEmptyAuth:         http.StatusUnauthorized,
	inErrors.ErrTokenInvalid:      http.StatusUnauthorized,
	inErrors.ErrTokenExpired:      http.StatusUnauthorized,
	inErrors.ErrEmptySubject:      http.StatusUnauthorized,
	inErrors.ErrPasswordMismatch:  http.StatusUnauthorized,
	inErrors.ErrUserNotFound:      http.StatusNotFound,
	inErrors.ErrProductNotFound:   http.StatusNotFound,
	inErrors.ErrCartNotFound:      http.StatusNotFound,
	inErrors.ErrCartItemNotFound:  http.StatusNotFound,
	inErrors.ErrInsufficientStock: http.StatusBadRequest,
	inErrors.ErrInvalidQuantity:   http.StatusBadRequest,
	inErrors.ErrEmailTaken:        http.StatusBadRequest,
}

func StatusCode(err error) int {
	for sentinel, status := range errorStatus {
		if errors.Is(err, sentinel) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Message surfaces the matching sentinel's text so that wrap chains added for
// logging never leak to the caller.
func Message(err error) string {
	for sentinel := range errorStatus {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}

func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	WriteJsonResponse(c, w, map[string]string{}, StatusCode(err), map[string]interface{}{
		"success": false,
		"message": Message(err),
	})
}

// WriteValidationErrorResponse is for malformed input before it reaches a
// service: the decoder or validator message itself is the response.
func WriteValidationErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}
