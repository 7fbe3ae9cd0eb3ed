package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/wearcast/internal/domain/auth"
	"github.com/yanqian/wearcast/internal/domain/favorites"
	apperrors "github.com/yanqian/wearcast/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var codeStatus = map[string]int{
	apperrors.CodeInvalidInput:  http.StatusBadRequest,
	apperrors.CodeNotFound:      http.StatusNotFound,
	apperrors.CodeQuotaExceeded: http.StatusTooManyRequests,
	apperrors.CodeUpstream:      http.StatusBadGateway,
	auth.CodeInvalidCredentials: http.StatusUnauthorized,
	auth.CodeInvalidToken:       http.StatusUnauthorized,
	auth.CodeUserNotFound:       http.StatusNotFound,
	auth.CodeEmailExists:        http.StatusConflict,
	favorites.CodeLimitReached:  http.StatusConflict,
}

// fromAppError converts a domain error into an HTTPError keyed by its code.
// Unknown codes become a 500 reported under fallbackCode.
func fromAppError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, "something went wrong", err)
	}
	message := errMessage(err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return NewHTTPError(status, code, message, err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
