package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/gateway"
	"github.com/alihassan193/snooker-console/internal/service"
)

const (
	CodeLoginRequired       = "login_required"
	CodeClubSessionRequired = "club_session_required"

	msgGeneric = "Something went wrong, please try again"

	chainSep = " -> "
)

type Err struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	Code       string `json:"code,omitempty"`  // machine-readable reason for the UI
	ErrorText  string `json:"error,omitempty"` // message shown to the operator
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}

	return e.Err.Error()
}

func RenderErr(ctx *gin.Context, errResp *Err) {
	if errResp.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Int("status", errResp.HTTPStatusCode),
			zap.Error(errResp.Err))
	}

	ctx.AbortWithStatusJSON(errResp.HTTPStatusCode, errResp)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request",
		ErrorText:      operatorText(err),
	}
}

// operatorText drops the call-site wrap chain and the validation prefix from err, leaving
// the cause the operator can act on. Err keeps the full chain for the logs.
func operatorText(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, chainSep); i >= 0 {
		msg = msg[i+len(chainSep):]
	}

	prefix := service.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	}

	return msg
}

func ErrLoginRequired(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		Code:           CodeLoginRequired,
		ErrorText:      "Your session has expired, please log in again",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		ErrorText:      err.Error(),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, key, value)

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found",
		ErrorText:      err.Error(),
	}
}

func ErrClubSessionRequired() *Err {
	return &Err{
		Err:            errors.New("no active club session"),
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict",
		Code:           CodeClubSessionRequired,
		ErrorText:      "Open a club session before starting games or selling",
	}
}

func ErrTooManyRequests() *Err {
	return &Err{
		Err:            errors.New("login rate exceeded"),
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too many requests",
		ErrorText:      "Too many login attempts, please wait a minute",
	}
}

func ErrBadGateway(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadGateway,
		StatusText:     "Bad gateway",
		ErrorText:      msgGeneric,
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error",
		ErrorText:      msgGeneric,
	}
}

// FromError maps an error from the services to what the operator sees: the backend's own
// message when it sent one, else a generic retry hint.
func FromError(err error) *Err {
	var apiErr *gateway.APIError

	switch {
	case errors.Is(err, service.ErrValidation):
		return ErrBadRequest(err)
	case errors.Is(err, service.ErrSessionExpired):
		return ErrLoginRequired(err)
	case errors.Is(err, board.ErrTableNotFound):
		return &Err{
			Err:            err,
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found",
			ErrorText:      operatorText(err),
		}
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		text := apiErr.Message
		if text == "" {
			text = msgGeneric
		}

		return &Err{
			Err:            err,
			HTTPStatusCode: status,
			StatusText:     http.StatusText(status),
			ErrorText:      text,
		}
	case errors.Is(err, service.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return ErrBadGateway(err)
	}

	return ErrInternalServerError(err)
}
