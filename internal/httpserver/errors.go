package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/logging"
)

// ErrorHandler maps every error leaving a handler onto the wire shape
// {error, message, errorKey}. Internal failures become a generic 500; the
// detail stays in the server log.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code = apperr.HTTPStatus(err)
		msg  = err.Error()
		key  = apperr.Key(err)
	)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
		msg = "internal server error"
		key = ""
	}

	resp := apperr.Response{
		Error:    http.StatusText(code),
		Message:  msg,
		ErrorKey: key,
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, resp)
}
