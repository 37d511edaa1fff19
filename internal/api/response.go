package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Response is the envelope of every JSON response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Response{Success: true, Message: message, Data: data})
}

func list[T any](c echo.Context, items []T) error {
	count := len(items)
	return c.JSON(http.StatusOK, Response{Success: true, Count: &count, Data: items})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{Success: false, Message: message})
}

// writeError maps a service error to its status code. Anything that is not a
// service error is a server error; its detail is logged and echoed.
func writeError(c echo.Context, err error) error {
	var svcErr *service.Error
	message := ""
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return fail(c, http.StatusBadRequest, message)
	case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrNotFound):
		return fail(c, http.StatusNotFound, message)
	case errors.Is(err, service.ErrDuplicateRequest):
		return fail(c, http.StatusConflict, message)
	}

	logger.Error().Err(err).Msgf("%s %s failed", c.Request().Method, c.Path())
	return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "Server error", Error: err.Error()})
}

// errorHandler renders echo's own errors (unknown route, panics recovered by
// middleware) in the response envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "Server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, isString := he.Message.(string); isString {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}
	if err := fail(c, code, message); err != nil {
		logger.Error().Err(err).Msg("Error writing error response")
	}
}
