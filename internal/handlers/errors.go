package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler converts every error returned by a handler into a {message} JSON response.
// Internal failures are logged in full and reported to clients with a generic message.
func NewHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := models.InternalErrorMessage

		var appErr *models.AppError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status()
			if status != http.StatusInternalServerError {
				message = appErr.Message
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if status != http.StatusInternalServerError {
				message = fmt.Sprint(httpErr.Message)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(status)
		} else {
			respErr = c.JSON(status, models.ErrorResponse{Message: message})
		}
		if respErr != nil {
			log.Error("failed to write error response", "error", respErr)
		}
	}
}
