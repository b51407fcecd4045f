package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const imageFormField = "image"

var errInvalidPayload = models.NewValidationError("Invalid request payload")

// getUserIDFromContext returns the hex id of the authenticated user
func getUserIDFromContext(c echo.Context) string {
	userID, _ := c.Get(middleware.ContextUserIDKey).(string)
	return userID
}

// parseLimit reads the optional limit query parameter. Absent means fallback; zero means no limit.
func parseLimit(c echo.Context, fallback int64) (int64, error) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 0 {
		return 0, models.NewValidationError("Limit must be a positive number")
	}
	return limit, nil
}

// readImage returns the uploaded image file, or nil when the form carries none
func readImage(c echo.Context) (*services.ImageUpload, error) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errInvalidPayload
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &services.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
