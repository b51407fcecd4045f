package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable
type Pinger func(ctx context.Context) error

// HealthCheck reports service status, answering 503 when the database is unreachable
func HealthCheck(ping Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if ping != nil {
			if err := ping(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		return c.JSON(code, map[string]string{
			"status":  status,
			"service": "snapgram-api",
		})
	}
}
