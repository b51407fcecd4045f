package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by JWTAuthMiddleware
const (
	ContextUserIDKey = "userID"
	ContextUserKey   = "user"
)

// TokenParser verifies a session token and returns the user id inside it
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// UserFinder loads the user a session belongs to
type UserFinder interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// JWTAuthMiddleware checks the session cookie and loads the user it belongs to.
func JWTAuthMiddleware(tokens TokenParser, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(services.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return models.NewUnauthorizedError("Unauthorized - No Token Provided")
			}

			userID, err := tokens.ParseToken(cookie.Value)
			if err != nil {
				return models.NewUnauthorizedError("Unauthorized - Invalid Token")
			}
			id, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				return models.NewUnauthorizedError("Unauthorized - Invalid Token")
			}

			user, err := users.GetUserByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "User not found")
				}
				return models.NewInternalError(err)
			}

			// Store the user in context
			c.Set(ContextUserIDKey, userID)
			c.Set(ContextUserKey, user)

			return next(c)
		}
	}
}
