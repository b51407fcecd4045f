package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers user-related routes on the /api/user group
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.GetUsers)
	g.GET("/recent", h.GetRecentUsers)
	g.GET("/search", h.SearchUsers)
	g.GET("/:id", h.GetUser)
	g.PUT("/update-profile", h.UpdateProfile)
}

// GetUsers returns every user
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.users.GetUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":   users,
		"message": "Users retrieved successfully",
	})
}

// GetRecentUsers returns users newest first
func (h *UserHandler) GetRecentUsers(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	users, err := h.users.GetRecentUsers(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":   users,
		"message": "Users retrieved successfully",
	})
}

// SearchUsers finds users by name or username
func (h *UserHandler) SearchUsers(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	users, err := h.users.SearchUsers(c.Request().Context(), c.QueryParam("search"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":   users,
		"message": "Users retrieved successfully",
	})
}

// GetUser retrieves a user by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"message": "User retrieved successfully",
	})
}

// UpdateProfile updates the current user's name, bio and optionally avatar from a multipart form
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), getUserIDFromContext(c), req, image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"message": "Profile updated successfully",
	})
}
