package handlers

import (
	"net/http"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterAuthRoutes registers authentication-related routes. Limiters guard signup and login.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, limiters ...echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup, limiters...)
	g.POST("/login", h.Login, limiters...)
	g.POST("/logout", h.Logout)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	c.SetCookie(h.auth.CookieFor(token))

	return c.JSON(http.StatusCreated, echo.Map{
		"user":    user,
		"message": "User created successfully",
	})
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, token, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	c.SetCookie(h.auth.CookieFor(token))

	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"message": "User Logged in successfully",
	})
}

// Logout clears the session cookie. It succeeds with or without a session.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.auth.ClearCookie())
	return c.JSON(http.StatusOK, echo.Map{
		"message": "You've been successfully logged out. See you soon!",
	})
}
