package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	graph *services.GraphService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.GraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow routes on the /api/user group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.PUT("/:userId/toggle-follow", h.ToggleFollow)
}

// ToggleFollow follows or unfollows a user
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	following, err := h.graph.ToggleFollow(c.Request().Context(), c.Param("userId"), getUserIDFromContext(c))
	if err != nil {
		return err
	}

	message := "User unfollowed successfully."
	if following {
		message = "User followed successfully."
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}
