package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	graph *services.GraphService
	posts *services.PostService
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(graph *services.GraphService, posts *services.PostService) *SavedPostHandler {
	return &SavedPostHandler{graph: graph, posts: posts}
}

// RegisterSavedPostRoutes registers saved post routes on the /api/posts group
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.PUT("/:postId/toggle-save", h.ToggleSave)
	g.GET("/saved", h.GetSavedPosts)
}

// ToggleSave saves or unsaves a post for the current user
func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	saved, err := h.graph.ToggleSave(c.Request().Context(), c.Param("postId"), getUserIDFromContext(c))
	if err != nil {
		return err
	}

	message := "Unsaved successfully"
	if saved {
		message = "Saved successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// GetSavedPosts returns the posts the current user saved
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetSavedPosts(c.Request().Context(), getUserIDFromContext(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "Saved Posts retrieved successfully",
	})
}
