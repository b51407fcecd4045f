package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	graph *services.GraphService
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(graph *services.GraphService, posts *services.PostService) *LikeHandler {
	return &LikeHandler{graph: graph, posts: posts}
}

// RegisterLikeRoutes registers like routes on the /api/posts group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/:postId/toggle-like", h.ToggleLike)
	g.GET("/liked-posts", h.GetLikedPosts)
}

// ToggleLike likes or unlikes a post for the current user
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	post, liked, err := h.graph.ToggleLike(c.Request().Context(), c.Param("postId"), getUserIDFromContext(c))
	if err != nil {
		return err
	}

	message := "Disliked successfully"
	if liked {
		message = "Liked successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"post":    post,
		"message": message,
	})
}

// GetLikedPosts returns the posts the current user liked
func (h *LikeHandler) GetLikedPosts(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetLikedPosts(c.Request().Context(), getUserIDFromContext(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "Liked Posts retrieved successfully",
	})
}
