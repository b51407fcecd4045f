package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed-related routes on the /api/posts group
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts by the current user and the users they follow, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetFeed(c.Request().Context(), getUserIDFromContext(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "Feed retrieved successfully",
	})
}
