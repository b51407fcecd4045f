package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const defaultPageSize = 10

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes on the /api/posts group
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.ListPosts)
	g.POST("", h.CreatePost)
	g.GET("/recent", h.GetRecentPosts)
	g.GET("/search", h.SearchPosts)
	g.GET("/user/:userId", h.GetUserPosts)
	g.GET("/:postId", h.GetPost)
	g.GET("/:postId/related", h.GetRelatedPosts)
	g.PUT("/:postId", h.UpdatePost)
	g.DELETE("/:postId", h.DeletePost)
}

// CreatePost creates a new post from a multipart form
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), getUserIDFromContext(c), services.PostInput{
		Caption:  req.Caption,
		Tags:     req.Tags,
		Location: req.Location,
		Image:    image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"post":    post,
		"message": "Post created successfully",
	})
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetPostByID(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"post":    post,
		"message": "Post retrieved successfully",
	})
}

// UpdatePost edits a post. The image part of the form is optional.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return err
	}

	post, err := h.posts.EditPost(c.Request().Context(), c.Param("postId"), getUserIDFromContext(c), services.PostInput{
		Caption:  req.Caption,
		Tags:     req.Tags,
		Location: req.Location,
		Image:    image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"post":    post,
		"message": "Post updated successfully",
	})
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.DeletePost(c.Request().Context(), c.Param("postId"), getUserIDFromContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// ListPosts returns one cursor page of posts in ascending id order
func (h *PostHandler) ListPosts(c echo.Context) error {
	limit, err := parseLimit(c, defaultPageSize)
	if err != nil {
		return err
	}
	page, err := h.posts.ListPosts(c.Request().Context(), c.QueryParam("cursor"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetRecentPosts returns posts newest first
func (h *PostHandler) GetRecentPosts(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetRecentPosts(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "Posts retrieved successfully",
	})
}

// GetUserPosts returns the posts of one user
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetUserPosts(c.Request().Context(), c.Param("userId"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "User Posts retrieved successfully",
	})
}

// SearchPosts finds posts by caption substring
func (h *PostHandler) SearchPosts(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.SearchPosts(c.Request().Context(), c.QueryParam("search"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "Searched Posts retrieved successfully",
	})
}

// GetRelatedPosts returns the creator's other posts that share a tag
func (h *PostHandler) GetRelatedPosts(c echo.Context) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetRelatedPosts(c.Request().Context(), c.Param("postId"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":   posts,
		"message": "Related Posts retrieved successfully",
	})
}
