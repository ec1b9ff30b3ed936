package handlers

import (
	"net/http"

	"github.com/GunarsK-portfolio/blog-service/internal/metrics"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

// PostHandler serves publishing and the feeds.
type PostHandler struct {
	postService service.PostService
	limits      pagination.Limits
	metrics     *metrics.Metrics
}

// NewPostHandler creates a new PostHandler instance.
func NewPostHandler(postService service.PostService, limits pagination.Limits, m *metrics.Metrics) *PostHandler {
	return &PostHandler{
		postService: postService,
		limits:      limits,
		metrics:     m,
	}
}

// CreatePostRequest represents the post form.
type CreatePostRequest struct {
	Body string `json:"body"`
}

// Create godoc
// @Summary Publish a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post body"
// @Success 201 {object} models.PostDict
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	post, err := h.postService.Create(c.Request.Context(), userID, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.PostCreated()

	c.JSON(http.StatusCreated, post.ToDict())
}

// Explore godoc
// @Summary All posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(10)
// @Success 200 {object} pagination.Collection[models.PostDict]
// @Router /posts [get]
func (h *PostHandler) Explore(c *gin.Context) {
	p := pageParams(c, h.limits)

	posts, total, err := h.postService.Explore(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Serialize(posts, postDict, p, total, collectionLink(c)))
}

// Timeline godoc
// @Summary Own and followed users' posts, newest first
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(10)
// @Success 200 {object} pagination.Collection[models.PostDict]
// @Failure 401 {object} ErrorResponse
// @Router /timeline [get]
func (h *PostHandler) Timeline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	p := pageParams(c, h.limits)

	posts, total, err := h.postService.Timeline(c.Request.Context(), userID, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Serialize(posts, postDict, p, total, collectionLink(c)))
}
