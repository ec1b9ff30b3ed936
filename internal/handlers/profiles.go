package handlers

import (
	"context"
	"net/http"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves public profiles and the follow actions.
type ProfileHandler struct {
	userService   service.UserService
	followService service.FollowService
	postService   service.PostService
	limits        pagination.Limits
}

// NewProfileHandler creates a new ProfileHandler instance.
func NewProfileHandler(userService service.UserService, followService service.FollowService, postService service.PostService, limits pagination.Limits) *ProfileHandler {
	return &ProfileHandler{
		userService:   userService,
		followService: followService,
		postService:   postService,
		limits:        limits,
	}
}

// ProfileResponse is a user's page: the record, whether the caller follows
// them and one page of their posts.
type ProfileResponse struct {
	User        models.UserDict                        `json:"user"`
	IsFollowing bool                                   `json:"is_following"`
	Posts       pagination.Collection[models.PostDict] `json:"posts"`
}

// FollowResponse reports the edge state after a follow action.
type FollowResponse struct {
	Username    string `json:"username"`
	IsFollowing bool   `json:"is_following"`
}

// Show godoc
// @Summary User profile
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Posts page" default(1)
// @Param per_page query int false "Posts per page" default(10)
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{username} [get]
func (h *ProfileHandler) Show(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	record, err := userRecord(c, h.userService, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	following := false
	if callerID != user.ID {
		if following, err = h.followService.IsFollowing(ctx, callerID, user.ID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	p := pageParams(c, h.limits)
	posts, total, err := h.postService.ListByUser(ctx, user.Username, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:        record,
		IsFollowing: following,
		Posts:       pagination.Serialize(posts, postDict, p, total, collectionLink(c)),
	})
}

// Follow godoc
// @Summary Follow a user
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{username}/follow [post]
func (h *ProfileHandler) Follow(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	target, err := h.followService.Follow(c.Request.Context(), callerID, c.Param("username"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FollowResponse{Username: target.Username, IsFollowing: true})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{username}/unfollow [post]
func (h *ProfileHandler) Unfollow(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	target, err := h.followService.Unfollow(c.Request.Context(), callerID, c.Param("username"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FollowResponse{Username: target.Username, IsFollowing: false})
}

// Followers godoc
// @Summary Users following a user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(10)
// @Success 200 {object} pagination.Collection[models.UserDict]
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{username}/followers [get]
func (h *ProfileHandler) Followers(c *gin.Context) {
	h.listEdges(c, h.followService.Followers)
}

// Following godoc
// @Summary Users a user follows
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(10)
// @Success 200 {object} pagination.Collection[models.UserDict]
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{username}/following [get]
func (h *ProfileHandler) Following(c *gin.Context) {
	h.listEdges(c, h.followService.Following)
}

type edgeLister func(ctx context.Context, username string, p pagination.Params) ([]models.User, int64, error)

func (h *ProfileHandler) listEdges(c *gin.Context, list edgeLister) {
	p := pageParams(c, h.limits)

	users, total, err := list(c.Request.Context(), c.Param("username"), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items, err := userRecords(c, h.userService, users)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewCollection(items, p, total, collectionLink(c)))
}

func postDict(p models.Post) models.PostDict {
	return p.ToDict()
}
