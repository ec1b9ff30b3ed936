package handlers

import (
	"net/http"

	"github.com/GunarsK-portfolio/blog-service/internal/metrics"
	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the JSON user API.
type UserHandler struct {
	authService service.AuthService
	userService service.UserService
	limits      pagination.Limits
	metrics     *metrics.Metrics
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(authService service.AuthService, userService service.UserService, limits pagination.Limits, m *metrics.Metrics) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		limits:      limits,
		metrics:     m,
	}
}

// TokenResponse is the API login result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login godoc
// @Summary API login
// @Description Exchange credentials for a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// incomplete credentials can never authenticate
		RespondError(c, http.StatusBadRequest, "invalid username or password")
		return
	}

	response, err := h.authService.IssueAccessToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: response.AccessToken,
		ExpiresIn:   response.ExpiresIn,
	})
}

// Get godoc
// @Summary Get own user record
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserDict
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.ownID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, user)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(10)
// @Success 200 {object} pagination.Collection[models.UserDict]
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	p := pageParams(c, h.limits)

	users, total, err := h.userService.List(c.Request.Context(), p)
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

// Create godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body object true "username, email, password and optional about_me"
// @Success 201 {object} models.UserDict
// @Failure 400 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	data, ok := bindRecord(c)
	if !ok {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), data)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.UserRegistered()

	c.Header("Location", userURL(user.ID))
	h.respondUser(c, http.StatusCreated, user)
}

// Update godoc
// @Summary Update own user record
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object true "Any of username, email, about_me"
// @Success 200 {object} models.UserDict
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.ownID(c)
	if !ok {
		return
	}
	data, ok := bindRecord(c)
	if !ok {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, data)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, user)
}

// ownID resolves the path id and requires it to match the caller.
func (h *UserHandler) ownID(c *gin.Context) (int64, bool) {
	callerID, ok := currentUserID(c)
	if !ok {
		return 0, false
	}
	id, ok := pathID(c, "id")
	if !ok {
		return 0, false
	}
	if id != callerID {
		respondServiceError(c, service.ErrForbidden)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) respondUser(c *gin.Context, status int, user *models.User) {
	record, err := userRecord(c, h.userService, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(status, record)
}

// bindRecord decodes an untrusted JSON object. A missing or malformed body
// is treated as an empty record.
func bindRecord(c *gin.Context) (map[string]any, bool) {
	data := map[string]any{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return data, true
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return data, true
}

func userRecord(c *gin.Context, users service.UserService, user *models.User) (models.UserDict, error) {
	stats, err := users.Stats(c.Request.Context(), user.ID)
	if err != nil {
		return models.UserDict{}, err
	}
	return user.ToDict(stats, userURL(user.ID)), nil
}

func userRecords(c *gin.Context, users service.UserService, rows []models.User) ([]models.UserDict, error) {
	items := make([]models.UserDict, 0, len(rows))
	for i := range rows {
		record, err := userRecord(c, users, &rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}
	return items, nil
}
