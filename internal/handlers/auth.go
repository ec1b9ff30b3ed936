package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/blog-service/internal/metrics"
	"github.com/GunarsK-portfolio/blog-service/internal/middleware"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler serves the session endpoints used by the web client.
type AuthHandler struct {
	authService  service.AuthService
	userService  service.UserService
	cookieHelper *CookieHelper
	jwtService   service.JWTService
	metrics      *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, userService service.UserService, cookieHelper *CookieHelper, jwtService service.JWTService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		cookieHelper: cookieHelper,
		jwtService:   jwtService,
		metrics:      m,
	}
}

// RegisterRequest represents the registration form.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email,max=64"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request payload. The token
// may be sent in the body or in the refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents the password change form.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	NewPassword2    string `json:"new_password2" binding:"required"`
}

// SessionResponse is returned by login and refresh. Tokens travel in
// cookies only.
type SessionResponse struct {
	Success   bool   `json:"success"`
	ExpiresIn int64  `json:"expires_in"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration form"
// @Success 201 {object} models.UserDict
// @Failure 400 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, registerBindMessage(err))
		return
	}
	if req.Password != req.Password2 {
		RespondError(c, http.StatusBadRequest, "passwords must match")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), map[string]any{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.UserRegistered()

	record, err := userRecord(c, h.userService, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Location", record.Links.Self)
	c.JSON(http.StatusCreated, record)
}

// registerBindMessage names the email problem when that is the only
// reason the form was rejected.
func registerBindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() != "Email" || fe.Tag() == "required" {
				return "username, email, password and password2 are required"
			}
		}
		return "invalid email address"
	}
	return "username, email, password and password2 are required"
}

// Login godoc
// @Summary User login
// @Description Authenticate user and set access and refresh cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			LogAndRespondError(c, http.StatusUnauthorized, err, "invalid username or password")
			return
		}
		respondServiceError(c, err)
		return
	}

	h.startSession(c, response)
}

// Refresh godoc
// @Summary Refresh session
// @Description Rotate the token pair using the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.cookieHelper.GetRefreshToken(c)
	if token == "" && c.Request.ContentLength != 0 {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		RespondError(c, http.StatusUnauthorized, "refresh token required")
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), token)
	if err != nil {
		h.cookieHelper.ClearAuthCookies(c)
		LogAndRespondError(c, http.StatusUnauthorized, err, "invalid refresh token")
		return
	}

	h.startSession(c, response)
}

// Logout godoc
// @Summary User logout
// @Description Revoke the refresh token and clear cookies
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c, AccessTokenCookie)
	if token == "" {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.cookieHelper.ClearAuthCookies(c)
		respondServiceError(c, err)
		return
	}

	h.cookieHelper.ClearAuthCookies(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// ChangePassword godoc
// @Summary Change password
// @Description Verify the current password, store the new one and end the session
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Password change form"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "current_password, new_password and new_password2 are required")
		return
	}
	if req.NewPassword != req.NewPassword2 {
		RespondError(c, http.StatusBadRequest, "passwords must match")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.authService.RevokeSessions(c.Request.Context(), userID); err != nil {
		LogAndRespondError(c, http.StatusInternalServerError, err, "failed to end session")
		return
	}
	h.cookieHelper.ClearAuthCookies(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "password changed, please log in again"})
}

func (h *AuthHandler) startSession(c *gin.Context, response *service.LoginResponse) {
	h.cookieHelper.SetAuthCookies(c,
		response.AccessToken,
		response.RefreshToken,
		h.jwtService.GetAccessExpiry(),
		h.jwtService.GetRefreshExpiry(),
	)

	c.JSON(http.StatusOK, SessionResponse{
		Success:   true,
		ExpiresIn: response.ExpiresIn,
		UserID:    response.UserID,
		Username:  response.Username,
	})
}
