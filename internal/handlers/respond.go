// Package handlers contains HTTP request handlers for the blog service.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/GunarsK-portfolio/blog-service/internal/logger"
	"github.com/GunarsK-portfolio/blog-service/internal/middleware"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by endpoints without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondError writes the error envelope and aborts the chain.
func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// LogAndRespondError logs err with the request logger and writes message.
func LogAndRespondError(c *gin.Context, status int, err error, message string) {
	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error(message, "error", err, "path", c.Request.URL.Path)
	} else {
		log.Warn(message, "error", err, "path", c.Request.URL.Path)
	}
	RespondError(c, status, message)
}

// respondServiceError maps service errors onto statuses. Messages of
// validation errors are safe to return; anything unknown becomes a 500.
func respondServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondError(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrForbidden):
		RespondError(c, http.StatusBadRequest, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondError(c, http.StatusBadRequest, "invalid username or password")
	case errors.Is(err, service.ErrInvalidToken):
		RespondError(c, http.StatusUnauthorized, "authentication failed")
	default:
		LogAndRespondError(c, http.StatusInternalServerError, err, "internal server error")
	}
}

// currentUserID returns the authenticated user, or writes 401.
func currentUserID(c *gin.Context) (int64, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return claims.UserID, true
}

// pathID parses a positive integer path parameter, or writes 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context, limits pagination.Limits) pagination.Params {
	return limits.Parse(c.Query("page"), c.Query("per_page"))
}

func collectionLink(c *gin.Context) pagination.LinkFunc {
	return pagination.Endpoint(c.Request.URL.Path, c.Request.URL.Query())
}

func userURL(id int64) string {
	return apiPrefix + "/users/" + strconv.FormatInt(id, 10)
}
