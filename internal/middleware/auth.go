package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GunarsK-portfolio/blog-service/internal/logger"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

const claimsKey = "auth_claims"

// TokenValidator checks an access token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// AuthOptions configure the Auth middleware.
type AuthOptions struct {
	// AccessCookie is consulted when no Authorization header is sent.
	AccessCookie string
	// Touch, when set, records activity for the authenticated user.
	Touch func(ctx context.Context, userID int64) error
}

// Auth requires a valid access token from the Authorization header or the
// access cookie and stores its claims on the context.
func Auth(validator TokenValidator, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, opts.AccessCookie)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("token validation failed",
				"error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}

		c.Set(claimsKey, claims)

		if opts.Touch != nil {
			if err := opts.Touch(c.Request.Context(), claims.UserID); err != nil {
				logger.FromContext(c.Request.Context()).Warn("failed to update last seen",
					"error", err, "user_id", claims.UserID)
			}
		}

		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok && claims != nil
}

// SetClaims stores claims on the context. Used by tests and internal
// callers that authenticate by other means.
func SetClaims(c *gin.Context, claims *service.Claims) {
	c.Set(claimsKey, claims)
}

// ExtractToken returns the bearer token, falling back to the named cookie.
// Only the exact "Bearer" scheme is accepted.
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}
