package handlers

import (
	"time"

	"github.com/GunarsK-portfolio/blog-service/internal/config"
	"github.com/gin-gonic/gin"
)

const (
	// Cookie names
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	// RefreshTokenPath scopes the refresh cookie to the session endpoints.
	RefreshTokenPath = apiPrefix + "/auth"
)

// CookieHelper manages authentication cookies.
type CookieHelper struct {
	cfg config.CookieConfig
}

// NewCookieHelper creates a new cookie helper with the given configuration.
func NewCookieHelper(cfg config.CookieConfig) *CookieHelper {
	return &CookieHelper{cfg: cfg}
}

// SetAuthCookies sets both access and refresh token cookies.
func (h *CookieHelper) SetAuthCookies(c *gin.Context, accessToken, refreshToken string, accessExpiry, refreshExpiry time.Duration) {
	h.setCookie(c, AccessTokenCookie, accessToken, h.cfg.Path, int(accessExpiry.Seconds()))
	h.setCookie(c, RefreshTokenCookie, refreshToken, RefreshTokenPath, int(refreshExpiry.Seconds()))
}

// ClearAuthCookies removes both authentication cookies.
func (h *CookieHelper) ClearAuthCookies(c *gin.Context) {
	h.setCookie(c, AccessTokenCookie, "", h.cfg.Path, -1)
	h.setCookie(c, RefreshTokenCookie, "", RefreshTokenPath, -1)
}

// GetRefreshToken retrieves the refresh token from cookie.
func (h *CookieHelper) GetRefreshToken(c *gin.Context) string {
	token, err := c.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func (h *CookieHelper) setCookie(c *gin.Context, name, value, path string, maxAge int) {
	c.SetSameSite(h.cfg.SameSite)
	c.SetCookie(
		name,
		value,
		maxAge,
		path,
		h.cfg.Domain,
		h.cfg.Secure,
		true, // httpOnly - always true for auth cookies
	)
}
