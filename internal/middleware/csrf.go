// Package middleware provides HTTP middleware for the blog service.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AllowedOrigins should match the CORS allowed origins.
	AllowedOrigins []string
	// CookieNames limits validation to requests that carry one of these
	// cookies and no Authorization header. Empty means every
	// state-changing request is validated.
	CookieNames []string
}

// CSRF rejects state-changing requests whose Origin, or Referer when Origin
// is absent, is not an allowed origin. Browsers attach session cookies to
// cross-site requests, so cookie-authenticated writes must prove where they
// came from.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[normalizeOrigin(origin)] = true
	}

	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(cfg.CookieNames) > 0 && !cookieAuthenticated(c, cfg.CookieNames) {
			c.Next()
			return
		}

		if reason := originFailure(c, allowed); reason != "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "CSRF validation failed: " + reason,
			})
			return
		}
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// originFailure returns why the request origin is unacceptable, or "".
func originFailure(c *gin.Context, allowed map[string]bool) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		if !allowed[normalizeOrigin(origin)] {
			return "invalid origin"
		}
		return ""
	}
	if referer := c.GetHeader("Referer"); referer != "" {
		if !allowed[normalizeOrigin(extractOrigin(referer))] {
			return "invalid referer"
		}
		return ""
	}
	return "missing origin"
}

// cookieAuthenticated reports whether the browser sent one of the session
// cookies without an explicit Authorization header.
func cookieAuthenticated(c *gin.Context, names []string) bool {
	if c.GetHeader("Authorization") != "" {
		return false
	}
	for _, name := range names {
		if _, err := c.Cookie(name); err == nil {
			return true
		}
	}
	return false
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// extractOrigin returns scheme://host[:port] of rawURL, or "" when either
// part is missing.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
