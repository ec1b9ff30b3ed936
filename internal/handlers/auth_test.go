package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

func setupTestHandler(authService *mockAuthService, userService *mockUserService) *AuthHandler {
	return NewAuthHandler(authService, userService, testCookieHelper(), testJWTService(), nil)
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// =============================================================================
// Register Handler Tests
// =============================================================================

func TestRegister_Success(t *testing.T) {
	var got map[string]any
	userService := &mockUserService{
		registerFunc: func(ctx context.Context, data map[string]any) (*models.User, error) {
			got = data
			return sampleUser(5, "alice"), nil
		},
	}

	handler := setupTestHandler(&mockAuthService{}, userService)
	w, c := createTestContext("POST", "/api/v1/auth/register", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw", Password2: "pw",
	})

	handler.Register(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/users/5" {
		t.Errorf("Location = %q, want /api/v1/users/5", loc)
	}
	if _, ok := got["password2"]; ok {
		t.Error("password2 should not be forwarded")
	}
	if got["password"] != "pw" {
		t.Errorf("password forwarded = %v", got["password"])
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	handler := setupTestHandler(&mockAuthService{}, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/register", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw", Password2: "other",
	})

	handler.Register(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if msg := decodeError(t, w); msg != "passwords must match" {
		t.Errorf("error = %q", msg)
	}
}

func TestRegister_BindErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantMsg string
	}{
		{
			name:    "malformed email",
			req:     RegisterRequest{Username: "alice", Email: "not-an-email", Password: "pw", Password2: "pw"},
			wantMsg: "invalid email address",
		},
		{
			name:    "missing email",
			req:     RegisterRequest{Username: "alice", Password: "pw", Password2: "pw"},
			wantMsg: "username, email, password and password2 are required",
		},
		{
			name:    "missing username",
			req:     RegisterRequest{Email: "alice@example.com", Password: "pw", Password2: "pw"},
			wantMsg: "username, email, password and password2 are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userService := &mockUserService{
				registerFunc: func(ctx context.Context, data map[string]any) (*models.User, error) {
					t.Error("Register should not be called")
					return nil, nil
				},
			}
			handler := setupTestHandler(&mockAuthService{}, userService)
			w, c := createTestContext("POST", "/api/v1/auth/register", tt.req)

			handler.Register(c)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			if msg := decodeError(t, w); msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	userService := &mockUserService{
		registerFunc: func(ctx context.Context, data map[string]any) (*models.User, error) {
			return nil, &service.ValidationError{Message: "please use a different username"}
		},
	}
	handler := setupTestHandler(&mockAuthService{}, userService)
	w, c := createTestContext("POST", "/api/v1/auth/register", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw", Password2: "pw",
	})

	handler.Register(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if msg := decodeError(t, w); msg != "please use a different username" {
		t.Errorf("error = %q", msg)
	}
}

// =============================================================================
// Login Handler Tests
// =============================================================================

func TestLogin_Success(t *testing.T) {
	mockService := &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*service.LoginResponse, error) {
			return &service.LoginResponse{
				AccessToken:  "access_token_123",
				RefreshToken: "refresh_token_456",
				ExpiresIn:    900,
				UserID:       1,
				Username:     "testuser",
			}, nil
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/login", LoginRequest{
		Username: "testuser",
		Password: "password123",
	})

	handler.Login(c)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !response.Success {
		t.Error("expected success=true")
	}
	if response.ExpiresIn != 900 {
		t.Errorf("expected ExpiresIn=900, got %d", response.ExpiresIn)
	}
	if response.UserID != 1 || response.Username != "testuser" {
		t.Errorf("unexpected user %d/%s", response.UserID, response.Username)
	}

	access := findCookie(w, AccessTokenCookie)
	if access == nil || access.Value != "access_token_123" {
		t.Error("access_token cookie not set")
	}
	refresh := findCookie(w, RefreshTokenCookie)
	if refresh == nil || refresh.Value != "refresh_token_456" {
		t.Error("refresh_token cookie not set")
	}
	if refresh != nil && refresh.Path != RefreshTokenPath {
		t.Errorf("refresh cookie path = %s, want %s", refresh.Path, RefreshTokenPath)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockService := &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*service.LoginResponse, error) {
			return nil, service.ErrInvalidCredentials
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/login", LoginRequest{Username: "testuser", Password: "wrong"})

	handler.Login(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookies should be set on failure")
	}
}

func TestLogin_ServiceFailure(t *testing.T) {
	mockService := &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*service.LoginResponse, error) {
			return nil, errors.New("redis down")
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/login", LoginRequest{Username: "testuser", Password: "pw"})

	handler.Login(c)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if strings.Contains(w.Body.String(), "redis") {
		t.Error("internal error details should not leak")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	handler := setupTestHandler(&mockAuthService{}, &mockUserService{})

	for _, req := range []LoginRequest{{Username: "testuser"}, {Password: "pw"}} {
		w, c := createTestContext("POST", "/api/v1/auth/login", req)
		handler.Login(c)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	}
}

func TestLogin_TokensNotInResponseBody(t *testing.T) {
	mockService := &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*service.LoginResponse, error) {
			return &service.LoginResponse{
				AccessToken:  "secret_access_token",
				RefreshToken: "secret_refresh_token",
				ExpiresIn:    900,
				UserID:       1,
				Username:     "testuser",
			}, nil
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/login", LoginRequest{Username: "testuser", Password: "password123"})

	handler.Login(c)

	body := w.Body.String()
	if strings.Contains(body, "secret_access_token") {
		t.Error("access_token should not be in response body")
	}
	if strings.Contains(body, "secret_refresh_token") {
		t.Error("refresh_token should not be in response body")
	}
}

// =============================================================================
// Refresh Handler Tests
// =============================================================================

func TestRefresh_FromCookie(t *testing.T) {
	var received string
	mockService := &mockAuthService{
		refreshTokenFunc: func(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
			received = refreshToken
			return &service.LoginResponse{AccessToken: "new_access", RefreshToken: "new_refresh", ExpiresIn: 900}, nil
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/auth/refresh", nil)
	c.Request.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "old_refresh"})

	handler.Refresh(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if received != "old_refresh" {
		t.Errorf("refresh token passed = %q, want old_refresh", received)
	}
	if cookie := findCookie(w, AccessTokenCookie); cookie == nil || cookie.Value != "new_access" {
		t.Error("new access cookie not set")
	}
	if strings.Contains(w.Body.String(), "new_refresh") {
		t.Error("refresh token should not be in response body")
	}
}

func TestRefresh_FromBody(t *testing.T) {
	var received string
	mockService := &mockAuthService{
		refreshTokenFunc: func(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
			received = refreshToken
			return &service.LoginResponse{AccessToken: "a", RefreshToken: "r"}, nil
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/refresh", RefreshRequest{RefreshToken: "body_token"})

	handler.Refresh(c)

	if w.Code != http.StatusOK || received != "body_token" {
		t.Errorf("status = %d, token = %q", w.Code, received)
	}
}

func TestRefresh_NoToken(t *testing.T) {
	handler := setupTestHandler(&mockAuthService{}, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/refresh", nil)

	handler.Refresh(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRefresh_MalformedBody(t *testing.T) {
	mockService := &mockAuthService{
		refreshTokenFunc: func(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
			t.Error("RefreshToken should not be called")
			return nil, service.ErrInvalidToken
		},
	}
	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/refresh", []string{"not", "an", "object"})

	handler.Refresh(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if msg := decodeError(t, w); msg != "request body must be a JSON object" {
		t.Errorf("error = %q", msg)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	mockService := &mockAuthService{
		refreshTokenFunc: func(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
			return nil, service.ErrInvalidToken
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/refresh", RefreshRequest{RefreshToken: "stale"})

	handler.Refresh(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if cookie := findCookie(w, AccessTokenCookie); cookie == nil || cookie.MaxAge != -1 {
		t.Error("cookies should be cleared on refresh failure")
	}
}

// =============================================================================
// Logout Handler Tests
// =============================================================================

func TestLogout_Success_Cookie(t *testing.T) {
	var received string
	mockService := &mockAuthService{
		logoutFunc: func(ctx context.Context, token string) error {
			received = token
			return nil
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/logout", nil)
	c.Request.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie_token"})

	handler.Logout(c)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if received != "cookie_token" {
		t.Errorf("token = %q, want cookie_token", received)
	}
	if cookie := findCookie(w, AccessTokenCookie); cookie == nil || cookie.MaxAge != -1 {
		t.Error("access cookie should be cleared")
	}
}

func TestLogout_Success_Header(t *testing.T) {
	var received string
	mockService := &mockAuthService{
		logoutFunc: func(ctx context.Context, token string) error {
			received = token
			return nil
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/logout", nil)
	c.Request.Header.Set("Authorization", "Bearer header_token")

	handler.Logout(c)

	if w.Code != http.StatusOK || received != "header_token" {
		t.Errorf("status = %d, token = %q", w.Code, received)
	}
}

func TestLogout_NoToken(t *testing.T) {
	handler := setupTestHandler(&mockAuthService{}, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/logout", nil)

	handler.Logout(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLogout_InvalidToken(t *testing.T) {
	mockService := &mockAuthService{
		logoutFunc: func(ctx context.Context, token string) error {
			return service.ErrInvalidToken
		},
	}

	handler := setupTestHandler(mockService, &mockUserService{})
	w, c := createTestContext("POST", "/api/v1/auth/logout", nil)
	c.Request.Header.Set("Authorization", "Bearer expired")

	handler.Logout(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// =============================================================================
// ChangePassword Handler Tests
// =============================================================================

func TestChangePassword_Success(t *testing.T) {
	var revoked int64
	authService := &mockAuthService{
		revokeSessionsFunc: func(ctx context.Context, userID int64) error {
			revoked = userID
			return nil
		},
	}
	userService := &mockUserService{
		changePasswordFunc: func(ctx context.Context, id int64, current, next string) error {
			if id != 4 || current != "old" || next != "new" {
				t.Errorf("ChangePassword(%d, %q, %q)", id, current, next)
			}
			return nil
		},
	}

	handler := setupTestHandler(authService, userService)
	w, c := createTestContext("PUT", "/api/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "old", NewPassword: "new", NewPassword2: "new",
	})
	authenticate(c, 4)

	handler.ChangePassword(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if revoked != 4 {
		t.Errorf("revoked sessions of %d, want 4", revoked)
	}
	if cookie := findCookie(w, AccessTokenCookie); cookie == nil || cookie.MaxAge != -1 {
		t.Error("cookies should be cleared after password change")
	}
}

func TestChangePassword_Errors(t *testing.T) {
	userService := &mockUserService{
		changePasswordFunc: func(ctx context.Context, id int64, current, next string) error {
			return &service.ValidationError{Message: "current password is incorrect"}
		},
	}
	handler := setupTestHandler(&mockAuthService{}, userService)

	w, c := createTestContext("PUT", "/api/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "old", NewPassword: "new", NewPassword2: "typo",
	})
	authenticate(c, 4)
	handler.ChangePassword(c)
	if w.Code != http.StatusBadRequest || decodeError(t, w) != "passwords must match" {
		t.Errorf("mismatch: status = %d body = %s", w.Code, w.Body.String())
	}

	w, c = createTestContext("PUT", "/api/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "new", NewPassword2: "new",
	})
	authenticate(c, 4)
	handler.ChangePassword(c)
	if w.Code != http.StatusBadRequest || decodeError(t, w) != "current password is incorrect" {
		t.Errorf("wrong current: status = %d body = %s", w.Code, w.Body.String())
	}

	w, c = createTestContext("PUT", "/api/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "old", NewPassword: "new", NewPassword2: "new",
	})
	handler.ChangePassword(c)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: status = %d, want 401", w.Code)
	}
}
