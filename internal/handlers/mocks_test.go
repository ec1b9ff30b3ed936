package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/blog-service/internal/config"
	"github.com/GunarsK-portfolio/blog-service/internal/middleware"
	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type mockAuthService struct {
	loginFunc          func(ctx context.Context, username, password string) (*service.LoginResponse, error)
	issueAccessFunc    func(ctx context.Context, username, password string) (*service.LoginResponse, error)
	logoutFunc         func(ctx context.Context, token string) error
	refreshTokenFunc   func(ctx context.Context, refreshToken string) (*service.LoginResponse, error)
	validateTokenFunc  func(token string) (*service.Claims, error)
	revokeSessionsFunc func(ctx context.Context, userID int64) error
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) IssueAccessToken(ctx context.Context, username, password string) (*service.LoginResponse, error) {
	if m.issueAccessFunc != nil {
		return m.issueAccessFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, token)
	}
	return errors.New("not implemented")
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.LoginResponse, error) {
	if m.refreshTokenFunc != nil {
		return m.refreshTokenFunc(ctx, refreshToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(token string) (*service.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) RevokeSessions(ctx context.Context, userID int64) error {
	if m.revokeSessionsFunc != nil {
		return m.revokeSessionsFunc(ctx, userID)
	}
	return nil
}

type mockUserService struct {
	registerFunc       func(ctx context.Context, data map[string]any) (*models.User, error)
	getFunc            func(ctx context.Context, id int64) (*models.User, error)
	getByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
	listFunc           func(ctx context.Context, p pagination.Params) ([]models.User, int64, error)
	updateFunc         func(ctx context.Context, id int64, data map[string]any) (*models.User, error)
	changePasswordFunc func(ctx context.Context, id int64, current, next string) error
	statsFunc          func(ctx context.Context, id int64) (models.UserStats, error)
}

func (m *mockUserService) Register(ctx context.Context, data map[string]any) (*models.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, data)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) List(ctx context.Context, p pagination.Params) ([]models.User, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, p)
	}
	return nil, 0, errors.New("not implemented")
}

func (m *mockUserService) Update(ctx context.Context, id int64, data map[string]any) (*models.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, data)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, id, current, next)
	}
	return errors.New("not implemented")
}

func (m *mockUserService) TouchLastSeen(ctx context.Context, id int64) error {
	return nil
}

func (m *mockUserService) Stats(ctx context.Context, id int64) (models.UserStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, id)
	}
	return models.UserStats{}, nil
}

type mockJWTService struct {
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func (m *mockJWTService) GenerateAccessToken(userID int64, username string) (string, error) {
	return "access_token", nil
}

func (m *mockJWTService) GenerateRefreshToken(userID int64, username string) (string, error) {
	return "refresh_token", nil
}

func (m *mockJWTService) ValidateToken(tokenString string) (*service.Claims, error) {
	return &service.Claims{UserID: 1, Username: "testuser"}, nil
}

func (m *mockJWTService) GetAccessExpiry() time.Duration {
	return m.accessExpiry
}

func (m *mockJWTService) GetRefreshExpiry() time.Duration {
	return m.refreshExpiry
}

// =============================================================================
// Test Helpers
// =============================================================================

func testCookieHelper() *CookieHelper {
	return NewCookieHelper(config.CookieConfig{
		Path:     "/",
		Domain:   "",
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
}

func testJWTService() *mockJWTService {
	return &mockJWTService{
		accessExpiry:  15 * time.Minute,
		refreshExpiry: 7 * 24 * time.Hour,
	}
}

func createTestContext(method, path string, body interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	c.Request = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func authenticate(c *gin.Context, userID int64) {
	middleware.SetClaims(c, &service.Claims{UserID: userID, Username: "caller"})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func sampleUser(id int64, username string) *models.User {
	return &models.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		LastSeen: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}
