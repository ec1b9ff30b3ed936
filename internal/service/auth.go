package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
}

// AuthService issues and revokes session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	IssueAccessToken(ctx context.Context, username, password string) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error)
	ValidateToken(token string) (*Claims, error)
	RevokeSessions(ctx context.Context, userID int64) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService JWTService
	redis      *redis.Client
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo repository.UserRepository, jwtService JWTService, redisClient *redis.Client) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		redis:      redisClient,
	}
}

func refreshKey(userID int64) string {
	return "refresh_token:" + strconv.FormatInt(userID, 10)
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user.ID, user.Username)
}

// IssueAccessToken checks credentials and returns an access token only.
// The stored refresh token is left alone so an existing cookie session
// keeps working.
func (s *authService) IssueAccessToken(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.GetAccessExpiry().Seconds()),
		UserID:      user.ID,
		Username:    user.Username,
	}, nil
}

func (s *authService) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return s.RevokeSessions(ctx, claims.UserID)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	storedToken, err := s.redis.Get(ctx, refreshKey(claims.UserID)).Result()
	if err != nil || storedToken != refreshToken {
		return nil, ErrInvalidToken
	}

	return s.issue(ctx, claims.UserID, claims.Username)
}

// ValidateToken accepts access tokens only.
func (s *authService) ValidateToken(token string) (*Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RevokeSessions drops the stored refresh token so it can no longer be
// exchanged.
func (s *authService) RevokeSessions(ctx context.Context, userID int64) error {
	if err := s.redis.Del(ctx, refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke sessions for user %d: %w", userID, err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, userID int64, username string) (*LoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(userID, username)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(userID, username)
	if err != nil {
		return nil, err
	}

	// One live refresh token per user
	if err := s.redis.Set(ctx, refreshKey(userID), refreshToken, s.jwtService.GetRefreshExpiry()).Err(); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.GetAccessExpiry().Seconds()),
		UserID:       userID,
		Username:     username,
	}, nil
}
