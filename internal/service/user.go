package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/repository"
)

const (
	msgMissingFields   = "must include username, email and password fields"
	msgUsernameTaken   = "please use a different username"
	msgEmailTaken      = "please use a different email address"
	msgDuplicate       = "please use a different username or email address"
	msgCurrentPassword = "current password is incorrect"
)

// UserService owns registration, profile edits and credential changes.
type UserService interface {
	Register(ctx context.Context, data map[string]any) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, p pagination.Params) ([]models.User, int64, error)
	Update(ctx context.Context, id int64, data map[string]any) (*models.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	TouchLastSeen(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (models.UserStats, error)
}

type userService struct {
	store  *repository.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService instance.
func NewUserService(store *repository.Store, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a user from an untrusted record. username, email and
// password are required; anything outside the whitelist is ignored.
func (s *userService) Register(ctx context.Context, data map[string]any) (*models.User, error) {
	for _, field := range []string{"username", "email", "password"} {
		if v, ok := data[field].(string); !ok || v == "" {
			return nil, invalid(msgMissingFields)
		}
	}

	user := &models.User{LastSeen: s.now().UTC()}
	if err := user.FromDict(data, true); err != nil {
		return nil, classify(err)
	}
	if err := user.Validate(); err != nil {
		return nil, classify(err)
	}

	err := s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if err := ensureAvailable(ctx, repos.Users, user.Username, user.Email, 0); err != nil {
			return err
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid(msgDuplicate)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, p pagination.Params) ([]models.User, int64, error) {
	return s.store.Users.List(ctx, p)
}

// Update applies the whitelisted fields of data to user id. The password is
// never changed here.
func (s *userService) Update(ctx context.Context, id int64, data map[string]any) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(repos repository.Repositories) error {
		current, err := repos.Users.FindByID(ctx, id)
		if err != nil {
			return classify(err)
		}

		username, _ := data["username"].(string)
		email, _ := data["email"].(string)
		if err := ensureAvailable(ctx, repos.Users, strings.TrimSpace(username), strings.TrimSpace(email), current.ID); err != nil {
			return err
		}

		if err := current.FromDict(data, false); err != nil {
			return classify(err)
		}
		if err := current.Validate(); err != nil {
			return classify(err)
		}
		if err := repos.Users.Update(ctx, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid(msgDuplicate)
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the credential after verifying the current one.
// Callers are expected to end the user's sessions afterwards.
func (s *userService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if next == "" {
		return invalid("new password is required")
	}

	return s.store.Transaction(ctx, func(repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, id)
		if err != nil {
			return classify(err)
		}
		if !user.CheckPassword(current) {
			return invalid(msgCurrentPassword)
		}
		if err := user.SetPassword(next); err != nil {
			return classify(err)
		}
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "password changed", "user_id", id)
		return nil
	})
}

func (s *userService) TouchLastSeen(ctx context.Context, id int64) error {
	return s.store.Users.TouchLastSeen(ctx, id, s.now())
}

func (s *userService) Stats(ctx context.Context, id int64) (models.UserStats, error) {
	return s.store.Users.Stats(ctx, id)
}

// ensureAvailable rejects a username or email already held by another user.
// Empty values are skipped. The unique indexes remain the final arbiter.
func ensureAvailable(ctx context.Context, users repository.UserRepository, username, email string, selfID int64) error {
	checks := []struct {
		value string
		find  func(context.Context, string) (*models.User, error)
		msg   string
	}{
		{username, users.FindByUsername, msgUsernameTaken},
		{email, users.FindByEmail, msgEmailTaken},
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		existing, err := c.find(ctx, c.value)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("availability check: %w", err)
		case existing.ID != selfID:
			return invalid(c.msg)
		}
	}
	return nil
}
