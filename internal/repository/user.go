package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, p pagination.Params) ([]models.User, int64, error)
	Stats(ctx context.Context, id int64) (models.UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, translate(err))
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email %s: %w", email, translate(err))
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id %d: %w", id, translate(err))
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.LastSeen.IsZero() {
		user.LastSeen = time.Now()
	}
	user.LastSeen = user.LastSeen.UTC()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, translate(err))
	}
	return nil
}

// Update writes the mutable columns only. last_seen has its own path.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("username", "email", "about_me", "password_hash").
		Updates(user).Error
	if err != nil {
		return fmt.Errorf("failed to update user id %d: %w", user.ID, translate(err))
	}
	return nil
}

// TouchLastSeen moves last_seen forward to at. An older value is ignored.
func (r *userRepository) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND (last_seen IS NULL OR last_seen < ?)", id, at.UTC()).
		Update("last_seen", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to update last seen for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, p pagination.Params) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(paginate(p)).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users page %d: %w", p.Page, err)
	}
	return users, total, nil
}

func (r *userRepository) Stats(ctx context.Context, id int64) (models.UserStats, error) {
	var stats models.UserStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Post{}).Where("user_id = ?", id).Count(&stats.PostCount).Error; err != nil {
		return stats, fmt.Errorf("failed to count posts for user %d: %w", id, err)
	}
	followers, err := countFollowers(db, id)
	if err != nil {
		return stats, err
	}
	followed, err := countFollowed(db, id)
	if err != nil {
		return stats, err
	}
	stats.FollowerCount = followers
	stats.FollowedCount = followed
	return stats, nil
}
