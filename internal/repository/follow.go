package repository

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the directed follow edges between users.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
	FollowerCount(ctx context.Context, userID int64) (int64, error)
	FollowedCount(ctx context.Context, userID int64) (int64, error)
	ListFollowers(ctx context.Context, userID int64, p pagination.Params) ([]models.User, int64, error)
	ListFollowed(ctx context.Context, userID int64, p pagination.Params) ([]models.User, int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository instance.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the edge unless it already exists.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID int64) error {
	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&edge).Error
	if err != nil {
		return fmt.Errorf("failed to follow %d -> %d: %w", followerID, followedID, err)
	}
	return nil
}

// Unfollow deletes the edge if present.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID int64) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("failed to unfollow %d -> %d: %w", followerID, followedID, err)
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow %d -> %d: %w", followerID, followedID, err)
	}
	return n > 0, nil
}

func (r *followRepository) FollowerCount(ctx context.Context, userID int64) (int64, error) {
	return countFollowers(r.db.WithContext(ctx), userID)
}

func (r *followRepository) FollowedCount(ctx context.Context, userID int64) (int64, error) {
	return countFollowed(r.db.WithContext(ctx), userID)
}

func (r *followRepository) ListFollowers(ctx context.Context, userID int64, p pagination.Params) ([]models.User, int64, error) {
	total, err := countFollowers(r.db.WithContext(ctx), userID)
	if err != nil {
		return nil, 0, err
	}
	users, err := r.listUsers(ctx, "followers.follower_id = users.id", "followers.followed_id = ?", userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list followers of %d: %w", userID, err)
	}
	return users, total, nil
}

func (r *followRepository) ListFollowed(ctx context.Context, userID int64, p pagination.Params) ([]models.User, int64, error) {
	total, err := countFollowed(r.db.WithContext(ctx), userID)
	if err != nil {
		return nil, 0, err
	}
	users, err := r.listUsers(ctx, "followers.followed_id = users.id", "followers.follower_id = ?", userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users followed by %d: %w", userID, err)
	}
	return users, total, nil
}

func (r *followRepository) listUsers(ctx context.Context, on, where string, userID int64, p pagination.Params) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN followers ON "+on).
		Where(where, userID).
		Order("users.username").
		Scopes(paginate(p)).
		Find(&users).Error
	return users, err
}

func countFollowers(db *gorm.DB, userID int64) (int64, error) {
	var n int64
	if err := db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers of %d: %w", userID, err)
	}
	return n, nil
}

func countFollowed(db *gorm.DB, userID int64) (int64, error) {
	var n int64
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users followed by %d: %w", userID, err)
	}
	return n, nil
}
