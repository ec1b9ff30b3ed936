package repository

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"gorm.io/gorm"
)

// PostRepository stores posts and serves the newest-first listings.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]models.Post, int64, error)
	ListAll(ctx context.Context, p pagination.Params) ([]models.Post, int64, error)
	ListTimeline(ctx context.Context, userID int64, p pagination.Params) ([]models.Post, int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository instance.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post for user %d: %w", post.UserID, translate(err))
	}
	return nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID int64, p pagination.Params) ([]models.Post, int64, error) {
	posts, total, err := r.list(ctx, byAuthor(userID), p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts of user %d: %w", userID, err)
	}
	return posts, total, nil
}

func (r *postRepository) ListAll(ctx context.Context, p pagination.Params) ([]models.Post, int64, error) {
	posts, total, err := r.list(ctx, func(db *gorm.DB) *gorm.DB { return db }, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

// ListTimeline returns the user's own posts and those of everyone they follow.
func (r *postRepository) ListTimeline(ctx context.Context, userID int64, p pagination.Params) ([]models.Post, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		followed := r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
		return db.Where("posts.user_id = ? OR posts.user_id IN (?)", userID, followed)
	}
	posts, total, err := r.list(ctx, scope, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timeline of user %d: %w", userID, err)
	}
	return posts, total, nil
}

func (r *postRepository) list(ctx context.Context, filter func(*gorm.DB) *gorm.DB, p pagination.Params) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Scopes(filter, paginate(p)).
		Preload("Author").
		Order("posts.timestamp DESC, posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func byAuthor(userID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", userID)
	}
}
