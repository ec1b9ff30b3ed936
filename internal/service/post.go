package service

import (
	"context"
	"time"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/repository"
)

// PostService publishes posts and serves the feeds.
type PostService interface {
	Create(ctx context.Context, userID int64, body string) (*models.Post, error)
	ListByUser(ctx context.Context, username string, p pagination.Params) ([]models.Post, int64, error)
	Explore(ctx context.Context, p pagination.Params) ([]models.Post, int64, error)
	Timeline(ctx context.Context, userID int64, p pagination.Params) ([]models.Post, int64, error)
}

type postService struct {
	store *repository.Store
	now   func() time.Time
}

// NewPostService creates a new PostService instance.
func NewPostService(store *repository.Store) PostService {
	return &postService{store: store, now: time.Now}
}

func (s *postService) Create(ctx context.Context, userID int64, body string) (*models.Post, error) {
	post, err := models.NewPost(userID, body, s.now())
	if err != nil {
		return nil, classify(err)
	}

	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		author, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return classify(err)
		}
		if err := repos.Posts.Create(ctx, post); err != nil {
			return err
		}
		post.Author = author
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListByUser returns the author's posts, newest first.
func (s *postService) ListByUser(ctx context.Context, username string, p pagination.Params) ([]models.Post, int64, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, 0, classify(err)
	}
	return s.store.Posts.ListByUser(ctx, user.ID, p)
}

// Explore returns every post, newest first.
func (s *postService) Explore(ctx context.Context, p pagination.Params) ([]models.Post, int64, error) {
	return s.store.Posts.ListAll(ctx, p)
}

// Timeline returns the user's posts merged with those of followed users.
func (s *postService) Timeline(ctx context.Context, userID int64, p pagination.Params) ([]models.Post, int64, error) {
	return s.store.Posts.ListTimeline(ctx, userID, p)
}
