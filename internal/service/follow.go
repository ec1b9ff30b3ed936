package service

import (
	"context"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/repository"
)

// FollowService manages follow edges addressed by username.
type FollowService interface {
	Follow(ctx context.Context, actorID int64, username string) (*models.User, error)
	Unfollow(ctx context.Context, actorID int64, username string) (*models.User, error)
	IsFollowing(ctx context.Context, actorID, targetID int64) (bool, error)
	Followers(ctx context.Context, username string, p pagination.Params) ([]models.User, int64, error)
	Following(ctx context.Context, username string, p pagination.Params) ([]models.User, int64, error)
}

type followService struct {
	store *repository.Store
}

// NewFollowService creates a new FollowService instance.
func NewFollowService(store *repository.Store) FollowService {
	return &followService{store: store}
}

// Follow makes actorID follow username. Following twice is a no-op.
func (s *followService) Follow(ctx context.Context, actorID int64, username string) (*models.User, error) {
	target, err := s.target(ctx, actorID, username)
	if err != nil {
		return nil, err
	}
	if err := s.store.Follows.Follow(ctx, actorID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// Unfollow removes the edge. Removing a missing edge is a no-op.
func (s *followService) Unfollow(ctx context.Context, actorID int64, username string) (*models.User, error) {
	target, err := s.target(ctx, actorID, username)
	if err != nil {
		return nil, err
	}
	if err := s.store.Follows.Unfollow(ctx, actorID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *followService) IsFollowing(ctx context.Context, actorID, targetID int64) (bool, error) {
	return s.store.Follows.IsFollowing(ctx, actorID, targetID)
}

func (s *followService) Followers(ctx context.Context, username string, p pagination.Params) ([]models.User, int64, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, 0, classify(err)
	}
	return s.store.Follows.ListFollowers(ctx, user.ID, p)
}

func (s *followService) Following(ctx context.Context, username string, p pagination.Params) ([]models.User, int64, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, 0, classify(err)
	}
	return s.store.Follows.ListFollowed(ctx, user.ID, p)
}

func (s *followService) target(ctx context.Context, actorID int64, username string) (*models.User, error) {
	target, err := s.store.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, classify(err)
	}
	if target.ID == actorID {
		return nil, &ValidationError{Message: ErrSelfFollow.Error(), Err: ErrSelfFollow}
	}
	return target, nil
}
