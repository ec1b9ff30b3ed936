// Package repository provides data access layer for the blog service.
package repository

import (
	"context"

	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"gorm.io/gorm"
)

// Repositories groups the repositories bound to one database handle.
type Repositories struct {
	Users   UserRepository
	Posts   PostRepository
	Follows FollowRepository
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:   NewUserRepository(db),
		Posts:   NewPostRepository(db),
		Follows: NewFollowRepository(db),
	}
}

// Store is the storage context handed to services. Its embedded
// repositories run outside any transaction; Transaction scopes a unit of
// work.
type Store struct {
	Repositories
	db *gorm.DB
}

// NewStore creates a new Store instance.
func NewStore(db *gorm.DB) *Store {
	return &Store{Repositories: newRepositories(db), db: db}
}

// Transaction runs fn against repositories bound to a single transaction.
// It commits when fn returns nil and rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func paginate(p pagination.Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}
