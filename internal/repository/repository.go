package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotshare/spotshare/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a uniqueness constraint was violated.
var ErrConflict = errors.New("repository: conflict")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users   *UsersRepository
	Posts   *PostsRepository
	Ratings *RatingsRepository
	Buckets *BucketsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:   &UsersRepository{pool: pool},
		Posts:   &PostsRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
		Buckets: &BucketsRepository{pool: pool},
	}
}
