package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotshare/spotshare/internal/domain"
)

// UsersRepository provides persistence helpers for user entities.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
    id,
    email,
    password_hash,
    name,
    status,
    created_at,
    updated_at
`

// UserCreateParams bundles the fields required to create a user.
type UserCreateParams struct {
	Email        string
	PasswordHash string
	Name         string
}

// Create inserts a new user row. A duplicate email returns ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	const query = `
        INSERT INTO users (email, password_hash, name)
        VALUES ($1,$2,$3)
        RETURNING` + userColumns

	row := r.pool.QueryRow(ctx, query, params.Email, params.PasswordHash, params.Name)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by id.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT` + userColumns + `FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT` + userColumns + `FROM users WHERE email = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateStatus overwrites the user's status message.
func (r *UsersRepository) UpdateStatus(ctx context.Context, id, status string) (domain.User, error) {
	const query = `
        UPDATE users SET status = $2, updated_at = now()
        WHERE id = $1
        RETURNING` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ListIDs returns the id of every registered user.
func (r *UsersRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ScrubPostRefs removes a single user's bucket entry and rating entries for a
// post inside one transaction, keeping that user's read-modify-write sequence
// strictly sequential. It reports what was actually removed.
func (r *UsersRepository) ScrubPostRefs(ctx context.Context, userID, postID string) (bucketRemoved bool, ratingsRemoved int64, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bucketTag, err := tx.Exec(ctx, `DELETE FROM buckets WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return false, 0, err
	}
	ratingTag, err := tx.Exec(ctx, `DELETE FROM ratings WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}
	return bucketTag.RowsAffected() > 0, ratingTag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
