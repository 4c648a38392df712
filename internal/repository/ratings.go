package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotshare/spotshare/internal/domain"
)

// RatingsRepository provides helpers for per-user post ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `
    post_id,
    user_id,
    value,
    comment,
    created_at,
    updated_at
`

// RatingUpsertParams captures a rating write together with the post aggregate
// snapshot it was computed from and the aggregate it must produce.
type RatingUpsertParams struct {
	PostID  string
	UserID  string
	Value   float64
	Comment string

	// Snapshot the new aggregate was computed from. The write only lands if
	// the post row still matches; otherwise a concurrent rating got there
	// first and the caller must recompute.
	OldRating float64
	OldCount  int64

	NewRating float64
	NewCount  int64
}

// Get retrieves a rating for a specific user/post combination.
func (r *RatingsRepository) Get(ctx context.Context, postID, userID string) (domain.Rating, error) {
	const query = `SELECT` + ratingColumns + `FROM ratings WHERE post_id = $1 AND user_id = $2`
	rating, err := scanRating(r.pool.QueryRow(ctx, query, postID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// ListByUser returns every rating entry a user has recorded.
func (r *RatingsRepository) ListByUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	const query = `SELECT` + ratingColumns + `FROM ratings WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// CountForPost returns the number of distinct rating entries for a post.
func (r *RatingsRepository) CountForPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings WHERE post_id = $1`, postID).Scan(&count)
	return count, err
}

// UpsertWithAggregate writes the rating entry and the post's new running
// aggregate in one transaction. The aggregate update is guarded by the
// snapshot in params: when another writer changed the post's aggregate in the
// meantime, nothing is written and applied is false so the caller can retry
// from a fresh snapshot.
func (r *RatingsRepository) UpsertWithAggregate(ctx context.Context, params RatingUpsertParams) (rating domain.Rating, applied bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Rating{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const guard = `
        UPDATE posts
        SET rating = $2, rating_count = $3, updated_at = now()
        WHERE id = $1 AND rating = $4 AND rating_count = $5
    `
	tag, err := tx.Exec(ctx, guard, params.PostID, params.NewRating, params.NewCount, params.OldRating, params.OldCount)
	if err != nil {
		return domain.Rating{}, false, fmt.Errorf("guard post aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Rating{}, false, nil
	}

	const upsert = `
        INSERT INTO ratings (post_id, user_id, value, comment)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (post_id, user_id)
        DO UPDATE SET value = EXCLUDED.value, comment = EXCLUDED.comment, updated_at = now()
        RETURNING` + ratingColumns

	rating, err = scanRating(tx.QueryRow(ctx, upsert, params.PostID, params.UserID, params.Value, params.Comment))
	if err != nil {
		return domain.Rating{}, false, fmt.Errorf("upsert rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Rating{}, false, err
	}
	return rating, true, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.PostID,
		&rating.UserID,
		&rating.Value,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}
