package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotshare/spotshare/internal/domain"
)

// BucketsRepository provides helpers for the per-user saved-post set.
type BucketsRepository struct {
	pool *pgxpool.Pool
}

// Add inserts the (user, post) pair unless it already exists. The post's
// advisory bucket_count is bumped only when a row was actually inserted, so
// repeated adds stay idempotent.
func (r *BucketsRepository) Add(ctx context.Context, userID, postID string) (added bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        INSERT INTO buckets (user_id, post_id)
        VALUES ($1,$2)
        ON CONFLICT (user_id, post_id) DO NOTHING
    `, userID, postID)
	if err != nil {
		return false, fmt.Errorf("insert bucket entry: %w", err)
	}
	if tag.RowsAffected() > 0 {
		if _, err := tx.Exec(ctx, `UPDATE posts SET bucket_count = bucket_count + 1 WHERE id = $1`, postID); err != nil {
			return false, fmt.Errorf("bump bucket count: %w", err)
		}
		added = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return added, nil
}

// Remove deletes the (user, post) pair if present. Removing an absent entry
// is a no-op.
func (r *BucketsRepository) Remove(ctx context.Context, userID, postID string) (removed bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM buckets WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("delete bucket entry: %w", err)
	}
	if tag.RowsAffected() > 0 {
		if _, err := tx.Exec(ctx, `
            UPDATE posts SET bucket_count = GREATEST(bucket_count - 1, 0) WHERE id = $1
        `, postID); err != nil {
			return false, fmt.Errorf("drop bucket count: %w", err)
		}
		removed = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return removed, nil
}

// Contains reports whether the user holds the post in their bucket.
func (r *BucketsRepository) Contains(ctx context.Context, userID, postID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM buckets WHERE user_id = $1 AND post_id = $2)
    `, userID, postID).Scan(&exists)
	return exists, err
}

// ListByUser returns the posts in a user's bucket, newest addition first.
func (r *BucketsRepository) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM buckets b
        JOIN posts p ON p.id = b.post_id
        JOIN users u ON u.id = p.creator_id
        WHERE b.user_id = $1
        ORDER BY b.created_at DESC
    `, postColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// CountForPost returns how many users currently hold the post, counted from
// the bucket rows themselves rather than the advisory counter.
func (r *BucketsRepository) CountForPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buckets WHERE post_id = $1`, postID).Scan(&count)
	return count, err
}
