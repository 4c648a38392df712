package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotshare/spotshare/internal/domain"
)

// PostsRepository provides persistence helpers for post entities.
type PostsRepository struct {
	pool *pgxpool.Pool
}

const postColumns = `
    p.id,
    p.creator_id,
    u.name,
    p.title,
    p.content,
    p.image_url,
    p.taken_date,
    p.location,
    p.iso,
    p.shutter_speed,
    p.aperture,
    p.camera,
    p.lens,
    p.equipment,
    p.edit_software,
    p.rating,
    p.rating_count,
    p.bucket_count,
    p.created_at,
    p.updated_at
`

// PostCreateParams bundles the fields required to create a post.
type PostCreateParams struct {
	CreatorID string
	Title     string
	Content   string
	ImageURL  string
	Meta      domain.PhotoMeta
}

// PostUpdateParams carries the mutable fields of a post. ImageURL is left
// unchanged when empty.
type PostUpdateParams struct {
	Title    string
	Content  string
	ImageURL string
	Meta     domain.PhotoMeta
}

// PostListFilters encapsulates pagination and optional creator filtering.
type PostListFilters struct {
	CreatorID *string
	Page      int
	Limit     int
}

// PostListResult returns one page of posts plus the total row count.
type PostListResult struct {
	Items      []domain.Post
	TotalItems int64
}

// Create inserts a new post row and returns the stored entity.
func (r *PostsRepository) Create(ctx context.Context, params PostCreateParams) (domain.Post, error) {
	const query = `
        INSERT INTO posts (creator_id, title, content, image_url, taken_date, location,
                           iso, shutter_speed, aperture, camera, lens, equipment, edit_software)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id
    `
	var id string
	err := r.pool.QueryRow(ctx, query,
		params.CreatorID, params.Title, params.Content, params.ImageURL,
		params.Meta.TakenDate, params.Meta.Location, params.Meta.ISO,
		params.Meta.ShutterSpeed, params.Meta.Aperture, params.Meta.Camera,
		params.Meta.Lens, params.Meta.Equipment, params.Meta.EditSoftware,
	).Scan(&id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a post (with its creator's name) by id.
func (r *PostsRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.creator_id WHERE p.id = $1`, postColumns)
	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}
	return post, nil
}

// List returns one newest-first page of posts and the total count.
func (r *PostsRepository) List(ctx context.Context, filters PostListFilters) (PostListResult, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}

	where := []string{"TRUE"}
	args := []interface{}{}
	if filters.CreatorID != nil {
		where = append(where, fmt.Sprintf("p.creator_id = $%d", len(args)+1))
		args = append(args, *filters.CreatorID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM posts p WHERE %s`, cond)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return PostListResult{}, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT %s FROM posts p
        JOIN users u ON u.id = p.creator_id
        WHERE %s
        ORDER BY p.created_at DESC, p.id
        LIMIT $%d OFFSET $%d
    `, postColumns, cond, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return PostListResult{}, err
	}
	defer rows.Close()

	var items []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return PostListResult{}, err
		}
		items = append(items, post)
	}
	if err := rows.Err(); err != nil {
		return PostListResult{}, err
	}
	return PostListResult{Items: items, TotalItems: total}, nil
}

// Update overwrites the mutable fields of a post.
func (r *PostsRepository) Update(ctx context.Context, id string, params PostUpdateParams) (domain.Post, error) {
	const query = `
        UPDATE posts SET
            title = $2,
            content = $3,
            image_url = CASE WHEN $4 = '' THEN image_url ELSE $4 END,
            taken_date = $5,
            location = $6,
            iso = $7,
            shutter_speed = $8,
            aperture = $9,
            camera = $10,
            lens = $11,
            equipment = $12,
            edit_software = $13,
            updated_at = now()
        WHERE id = $1
        RETURNING id
    `
	var updated string
	err := r.pool.QueryRow(ctx, query, id,
		params.Title, params.Content, params.ImageURL,
		params.Meta.TakenDate, params.Meta.Location, params.Meta.ISO,
		params.Meta.ShutterSpeed, params.Meta.Aperture, params.Meta.Camera,
		params.Meta.Lens, params.Meta.Equipment, params.Meta.EditSoftware,
	).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}
	return r.GetByID(ctx, id)
}

// DeleteByID removes the post row itself. Reference cleanup in ratings and
// buckets is the caller's responsibility.
func (r *PostsRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.CreatorID,
		&post.CreatorName,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.Meta.TakenDate,
		&post.Meta.Location,
		&post.Meta.ISO,
		&post.Meta.ShutterSpeed,
		&post.Meta.Aperture,
		&post.Meta.Camera,
		&post.Meta.Lens,
		&post.Meta.Equipment,
		&post.Meta.EditSoftware,
		&post.Rating,
		&post.RatingCount,
		&post.BucketCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}
