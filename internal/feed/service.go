package feed

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/spotshare/spotshare/internal/domain"
	"github.com/spotshare/spotshare/internal/repository"
)

// ImageRemover deletes a stored image by its public URL. Removal is best
// effort; the service logs failures and moves on.
type ImageRemover interface {
	Remove(imageURL string) error
}

// Service orchestrates feed mutations: it loads the affected entities,
// delegates the state computation, persists through the repositories, and
// only then hands the resulting event to the publisher. No event is ever
// emitted for a mutation that failed to persist.
type Service struct {
	repo           *repository.Repository
	publisher      Publisher
	images         ImageRemover
	logger         *log.Logger
	cascadeWorkers int
	retryLimit     int
}

// Options tunes the service.
type Options struct {
	// Publisher receives post-commit events. Defaults to NopPublisher.
	Publisher Publisher
	// Images removes orphaned image files after post delete/update.
	Images ImageRemover
	// CascadeWorkers bounds the parallel per-user scrub during post
	// deletion. Defaults to 8.
	CascadeWorkers int
	// AggregateRetryLimit bounds the compare-and-swap retry loop for rating
	// aggregate updates. Defaults to 5.
	AggregateRetryLimit int
	Logger              *log.Logger
}

// NewService constructs the feed service.
func NewService(repo *repository.Repository, opts Options) *Service {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = NopPublisher{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.CascadeWorkers
	if workers <= 0 {
		workers = 8
	}
	retries := opts.AggregateRetryLimit
	if retries <= 0 {
		retries = 5
	}
	return &Service{
		repo:           repo,
		publisher:      publisher,
		images:         opts.Images,
		logger:         logger,
		cascadeWorkers: workers,
		retryLimit:     retries,
	}
}

// PostInput carries the caller-supplied fields of a post.
type PostInput struct {
	Title    string
	Content  string
	ImageURL string
	Meta     domain.PhotoMeta
}

func (in PostInput) validate(requireImage bool) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if requireImage && strings.TrimSpace(in.ImageURL) == "" {
		return &ValidationError{Field: "image", Reason: "no image provided"}
	}
	return nil
}

// CreatePost stores a new post for creatorID and announces it.
func (s *Service) CreatePost(ctx context.Context, creatorID string, in PostInput) (domain.Post, error) {
	if err := in.validate(true); err != nil {
		return domain.Post{}, err
	}
	if _, err := s.repo.Users.GetByID(ctx, creatorID); err != nil {
		return domain.Post{}, mapRepoErr(err, "user", creatorID, "load creator")
	}

	post, err := s.repo.Posts.Create(ctx, repository.PostCreateParams{
		CreatorID: creatorID,
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		Meta:      in.Meta,
	})
	if err != nil {
		return domain.Post{}, &StoreError{Op: "create post", Err: err}
	}

	s.publisher.Publish(TopicPosts, PostEvent{Action: ActionCreate, Post: &post})
	return post, nil
}

// GetPost fetches a single post.
func (s *Service) GetPost(ctx context.Context, postID string) (domain.Post, error) {
	post, err := s.repo.Posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, mapRepoErr(err, "post", postID, "load post")
	}
	return post, nil
}

// ListPosts returns one newest-first page of the feed.
func (s *Service) ListPosts(ctx context.Context, filters repository.PostListFilters) (repository.PostListResult, error) {
	result, err := s.repo.Posts.List(ctx, filters)
	if err != nil {
		return repository.PostListResult{}, &StoreError{Op: "list posts", Err: err}
	}
	return result, nil
}

// UpdatePost overwrites a post's content. Only the creator may update; a new
// image replaces (and removes) the previous file.
func (s *Service) UpdatePost(ctx context.Context, actorID, postID string, in PostInput) (domain.Post, error) {
	if err := in.validate(false); err != nil {
		return domain.Post{}, err
	}

	current, err := s.repo.Posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, mapRepoErr(err, "post", postID, "load post")
	}
	if current.CreatorID != actorID {
		return domain.Post{}, &UnauthorizedError{UserID: actorID, PostID: postID}
	}

	post, err := s.repo.Posts.Update(ctx, postID, repository.PostUpdateParams{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Meta:     in.Meta,
	})
	if err != nil {
		return domain.Post{}, mapRepoErr(err, "post", postID, "update post")
	}

	if in.ImageURL != "" && in.ImageURL != current.ImageURL {
		s.removeImage(current.ImageURL)
	}

	s.publisher.Publish(TopicPosts, PostEvent{Action: ActionUpdate, Post: &post})
	return post, nil
}

// GetBucket returns every post in the user's bucket.
func (s *Service) GetBucket(ctx context.Context, userID string) ([]domain.Post, error) {
	if _, err := s.repo.Users.GetByID(ctx, userID); err != nil {
		return nil, mapRepoErr(err, "user", userID, "load user")
	}
	posts, err := s.repo.Buckets.ListByUser(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "list bucket", Err: err}
	}
	return posts, nil
}

// GetUserRatings returns every rating entry a user has recorded.
func (s *Service) GetUserRatings(ctx context.Context, userID string) ([]domain.Rating, error) {
	if _, err := s.repo.Users.GetByID(ctx, userID); err != nil {
		return nil, mapRepoErr(err, "user", userID, "load user")
	}
	ratings, err := s.repo.Ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "list ratings", Err: err}
	}
	return ratings, nil
}

func (s *Service) removeImage(imageURL string) {
	if s.images == nil || imageURL == "" {
		return
	}
	if err := s.images.Remove(imageURL); err != nil {
		s.logger.Printf("feed: failed to remove image %s: %v", imageURL, err)
	}
}

// mapRepoErr converts repository sentinels into the service error taxonomy.
func mapRepoErr(err error, resource, id, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return &StoreError{Op: op, Err: err}
}
