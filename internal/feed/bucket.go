package feed

import (
	"context"

	"github.com/spotshare/spotshare/internal/domain"
)

// AddToBucket puts postID into userID's bucket. Adding an already-present
// post is a no-op that still succeeds; the event is only published when the
// bucket actually changed.
func (s *Service) AddToBucket(ctx context.Context, userID, postID string) (domain.Post, error) {
	if _, err := s.repo.Users.GetByID(ctx, userID); err != nil {
		return domain.Post{}, mapRepoErr(err, "user", userID, "load user")
	}
	if _, err := s.repo.Posts.GetByID(ctx, postID); err != nil {
		return domain.Post{}, mapRepoErr(err, "post", postID, "load post")
	}

	added, err := s.repo.Buckets.Add(ctx, userID, postID)
	if err != nil {
		return domain.Post{}, &StoreError{Op: "add bucket entry", Err: err}
	}

	// Re-read so the returned post carries the bumped bucket count.
	post, err := s.repo.Posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, mapRepoErr(err, "post", postID, "reload post")
	}

	if added {
		s.publisher.Publish(TopicBucket, BucketEvent{Action: ActionAdd, Bucket: &post})
	}
	return post, nil
}

// RemoveFromBucket takes postID out of userID's bucket. Removing an absent
// entry is a no-op.
func (s *Service) RemoveFromBucket(ctx context.Context, userID, postID string) error {
	if _, err := s.repo.Users.GetByID(ctx, userID); err != nil {
		return mapRepoErr(err, "user", userID, "load user")
	}
	if _, err := s.repo.Posts.GetByID(ctx, postID); err != nil {
		return mapRepoErr(err, "post", postID, "load post")
	}

	removed, err := s.repo.Buckets.Remove(ctx, userID, postID)
	if err != nil {
		return &StoreError{Op: "remove bucket entry", Err: err}
	}

	if removed {
		s.publisher.Publish(TopicBucket, BucketEvent{Action: ActionDelete, PostID: postID})
	}
	return nil
}
