package feed

import (
	"context"
	"errors"
	"math"

	"github.com/spotshare/spotshare/internal/domain"
	"github.com/spotshare/spotshare/internal/repository"
)

// errAggregateContention is wrapped in a StoreError when the CAS loop keeps
// losing against concurrent raters; the whole request is safe to retry.
var errAggregateContention = errors.New("rating aggregate contention")

// RatingResult is the outcome of ApplyRating.
type RatingResult struct {
	Post   domain.Post
	Rating domain.Rating
	IsNew  bool
}

// ApplyRating records or overwrites userID's rating for postID and folds the
// value into the post's running average.
//
// A first-time rating extends the mean:
//
//	mean' = (mean*count + value) / (count+1)
//
// A re-rating replaces the user's previous value, leaving the count
// unchanged:
//
//	mean' = (mean*count - old + value) / count
//
// The new aggregate is computed from a snapshot of the post row and persisted
// with a guarded write; a concurrent rater invalidating the snapshot triggers
// a retry from a fresh one, so each per-user entry is counted exactly once.
func (s *Service) ApplyRating(ctx context.Context, postID, userID string, value float64, comment string) (RatingResult, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return RatingResult{}, &ValidationError{Field: "rating", Reason: "must be a finite number"}
	}
	if _, err := s.repo.Users.GetByID(ctx, userID); err != nil {
		return RatingResult{}, mapRepoErr(err, "user", userID, "load rater")
	}

	for attempt := 0; attempt < s.retryLimit; attempt++ {
		post, err := s.repo.Posts.GetByID(ctx, postID)
		if err != nil {
			return RatingResult{}, mapRepoErr(err, "post", postID, "load post")
		}

		prev, err := s.repo.Ratings.Get(ctx, postID, userID)
		isNew := false
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return RatingResult{}, &StoreError{Op: "load rating", Err: err}
			}
			isNew = true
		}

		var newMean float64
		var newCount int64
		if isNew {
			newMean = (post.Rating*float64(post.RatingCount) + value) / float64(post.RatingCount+1)
			newCount = post.RatingCount + 1
		} else {
			// count >= 1 here: the user's entry is included in it.
			newMean = (post.Rating*float64(post.RatingCount) - prev.Value + value) / float64(post.RatingCount)
			newCount = post.RatingCount
		}

		rating, applied, err := s.repo.Ratings.UpsertWithAggregate(ctx, repository.RatingUpsertParams{
			PostID:    postID,
			UserID:    userID,
			Value:     value,
			Comment:   comment,
			OldRating: post.Rating,
			OldCount:  post.RatingCount,
			NewRating: newMean,
			NewCount:  newCount,
		})
		if err != nil {
			return RatingResult{}, &StoreError{Op: "persist rating", Err: err}
		}
		if !applied {
			continue
		}

		post.Rating = newMean
		post.RatingCount = newCount

		action := ActionUpdate
		if isNew {
			action = ActionAdd
		}
		s.publisher.Publish(TopicBucket, RatingEvent{Action: action, Rating: &rating})

		return RatingResult{Post: post, Rating: rating, IsNew: isNew}, nil
	}

	return RatingResult{}, &StoreError{Op: "apply rating", Err: errAggregateContention}
}
