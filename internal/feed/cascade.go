package feed

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CascadeResult summarizes the cleanup performed by DeletePost.
type CascadeResult struct {
	AffectedUsers   int
	ScrubbedRatings int64
}

// DeletePost removes a post and cascades the deletion into every user's
// bucket and ratings. Only the creator may delete.
//
// There is no reverse index from post to rating-holding users, so the cascade
// visits the entire user population: O(users) scrub transactions per delete.
// Scrubs run on a bounded worker pool; each user's cleanup is a single
// transaction so that user's state never tears.
//
// The post row is deleted even when some scrubs fail. In that case the
// returned error is a *PartialCascadeError listing the users left with stale
// references, while the result still describes the successful cleanup. The
// delete event is published either way, once the post row is gone.
func (s *Service) DeletePost(ctx context.Context, actorID, postID string) (CascadeResult, error) {
	post, err := s.repo.Posts.GetByID(ctx, postID)
	if err != nil {
		return CascadeResult{}, mapRepoErr(err, "post", postID, "load post")
	}
	if post.CreatorID != actorID {
		return CascadeResult{}, &UnauthorizedError{UserID: actorID, PostID: postID}
	}

	userIDs, err := s.repo.Users.ListIDs(ctx)
	if err != nil {
		return CascadeResult{}, &StoreError{Op: "list users for cascade", Err: err}
	}

	var (
		mu     sync.Mutex
		result CascadeResult
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cascadeWorkers)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			bucketRemoved, ratingsRemoved, err := s.repo.Users.ScrubPostRefs(gctx, userID, postID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Printf("feed: cascade scrub failed for user %s, post %s: %v", userID, postID, err)
				failed = append(failed, userID)
				return nil
			}
			if bucketRemoved || ratingsRemoved > 0 {
				result.AffectedUsers++
			}
			result.ScrubbedRatings += ratingsRemoved
			return nil
		})
	}
	// Scrub errors are collected per user, never propagated, so the post
	// delete below always gets its chance.
	_ = g.Wait()

	if err := s.repo.Posts.DeleteByID(ctx, postID); err != nil {
		return result, mapRepoErr(err, "post", postID, "delete post")
	}
	s.removeImage(post.ImageURL)

	s.publisher.Publish(TopicPosts, PostEvent{Action: ActionDelete, PostID: postID})

	if len(failed) > 0 {
		return result, &PartialCascadeError{PostID: postID, FailedUserIDs: failed}
	}
	return result, nil
}
