package feed

import "github.com/spotshare/spotshare/internal/domain"

// Topics the service publishes on. Post lifecycle events go out on
// TopicPosts; bucket membership and rating events share TopicBucket, matching
// what realtime clients subscribe to.
const (
	TopicPosts  = "posts"
	TopicBucket = "bucket"
)

// Event actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAdd    = "add"
)

// Publisher delivers a payload to all currently-connected subscribers of a
// topic. Delivery is fire and forget: no persistence, no replay, and a
// publish with no subscribers is a silent no-op. The service only invokes it
// after the corresponding store write has committed.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// NopPublisher discards every event. Useful when no realtime layer is wired.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(string, interface{}) {}

// PostEvent announces a post lifecycle change. Delete events carry only the
// post id.
type PostEvent struct {
	Action string       `json:"action"`
	Post   *domain.Post `json:"post,omitempty"`
	PostID string       `json:"postId,omitempty"`
}

// BucketEvent announces a bucket membership change for a post.
type BucketEvent struct {
	Action string       `json:"action"`
	Bucket *domain.Post `json:"bucket,omitempty"`
	PostID string       `json:"postId,omitempty"`
}

// RatingEvent announces a created or changed rating.
type RatingEvent struct {
	Action string         `json:"action"`
	Rating *domain.Rating `json:"rating"`
}
