package domain

import "time"

// Rating represents a single user's rating entry for a post. The
// (PostID, UserID) pair is unique: a user holds at most one entry per post.
type Rating struct {
	PostID    string    `json:"post"`
	UserID    string    `json:"userId"`
	Value     float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BucketEntry records that a user holds a post in their bucket.
type BucketEntry struct {
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
