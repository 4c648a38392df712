package feed

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a referenced user or post does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ValidationError indicates user-correctable bad input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnauthorizedError indicates the acting user does not own the post they are
// trying to mutate.
type UnauthorizedError struct {
	UserID string
	PostID string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user %s is not authorized to modify post %s", e.UserID, e.PostID)
}

// StoreError wraps a transient persistence failure. The whole request is safe
// to retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PartialCascadeError reports that a post was deleted but some users were
// left holding stale bucket or rating references. The delete itself
// succeeded; the listed users need offline reconciliation.
type PartialCascadeError struct {
	PostID        string
	FailedUserIDs []string
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("post %s deleted but cleanup failed for users: %s",
		e.PostID, strings.Join(e.FailedUserIDs, ", "))
}
