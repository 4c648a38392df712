package domain

import "time"

// PhotoMeta captures the capture/equipment details attached to a post.
type PhotoMeta struct {
	TakenDate    string `json:"takenDate"`
	Location     string `json:"location"`
	ISO          int    `json:"iso"`
	ShutterSpeed string `json:"shutterSpeed"`
	Aperture     string `json:"aperture"`
	Camera       string `json:"camera"`
	Lens         string `json:"lens"`
	Equipment    string `json:"equipment"`
	EditSoftware string `json:"editSoftware"`
}

// Post represents the canonical post entity in the database/service.
//
// Rating and RatingCount are the incrementally maintained aggregate over the
// per-user rating entries; BucketCount is a denormalized, advisory counter of
// how many users currently hold the post in their bucket.
type Post struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl"`
	Meta        PhotoMeta `json:"meta"`
	Rating      float64   `json:"rating"`
	RatingCount int64     `json:"ratingCount"`
	BucketCount int64     `json:"bucketCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
