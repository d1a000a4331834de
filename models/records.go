// ABOUTME: Canonical gallery records produced by response normalization
// ABOUTME: Artworks, comments, categories and interaction results in stable shape

package models

import "time"

// UserSummary is the minimal owner/author reference embedded in records.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// CategorySummary is the single category attached to an artwork.
type CategorySummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ArtworkRecord is the canonical artwork shape regardless of which
// upstream representation it was normalized from.
type ArtworkRecord struct {
	ID             int              `json:"id"`
	Title          string           `json:"title"`
	PromptText     string           `json:"prompt_text,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
	CreatedAt      time.Time        `json:"created_at,omitempty"`
	OwnerID        int              `json:"owner_id,omitempty"`
	Owner          *UserSummary     `json:"owner,omitempty"`
	Category       *CategorySummary `json:"category,omitempty"`
	LikeCount      int              `json:"like_count"`
	CommentCount   int              `json:"comment_count"`
	ViewerHasLiked bool             `json:"viewer_has_liked"`
}

// CommentRecord is the canonical comment shape.
type CommentRecord struct {
	ID        int          `json:"id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	ArtworkID int          `json:"artwork_id,omitempty"`
	AuthorID  int          `json:"author_id,omitempty"`
	Author    *UserSummary `json:"author,omitempty"`
}

// LikeToggleResult reports the state after a like/unlike toggle.
type LikeToggleResult struct {
	ViewerHasLiked bool   `json:"viewer_has_liked"`
	LikeCount      int    `json:"like_count"`
	Message        string `json:"message,omitempty"`
}

// ArtworkDetail bundles an artwork with its comments for the detail page.
type ArtworkDetail struct {
	Artwork  ArtworkRecord   `json:"artwork"`
	Comments []CommentRecord `json:"comments"`
}

// CreateArtworkRequest carries the fields of a multipart artwork upload.
// The image itself streams separately and never lives in memory whole.
type CreateArtworkRequest struct {
	Title       string
	PromptText  string
	CategoryIDs []int
}

// PromptAnalysis is the ML service verdict on a generation prompt.
type PromptAnalysis struct {
	Prediction string             `json:"prediction"`
	Confidence float64            `json:"confidence"`
	Details    map[string]float64 `json:"details,omitempty"`
}
