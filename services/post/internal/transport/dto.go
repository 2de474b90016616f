package transport

import "github.com/socialmesh/platform/services/post/internal/models"

type CreatePostRequest struct {
	Content  string   `json:"content" validate:"required,max=500"`
	MediaIDs []string `json:"mediaIds"`
}

// PostList is the serialized listing payload; it is cached verbatim, so its
// shape is the wire shape.
type PostList struct {
	Success     bool          `json:"success"`
	Posts       []models.Post `json:"posts"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int64         `json:"totalPages"`
	TotalPosts  int64         `json:"totalPosts"`
}

type PostDetail struct {
	Success bool        `json:"success"`
	Post    models.Post `json:"post"`
}
