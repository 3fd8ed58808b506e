// AngelaMos | 2026
// entity.go

package post

import (
	"slices"
	"time"
)

const (
	CategoryGeneral      = "general"
	CategoryAnnouncement = "announcement"
	CategoryQuestion     = "question"
)

const (
	MaxPostLength    = 280
	MaxCommentLength = 200
)

var categories = []string{CategoryGeneral, CategoryAnnouncement, CategoryQuestion}

func IsValidCategory(c string) bool {
	return slices.Contains(categories, c)
}

type Post struct {
	ID           string    `db:"id"`
	AuthorID     string    `db:"author_id"`
	Content      string    `db:"content"`
	ImageURL     *string   `db:"image_url"`
	Category     string    `db:"category"`
	LikeCount    int       `db:"like_count"`
	CommentCount int       `db:"comment_count"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	AuthorUsername  string  `db:"author_username"`
	AuthorFirstName string  `db:"author_first_name"`
	AuthorLastName  string  `db:"author_last_name"`
	AuthorAvatarURL *string `db:"author_avatar_url"`

	// IsLiked is relative to the viewer the post was loaded for.
	IsLiked bool `db:"is_liked"`
}

type Comment struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	AuthorID  string    `db:"author_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`

	AuthorUsername  string  `db:"author_username"`
	AuthorFirstName string  `db:"author_first_name"`
	AuthorLastName  string  `db:"author_last_name"`
	AuthorAvatarURL *string `db:"author_avatar_url"`
}

type ListFilter struct {
	Category string
	AuthorID string
}

// LikeResult is the post state after a like or unlike.
type LikeResult struct {
	PostAuthorID string
	LikeCount    int
	Changed      bool
}
