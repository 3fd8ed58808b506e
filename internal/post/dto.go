// AngelaMos | 2026
// dto.go

package post

import (
	"time"
)

type CreatePostRequest struct {
	Content  string  `json:"content"             validate:"required"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Category string  `json:"category,omitempty"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type AuthorSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

type PostResponse struct {
	ID           string        `json:"id"`
	Content      string        `json:"content"`
	ImageURL     *string       `json:"image_url"`
	Category     string        `json:"category"`
	LikeCount    int           `json:"like_count"`
	CommentCount int           `json:"comment_count"`
	IsLiked      *bool         `json:"is_liked,omitempty"`
	Author       AuthorSummary `json:"author"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type CommentResponse struct {
	ID        string        `json:"id"`
	PostID    string        `json:"post_id"`
	Content   string        `json:"content"`
	Author    AuthorSummary `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
}

type LikeResponse struct {
	LikeCount int  `json:"like_count"`
	IsLiked   bool `json:"is_liked"`
}

// ToPostResponse includes is_liked only when withViewer is set.
func ToPostResponse(p *Post, withViewer bool) PostResponse {
	resp := PostResponse{
		ID:           p.ID,
		Content:      p.Content,
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		Author: AuthorSummary{
			ID:        p.AuthorID,
			Username:  p.AuthorUsername,
			FirstName: p.AuthorFirstName,
			LastName:  p.AuthorLastName,
			AvatarURL: p.AuthorAvatarURL,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if withViewer {
		liked := p.IsLiked
		resp.IsLiked = &liked
	}
	return resp
}

func ToPostResponseList(posts []Post, withViewer bool) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, ToPostResponse(&posts[i], withViewer))
	}
	return out
}

func ToCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		PostID:  c.PostID,
		Content: c.Content,
		Author: AuthorSummary{
			ID:        c.AuthorID,
			Username:  c.AuthorUsername,
			FirstName: c.AuthorFirstName,
			LastName:  c.AuthorLastName,
			AvatarURL: c.AuthorAvatarURL,
		},
		CreatedAt: c.CreatedAt,
	}
}

func ToCommentResponseList(comments []Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, ToCommentResponse(&comments[i]))
	}
	return out
}
