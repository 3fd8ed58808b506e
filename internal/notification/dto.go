// AngelaMos | 2026
// dto.go

package notification

import (
	"time"
)

const (
	ActionMarkAllRead = "mark-all-read"
	ActionMarkRead    = "mark-read"
)

type ActionRequest struct {
	Action         string `json:"action"          validate:"required"`
	NotificationID string `json:"notification_id" validate:"omitempty,uuid"`
}

type SenderSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

type Response struct {
	ID               string        `json:"id"`
	NotificationType string        `json:"notification_type"`
	Message          string        `json:"message"`
	IsRead           bool          `json:"is_read"`
	PostID           *string       `json:"post_id"`
	PostSnippet      *string       `json:"post_snippet,omitempty"`
	Sender           SenderSummary `json:"sender"`
	CreatedAt        time.Time     `json:"created_at"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func ToResponse(n *Notification) Response {
	return Response{
		ID:               n.ID,
		NotificationType: n.NotificationType,
		Message:          n.Message,
		IsRead:           n.IsRead,
		PostID:           n.PostID,
		PostSnippet:      n.PostSnippet,
		Sender: SenderSummary{
			ID:        n.SenderID,
			Username:  n.SenderUsername,
			FirstName: n.SenderFirstName,
			LastName:  n.SenderLastName,
			AvatarURL: n.SenderAvatarURL,
		},
		CreatedAt: n.CreatedAt,
	}
}

func ToResponseList(items []Notification) []Response {
	out := make([]Response, len(items))
	for i := range items {
		out[i] = ToResponse(&items[i])
	}
	return out
}
