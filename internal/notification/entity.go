// AngelaMos | 2026
// entity.go

package notification

import (
	"time"
)

const (
	TypeFollow  = "follow"
	TypeLike    = "like"
	TypeComment = "comment"
)

const postSnippetLength = 50

type Notification struct {
	ID               string    `db:"id"`
	RecipientID      string    `db:"recipient_id"`
	SenderID         string    `db:"sender_id"`
	NotificationType string    `db:"notification_type"`
	PostID           *string   `db:"post_id"`
	Message          string    `db:"message"`
	IsRead           bool      `db:"is_read"`
	CreatedAt        time.Time `db:"created_at"`

	SenderUsername  string  `db:"sender_username"`
	SenderFirstName string  `db:"sender_first_name"`
	SenderLastName  string  `db:"sender_last_name"`
	SenderAvatarURL *string `db:"sender_avatar_url"`
	PostSnippet     *string `db:"post_snippet"`
}

// Event is a notification to deliver. PostID is empty for follows.
type Event struct {
	RecipientID string
	SenderID    string
	Type        string
	PostID      string
	Message     string
}
