// AngelaMos | 2026
// repository.go

package notification

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, e Event) error
	List(
		ctx context.Context,
		recipientID string,
		unreadOnly bool,
		page core.PageParams,
	) ([]Notification, int, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e Event) error {
	query := `
		INSERT INTO notifications (
			recipient_id, sender_id, notification_type, post_id, message
		) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		e.RecipientID,
		e.SenderID,
		e.Type,
		core.NullableID(e.PostID),
		e.Message,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	recipientID string,
	unreadOnly bool,
	page core.PageParams,
) ([]Notification, int, error) {
	where := "WHERE n.recipient_id = $1"
	if unreadOnly {
		where += " AND NOT n.is_read"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM notifications n " + where
	if err := r.db.GetContext(ctx, &total, countQuery, recipientID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			n.id, n.recipient_id, n.sender_id, n.notification_type,
			n.post_id, n.message, n.is_read, n.created_at,
			s.username AS sender_username,
			s.first_name AS sender_first_name,
			s.last_name AS sender_last_name,
			sp.avatar_url AS sender_avatar_url,
			LEFT(p.content, %d) AS post_snippet
		FROM notifications n
		JOIN users s ON s.id = n.sender_id
		LEFT JOIN user_profiles sp ON sp.user_id = s.id
		LEFT JOIN posts p ON p.id = n.post_id
		%s
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3`, postSnippetLength, where)

	var items []Notification
	err := r.db.SelectContext(ctx, &items, query,
		recipientID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return items, total, nil
}

func (r *repository) MarkAllRead(
	ctx context.Context,
	recipientID string,
) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE recipient_id = $1 AND NOT is_read`

	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rows, nil
}

// MarkRead is idempotent for already-read rows; it only reports
// core.ErrNotFound when the notification does not belong to recipientID.
func (r *repository) MarkRead(
	ctx context.Context,
	recipientID, id string,
) error {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND recipient_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark notification read: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UnreadCount(
	ctx context.Context,
	recipientID string,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND NOT is_read`

	var count int
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}
