// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
)

const notifyTimeout = 3 * time.Second

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Notify stores e without reporting failure. It runs after the triggering
// write has committed and keeps going if the request is cancelled.
func (s *Service) Notify(ctx context.Context, e Event) {
	if e.RecipientID == "" || e.RecipientID == e.SenderID {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.repo.Create(writeCtx, e); err != nil {
		s.logger.WarnContext(ctx, "notification dropped",
			"type", e.Type,
			"recipient_id", e.RecipientID,
			"sender_id", e.SenderID,
			"trace_id", core.TraceIDFromContext(ctx),
			"error", err,
		)
		metrics.RecordNotificationFailure(e.Type)
		core.AddSpanEvent(ctx, "notification.dropped",
			attribute.String("notification.type", e.Type),
			attribute.String("error", err.Error()),
		)
	}
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	unreadOnly bool,
	page core.PageParams,
) ([]Notification, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("list notifications: %w", core.ErrUnauthorized)
	}
	return s.repo.List(ctx, userID, unreadOnly, page)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("mark all read: %w", core.ErrUnauthorized)
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if id == "" {
		return fmt.Errorf("mark read: notification id required: %w", core.ErrInvalidInput)
	}
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
