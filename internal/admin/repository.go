// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Repository interface {
	Totals(ctx context.Context, todayStart, activeSince time.Time) (*Totals, error)
	Activity(ctx context.Context, from, to time.Time) ([]DayCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Totals counts every stored row, including soft-deleted posts and
// comments, so the figures only ever grow.
func (r *repository) Totals(
	ctx context.Context,
	todayStart, activeSince time.Time,
) (*Totals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM posts) AS total_posts,
			(SELECT COUNT(*) FROM comments) AS total_comments,
			(SELECT COUNT(*) FROM likes) AS total_likes,
			(SELECT COUNT(*) FROM users WHERE created_at >= $1) AS today_users,
			(SELECT COUNT(*) FROM posts WHERE created_at >= $1) AS today_posts,
			(SELECT COUNT(*) FROM comments WHERE created_at >= $1) AS today_comments,
			(SELECT COUNT(*) FROM likes WHERE created_at >= $1) AS today_likes,
			(SELECT COUNT(*) FROM users WHERE last_login >= $2) AS active_users`

	var t Totals
	if err := r.db.GetContext(ctx, &t, query, todayStart, activeSince); err != nil {
		return nil, fmt.Errorf("platform totals: %w", err)
	}

	return &t, nil
}

// Activity returns one row per UTC day in [from, to], both day starts.
// The series runs over UTC wall-clock timestamps and each bucket is
// converted back with AT TIME ZONE 'UTC', so day edges do not follow the
// session TimeZone.
func (r *repository) Activity(
	ctx context.Context,
	from, to time.Time,
) ([]DayCounts, error) {
	query := `
		WITH days AS (
			SELECT d.day AT TIME ZONE 'UTC' AS day_start,
				(d.day + INTERVAL '1 day') AT TIME ZONE 'UTC' AS day_end
			FROM generate_series($1::timestamp, $2::timestamp, INTERVAL '1 day') AS d(day)
		)
		SELECT days.day_start AS day,
			(SELECT COUNT(*) FROM users
				WHERE created_at >= days.day_start AND created_at < days.day_end) AS users,
			(SELECT COUNT(*) FROM posts
				WHERE created_at >= days.day_start AND created_at < days.day_end) AS posts,
			(SELECT COUNT(*) FROM comments
				WHERE created_at >= days.day_start AND created_at < days.day_end) AS comments,
			(SELECT COUNT(*) FROM likes
				WHERE created_at >= days.day_start AND created_at < days.day_end) AS likes
		FROM days
		ORDER BY days.day_start`

	var days []DayCounts
	if err := r.db.SelectContext(ctx, &days, query, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}

	return days, nil
}
