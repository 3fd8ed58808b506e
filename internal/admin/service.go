// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source used for day boundaries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetStats reports platform totals, what was created since UTC midnight,
// users seen in the last week and a per-day window ending today.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)

	totals, err := s.repo.Totals(ctx, today, now.Add(-activeWindow))
	if err != nil {
		return nil, err
	}

	from := today.AddDate(0, 0, -(activityDays - 1))
	days, err := s.repo.Activity(ctx, from, today)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total: Counts{
			Users:    totals.TotalUsers,
			Posts:    totals.TotalPosts,
			Comments: totals.TotalComments,
			Likes:    totals.TotalLikes,
		},
		Today: Counts{
			Users:    totals.TodayUsers,
			Posts:    totals.TodayPosts,
			Comments: totals.TodayComments,
			Likes:    totals.TodayLikes,
		},
		ActiveUsers: totals.ActiveUsers,
		Activity:    fillWindow(from, days),
		GeneratedAt: now,
	}, nil
}

// fillWindow returns exactly activityDays entries starting at from, with
// zero counts for days the query did not return.
func fillWindow(from time.Time, days []DayCounts) []DayCounts {
	byDate := make(map[string]Counts, len(days))
	for _, d := range days {
		byDate[d.Day.UTC().Format(dateLayout)] = d.Counts
	}

	window := make([]DayCounts, activityDays)
	for i := range window {
		day := from.AddDate(0, 0, i)
		window[i] = DayCounts{Day: day, Counts: byDate[day.Format(dateLayout)]}
	}
	return window
}
