// AngelaMos | 2026
// entity.go

package admin

import (
	"time"
)

const (
	activityDays = 7
	activeWindow = 7 * 24 * time.Hour
	dateLayout   = "2006-01-02"
)

type Counts struct {
	Users    int `db:"users"`
	Posts    int `db:"posts"`
	Comments int `db:"comments"`
	Likes    int `db:"likes"`
}

// Totals is the single-row result of the platform count query.
type Totals struct {
	TotalUsers    int `db:"total_users"`
	TotalPosts    int `db:"total_posts"`
	TotalComments int `db:"total_comments"`
	TotalLikes    int `db:"total_likes"`
	TodayUsers    int `db:"today_users"`
	TodayPosts    int `db:"today_posts"`
	TodayComments int `db:"today_comments"`
	TodayLikes    int `db:"today_likes"`
	ActiveUsers   int `db:"active_users"`
}

// DayCounts holds what was created during the UTC day starting at Day.
type DayCounts struct {
	Day time.Time `db:"day"`
	Counts
}

type Stats struct {
	Total       Counts
	Today       Counts
	ActiveUsers int
	Activity    []DayCounts
	GeneratedAt time.Time
}
