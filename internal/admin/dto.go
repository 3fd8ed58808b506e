// AngelaMos | 2026
// dto.go

package admin

import (
	"time"
)

type CountsResponse struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
	Likes    int `json:"likes"`
}

type DayActivityResponse struct {
	Date string `json:"date"`
	CountsResponse
}

type StatsResponse struct {
	Total       CountsResponse        `json:"total"`
	Today       CountsResponse        `json:"today"`
	ActiveUsers int                   `json:"active_users"`
	Activity    []DayActivityResponse `json:"activity"`
	GeneratedAt time.Time             `json:"generated_at"`
}

func ToStatsResponse(s *Stats) StatsResponse {
	activity := make([]DayActivityResponse, len(s.Activity))
	for i, d := range s.Activity {
		activity[i] = DayActivityResponse{
			Date:           d.Day.UTC().Format(dateLayout),
			CountsResponse: CountsResponse(d.Counts),
		}
	}

	return StatsResponse{
		Total:       CountsResponse(s.Total),
		Today:       CountsResponse(s.Today),
		ActiveUsers: s.ActiveUsers,
		Activity:    activity,
		GeneratedAt: s.GeneratedAt,
	}
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	HeapAlloc    uint64 `json:"heap_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
	Uptime       string `json:"uptime"`
}
