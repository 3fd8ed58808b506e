// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Handler struct {
	service    *Service
	dbStats    func() sql.DBStats
	dbPing     func(ctx context.Context) error
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	startedAt  time.Time
}

// HandlerConfig wires the infrastructure probes. Any of them may be nil,
// in which case that section is reported healthy with no stats.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	DBPing     func(ctx context.Context) error
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
}

func NewHandler(service *Service, cfg HandlerConfig) *Handler {
	return &Handler{
		service:    service,
		dbStats:    cfg.DBStats,
		dbPing:     cfg.DBPing,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		startedAt:  time.Now(),
	}
}

// RegisterRoutes mounts the dashboard endpoints. platformStats should
// enforce the platform:stats capability.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, platformStats func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(platformStats)

		r.Get("/admin/stats", h.GetStats)
		r.Get("/admin/system", h.GetSystemStats)
		r.Get("/admin/system/db", h.GetDatabaseStats)
		r.Get("/admin/system/redis", h.GetRedisStats)
		r.Get("/admin/system/runtime", h.GetRuntimeStats)
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToStatsResponse(stats))
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: probe(ctx, h.dbPing),
			Stats:   h.databaseStats(),
		},
		Redis: RedisStatus{
			Healthy: probe(ctx, h.redisPing),
			Stats:   h.redisPoolStats(),
		},
		Runtime: h.runtimeStats(),
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, DatabaseStatus{
		Healthy: probe(r.Context(), h.dbPing),
		Stats:   h.databaseStats(),
	})
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, RedisStatus{
		Healthy: probe(r.Context(), h.redisPing),
		Stats:   h.redisPoolStats(),
	})
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.runtimeStats())
}

func probe(ctx context.Context, ping func(context.Context) error) bool {
	if ping == nil {
		return true
	}
	return ping(ctx) == nil
}

func (h *Handler) databaseStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	s := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisPoolStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	s := h.redisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

func (h *Handler) runtimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		HeapAlloc:    mem.HeapAlloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
	}
}
