// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/ingest"
	"github.com/carterperez-dev/currency-tracker/internal/model"
)

type StatisticsSource interface {
	Statistics(ctx context.Context) (model.Statistics, error)
}

type CurrencyStats interface {
	CurrencyStats(ctx context.Context) (currency.Stats, error)
}

type IngestStatus interface {
	Status() ingest.Status
}

type Handler struct {
	store      StatisticsSource
	currencies CurrencyStats
	ingest     IngestStatus
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	storePing  func(ctx context.Context) error
}

// HandlerConfig leaves DBStats nil for the memory store and the redis
// fields nil when redis is disabled.
type HandlerConfig struct {
	Store      StatisticsSource
	Currencies CurrencyStats
	Ingest     IngestStatus
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	StorePing  func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		store:      cfg.Store,
		currencies: cfg.Currencies,
		ingest:     cfg.Ingest,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		storePing:  cfg.StorePing,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.GetSystemStats)
		r.Get("/db", h.GetDatabaseStats)
		r.Get("/redis", h.GetRedisStats)
		r.Get("/runtime", h.GetRuntimeStats)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.store.Statistics(ctx)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	var rates currency.Stats
	if h.currencies != nil {
		rates, err = h.currencies.CurrencyStats(ctx)
		if err != nil {
			core.JSONError(w, r, err)
			return
		}
	}

	response := SystemStatsResponse{
		Statistics: stats,
		Currencies: rates,
		Store: Dependency{
			Healthy: pingOK(ctx, h.storePing),
			Pool:    h.getDBStats(),
		},
		Runtime: readRuntimeStats(),
	}

	if h.redisPing != nil {
		response.Redis = &Dependency{
			Healthy: pingOK(ctx, h.redisPing),
			Pool:    h.getRedisStats(),
		}
	}

	if h.ingest != nil {
		status := h.ingest.Status()
		response.Ingest = &status
	}

	core.OK(w, r, core.M{"stats": response})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, r, core.M{"stats": h.getDBStats()})
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, r, core.M{"stats": h.getRedisStats()})
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, r, core.M{"stats": readRuntimeStats()})
}

func pingOK(ctx context.Context, ping func(ctx context.Context) error) bool {
	return ping == nil || ping(ctx) == nil
}

func readRuntimeStats() RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapBytes:  ms.HeapAlloc,
		SysBytes:   ms.Sys,
		GCCycles:   ms.NumGC,
	}
}

func (h *Handler) getDBStats() *PoolStats {
	if h.dbStats == nil {
		return nil
	}

	s := h.dbStats()
	return &PoolStats{
		MaxOpen:  s.MaxOpenConnections,
		Open:     s.OpenConnections,
		InUse:    s.InUse,
		Idle:     s.Idle,
		Waits:    s.WaitCount,
		WaitTime: s.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *PoolStats {
	if h.redisStats == nil {
		return nil
	}

	s := h.redisStats()
	return &PoolStats{
		Open:     int(s.TotalConns),
		InUse:    int(s.TotalConns) - int(s.IdleConns),
		Idle:     int(s.IdleConns),
		Hits:     s.Hits,
		Misses:   s.Misses,
		Timeouts: s.Timeouts,
	}
}

type SystemStatsResponse struct {
	Statistics model.Statistics `json:"statistics"`
	Currencies currency.Stats   `json:"currencies"`
	Store      Dependency       `json:"store"`
	Redis      *Dependency      `json:"redis,omitempty"`
	Ingest     *ingest.Status   `json:"ingest,omitempty"`
	Runtime    RuntimeStats     `json:"runtime"`
}

type Dependency struct {
	Healthy bool       `json:"healthy"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// PoolStats covers both the sql pool and the redis pool; the hit counters
// stay zero for sql.
type PoolStats struct {
	MaxOpen  int    `json:"max_open,omitempty"`
	Open     int    `json:"open"`
	InUse    int    `json:"in_use"`
	Idle     int    `json:"idle"`
	Waits    int64  `json:"waits,omitempty"`
	WaitTime string `json:"wait_time,omitempty"`
	Hits     uint32 `json:"hits,omitempty"`
	Misses   uint32 `json:"misses,omitempty"`
	Timeouts uint32 `json:"timeouts,omitempty"`
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapBytes  uint64 `json:"heap_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	GCCycles   uint32 `json:"gc_cycles"`
}
