package controllers

import (
	"net/http"
	"sync"
	"time"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/types"
)

// Stats tracks conversion activity for the health endpoint.
type Stats struct {
	mu         sync.Mutex
	startedAt  time.Time
	timestamps []time.Time
}

func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

// Record notes one finished conversion.
func (s *Stats) Record() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.timestamps = append(s.timestamps, time.Now())
}

// ConversionsLastHour counts conversions in the sliding window.
func (s *Stats) ConversionsLastHour() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	return len(s.timestamps)
}

func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// prune drops entries older than an hour; callers hold the lock.
func (s *Stats) prune() {
	cutoff := time.Now().Add(-time.Hour)
	i := 0
	for i < len(s.timestamps) && s.timestamps[i].Before(cutoff) {
		i++
	}
	s.timestamps = s.timestamps[i:]
}

type HealthController struct {
	cfg   config.Config
	stats *Stats
}

func NewHealthController(cfg config.Config, stats *Stats) *HealthController {
	return &HealthController{cfg: cfg, stats: stats}
}

func (h *HealthController) HealthCheck(r *http.Request) (any, int, error) {
	return types.HealthResponse{
		Status:              "healthy",
		Version:             h.cfg.Version,
		UptimeSeconds:       int64(h.stats.Uptime().Seconds()),
		ConversionsLastHour: h.stats.ConversionsLastHour(),
	}, http.StatusOK, nil
}
