package scoring

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/infrastructure/cache"
)

const healthKeyPrefix = "scoring:backend:healthy:"

// BackendHealth is a point-in-time view of one backend
type BackendHealth struct {
	Name        string    `json:"name"`
	Available   bool      `json:"available"`
	LastOK      time.Time `json:"last_ok,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastProbeAt time.Time `json:"last_probe_at,omitempty"`
}

// HealthTracker probes every backend's liveness endpoint. A backend counts as
// available while its last OK probe is younger than the grace period. Every
// backend starts available for one grace period.
type HealthTracker struct {
	clients  []ScoringClient
	store    *cache.MemoryStore
	interval time.Duration
	grace    time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status map[string]*BackendHealth
}

// NewHealthTracker creates a tracker; Run starts probing
func NewHealthTracker(clients []ScoringClient, store *cache.MemoryStore, interval, grace time.Duration, logger *zap.Logger) *HealthTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if grace < interval {
		grace = interval
	}
	h := &HealthTracker{
		clients:  clients,
		store:    store,
		interval: interval,
		grace:    grace,
		timeout:  interval / 2,
		logger:   logger,
		status:   make(map[string]*BackendHealth, len(clients)),
	}
	if h.timeout <= 0 || h.timeout > 5*time.Second {
		h.timeout = 5 * time.Second
	}
	for _, c := range clients {
		h.status[c.Name()] = &BackendHealth{Name: c.Name()}
		store.Set(healthKeyPrefix+c.Name(), "seed", grace)
	}
	return h
}

// Available reports whether name had an OK probe within the grace period
func (h *HealthTracker) Available(name string) bool {
	_, ok := h.store.Get(healthKeyPrefix + name)
	return ok
}

// Run probes on every interval until ctx ends
func (h *HealthTracker) Run(ctx context.Context) {
	h.ProbeAll(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.ProbeAll(ctx)
		}
	}
}

// ProbeAll probes every backend concurrently and waits for all probes
func (h *HealthTracker) ProbeAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, c := range h.clients {
		wg.Add(1)
		go func(c ScoringClient) {
			defer wg.Done()
			h.probe(ctx, c)
		}(c)
	}
	wg.Wait()
}

func (h *HealthTracker) probe(ctx context.Context, c ScoringClient) {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := c.Health(probeCtx)
	now := time.Now().UTC()

	h.mu.Lock()
	st := h.status[c.Name()]
	st.LastProbeAt = now
	if err == nil {
		st.LastOK = now
		st.LastError = ""
	} else {
		st.LastError = err.Error()
	}
	h.mu.Unlock()

	if err == nil {
		h.store.Set(healthKeyPrefix+c.Name(), "ok", h.grace)
		return
	}
	h.logger.Warn("⚠️ Scoring backend probe failed",
		zap.String("backend", c.Name()),
		zap.Bool("still_available", h.Available(c.Name())),
		zap.Error(err),
	)
}

// Snapshot returns the status of every backend, sorted by name
func (h *HealthTracker) Snapshot() []BackendHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]BackendHealth, 0, len(h.status))
	for name, st := range h.status {
		cp := *st
		cp.Available = h.Available(name)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
