package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/adapter/dto/score"
	"github.com/johnquangdev/interview-scoring/internal/adapter/presenter"
	"github.com/johnquangdev/interview-scoring/internal/usecase/scoring"
)

// BackendSnapshotter reports scoring backend liveness
type BackendSnapshotter interface {
	Snapshot() []scoring.BackendHealth
}

// PingFunc checks one dependency
type PingFunc func(ctx context.Context) error

// Health reports service and backend status
type Health struct {
	environment string
	backends    BackendSnapshotter
	components  map[string]PingFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// NewHealth creates a health handler. Components are pinged on every request.
func NewHealth(environment string, backends BackendSnapshotter, components map[string]PingFunc, logger *zap.Logger) *Health {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Health{
		environment: environment,
		backends:    backends,
		components:  components,
		timeout:     2 * time.Second,
		logger:      logger,
	}
}

// Check returns health status
// @Summary      Health check
// @Description  Reports database, storage and scoring backend status. Responds 503 when a component is down or no backend is available.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  score.HealthResponse
// @Failure      503  {object}  score.HealthResponse
// @Router       /health [get]
func (h *Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := score.HealthResponse{
		Status:      "ok",
		Environment: h.environment,
		Time:        time.Now().UTC(),
		Components:  make(map[string]string, len(h.components)),
	}

	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.components[name](ctx); err != nil {
			h.logger.Warn("⚠️ Health check failed", zap.String("component", name), zap.Error(err))
			resp.Components[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Components[name] = "up"
	}

	if h.backends != nil {
		resp.Backends = presenter.ToBackendStatuses(h.backends.Snapshot())
		available := 0
		for _, b := range resp.Backends {
			if b.Available {
				available++
			}
		}
		if len(resp.Backends) > 0 && available == 0 {
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}
