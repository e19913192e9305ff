package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Prober abstracts the status probe so the monitor can be tested without a
// full Client.
type Prober interface {
	ProbeStatus(ctx context.Context) Status
}

// Monitor caches the most recent upstream status and refreshes it on a fixed
// interval. Reads never trigger a probe; the portal status endpoint serves
// whatever the last refresh observed.
type Monitor struct {
	mu       sync.RWMutex
	current  Status
	prober   Prober
	interval time.Duration
	logger   *slog.Logger
}

// NewMonitor creates a monitor in the UNKNOWN state. Call Refresh or Run to
// populate it.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		current:  Status{Status: StatusUnknown, Message: "API status has not been checked yet"},
		prober:   prober,
		interval: interval,
		logger:   logger,
	}
}

// Current returns the last observed status.
func (m *Monitor) Current() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Refresh probes the upstream once and records the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := m.prober.ProbeStatus(ctx)
	m.mu.Lock()
	m.current = status
	m.mu.Unlock()

	if status.Status != StatusOK {
		m.logger.WarnContext(ctx, "upstream status degraded",
			"status", string(status.Status),
			"message", status.Message,
		)
	}
	return status
}

// Run refreshes immediately, then on every interval tick until the context is
// cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.Refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}
