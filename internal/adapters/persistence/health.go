package persistence

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/book-service/internal/ports"
)

var _ ports.HealthChecker = (*HealthChecker)(nil)

// HealthChecker reports database reachability to the health registry.
type HealthChecker struct {
	db *DB
}

// NewHealthChecker creates a checker that pings db.
func NewHealthChecker(db *DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// Name implements ports.HealthChecker.
func (h *HealthChecker) Name() string { return "database" }

// Check pings the database.
func (h *HealthChecker) Check(ctx context.Context) error {
	if err := h.db.SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping: %w", h.db.Driver, err)
	}

	return nil
}

// RegisterMetrics exposes connection pool statistics to Prometheus.
func RegisterMetrics(reg prometheus.Registerer, db *DB) error {
	if err := reg.Register(collectors.NewDBStatsCollector(db.SQL, db.Driver)); err != nil {
		return fmt.Errorf("registering db stats collector: %w", err)
	}

	return nil
}
