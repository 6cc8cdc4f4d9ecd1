package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelcore_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// OrphanReferences counts media/rating records whose owner no longer resolves.
	OrphanReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelcore_orphan_references_total",
		Help: "Polymorphic references that failed to resolve to a live owner",
	}, []string{"kind"})

	// ReactionToggles counts reaction toggles by target and resulting status.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelcore_reaction_toggles_total",
		Help: "Reaction toggles by target type and resulting status",
	}, []string{"target", "status"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelcore_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelcore_cache_lookups_total",
		Help: "Cache-aside lookups by outcome (hit, miss, error)",
	}, []string{"outcome"})

	// PurgedTokens counts expired password-reset tokens removed by the janitor.
	PurgedTokens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelcore_purged_reset_tokens_total",
		Help: "Expired password-reset tokens purged",
	})
)

const metricsStartKey = "travelcore:metrics_start"

// RegisterQueryMetrics installs GORM callbacks that observe query latency per table.
func RegisterQueryMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(metricsStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(metricsStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create",
			func(n string) error { return cb.Create().Before("gorm:create").Register(n, before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, after("create")) }},
		{"query",
			func(n string) error { return cb.Query().Before("gorm:query").Register(n, before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, after("query")) }},
		{"update",
			func(n string) error { return cb.Update().Before("gorm:update").Register(n, before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, after("update")) }},
		{"delete",
			func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, after("delete")) }},
		{"raw",
			func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, after("raw")) }},
	}
	for _, s := range steps {
		if err := s.before("metrics:before_" + s.op); err != nil {
			return err
		}
		if err := s.after("metrics:after_" + s.op); err != nil {
			return err
		}
	}
	return nil
}
