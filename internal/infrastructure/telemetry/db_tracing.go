// Package telemetry provides OpenTelemetry integration for distributed tracing.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool          // Enable database tracing
	LogFullSQL       bool          // Include full SQL statements in spans (dev only)
	SlowQueryThresh  time.Duration // Threshold for marking queries as slow
	DBSystem         string        // Database system name
	WithoutVariables bool          // Exclude query variables from the recorded SQL
}

// DefaultDBTracingConfig returns the default database tracing configuration:
// disabled, parameters stripped, 200ms slow query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin wires the otelgorm plugin into GORM and adds slow query
// detection on top.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs the otelgorm plugin plus timing callbacks on
// the given DB handle. A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}

	if !p.config.LogFullSQL {
		// Keep bind parameters out of exported spans
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerTimingCallbacks(db, "otel_timing", markQueryStart, p.annotateSpan); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// annotateSpan runs after each statement and enriches the otelgorm span.
func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	annotateSpanAfterQuery(db, p.config.SlowQueryThresh)
}

// markQueryStart records the statement start time so the after callback can
// compute elapsed time.
func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// annotateSpanAfterQuery adds row counts and table names to the active span,
// records non-not-found errors, and flags queries over the slow threshold.
func annotateSpanAfterQuery(db *gorm.DB, slowThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > slowThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
			))
		}
	}
}

// registrar matches gorm's unexported callback type.
type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// registerTimingCallbacks installs before/after hooks around every GORM
// operation type under the given name prefix.
func registerTimingCallbacks(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	points := []struct {
		name string
		at   registrar
		fn   func(*gorm.DB)
	}{
		{prefix + ":before_create", db.Callback().Create().Before("gorm:create"), before},
		{prefix + ":before_query", db.Callback().Query().Before("gorm:query"), before},
		{prefix + ":before_update", db.Callback().Update().Before("gorm:update"), before},
		{prefix + ":before_delete", db.Callback().Delete().Before("gorm:delete"), before},
		{prefix + ":before_row", db.Callback().Row().Before("gorm:row"), before},
		{prefix + ":before_raw", db.Callback().Raw().Before("gorm:raw"), before},
		{prefix + ":after_create", db.Callback().Create().After("gorm:create"), after},
		{prefix + ":after_query", db.Callback().Query().After("gorm:query"), after},
		{prefix + ":after_update", db.Callback().Update().After("gorm:update"), after},
		{prefix + ":after_delete", db.Callback().Delete().After("gorm:delete"), after},
		{prefix + ":after_row", db.Callback().Row().After("gorm:row"), after},
		{prefix + ":after_raw", db.Callback().Raw().After("gorm:raw"), after},
	}

	for _, pt := range points {
		if pt.fn == nil {
			continue
		}
		if err := pt.at.Register(pt.name, pt.fn); err != nil {
			return err
		}
	}

	return nil
}

// queryStartTimeKey is the context key for storing query start time.
type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps the context with the current time for slow
// query measurement.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// DBTracingCallback is a standalone timing callback pair for callers that
// want slow query spans without the full otelgorm plugin.
type DBTracingCallback struct {
	slowQueryThresh time.Duration
}

// NewDBTracingCallback creates a callback pair with the given threshold.
func NewDBTracingCallback(slowQueryThresh time.Duration) *DBTracingCallback {
	return &DBTracingCallback{
		slowQueryThresh: slowQueryThresh,
	}
}

// BeforeCallback stores the query start time in the statement context.
func (c *DBTracingCallback) BeforeCallback(db *gorm.DB) {
	markQueryStart(db)
}

// AfterCallback annotates the active span with timing and error details.
func (c *DBTracingCallback) AfterCallback(db *gorm.DB) {
	annotateSpanAfterQuery(db, c.slowQueryThresh)
}

// RegisterCallbacks installs the before and after hooks on the DB handle.
func (c *DBTracingCallback) RegisterCallbacks(db *gorm.DB) error {
	return registerTimingCallbacks(db, "otel_timing", c.BeforeCallback, c.AfterCallback)
}
