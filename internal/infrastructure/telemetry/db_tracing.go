package telemetry

import (
	"context"
	"errors"
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
	Enabled         bool
	LogFullSQL      bool          // include bound variables in db.statement (dev only)
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // postgresql, mysql, sqlite
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and annotates its spans with the
// number of affected rows, whether the statement took row locks and whether
// it exceeded the slow query threshold.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = DefaultDBTracingConfig().SlowQueryThresh
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerStatementCallbacks(db, cfg.SlowQueryThresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

// registerStatementCallbacks runs the annotations before otelgorm ends the span.
func registerStatementCallbacks(db *gorm.DB, slow time.Duration) error {
	annotate := func(tx *gorm.DB) { annotateStatement(tx, slow) }
	cb := db.Callback()
	regs := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("treasury_timing:before_create", markStart) },
		func() error { return cb.Create().After("gorm:create").Before("otel:after_create").Register("treasury_timing:after_create", annotate) },
		func() error { return cb.Query().Before("gorm:query").Register("treasury_timing:before_query", markStart) },
		func() error { return cb.Query().After("gorm:query").Before("otel:after_query").Register("treasury_timing:after_query", annotate) },
		func() error { return cb.Update().Before("gorm:update").Register("treasury_timing:before_update", markStart) },
		func() error { return cb.Update().After("gorm:update").Before("otel:after_update").Register("treasury_timing:after_update", annotate) },
		func() error { return cb.Delete().Before("gorm:delete").Register("treasury_timing:before_delete", markStart) },
		func() error { return cb.Delete().After("gorm:delete").Before("otel:after_delete").Register("treasury_timing:after_delete", annotate) },
		func() error { return cb.Row().Before("gorm:row").Register("treasury_timing:before_row", markStart) },
		func() error { return cb.Row().After("gorm:row").Before("otel:after_row").Register("treasury_timing:after_row", annotate) },
		func() error { return cb.Raw().Before("gorm:raw").Register("treasury_timing:before_raw", markStart) },
		func() error { return cb.Raw().After("gorm:raw").Before("otel:after_raw").Register("treasury_timing:after_raw", annotate) },
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}

func markStart(tx *gorm.DB) {
	if tx.Statement.Context != nil {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
	}
}

func annotateStatement(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if _, locked := tx.Statement.Clauses["FOR"]; locked {
		span.SetAttributes(attribute.Bool("db.row_lock", true))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", slow.Milliseconds()),
		))
	}
}
