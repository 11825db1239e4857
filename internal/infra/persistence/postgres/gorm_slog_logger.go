package postgres

import (
	"context"
	"log/slog"
	"time"

	"scribe/config"
	"scribe/internal/errors"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormSlogLogger adapts slog to GORM's logger interface.
type gormSlogLogger struct {
	logger        *slog.Logger
	level         gormlogger.LogLevel
	traceAllQuery bool
}

func newGormSlogLogger(logger *slog.Logger, cfg *config.Config) gormlogger.Interface {
	level := gormlogger.Warn
	traceAll := false
	if cfg != nil && cfg.Env.Debug {
		level = gormlogger.Info
		traceAll = true
	}

	return &gormSlogLogger{
		logger:        logger,
		level:         level,
		traceAllQuery: traceAll,
	}
}

func (l *gormSlogLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level

	return &clone
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger.InfoContext(ctx, msg, slog.Any("args", args))
	}
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.WarnContext(ctx, msg, slog.Any("args", args))
	}
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger.ErrorContext(ctx, msg, slog.Any("args", args))
	}
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		attrs = append(attrs, slog.Any("error", err))
		l.logger.LogAttrs(ctx, slog.LevelError, "Query failed", attrs...)
	case elapsed >= slowQueryThreshold:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "Slow query", attrs...)
	case l.traceAllQuery:
		l.logger.LogAttrs(ctx, slog.LevelDebug, "Query", attrs...)
	}
}
