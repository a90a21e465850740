package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsamuelsen/book-service/internal/platform/logging"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger routes gorm's statement log through slog. Statements are logged
// at debug level, slow statements at warn and failed statements at error.
// The request-scoped logger is used when the context carries one.
type GormLogger struct {
	logger        *slog.Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

// NewGormLogger creates a gorm logger. A zero threshold uses 200ms.
func NewGormLogger(logger *slog.Logger, slowThreshold time.Duration) *GormLogger {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowThreshold
	}

	return &GormLogger{
		logger:        logger,
		slowThreshold: slowThreshold,
		level:         gormlogger.Info,
	}
}

// LogMode returns a copy of the logger at the given level.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level

	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log(ctx).InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log(ctx).WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log(ctx).ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs a single executed statement.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	logger := l.log(ctx)

	attrs := func() []any {
		sql, rows := fc()

		return []any{
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		}
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		logger.ErrorContext(ctx, "sql statement failed", append(attrs(), slog.Any("error", err))...)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		logger.WarnContext(ctx, "slow sql statement",
			append(attrs(), slog.Duration("threshold", l.slowThreshold))...)
	case l.level >= gormlogger.Info:
		logger.DebugContext(ctx, "sql statement", attrs()...)
	}
}

func (l *GormLogger) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, l.logger).With(slog.String("component", "gorm"))
}
