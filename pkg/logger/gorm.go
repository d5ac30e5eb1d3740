package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// maxSQLLength bounds the statement text written per log entry.
const maxSQLLength = 1000

// GormLogger routes document-store statements through zap, tagged with the
// request that issued them.
type GormLogger struct {
	ZapLogger     *zap.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLoggerWithConfig creates a GORM logger. Statements are traced only
// at debug and info levels; slow ones are warned about from warn upward.
func NewGormLoggerWithConfig(zapLogger *zap.Logger, slowQuerySeconds float64, logLevel string) *GormLogger {
	return &GormLogger{
		ZapLogger:     zapLogger,
		SlowThreshold: time.Duration(slowQuerySeconds * float64(time.Second)),
		LogLevel:      gormLevel(logLevel),
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	if level == "silent" {
		return gormlogger.Silent
	}
	switch parseLogLevel(level) {
	case zapcore.DebugLevel, zapcore.InfoLevel:
		return gormlogger.Info
	case zapcore.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, enabledAt gormlogger.LogLevel, lvl zapcore.Level, msg string, data []interface{}) {
	if l.LogLevel < enabledAt {
		return
	}
	WithContext(ctx, l.ZapLogger).Sugar().Logf(lvl, msg, data...)
}

// Trace implements gormlogger.Interface. A missing record is a normal lookup
// result and a canceled request context is the client going away, so neither
// is logged as an error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("source", utils.FileWithLineNum()),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if len(sql) > maxSQLLength {
		fields = append(fields, zap.String("sql", sql[:maxSQLLength]+"..."), zap.Bool("sql_truncated", true))
	} else {
		fields = append(fields, zap.String("sql", sql))
	}

	log := WithContext(ctx, l.ZapLogger)
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		log.Warn("store query canceled", fields...)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("store query error", append(fields, zap.Error(err))...)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		log.Warn("store slow query", append(fields, zap.Duration("threshold", l.SlowThreshold))...)
	case l.LogLevel >= gormlogger.Info:
		log.Debug("store query", fields...)
	}
}
