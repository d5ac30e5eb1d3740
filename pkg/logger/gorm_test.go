package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level string, slow float64) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLoggerWithConfig(zap.New(core), slow, level), logs
}

func stmt(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLevel("silent"))
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, gormLevel("warning"))
	assert.Equal(t, gormlogger.Error, gormLevel("error"))
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")

	t.Run("query error", func(t *testing.T) {
		l, logs := newObservedGormLogger("error", 0)
		l.Trace(ctx, time.Now(), stmt("INSERT INTO bids"), errors.New("disk full"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
	})

	t.Run("record not found is quiet", func(t *testing.T) {
		l, logs := newObservedGormLogger("error", 0)
		l.Trace(ctx, time.Now(), stmt("SELECT"), gorm.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("canceled is a warning", func(t *testing.T) {
		l, logs := newObservedGormLogger("warn", 0)
		l.Trace(ctx, time.Now(), stmt("SELECT"), context.Canceled)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("slow query", func(t *testing.T) {
		l, logs := newObservedGormLogger("warn", 0.001)
		l.Trace(ctx, time.Now().Add(-time.Second), stmt("SELECT"), nil)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "store slow query", logs.All()[0].Message)
	})

	t.Run("long statement is truncated", func(t *testing.T) {
		l, logs := newObservedGormLogger("debug", 0)
		l.Trace(ctx, time.Now(), stmt(strings.Repeat("x", maxSQLLength+50)), nil)
		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, true, fields["sql_truncated"])
		assert.Len(t, fields["sql"], maxSQLLength+3)
	})

	t.Run("silent", func(t *testing.T) {
		l, logs := newObservedGormLogger("silent", 0)
		l.Trace(ctx, time.Now(), stmt("SELECT"), errors.New("boom"))
		assert.Zero(t, logs.Len())
	})
}

func TestNewWithConfig_UnknownFormat(t *testing.T) {
	_, err := NewWithConfig(Config{Format: "xml"})
	assert.ErrorContains(t, err, `unsupported log format "xml"`)

	l, err := NewWithConfig(Config{Format: "json", OutputPath: "stderr", ServiceName: "marketplace-service"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
