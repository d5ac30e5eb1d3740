package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents logger configuration
type Config struct {
	Level            string  // debug, info, warn, error
	Format           string  // json, console
	OutputPath       string  // stdout, stderr, or file path
	SlowQuerySeconds float64 // store queries slower than this are logged as warnings
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
	Environment      string
}

// Rotation limits for file output.
const (
	rotateMaxSizeMB  = 100
	rotateMaxBackups = 3
	rotateMaxAgeDays = 28
)

// NewWithConfig builds the service logger. Every entry carries the service,
// version and environment fields.
func NewWithConfig(cfg Config) (*zap.Logger, error) {
	encoder, err := newEncoder(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, newSink(cfg.OutputPath), parseLogLevel(cfg.Level))

	// Keep the first 100 identical entries per second, then 1 in 10
	if cfg.EnableSampling {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", cfg.Environment),
	), nil
}

func newEncoder(cfg Config) (zapcore.Encoder, error) {
	ec := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return zapcore.NewJSONEncoder(ec), nil
	case "console", "":
		if cfg.Environment != "production" {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(ec), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
}

// parseLogLevel converts a level name to a zapcore.Level, defaulting to info
func parseLogLevel(level string) zapcore.Level {
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// newSink writes to stdout, stderr or a rotated file
func newSink(outputPath string) zapcore.WriteSyncer {
	switch outputPath {
	case "stdout", "":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	default:
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   outputPath,
			MaxSize:    rotateMaxSizeMB,
			MaxBackups: rotateMaxBackups,
			MaxAge:     rotateMaxAgeDays,
			Compress:   true,
		})
	}
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

// WithContext returns l annotated with the request ID and verified caller
// stored in ctx, if any.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String(string(requestIDKey), id))
	}
	if id := GetUserID(ctx); id != "" {
		fields = append(fields, zap.String(string(userIDKey), id))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// GetUserID extracts the verified caller email from context
func GetUserID(ctx context.Context) string { return stringValue(ctx, userIDKey) }

// WithRequestID returns a copy of ctx carrying the request ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserID returns a copy of ctx carrying the verified caller identity
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
