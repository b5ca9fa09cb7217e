// Package logger implements the LoggerPort on zap. Console output stays
// human-readable; the per-run file sink is JSON lines with size-based
// rotation.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

// Options tune the adapter. Zero values give console-only logging at info.
type Options struct {
	// Dir receives the JSON log file; empty disables the file sink.
	Dir string
	// RunName is folded into the log file name.
	RunName string
	// Verbose lowers the console level to debug.
	Verbose bool
	// MaxSizeMB rotates the file sink; default 20.
	MaxSizeMB int
	// MaxBackups bounds rotated files kept; default 5.
	MaxBackups int
}

type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
}

func NewLoggerAdapter(opts Options) (*LoggerAdapter, error) {
	consoleLevel := zapcore.InfoLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stderr), consoleLevel),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 20
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		filename := fmt.Sprintf("%s_%s.log",
			time.Now().Format("2006-01-02_15-04-05"), sanitize(opts.RunName))
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, filename),
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		})
		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, zapcore.DebugLevel))
	}

	base := zap.New(zapcore.NewTee(cores...))
	return &LoggerAdapter{sugar: base.Sugar(), base: base}, nil
}

func (l *LoggerAdapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *LoggerAdapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *LoggerAdapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *LoggerAdapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.With(key, value), base: l.base}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{sugar: l.sugar.With(args...), base: l.base}
}

func (l *LoggerAdapter) Close() error {
	// Sync flushes buffered entries; stderr sync errors are not actionable.
	_ = l.base.Sync()
	return nil
}

// sanitize makes a run name safe for use in a file name.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
