// Package logger builds the zap logger shared by every command.
package logger

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger's encoding and level.
type Options struct {
	Verbose bool      // enable debug entries
	JSON    bool      // machine-readable entries instead of console lines
	Writer  io.Writer // defaults to stderr; stdout is reserved for command output
}

// New builds a logger for one run. Every entry carries the run's run_id.
func New(opts Options) *zap.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(newEncoder(opts.JSON), zapcore.AddSync(w), level)
	return zap.New(core).With(zap.String("run_id", uuid.NewString()))
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	// Console lines stay short: no timestamp or caller, just level, message
	// and fields.
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
