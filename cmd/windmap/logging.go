package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/windmap/config"
	"github.com/lixenwraith/windmap/observability"
)

const (
	logFileName = "windmap.log"
	maxLogSize  = 10 * 1024 * 1024 // 10 MB
)

// setupLogging routes logs to <dir>/windmap.log when debug is set, else discards them
// stdout and stderr belong to the terminal UI, so logs never go there
// The returned file is nil when logging is disabled
func setupLogging(cfg config.LogConfig) (*slog.Logger, *os.File) {
	if !cfg.Debug {
		log.SetOutput(io.Discard)
		return observability.Discard(), nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		log.SetOutput(io.Discard)
		return observability.Discard(), nil
	}

	logPath := filepath.Join(cfg.Dir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(cfg.Dir, fmt.Sprintf("windmap-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return observability.Discard(), nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	// Debug mode always records debug level, whatever log.level says
	logger := observability.NewLogger("debug", cfg.Format, f)
	logger.Info("logging started", "path", logPath, "configured_level", cfg.Level)
	return logger, f
}
