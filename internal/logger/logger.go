package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the logging level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Config controls logger output.
type Config struct {
	Enabled bool
	Level   string
	File    string
	Console bool
}

type state struct {
	mu      sync.Mutex
	level   Level
	out     *log.Logger
	file    *os.File
	enabled bool
}

var global = &state{}

// Init configures the process logger. Calling it again replaces the previous setup.
func Init(cfg Config) error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file != nil {
		global.file.Close()
		global.file = nil
	}
	if !cfg.Enabled {
		global.enabled = false
		global.out = nil
		return nil
	}

	var writers []io.Writer
	if cfg.File != "" {
		dir := filepath.Dir(cfg.File)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		global.file = f
		writers = append(writers, f)
	}
	if cfg.Console || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	global.level = ParseLevel(cfg.Level)
	global.out = log.New(io.MultiWriter(writers...), "", 0)
	global.enabled = true
	return nil
}

// SetOutput sends log lines to w at the given level. Used by tests.
func SetOutput(w io.Writer, level Level) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.level = level
	global.out = log.New(w, "", 0)
	global.enabled = true
}

// Close releases the log file, if any.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.file == nil {
		return nil
	}
	err := global.file.Close()
	global.file = nil
	return err
}

// ParseLevel maps a config string to a Level, defaulting to Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func logf(level Level, format string, args ...interface{}) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if !global.enabled || global.out == nil || level < global.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	global.out.Printf("[%s] [%s] %s", ts, level, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) { logf(Debug, format, args...) }

// Infof logs an info message.
func Infof(format string, args ...interface{}) { logf(Info, format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) { logf(Warn, format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { logf(Error, format, args...) }
