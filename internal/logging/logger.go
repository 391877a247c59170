package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Level is a log severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLevel parses DEBUG, INFO, WARN or ERROR (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	// Global logger instance
	logger *log.Logger
	// Log file handle
	logFile *os.File
	// Minimum level written by the leveled helpers
	minLevel atomic.Int32
)

func init() {
	minLevel.Store(int32(LevelInfo))
}

// InitLogger initializes the logger with the given configuration
func InitLogger(logPath string, logLevel string) error {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	SetLevel(level)

	// If no log path specified, use stderr
	if logPath == "" {
		logger = log.New(os.Stderr, "", log.LstdFlags)
		return nil
	}

	// Create log directory if it doesn't exist
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = file

	// Write to both file and stderr
	multiWriter := io.MultiWriter(os.Stderr, file)
	logger = log.New(multiWriter, "", log.LstdFlags)

	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags)

	return nil
}

// SetOutput redirects the logger to w without timestamps. Used by tests.
func SetOutput(w io.Writer) {
	logger = log.New(w, "", 0)
}

// SetLevel sets the minimum level for Debugf, Infof, Warnf and Errorf.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

// CloseLogger closes the log file if open
func CloseLogger() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Printf logs a formatted message
func Printf(format string, v ...interface{}) {
	if logger != nil {
		logger.Printf(format, v...)
	} else {
		log.Printf(format, v...)
	}
}

// Println logs a message with newline
func Println(v ...interface{}) {
	if logger != nil {
		logger.Println(v...)
	} else {
		log.Println(v...)
	}
}

// Fatalf logs a formatted message and exits
func Fatalf(format string, v ...interface{}) {
	if logger != nil {
		logger.Fatalf(format, v...)
	} else {
		log.Fatalf(format, v...)
	}
}

func logf(l Level, format string, v ...interface{}) {
	if !Enabled(l) {
		return
	}
	Printf(l.String()+" "+format, v...)
}

func Debugf(format string, v ...interface{}) { logf(LevelDebug, format, v...) }

func Infof(format string, v ...interface{}) { logf(LevelInfo, format, v...) }

func Warnf(format string, v ...interface{}) { logf(LevelWarn, format, v...) }

func Errorf(format string, v ...interface{}) { logf(LevelError, format, v...) }
