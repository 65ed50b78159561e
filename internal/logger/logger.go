package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Info    = log.New(io.Discard, "", 0)
	Warn    = log.New(io.Discard, "", 0)
	Debug   = log.New(io.Discard, "", 0)
	Verbose = log.New(io.Discard, "", 0)
	Error   = log.New(io.Discard, "", 0)
	Always  = log.New(io.Discard, "", 0) // Always logs to file regardless of log level

	// Current log level for filtering
	currentLogLevel string

	logFile *lumberjack.Logger
)

// Options tunes file rotation
type Options struct {
	MaxSizeMB  int
	MaxBackups int
}

func InitWithConfig(logLevel, logFilePath string) error {
	return InitWithOptions(logLevel, logFilePath, Options{MaxSizeMB: 50, MaxBackups: 5})
}

func InitWithOptions(logLevel, logFilePath string, opts Options) error {
	currentLogLevel = logLevel

	if dir := filepath.Dir(logFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// Rotating log file
	logFile = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	// Create null writer for disabled log levels
	nullWriter := io.Discard

	Info = log.New(getWriter("info", logFile, nullWriter), "ℹ️  INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", logFile, nullWriter), "⚠️  WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", logFile, nullWriter), "🐛 DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Verbose = log.New(getWriter("verbose", logFile, nullWriter), "🔍 VERBOSE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(io.MultiWriter(os.Stderr, logFile), "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always = log.New(logFile, "📝 ALWAYS: ", log.Ldate|log.Ltime)

	return nil
}

// Close flushes and closes the rotating log file
func Close() error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	levels := map[string]int{
		"error":   0,
		"warn":    1,
		"info":    2,
		"debug":   3,
		"verbose": 4,
	}

	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}
