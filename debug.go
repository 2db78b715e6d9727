// Package main - debug.go
//
// Centralized logging for the crafting bot.
//
// 1. Logging System:
//    - Thread-safe file logging to Debug.log
//    - Four log levels: DEBUG, INFO, WARN, ERROR
//    - Microsecond timestamps for performance analysis
//    - File is truncated (cleared) on each startup
//    - Global logger instance accessible via convenience functions
//
// 2. State Transition Logging:
//    - LogState records craft cycle transitions in a uniform format so a
//      session can be reconstructed from the log alone
//
// Logging Best Practices:
//   - DEBUG: Detailed operation info (match scores, coordinates, timing)
//   - INFO: Important events (startup, station acquired, batch collected)
//   - WARN: Non-critical issues (recipe not found, template missing)
//   - ERROR: Serious problems (station timeout, device failures)
package main

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger provides thread-safe logging functionality to Debug.log file.
//
// The logger writes all messages to a file with timestamps and log levels.
// Thread safety is ensured via mutex, allowing multiple goroutines to log
// concurrently without race conditions.
//
// File Behavior:
// Debug.log is truncated (O_TRUNC) on each startup to prevent log accumulation.
// This ensures the log file always contains only the current session's messages.
type Logger struct {
	file   *os.File
	logger *log.Logger
	mu     sync.Mutex
}

var globalLogger *Logger

// InitLogger initializes the global logger to write to Debug.log in current directory
// The log file is truncated (cleared) on each startup
func InitLogger() error {
	// Use O_TRUNC to clear the file on startup
	file, err := os.OpenFile("Debug.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	globalLogger = &Logger{
		file:   file,
		logger: log.New(file, "", log.LstdFlags|log.Lmicroseconds),
	}

	globalLogger.Info("Logger initialized (log file cleared)")
	return nil
}

// CloseLogger closes the log file
func CloseLogger() {
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.Info("Logger closing")
		globalLogger.file.Close()
	}
}

// Debug logs debug level messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[DEBUG] "+format, v...)
}

// Info logs info level messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[INFO] "+format, v...)
}

// Warn logs warning level messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[WARN] "+format, v...)
}

// Error logs error level messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[ERROR] "+format, v...)
}

// LogDebug is a convenience function for debug logging
func LogDebug(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Debug(format, v...)
	}
}

// LogInfo is a convenience function for info logging
func LogInfo(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Info(format, v...)
	}
}

// LogWarn is a convenience function for warning logging
func LogWarn(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Warn(format, v...)
	}
}

// LogError is a convenience function for error logging
func LogError(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Error(format, v...)
	}
}

// LogState records a craft cycle state transition for one item
func LogState(item string, from, to CraftState) {
	if from == to {
		return
	}
	LogInfo("[%s] %s -> %s", item, from, to)
}
