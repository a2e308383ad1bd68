package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "LPAC_CONSOLE_LOG_LEVEL"

// LogFileEnvVar redirects log output to a file. The TUI owns the terminal,
// so logs written to stdout would corrupt the screen.
const LogFileEnvVar = "LPAC_CONSOLE_LOG_FILE"

// Initialize creates a new logger with the specified level and output path.
// Empty arguments fall back to LPAC_CONSOLE_LOG_LEVEL and LPAC_CONSOLE_LOG_FILE.
// If no level is set anywhere, logging is disabled (silent mode).
func Initialize(level, path string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if path == "" {
		path = os.Getenv(LogFileEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	output := "stderr"
	if path != "" {
		output = path
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if path == "" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRequest logs an outgoing API request
func LogRequest(method, endpoint, url string) {
	Debug("API request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("url", url),
	)
}

// LogResponse logs the outcome of an API request
func LogResponse(endpoint string, statusCode int, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Int("status_code", statusCode),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		Warn("API request failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("API response", fields...)
}

// LogTransition logs a workflow state change
func LogTransition(opID, operation, from, to string, fields ...zap.Field) {
	Info("Operation state change",
		append([]zap.Field{
			zap.String("op_id", opID),
			zap.String("operation", operation),
			zap.String("from", from),
			zap.String("to", to),
		}, fields...)...,
	)
}

// LogLoad logs the completion of a view load
func LogLoad(view string, available bool, failures int, elapsed time.Duration) {
	Info("View loaded",
		zap.String("view", view),
		zap.Bool("available", available),
		zap.Int("failed_reads", failures),
		zap.Duration("elapsed", elapsed),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
