package internal

import (
	"io"
	"log"
	"os"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelTags = [...]string{
	LogLevelError: "[ERROR] ",
	LogLevelWarn:  "[WARN] ",
	LogLevelInfo:  "[INFO] ",
	LogLevelDebug: "[DEBUG] ",
}

var (
	logLevel = LogLevelInfo
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// SetLogOutput redirects log lines. The chat session points this at a file or
// io.Discard while the full-screen program owns the terminal.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

func logf(level LogLevel, format string, args ...interface{}) {
	if logLevel < level {
		return
	}
	logger.Printf(levelTags[level]+format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) { logf(LogLevelError, format, args...) }

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) { logf(LogLevelWarn, format, args...) }

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) { logf(LogLevelInfo, format, args...) }

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) { logf(LogLevelDebug, format, args...) }
