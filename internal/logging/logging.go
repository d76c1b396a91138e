// Package logging is a thin leveled front end over the standard log
// package. The threshold comes from the environment: DEBUG=1 (or
// true/yes/on) forces debug output, otherwise LOG_LEVEL picks one of
// debug, info, warn, error. Unset or unrecognized values mean info.
//
// Builds are short-lived processes, so the level is resolved once on
// first use and never changes afterwards.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities. Messages below the active
// threshold are discarded.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", l)
}

var (
	threshold     LogLevel
	thresholdOnce sync.Once
)

// GetLevel resolves and returns the active threshold.
func GetLevel() LogLevel {
	thresholdOnce.Do(func() { threshold = levelFromEnv() })
	return threshold
}

// IsDebugEnabled reports whether Debug messages will be emitted.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// levelFromEnv reads the threshold from the environment. DEBUG wins
// over LOG_LEVEL when both are set.
func levelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func emit(at LogLevel, tag, format string, args ...interface{}) {
	if GetLevel() <= at {
		log.Printf(tag+format, args...)
	}
}

func Debug(format string, args ...interface{}) {
	emit(LevelDebug, "[DEBUG] ", format, args...)
}

func Info(format string, args ...interface{}) {
	emit(LevelInfo, "[INFO] ", format, args...)
}

func Warn(format string, args ...interface{}) {
	emit(LevelWarn, "[WARN] ", format, args...)
}

func Error(format string, args ...interface{}) {
	emit(LevelError, "[ERROR] ", format, args...)
}

// Fatal logs regardless of threshold and exits.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Printf bypasses the threshold for output that is part of the
// command's normal result, like the build summary.
func Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}
