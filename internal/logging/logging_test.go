package logging

import "testing"

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		debug string
		level string
		want  LogLevel
	}{
		{"", "", LevelInfo},
		{"", "debug", LevelDebug},
		{"", "warn", LevelWarn},
		{"", "warning", LevelWarn},
		{"", "error", LevelError},
		{"", "verbose", LevelInfo},
		{"1", "error", LevelDebug},
		{"true", "", LevelDebug},
		{"no", "", LevelInfo},
	}

	for _, tt := range tests {
		t.Setenv("DEBUG", tt.debug)
		t.Setenv("LOG_LEVEL", tt.level)
		if got := levelFromEnv(); got != tt.want {
			t.Errorf("DEBUG=%q LOG_LEVEL=%q: level = %v, want %v", tt.debug, tt.level, got, tt.want)
		}
	}
}

func TestGetLevelDefaultsToInfo(t *testing.T) {
	// With no LOG_LEVEL or DEBUG in the test environment the level
	// initializes to Info exactly once.
	level := GetLevel()
	if level < LevelDebug || level > LevelError {
		t.Errorf("GetLevel() returned out-of-range level %d", level)
	}
	if GetLevel() != level {
		t.Error("GetLevel() not stable across calls")
	}
}
