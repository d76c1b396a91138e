package workers

import (
	"runtime"
	"testing"
)

func TestEffectiveAuto(t *testing.T) {
	t.Setenv("DARKROOM_WORKERS", "")

	available := runtime.GOMAXPROCS(0)
	if got := Effective(0); got != available {
		t.Errorf("Effective(0) = %d, want %d (all cores)", got, available)
	}
	if got := Effective(-1); got != available {
		t.Errorf("Effective(-1) = %d, want %d (all cores)", got, available)
	}
}

func TestEffectiveClampsToAvailable(t *testing.T) {
	t.Setenv("DARKROOM_WORKERS", "")

	available := runtime.GOMAXPROCS(0)
	if got := Effective(99999); got != available {
		t.Errorf("Effective(99999) = %d, want clamp to %d", got, available)
	}
}

func TestEffectiveHonorsSequential(t *testing.T) {
	t.Setenv("DARKROOM_WORKERS", "")

	if got := Effective(1); got != 1 {
		t.Errorf("Effective(1) = %d, want 1", got)
	}
}

func TestEffectiveEnvOverride(t *testing.T) {
	t.Setenv("DARKROOM_WORKERS", "1")

	if got := Effective(0); got != 1 {
		t.Errorf("Effective(0) with DARKROOM_WORKERS=1 = %d, want 1", got)
	}
}

func TestEffectiveEnvOverrideInvalid(t *testing.T) {
	t.Setenv("DARKROOM_WORKERS", "banana")

	available := runtime.GOMAXPROCS(0)
	if got := Effective(0); got != available {
		t.Errorf("Effective(0) with invalid override = %d, want %d", got, available)
	}
}
