package cache

import (
	"os"
	"path/filepath"
	"testing"

	"darkroom/internal/imaging"
)

func TestContentHashDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := NewSource(path).ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	h2, err := NewSource(path).ContentHash()
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestContentHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bin")

	if err := os.WriteFile(path, []byte("version 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	h1, _ := NewSource(path).ContentHash()

	if err := os.WriteFile(path, []byte("version 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	h2, _ := NewSource(path).ContentHash()

	if h1 == h2 {
		t.Error("hash unchanged after content change")
	}
}

func TestContentHashCachedPerSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bin")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewSource(path)
	h1, err := src.ContentHash()
	if err != nil {
		t.Fatal(err)
	}

	// The file changes underneath, but the per-run hash is already fixed
	if err := os.WriteFile(path, []byte("mutated"), 0o644); err != nil {
		t.Fatal(err)
	}
	h2, err := src.ContentHash()
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Error("ContentHash re-read the file instead of caching")
	}
}

func TestContentHashMissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "missing.jpg"))
	if _, err := src.ContentHash(); err == nil {
		t.Fatal("ContentHash() on missing file succeeded, want error")
	}
	// Error is sticky
	if _, err := src.ContentHash(); err == nil {
		t.Fatal("ContentHash() second call lost the error")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	spec := imaging.ResponsiveSpec(1400, 90)
	k1 := DeriveKey("abc123", spec)
	k2 := DeriveKey("abc123", spec)
	if k1 != k2 {
		t.Error("DeriveKey not deterministic")
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
}

func TestDeriveKeySensitivity(t *testing.T) {
	base := DeriveKey("srchash", imaging.ResponsiveSpec(800, 90))

	variations := map[string]string{
		"source hash": DeriveKey("otherhash", imaging.ResponsiveSpec(800, 90)),
		"width":       DeriveKey("srchash", imaging.ResponsiveSpec(1400, 90)),
		"quality":     DeriveKey("srchash", imaging.ResponsiveSpec(800, 85)),
		"kind":        DeriveKey("srchash", imaging.ThumbnailSpec(4, 5, 800, 90)),
	}

	for field, key := range variations {
		if key == base {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}

func TestDeriveKeyThumbnailSensitivity(t *testing.T) {
	base := DeriveKey("h", imaging.ThumbnailSpec(4, 5, 400, 90))

	variations := map[string]string{
		"aspect":     DeriveKey("h", imaging.ThumbnailSpec(16, 9, 400, 90)),
		"short edge": DeriveKey("h", imaging.ThumbnailSpec(4, 5, 300, 90)),
		"quality":    DeriveKey("h", imaging.ThumbnailSpec(4, 5, 400, 80)),
	}
	for field, key := range variations {
		if key == base {
			t.Errorf("changing thumbnail %s did not change the key", field)
		}
	}

	// Sharpening participates in the key
	unsharpened := imaging.ThumbnailSpec(4, 5, 400, 90)
	unsharpened.Sharpened = false
	unsharpened.Sharpen = imaging.Sharpening{}
	if DeriveKey("h", unsharpened) == base {
		t.Error("removing sharpening did not change the key")
	}
}

func TestDeriveKeyIgnoresNothingElse(t *testing.T) {
	// Two specs built independently but with equal fields must collide.
	a := DeriveKey("h", imaging.ThumbnailSpec(4, 5, 400, 90))
	b := DeriveKey("h", imaging.ThumbnailSpec(4, 5, 400, 90))
	if a != b {
		t.Error("equal specs produced different keys")
	}
}
