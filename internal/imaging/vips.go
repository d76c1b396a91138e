package imaging

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"darkroom/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var (
	vipsMu          sync.Mutex
	vipsInitialized bool
)

// InitVips starts libvips for decode-time shrinking of large sources.
// Optional: when it is never called, the pure-Go decode path is used for
// everything. Call once at startup, and pair with ShutdownVips.
//
// Note that the vips decode path can produce slightly different pixels
// than the pure-Go path, so flipping it on or off between builds changes
// output bytes for newly encoded artifacts. Cached artifacts are reused
// as-is either way.
func InitVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return
	}

	// Only surface vips warnings and errors through our logger
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vips.LogLevelWarning)

	// Conservative memory settings: the worker pool provides the
	// parallelism, so vips itself runs single-threaded per operation.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		logging.Debug("libvips shutdown complete")
	}
}

func vipsReady() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsInitialized
}

// loadWithVips decodes a source with libvips, shrinking toward the target
// during decode. Much more memory efficient than a full decode followed by
// a resize, particularly for large JPEGs.
func loadWithVips(path string, target Dimensions) (image.Image, error) {
	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	logging.Debug("vips loaded %s: %dx%d, target %dx%d",
		filepath.Base(path), ref.Width(), ref.Height(), target.Width, target.Height)

	// Never shrink below the target: the engine still does the final
	// Lanczos resize, vips only takes off the bulk.
	if err := ref.Thumbnail(target.Width, target.Height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips shrink: %w", err)
	}

	imgBytes, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        95,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vips export: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(imgBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode vips output: %w", err)
	}
	return img, nil
}
