package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"darkroom/internal/generate"
	"darkroom/internal/imaging"
	"darkroom/internal/logging"
	"darkroom/internal/manifest"
	"darkroom/internal/metrics"
	"darkroom/internal/process"
	"darkroom/internal/scan"
)

func newScanCommand(opts *buildOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the content directory into a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts)
		},
	}
}

func newProcessCommand(opts *buildOptions) *cobra.Command {
	var noCache bool
	var useVips bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Generate responsive image sizes and thumbnails",
		RunE: func(cmd *cobra.Command, args []string) error {
			unlock, err := acquireBuildLock(opts)
			if err != nil {
				return err
			}
			defer unlock()
			return runProcess(cmd.Context(), opts, noCache, useVips)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-encode everything, ignoring cached artifacts")
	cmd.Flags().BoolVar(&useVips, "vips", false, "Use libvips for faster decoding of large sources")
	return cmd
}

func newGenerateCommand(opts *buildOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Produce the final HTML site from processed images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts)
		},
	}
}

func newBuildCommand(opts *buildOptions) *cobra.Command {
	var noCache bool
	var useVips bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the full pipeline: scan, process, generate",
		RunE: func(cmd *cobra.Command, args []string) error {
			unlock, err := acquireBuildLock(opts)
			if err != nil {
				return err
			}
			defer unlock()

			fmt.Println("==> Stage 1: Scanning filesystem")
			if err := runScan(opts); err != nil {
				return err
			}
			fmt.Println("==> Stage 2: Processing images")
			if err := runProcess(cmd.Context(), opts, noCache, useVips); err != nil {
				return err
			}
			fmt.Println("==> Stage 3: Generating HTML")
			if err := runGenerate(opts); err != nil {
				return err
			}
			fmt.Printf("==> Build complete: %s\n", opts.output)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-encode everything, ignoring cached artifacts")
	cmd.Flags().BoolVar(&useVips, "vips", false, "Use libvips for faster decoding of large sources")
	return cmd
}

func runScan(opts *buildOptions) error {
	m, err := scan.Run(opts.source)
	if err != nil {
		return err
	}
	m.BuildID = uuid.NewString()

	if err := manifest.WriteScan(opts.tempDir, m); err != nil {
		return err
	}
	fmt.Printf("Wrote manifest to %s\n", opts.tempDir)
	return nil
}

func runProcess(ctx context.Context, opts *buildOptions, noCache, useVips bool) error {
	scanned, err := manifest.LoadScan(opts.tempDir)
	if err != nil {
		return fmt.Errorf("load scan manifest (run 'darkroom scan' first): %w", err)
	}

	if useVips {
		imaging.InitVips()
		defer imaging.ShutdownVips()
	}

	processed, err := process.Run(ctx, imaging.NewJPEGEngine(), scanned, process.Options{
		SourceRoot: opts.source,
		OutputDir:  opts.processedDir(),
		NoCache:    noCache,
		Observer:   newProgressObserver(os.Stdout),
	})
	if err != nil {
		return err
	}

	if err := manifest.WriteProcessed(opts.processedDir(), processed); err != nil {
		return err
	}
	if err := writeMetricsSnapshot(opts); err != nil {
		logging.Warn("metrics snapshot: %v", err)
	}
	fmt.Printf("Processed %d albums (%s)\n", len(processed.Albums), processed.Stats.Summary)
	return nil
}

// writeMetricsSnapshot dumps the job and cache counters accumulated
// during this run. The process command exits right after, so the
// snapshot is the only place its metrics can be read from.
func writeMetricsSnapshot(opts *buildOptions) error {
	f, err := os.Create(filepath.Join(opts.tempDir, metrics.SnapshotFilename))
	if err != nil {
		return err
	}
	if err := metrics.WriteSnapshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runGenerate(opts *buildOptions) error {
	processed, err := manifest.LoadProcessed(opts.processedDir())
	if err != nil {
		return fmt.Errorf("load processed manifest (run 'darkroom process' first): %w", err)
	}
	return generate.Run(processed, opts.processedDir(), opts.output)
}

// acquireBuildLock guards the temp directory against concurrent builds.
func acquireBuildLock(opts *buildOptions) (func(), error) {
	if err := os.MkdirAll(opts.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	lock := flock.New(filepath.Join(opts.tempDir, ".darkroom.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another darkroom build is already running in this directory")
	}
	return func() { _ = lock.Unlock() }, nil
}
