package process

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"

	"darkroom/internal/cache"
	"darkroom/internal/imaging"
	"darkroom/internal/logging"
	"darkroom/internal/manifest"
	"darkroom/internal/metrics"
	"darkroom/internal/naming"
	"darkroom/internal/workers"
)

// Options configures a process run.
type Options struct {
	// SourceRoot is the content directory the scan manifest's source
	// paths are relative to.
	SourceRoot string

	// OutputDir receives the encoded artifacts and the cache index.
	OutputDir string

	// NoCache forces every job to re-encode. Fresh results are still
	// recorded so the next run benefits.
	NoCache bool

	// Observer receives per-job completion events; may be nil.
	Observer Observer
}

// Run executes the process stage: plan every album from the scan
// manifest, resolve all jobs across the worker pool, and assemble the
// processed manifest.
//
// One failing image never aborts the run. An image with any failed job is
// dropped from the processed manifest; the failure is counted and the
// remaining images keep their artifacts.
func Run(ctx context.Context, engine imaging.Engine, scan *manifest.Scan, opts Options) (*manifest.Processed, error) {
	cfg := ConfigFromSite(scan.Config)

	index := cache.Open(ctx, opts.OutputDir, opts.NoCache)
	defer index.Close()

	var plans []ImagePlan
	var planFailures []PlanFailure
	for i := range scan.Albums {
		albumPlans, failures := PlanAlbum(engine, opts.SourceRoot, &scan.Albums[i], cfg)
		plans = append(plans, albumPlans...)
		planFailures = append(planFailures, failures...)
	}

	var jobs []Job
	for i := range plans {
		jobs = append(jobs, plans[i].Jobs()...)
	}

	poolSize := workers.Effective(cfg.MaxProcesses)
	scheduler := NewScheduler(engine, index, opts.OutputDir, poolSize, opts.Observer)
	results := scheduler.Run(ctx, jobs)

	byOutput := make(map[string]JobResult, len(results))
	for _, r := range results {
		byOutput[r.Job.OutputPath] = r
	}

	stats := tally(results, len(planFailures), scheduler.Stats())

	processed := &manifest.Processed{
		BuildID:    scan.BuildID,
		Navigation: scan.Navigation,
		Pages:      scan.Pages,
		Config:     scan.Config,
		Stats:      stats,
	}

	for i := range scan.Albums {
		album := assembleAlbum(&scan.Albums[i], plans, byOutput)
		processed.Albums = append(processed.Albums, album)
	}

	metrics.CacheEntries.Set(float64(index.Len(ctx)))
	logging.Info("Processed %d albums: %s", len(processed.Albums), stats.Summary)
	return processed, nil
}

// assembleAlbum collects the fully successful images of one album into a
// processed album and picks its thumbnail.
func assembleAlbum(album *manifest.Album, plans []ImagePlan, byOutput map[string]JobResult) manifest.ProcessedAlbum {
	out := manifest.ProcessedAlbum{
		Path:         album.Path,
		Title:        album.Title,
		Description:  album.Description,
		PreviewImage: album.PreviewImage,
		InNav:        album.InNav,
	}

	for i := range plans {
		plan := &plans[i]
		if plan.Album.Path != album.Path {
			continue
		}

		img, ok := assembleImage(plan, byOutput)
		if !ok {
			logging.Warn("dropping %s from album %s: processing failed", plan.Image.SourcePath, album.Path)
			continue
		}
		out.Images = append(out.Images, img)
	}

	sort.Slice(out.Images, func(a, b int) bool {
		return out.Images[a].Number < out.Images[b].Number
	})

	out.Thumbnail = albumThumbnail(album, out.Images)
	return out
}

// assembleImage turns one plan's results into a manifest entry. The image
// is unprocessable only when none of its responsive jobs succeeded; a lost
// variant or thumbnail degrades the entry instead of dropping it.
func assembleImage(plan *ImagePlan, byOutput map[string]JobResult) (manifest.ProcessedImage, bool) {
	img := manifest.ProcessedImage{
		Number:      plan.Image.Number,
		SourcePath:  plan.Image.SourcePath,
		Title:       plan.Image.Title,
		Description: plan.Image.Description,
		Width:       plan.Dims.Width,
		Height:      plan.Dims.Height,
		Variants:    make(map[string]manifest.Variant, len(plan.Responsive)),
	}

	for _, job := range plan.Responsive {
		r, ok := byOutput[job.OutputPath]
		if !ok || r.Outcome == OutcomeFailed {
			continue
		}
		img.Variants[strconv.Itoa(job.Spec.Target)] = manifest.Variant{
			Path:   job.OutputPath,
			Width:  r.Width,
			Height: r.Height,
		}
	}
	if len(img.Variants) == 0 {
		return manifest.ProcessedImage{}, false
	}

	if r, ok := byOutput[plan.Thumbnail.OutputPath]; ok && r.Outcome != OutcomeFailed {
		img.Thumbnail = plan.Thumbnail.OutputPath
	}

	return img, true
}

// albumThumbnail resolves which produced thumbnail represents the album:
// the configured preview image if it survived, else image number 1, else
// the first surviving image.
func albumThumbnail(album *manifest.Album, images []manifest.ProcessedImage) string {
	if len(images) == 0 {
		return ""
	}
	if album.PreviewImage != "" {
		want := naming.Stem(path.Base(album.PreviewImage))
		for _, img := range images {
			if img.Thumbnail != "" && naming.Stem(path.Base(img.SourcePath)) == want {
				return img.Thumbnail
			}
		}
	}
	for _, img := range images {
		if img.Thumbnail != "" && img.Number == 1 {
			return img.Thumbnail
		}
	}
	for _, img := range images {
		if img.Thumbnail != "" {
			return img.Thumbnail
		}
	}
	return ""
}

// tally folds job results and planning failures into build statistics.
func tally(results []JobResult, planFailures int, stats *cache.Stats) manifest.BuildStats {
	out := manifest.BuildStats{Failed: planFailures}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeEncoded:
			out.Encoded++
		case OutcomeReused:
			out.Reused++
		case OutcomeCopied:
			out.Copied++
		case OutcomeFailed:
			out.Failed++
		}
	}
	out.Summary = stats.String()
	if out.Failed > 0 {
		out.Summary = fmt.Sprintf("%s, %d failed", out.Summary, out.Failed)
	}
	return out
}
