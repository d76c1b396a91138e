package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"darkroom/internal/cache"
	"darkroom/internal/imaging"
	"darkroom/internal/logging"
	"darkroom/internal/metrics"
)

// Outcome is the terminal state of a job.
type Outcome int

const (
	// OutcomeEncoded means the artifact was produced by a fresh encode.
	OutcomeEncoded Outcome = iota
	// OutcomeReused means the target path already held the artifact.
	OutcomeReused
	// OutcomeCopied means an existing artifact with the same key was
	// copied from a different path.
	OutcomeCopied
	// OutcomeFailed means the job hit a terminal error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEncoded:
		return "encoded"
	case OutcomeReused:
		return "reused"
	case OutcomeCopied:
		return "copied"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureReason classifies terminal job errors.
type FailureReason int

const (
	// ReasonNone applies to successful jobs.
	ReasonNone FailureReason = iota
	// ReasonSourceUnreadable is an I/O failure reading the source file.
	ReasonSourceUnreadable
	// ReasonDecode is malformed or unsupported image data.
	ReasonDecode
	// ReasonEncode is a transform or output write failure.
	ReasonEncode
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSourceUnreadable:
		return "source unreadable"
	case ReasonDecode:
		return "decode failed"
	case ReasonEncode:
		return "encode failed"
	default:
		return "unknown"
	}
}

// JobResult is the terminal report for one job.
type JobResult struct {
	Job     Job
	Outcome Outcome

	// Width and Height are the final pixel dimensions of the produced
	// artifact; zero when the job failed.
	Width  int
	Height int

	Reason   FailureReason
	Err      error
	Duration time.Duration
}

// Observer receives each job's result as it completes. Implementations
// must be safe for concurrent calls; progress reporting lives behind this
// interface so it stays decoupled from scheduling.
type Observer interface {
	JobCompleted(JobResult)
}

type nopObserver struct{}

func (nopObserver) JobCompleted(JobResult) {}

// Scheduler executes planned jobs across a bounded worker pool. Jobs are
// independent and may complete in any order; Run returns only after every
// dispatched job reaches a terminal state.
type Scheduler struct {
	engine   imaging.Engine
	index    *cache.Index
	outDir   string
	workers  int
	observer Observer
	stats    *cache.Stats
}

// NewScheduler builds a scheduler. workers must be at least 1; a value of
// 1 degrades to strictly sequential processing. A nil observer is valid.
func NewScheduler(engine imaging.Engine, index *cache.Index, outDir string, workers int, observer Observer) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Scheduler{
		engine:   engine,
		index:    index,
		outDir:   outDir,
		workers:  workers,
		observer: observer,
		stats:    &cache.Stats{},
	}
}

// Stats returns the cache hit/miss counters accumulated so far.
func (s *Scheduler) Stats() *cache.Stats {
	return s.stats
}

// Run dispatches all jobs and blocks until each one is terminal. The
// returned slice has one result per job, keyed by unique output path.
func (s *Scheduler) Run(ctx context.Context, jobs []Job) []JobResult {
	logging.Info("Processing %d jobs with %d workers", len(jobs), s.workers)
	metrics.EncodeWorkers.Set(float64(s.workers))
	start := time.Now()

	jobCh := make(chan Job)
	resultCh := make(chan JobResult)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logging.Debug("worker %d started", id)
			for job := range jobCh {
				resultCh <- s.runJob(ctx, job)
			}
			logging.Debug("worker %d finished", id)
		}(w)
	}

	// Collector: the fan-in side of the barrier
	results := make([]JobResult, 0, len(jobs))
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for result := range resultCh {
			results = append(results, result)
			s.observer.JobCompleted(result)
		}
	}()

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()
	close(resultCh)
	collectorWg.Wait()

	logging.Info("All jobs terminal in %v (%s)", time.Since(start).Round(time.Millisecond), s.stats)
	return results
}

// runJob resolves one job: cache hit, cross-path copy, or fresh encode.
// Errors are terminal and isolated; there are no retries.
func (s *Scheduler) runJob(ctx context.Context, job Job) JobResult {
	start := time.Now()
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	result := s.resolve(ctx, job)
	result.Duration = time.Since(start)

	label := outcomeLabel(result.Outcome)
	metrics.JobsTotal.WithLabelValues(label).Inc()
	metrics.JobDuration.WithLabelValues(label).Observe(result.Duration.Seconds())

	switch result.Outcome {
	case OutcomeEncoded:
		s.stats.Miss()
	case OutcomeReused, OutcomeCopied:
		s.stats.Hit()
	}
	return result
}

func (s *Scheduler) resolve(ctx context.Context, job Job) JobResult {
	sourceHash, err := job.Source.ContentHash()
	if err != nil {
		return failed(job, ReasonSourceUnreadable, fmt.Errorf("read %s: %w", job.Source.Path, err))
	}

	key := cache.DeriveKey(sourceHash, job.Spec)

	if artifact, ok := s.index.Lookup(ctx, key, job.OutputPath); ok {
		logging.Debug("cache hit: %s", job.OutputPath)
		return JobResult{Job: job, Outcome: OutcomeReused, Width: artifact.Width, Height: artifact.Height}
	}

	// The same content under a different path (album renamed, image
	// renumbered): copy instead of re-encoding.
	if artifact, ok := s.index.FindAnyExisting(ctx, key); ok {
		if err := s.copyArtifact(artifact.Path, job.OutputPath); err == nil {
			s.index.Record(ctx, key, cache.Artifact{Path: job.OutputPath, Width: artifact.Width, Height: artifact.Height})
			logging.Debug("cache copy: %s -> %s", artifact.Path, job.OutputPath)
			return JobResult{Job: job, Outcome: OutcomeCopied, Width: artifact.Width, Height: artifact.Height}
		}
		logging.Warn("cache copy %s -> %s failed, encoding instead", artifact.Path, job.OutputPath)
	}

	if err := s.encode(job); err != nil {
		reason := ReasonEncode
		var decodeErr *imaging.DecodeError
		if errors.As(err, &decodeErr) {
			reason = ReasonDecode
		}
		return failed(job, reason, err)
	}

	s.index.Record(ctx, key, cache.Artifact{Path: job.OutputPath, Width: job.Width, Height: job.Height})
	return JobResult{Job: job, Outcome: OutcomeEncoded, Width: job.Width, Height: job.Height}
}

func (s *Scheduler) encode(job Job) error {
	output := filepath.Join(s.outDir, filepath.FromSlash(job.OutputPath))

	switch job.Spec.Kind {
	case imaging.KindThumbnail:
		return s.engine.Thumbnail(imaging.ThumbnailParams{
			Source:     job.Source.Path,
			Output:     output,
			CropWidth:  job.Width,
			CropHeight: job.Height,
			Quality:    job.Spec.Quality,
			Sharpen:    job.Spec.Sharpen,
			Sharpened:  job.Spec.Sharpened,
		})
	default:
		return s.engine.Resize(imaging.ResizeParams{
			Source:  job.Source.Path,
			Output:  output,
			Width:   job.Width,
			Height:  job.Height,
			Quality: job.Spec.Quality,
		})
	}
}

func (s *Scheduler) copyArtifact(fromRel, toRel string) error {
	from := filepath.Join(s.outDir, filepath.FromSlash(fromRel))
	to := filepath.Join(s.outDir, filepath.FromSlash(toRel))

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}

	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func failed(job Job, reason FailureReason, err error) JobResult {
	logging.Error("job %s failed (%s): %v", job.OutputPath, reason, err)
	return JobResult{Job: job, Outcome: OutcomeFailed, Reason: reason, Err: err}
}

func outcomeLabel(o Outcome) string {
	switch o {
	case OutcomeEncoded:
		return metrics.OutcomeEncoded
	case OutcomeReused:
		return metrics.OutcomeReused
	case OutcomeCopied:
		return metrics.OutcomeCopied
	default:
		return metrics.OutcomeFailed
	}
}
