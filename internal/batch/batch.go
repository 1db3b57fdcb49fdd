// Package batch converts many files concurrently with the format package.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/toolkit/internal/format"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Job is a single file conversion
type Job struct {
	Input  string
	Output string // derived from Input when empty
	From   format.Format
	To     format.Format
}

// JobResult pairs a job with its conversion outcome
type JobResult struct {
	Job      Job
	Result   format.Result
	Duration time.Duration
	Written  bool

	// InputBytes is the size of the input file, 0 if it could not be read
	InputBytes int
}

// Config controls a batch run
type Config struct {
	// Concurrency bounds the number of files converted at once
	// Default: 4
	Concurrency int

	// OutDir writes outputs there instead of next to each input
	OutDir string

	// DryRun converts without writing output files
	DryRun bool

	Options format.Options
	Logger  *zap.Logger
}

// OutputPath swaps the extension of input for the target format's
func OutputPath(input string, to format.Format, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + to.Extension()
	dir := filepath.Dir(input)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, base)
}

// Run converts every job and returns one result per job, in job order.
// Per-file failures are recorded in the results; only context
// cancellation stops the run early.
func Run(ctx context.Context, jobs []Job, cfg Config) ([]JobResult, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.OutDir != "" && !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	jobs, collisions := resolveOutputs(jobs, cfg.OutDir)
	results := make([]JobResult, len(jobs))
	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		if owner, ok := collisions[i]; ok {
			results[i] = JobResult{
				Job:    job,
				Result: format.Result{From: job.From, To: job.To, Error: fmt.Sprintf("output %s is already written by %s", job.Output, owner)},
			}
			logger.Warn("skipping file with duplicate output",
				zap.String("input", job.Input), zap.String("output", job.Output), zap.String("owner", owner))
			continue
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			for j := i; j < len(jobs); j++ {
				results[j] = JobResult{
					Job:    jobs[j],
					Result: format.Result{From: jobs[j].From, To: jobs[j].To, Error: "not started: " + err.Error()},
				}
			}
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			results[i] = convertFile(job, cfg, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

// resolveOutputs fills in output paths and maps every job whose output
// an earlier job already claims to that earlier job's input
func resolveOutputs(jobs []Job, outDir string) ([]Job, map[int]string) {
	resolved := make([]Job, len(jobs))
	owners := make(map[string]string, len(jobs))
	collisions := make(map[int]string)
	for i, job := range jobs {
		if job.Output == "" {
			job.Output = OutputPath(job.Input, job.To, outDir)
		}
		resolved[i] = job

		key := filepath.Clean(job.Output)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if owner, taken := owners[key]; taken {
			collisions[i] = owner
			continue
		}
		owners[key] = job.Input
	}
	return resolved, collisions
}

func convertFile(job Job, cfg Config, logger *zap.Logger) JobResult {
	start := time.Now()
	if job.Output == "" {
		job.Output = OutputPath(job.Input, job.To, cfg.OutDir)
	}
	jr := JobResult{Job: job}

	content, err := os.ReadFile(job.Input)
	if err != nil {
		jr.Result = format.Result{From: job.From, To: job.To, Error: fmt.Sprintf("failed to read %s: %v", job.Input, err)}
		jr.Duration = time.Since(start)
		return jr
	}

	jr.InputBytes = len(content)
	from := job.From
	if from == "" || from == format.FormatUnknown {
		from = format.DetectFormat(job.Input, string(content))
	}
	jr.Result = format.Convert(string(content), from, job.To, cfg.Options)

	if jr.Result.Success && !cfg.DryRun {
		if err := os.WriteFile(job.Output, []byte(jr.Result.Output), 0644); err != nil {
			jr.Result.Success = false
			jr.Result.Error = fmt.Sprintf("failed to write %s: %v", job.Output, err)
		} else {
			jr.Written = true
		}
	}

	jr.Duration = time.Since(start)
	logger.Debug("converted file",
		zap.String("input", job.Input),
		zap.String("output", job.Output),
		zap.String("from", string(jr.Result.From)),
		zap.String("to", string(job.To)),
		zap.Bool("success", jr.Result.Success),
		zap.Duration("duration", jr.Duration))
	return jr
}
