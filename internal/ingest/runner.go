// Package ingest drives a run: discover shards, normalize them, append to the
// store in path order and collect the preview sample.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/newsclean/internal/logger"
	"github.com/ppiankov/newsclean/internal/model"
	"github.com/ppiankov/newsclean/internal/pipeline"
	"github.com/ppiankov/newsclean/internal/store"
	"github.com/ppiankov/newsclean/internal/worker"
)

// ErrNoInputDir is returned when no input directory is configured
var ErrNoInputDir = errors.New("input directory not set")

// Appender persists a cleaned canonical batch and returns the rows written
type Appender interface {
	Append(ctx context.Context, b *model.Batch) (int, error)
}

// ShardError is a failure confined to one shard
type ShardError struct {
	Path string
	Err  error
}

func (e *ShardError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ShardError) Unwrap() error {
	return e.Err
}

// RunError lists every shard that failed during a run
type RunError struct {
	Failed []*ShardError
}

func (e *RunError) Error() string {
	paths := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		paths[i] = f.Path
	}
	return fmt.Sprintf("%d shard(s) failed: %s", len(e.Failed), strings.Join(paths, ", "))
}

func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

// RunStats summarizes a run
type RunStats struct {
	Shards      int // discovered
	Succeeded   int
	Failed      int
	RowsRead    int
	RowsWritten int
	Duplicates  int
	Fallbacks   int // shards that needed the line-by-line parse
	Nulled      int // values invalidated by cleaning
	Swapped     int // records with reordered timestamps
	SampleRows  int
	SamplePath  string         // set when a sample file was written
	Unmapped    map[string]int // raw column -> shards where it had no canonical field
	Duration    time.Duration
}

// Runner processes all shards of an input directory
type Runner struct {
	cfg       *model.Config
	processor *worker.ShardProcessor
	store     Appender
	log       logger.Logger
}

// NewRunner creates a runner; a nil log discards output
func NewRunner(cfg *model.Config, normalizer worker.Normalizer, app Appender, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop{}
	}
	return &Runner{
		cfg:       cfg,
		processor: worker.NewShardProcessor(normalizer, cfg.Concurrency.Workers),
		store:     app,
		log:       log,
	}
}

// Run normalizes and appends every shard. A failing shard is logged and
// skipped unless FailFast is set; the returned *RunError names all failed
// shards. Rows appended before a failure stay in the store.
func (r *Runner) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{Unmapped: make(map[string]int)}
	defer func() { stats.Duration = time.Since(start) }()

	if r.cfg.Input.Dir == "" {
		return stats, ErrNoInputDir
	}

	paths, err := pipeline.DiscoverShards(r.cfg.Input.Dir, r.cfg.Input.Extensions)
	if err != nil {
		return stats, fmt.Errorf("discover shards: %w", err)
	}
	stats.Shards = len(paths)
	r.log.Info("discovered shards", "dir", r.cfg.Input.Dir, "count", len(paths))

	var sample *store.Sample
	if r.cfg.Sample.Path != "" {
		sample = store.NewSample(r.cfg.Sample.MaxRows)
	}

	window := max(r.cfg.Concurrency.Workers, 1)
	var failed []*ShardError
	var interrupted error

loop:
	for lo := 0; lo < len(paths); lo += window {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}
		hi := min(lo+window, len(paths))

		for _, o := range r.processor.Process(ctx, paths[lo:hi], lo) {
			if err := ctx.Err(); err != nil {
				interrupted = err
				break loop
			}
			if serr := r.handle(ctx, o, stats, sample); serr != nil {
				failed = append(failed, serr)
				stats.Failed++
				r.log.Error("shard failed", "path", serr.Path, "err", serr.Err)
				if r.cfg.FailFast {
					break loop
				}
				continue
			}
			stats.Succeeded++
		}
	}

	// Rows of committed shards are in the store, so the preview covers them even
	// when the run stops early
	if sample != nil && sample.Len() > 0 {
		if err := sample.WriteCSV(r.cfg.Sample.Path); err != nil {
			return stats, fmt.Errorf("write sample: %w", err)
		}
		stats.SampleRows = sample.Len()
		stats.SamplePath = r.cfg.Sample.Path
		r.log.Info("sample written", "path", r.cfg.Sample.Path, "rows", sample.Len())
	}

	if interrupted != nil {
		return stats, fmt.Errorf("run interrupted: %w", interrupted)
	}
	if len(failed) > 0 {
		return stats, &RunError{Failed: failed}
	}
	return stats, nil
}

// handle appends one normalized shard and folds it into stats
func (r *Runner) handle(ctx context.Context, o *worker.ShardOutcome, stats *RunStats, sample *store.Sample) *ShardError {
	if o.Error != nil {
		return &ShardError{Path: o.Path, Err: o.Error}
	}
	res := o.Result

	written, err := r.store.Append(ctx, res.Batch)
	if err != nil {
		return &ShardError{Path: o.Path, Err: fmt.Errorf("append: %w", err)}
	}

	stats.RowsRead += res.RowsRead
	stats.RowsWritten += written
	stats.Duplicates += res.Duplicates
	stats.Nulled += res.Report.TotalNulled()
	stats.Swapped += res.Report.Swapped
	if res.Read.Fallback {
		stats.Fallbacks++
		r.log.Warn("strict parse failed, used line parser", "path", o.Path, "err", res.Read.StrictError)
	}

	unmapped := res.Mapping.Unmapped()
	for _, col := range unmapped {
		stats.Unmapped[col]++
	}
	r.log.Debug("column mapping", "path", o.Path, "mapping", res.Mapping.String())
	if len(unmapped) > 0 || len(res.Mapping.Missing()) > 0 {
		r.log.Debug("schema gaps", "path", o.Path, "unmapped", unmapped, "missing", res.Mapping.Missing())
	}

	if sample != nil && !sample.Full() {
		sample.Add(res.Batch)
	}

	r.log.Info("shard ingested",
		"path", o.Path,
		"read", res.RowsRead,
		"written", written,
		"duplicates", res.Duplicates,
		"nulled", res.Report.String(),
	)
	return nil
}
