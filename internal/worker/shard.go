package worker

import (
	"context"

	"github.com/ppiankov/newsclean/internal/pipeline"
)

// Normalizer defines the interface for normalizing a shard
type Normalizer interface {
	NormalizeShard(ctx context.Context, path string) (*pipeline.ShardResult, error)
}

// ShardJob represents one shard normalization job
type ShardJob struct {
	Index      int
	Path       string
	Normalizer Normalizer
}

// Execute executes the shard job
func (j *ShardJob) Execute(ctx context.Context) Result {
	result, err := j.Normalizer.NormalizeShard(ctx, j.Path)
	return &ShardOutcome{
		Index:  j.Index,
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// ShardOutcome is the result of a shard job
type ShardOutcome struct {
	Index  int
	Path   string
	Result *pipeline.ShardResult
	Error  error
}

// GetError returns the error from the shard outcome
func (o *ShardOutcome) GetError() error {
	return o.Error
}

// ShardProcessor normalizes shards concurrently
type ShardProcessor struct {
	normalizer  Normalizer
	concurrency int
}

// NewShardProcessor creates a new shard processor
func NewShardProcessor(normalizer Normalizer, concurrency int) *ShardProcessor {
	return &ShardProcessor{
		normalizer:  normalizer,
		concurrency: concurrency,
	}
}

// Process normalizes paths concurrently and returns outcomes in input order.
// Index of each outcome is offset plus the position in paths. Shards not
// started before ctx is cancelled get an outcome carrying ctx.Err().
func (s *ShardProcessor) Process(ctx context.Context, paths []string, offset int) []*ShardOutcome {
	if len(paths) == 0 {
		return []*ShardOutcome{}
	}

	// Sequential: run inline
	if s.concurrency <= 1 || len(paths) == 1 {
		outcomes := make([]*ShardOutcome, len(paths))
		for i, path := range paths {
			job := &ShardJob{Index: offset + i, Path: path, Normalizer: s.normalizer}
			outcomes[i] = job.Execute(ctx).(*ShardOutcome)
		}
		return outcomes
	}

	pool := NewPool(ctx, s.concurrency)
	pool.Start()

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &ShardJob{Index: offset + i, Path: path, Normalizer: s.normalizer}
	}
	results := pool.Run(jobs)

	byIndex := make(map[int]*ShardOutcome, len(results))
	for _, r := range results {
		o := r.(*ShardOutcome)
		byIndex[o.Index] = o
	}

	outcomes := make([]*ShardOutcome, 0, len(paths))
	for i, path := range paths {
		o, ok := byIndex[offset+i]
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			o = &ShardOutcome{Index: offset + i, Path: path, Error: err}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}
