package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/newsclean/internal/clean"
	"github.com/ppiankov/newsclean/internal/model"
	"github.com/ppiankov/newsclean/internal/schema"
)

// Pipeline normalizes one shard at a time: read, canonicalize names, map,
// complete, clean, deduplicate and project to canonical column order.
// It holds no per-shard state, so one Pipeline may serve concurrent shards.
type Pipeline struct {
	mapper  *schema.Mapper
	cleaner *clean.Cleaner
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var opts []clean.Option
	if cfg.Cache.Enabled {
		opts = append(opts, clean.WithMemo())
	}

	return &Pipeline{
		mapper:  schema.DefaultMapper(),
		cleaner: clean.New(opts...),
	}
}

// Stages returns the cleaning stage names in execution order
func (p *Pipeline) Stages() []string {
	return p.cleaner.Stages()
}

// ShardResult contains a normalized shard
type ShardResult struct {
	Path       string
	Batch      *model.Batch   // Canonical columns, cleaned and deduplicated
	Mapping    schema.Mapping // Raw to canonical mapping used for this shard
	Report     *clean.Report
	RowsRead   int
	Duplicates int
	Read       ReadInfo
}

// NormalizeShard reads and normalizes the shard at path
func (p *Pipeline) NormalizeShard(ctx context.Context, path string) (*ShardResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, info, err := ReadShard(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	result := p.Normalize(raw)
	result.Path = path
	result.Read = info
	return result, nil
}

// Normalize runs the cleaning engine over an already parsed raw batch
func (p *Pipeline) Normalize(raw *model.Batch) *ShardResult {
	completed, mapping := p.mapper.Normalize(raw)

	report := p.cleaner.Apply(completed)
	deduped, dropped := clean.Dedup(completed)

	return &ShardResult{
		Batch:      deduped.Project(model.CanonicalColumns()),
		Mapping:    mapping,
		Report:     report,
		RowsRead:   raw.Len(),
		Duplicates: dropped,
	}
}
