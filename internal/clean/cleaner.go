// Package clean implements the field cleaning rules and per-shard deduplication
// applied to canonical batches. No rule ever fails: invalid values become null.
package clean

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/newsclean/internal/cache"
	"github.com/ppiankov/newsclean/internal/model"
)

// Stage is one named cleaning step over a canonical batch
type Stage struct {
	Name  string
	Apply func(b *model.Batch, r *Report)
}

// Report counts what the stages changed in one batch
type Report struct {
	Nulled  map[string]int // field -> values invalidated
	Swapped int            // records whose timestamps were reordered
}

func newReport() *Report {
	return &Report{Nulled: make(map[string]int)}
}

func (r *Report) null(field string) {
	if r != nil {
		r.Nulled[field]++
	}
}

// TotalNulled sums invalidated values across fields
func (r *Report) TotalNulled() int {
	n := 0
	for _, c := range r.Nulled {
		n += c
	}
	return n
}

// String renders non-zero counters as "field=n" pairs sorted by field
func (r *Report) String() string {
	keys := make([]string, 0, len(r.Nulled))
	for k, v := range r.Nulled {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.Itoa(r.Nulled[k]))
	}
	if r.Swapped > 0 {
		parts = append(parts, "swapped="+strconv.Itoa(r.Swapped))
	}
	return strings.Join(parts, " ")
}

// Cleaner runs the fixed stage chain
type Cleaner struct {
	stages []Stage
	memo   bool
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithMemo memoizes timestamp parsing within each Apply call. The memo is
// dropped when the batch is done, so memory stays bounded by one shard.
func WithMemo() Option {
	return func(cl *Cleaner) {
		cl.memo = true
	}
}

// New creates a cleaner with the standard stage order:
// trim, entities, language, category, url, timestamps, chronology, ranges.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{}
	for _, opt := range opts {
		opt(c)
	}
	c.stages = []Stage{
		{Name: "trim", Apply: trimStrings},
		{Name: "entities", Apply: serializeEntities},
		{Name: "language", Apply: normalizeLanguage},
		{Name: "category", Apply: normalizeCategory},
		{Name: "url", Apply: validateURLs},
		{Name: "timestamps", Apply: c.parseTimestamps},
		{Name: "chronology", Apply: repairChronology},
		{Name: "ranges", Apply: clampRanges},
	}
	return c
}

func (c *Cleaner) parseTimestamps(b *model.Batch, r *Report) {
	var memo cache.Cache
	if c.memo {
		scratch := cache.NewScratch()
		defer scratch.Clear()
		memo = scratch
	}
	NewTimestampParser(memo, 0).apply(b, r)
}

// Stages returns the stage names in execution order
func (c *Cleaner) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name
	}
	return names
}

// Apply runs every stage in order, mutating b in place
func (c *Cleaner) Apply(b *model.Batch) *Report {
	r := newReport()
	for _, s := range c.stages {
		s.Apply(b, r)
	}
	return r
}

// forEach rewrites every cell of a column when present
func forEach(b *model.Batch, field string, fn func(v model.Value) model.Value) {
	col := b.Column(field)
	if col == nil {
		return
	}
	for i, v := range col.Values {
		col.Values[i] = fn(v)
	}
}

// nulling wraps fn so that values turned into null are counted against field
func nulling(field string, r *Report, fn func(v model.Value) model.Value) func(model.Value) model.Value {
	return func(v model.Value) model.Value {
		out := fn(v)
		if !v.IsNull() && out.IsNull() {
			r.null(field)
		}
		return out
	}
}
