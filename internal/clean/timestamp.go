package clean

import (
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ppiankov/newsclean/internal/cache"
	"github.com/ppiankov/newsclean/internal/model"
)

type parsed struct {
	t  time.Time
	ok bool
}

// TimestampParser parses free-form timestamps into UTC, memoizing results
type TimestampParser struct {
	memo cache.Cache
	ttl  time.Duration
}

// NewTimestampParser creates a parser. A nil cache disables memoization.
func NewTimestampParser(c cache.Cache, ttl time.Duration) *TimestampParser {
	if c == nil {
		c = cache.Nop{}
	}
	return &TimestampParser{memo: c, ttl: ttl}
}

// ParseString parses s leniently. Values without a zone are read as UTC.
func (p *TimestampParser) ParseString(s string) (time.Time, bool) {
	key := cache.Key("ts", s)
	if hit, found := p.memo.Get(key); found {
		r := hit.(parsed)
		return r.t, r.ok
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	r := parsed{ok: err == nil}
	if r.ok {
		r.t = t.UTC()
	}
	p.memo.Set(key, r, p.ttl)
	return r.t, r.ok
}

// Parse converts a cell to a timestamp value or null.
// Numbers are read with the same digit rules as numeric strings (Unix epoch).
func (p *TimestampParser) Parse(v model.Value) model.Value {
	var s string
	switch v.Kind {
	case model.KindTime:
		return v
	case model.KindString:
		s = v.Str
	case model.KindNumber:
		s = strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return model.Null
	}
	if s == "" {
		return model.Null
	}
	t, ok := p.ParseString(s)
	if !ok {
		return model.Null
	}
	return model.Time(t)
}

func (p *TimestampParser) apply(b *model.Batch, r *Report) {
	for _, field := range []string{model.FieldPublishedAt, model.FieldIngestedAt} {
		forEach(b, field, nulling(field, r, p.Parse))
	}
}

// repairChronology swaps published/ingested when published is later
func repairChronology(b *model.Batch, r *Report) {
	pub := b.Column(model.FieldPublishedAt)
	ing := b.Column(model.FieldIngestedAt)
	if pub == nil || ing == nil {
		return
	}
	for i := range pub.Values {
		p, g := pub.Values[i], ing.Values[i]
		if p.Kind != model.KindTime || g.Kind != model.KindTime {
			continue
		}
		if p.Time.After(g.Time) {
			pub.Values[i], ing.Values[i] = g, p
			r.Swapped++
		}
	}
}
