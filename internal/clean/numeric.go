package clean

import (
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/newsclean/internal/model"
)

// Range is a closed numeric interval
type Range struct {
	Min, Max float64
}

// Contains reports whether f lies in the closed interval
func (r Range) Contains(f float64) bool {
	return f >= r.Min && f <= r.Max
}

var (
	SentimentRange = Range{Min: -1, Max: 1}
	RelevanceRange = Range{Min: 0, Max: 1}
)

// ParseReal reads a numeric cell. Strings must parse entirely as a number.
func ParseReal(v model.Value) (float64, bool) {
	var f float64
	switch v.Kind {
	case model.KindNumber:
		f = v.Num
	case model.KindString:
		if isHexLiteral(v.Str) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isHexLiteral reports a 0x-prefixed number, which ParseFloat would accept
func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Clamp returns a numeric value inside rng, or null
func Clamp(v model.Value, rng Range) model.Value {
	f, ok := ParseReal(v)
	if !ok || !rng.Contains(f) {
		return model.Null
	}
	return model.Number(f)
}

func clampRanges(b *model.Batch, r *Report) {
	for field, rng := range map[string]Range{
		model.FieldSentiment:      SentimentRange,
		model.FieldRelevanceScore: RelevanceRange,
	} {
		forEach(b, field, nulling(field, r, func(v model.Value) model.Value {
			return Clamp(v, rng)
		}))
	}
}
