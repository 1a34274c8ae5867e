package schema

import "github.com/ppiankov/newsclean/internal/model"

// Complete applies the mapping to a raw batch and returns a batch with exactly
// the canonical fields in canonical order. Mapped columns are renamed, missing
// fields become all-null columns and unrecognized raw columns are dropped.
func Complete(raw *model.Batch, m Mapping) *model.Batch {
	out := model.NewBatch(raw.Len())
	for _, f := range model.CanonicalSchema {
		src, ok := m.Source(f.Name)
		if !ok {
			out.AddNullColumn(f.Name)
			continue
		}
		col := raw.Column(src)
		if col == nil {
			out.AddNullColumn(f.Name)
			continue
		}
		out.AddColumn(f.Name, col.Values)
	}
	return out
}
