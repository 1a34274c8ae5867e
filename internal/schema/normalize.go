package schema

import "github.com/ppiankov/newsclean/internal/model"

// CanonicalizeColumns returns a copy of the batch with every column name
// canonicalized. Columns that collapse onto the same name are coalesced: the
// first keeps its values and its nulls are filled from later columns.
func CanonicalizeColumns(raw *model.Batch) *model.Batch {
	out := model.NewBatch(raw.Len())
	for _, name := range raw.Columns() {
		src := raw.Column(name)
		canon := Canonicalize(name)

		existing := out.Column(canon)
		if existing == nil {
			out.AddColumn(canon, src.Values)
			continue
		}
		for i, v := range existing.Values {
			if v.IsNull() {
				existing.Values[i] = src.Values[i]
			}
		}
	}
	return out
}

// Normalize runs canonicalization, mapping and completion for one raw batch
// and returns the completed batch with the mapping that produced it.
func (m *Mapper) Normalize(raw *model.Batch) (*model.Batch, Mapping) {
	canon := CanonicalizeColumns(raw)
	mapping := m.Map(canon.Columns())
	return Complete(canon, mapping), mapping
}
