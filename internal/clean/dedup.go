package clean

import (
	"strconv"

	"github.com/ppiankov/newsclean/internal/model"
)

// Dedup drops records whose (title, url) pair already appeared earlier in the
// batch; the first occurrence wins. It returns the filtered batch and the number
// of rows removed.
//
// Null compares equal to null, so two records that both lack a title and a URL
// collapse into one. This is coarse but intended for near-identical wire copies.
func Dedup(b *model.Batch) (*model.Batch, int) {
	seen := make(map[string]bool, b.Len())
	keep := make([]bool, b.Len())
	dropped := 0
	for i := 0; i < b.Len(); i++ {
		key := dedupKey(b.Value(i, model.FieldTitle), b.Value(i, model.FieldURL))
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		keep[i] = true
	}
	if dropped == 0 {
		return b, 0
	}
	return b.Filter(keep), dropped
}

// dedupKey length-prefixes the title key so pairs cannot alias across the boundary
func dedupKey(title, url model.Value) string {
	t := title.Key()
	return strconv.Itoa(len(t)) + "|" + t + url.Key()
}
