package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/newsclean/internal/model"
)

// Sample accumulates the first rows of a run for the preview CSV
type Sample struct {
	max  int
	rows [][]string
}

// NewSample creates a sample capped at max rows
func NewSample(max int) *Sample {
	if max < 0 {
		max = 0
	}
	return &Sample{max: max}
}

// Add takes rows from b in order until the cap is reached and returns how many were taken
func (s *Sample) Add(b *model.Batch) int {
	take := min(s.max-len(s.rows), b.Len())
	if take <= 0 {
		return 0
	}
	columns := model.CanonicalColumns()
	for i := 0; i < take; i++ {
		row := make([]string, len(columns))
		for j, name := range columns {
			row[j] = b.Value(i, name).Text()
		}
		s.rows = append(s.rows, row)
	}
	return take
}

// Len returns the number of sampled rows
func (s *Sample) Len() int { return len(s.rows) }

// Full reports whether the cap is reached
func (s *Sample) Full() bool { return len(s.rows) >= s.max }

// WriteCSV writes the sample with a canonical header; nulls are empty cells
func (s *Sample) WriteCSV(path string) error {
	return writeCSV(path, s.rows)
}

func writeCSV(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create sample dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(model.CanonicalColumns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return f.Close()
}
