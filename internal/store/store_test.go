package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/newsclean/internal/model"
)

func canonicalBatch(rows int) *model.Batch {
	b := model.NewBatch(rows)
	for _, name := range model.CanonicalColumns() {
		b.AddNullColumn(name)
	}
	for i := 0; i < rows; i++ {
		b.Column(model.FieldEventID).Values[i] = model.String("e" + string(rune('a'+i%26)))
		b.Column(model.FieldTitle).Values[i] = model.String("title")
		b.Column(model.FieldPublishedAt).Values[i] = model.Time(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
		b.Column(model.FieldSentiment).Values[i] = model.Number(-0.25)
	}
	return b
}

func TestStore_AppendAccumulates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "news.sqlite")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	n, err := s.Append(ctx, canonicalBatch(3))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 rows appended, got %d", n)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening re-runs migrations without touching existing rows
	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Append(ctx, canonicalBatch(2)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 rows across runs, got %d", count)
	}
}

func TestStore_AppendValues(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "news.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Append(ctx, canonicalBatch(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	var (
		title     string
		published string
		sentiment float64
		url       *string
		relevance *float64
	)
	row := s.db.QueryRowContext(ctx, "SELECT title, published_at, sentiment, url, relevance_score FROM "+Table)
	if err := row.Scan(&title, &published, &sentiment, &url, &relevance); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if title != "title" {
		t.Errorf("Expected title, got %q", title)
	}
	if published != "2024-01-05T10:00:00Z" {
		t.Errorf("Expected RFC 3339 timestamp, got %q", published)
	}
	if sentiment != -0.25 {
		t.Errorf("Expected sentiment -0.25, got %v", sentiment)
	}
	if url != nil || relevance != nil {
		t.Errorf("Expected nulls stored as NULL, got %v %v", url, relevance)
	}
}

func TestStore_NumbersInTextColumns(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "news.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	b := canonicalBatch(2)
	b.Column(model.FieldEventID).Values[0] = model.NumberLiteral(42, "42")
	b.Column(model.FieldEventID).Values[1] = model.NumberLiteral(1e18, "1000000000000000001")
	b.Column(model.FieldLocation).Values[0] = model.Number(7)
	b.Column(model.FieldRelevanceScore).Values[0] = model.NumberLiteral(0.5, "0.50")
	if _, err := s.Append(ctx, b); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT event_id, typeof(event_id), location, typeof(relevance_score) FROM "+Table+" ORDER BY rowid")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	defer func() { _ = rows.Close() }()

	type stored struct {
		id, idType string
		location   *string
		relType    string
	}
	var got []stored
	for rows.Next() {
		var r stored
		if err := rows.Scan(&r.id, &r.idType, &r.location, &r.relType); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}

	if got[0].id != "42" || got[0].idType != "text" {
		t.Errorf("Expected event_id \"42\" as text, got %q (%s)", got[0].id, got[0].idType)
	}
	if got[1].id != "1000000000000000001" {
		t.Errorf("Expected exact 19-digit event_id, got %q", got[1].id)
	}
	if got[0].location == nil || *got[0].location != "7" {
		t.Errorf("Expected location \"7\", got %v", got[0].location)
	}
	if got[0].relType != "real" {
		t.Errorf("Expected relevance_score stored as real, got %s", got[0].relType)
	}
}

func TestStore_AppendChunks(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "news.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	rows := insertChunk*2 + 7
	if n, err := s.Append(ctx, canonicalBatch(rows)); err != nil || n != rows {
		t.Fatalf("Expected %d rows appended, got %d (%v)", rows, n, err)
	}
	count, _ := s.Count(ctx)
	if count != rows {
		t.Errorf("Expected %d rows, got %d", rows, count)
	}
}

func TestStore_AppendEmptyAndInvalid(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "news.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if n, err := s.Append(ctx, model.NewBatch(0)); err != nil || n != 0 {
		t.Errorf("Expected empty append to be a no-op, got %d (%v)", n, err)
	}

	partial := model.NewBatch(1)
	partial.AddNullColumn(model.FieldTitle)
	if _, err := s.Append(ctx, partial); err == nil {
		t.Error("Expected error for non-canonical batch")
	}
}

func TestSample_CapAcrossBatches(t *testing.T) {
	s := NewSample(4)

	if took := s.Add(canonicalBatch(3)); took != 3 {
		t.Errorf("Expected 3 rows taken, got %d", took)
	}
	if s.Full() {
		t.Error("Expected sample not full after 3 rows")
	}
	if took := s.Add(canonicalBatch(3)); took != 1 {
		t.Errorf("Expected 1 row taken at cap, got %d", took)
	}
	if took := s.Add(canonicalBatch(3)); took != 0 {
		t.Errorf("Expected no rows taken when full, got %d", took)
	}
	if s.Len() != 4 || !s.Full() {
		t.Errorf("Expected full sample of 4, got %d", s.Len())
	}
}

func TestSample_WriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sample.csv")
	s := NewSample(10)
	s.Add(canonicalBatch(2))
	if err := s.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], model.CanonicalColumns()) {
		t.Errorf("Expected canonical header, got %v", records[0])
	}

	row := records[1]
	expected := map[int]string{
		0:  "ea",
		2:  "title",
		4:  "",
		5:  "2024-01-05T10:00:00Z",
		12: "-0.25",
		13: "",
	}
	for i, want := range expected {
		if row[i] != want {
			t.Errorf("Column %s: expected %q, got %q", records[0][i], want, row[i])
		}
	}
}
