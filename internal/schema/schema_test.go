package schema

import (
	"reflect"
	"testing"

	"github.com/ppiankov/newsclean/internal/model"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		desc     string
	}{
		{in: "Publish Date", expected: "publish_date", desc: "space separated"},
		{in: "IngestedAt", expected: "ingested_at", desc: "camel case"},
		{in: "eventID", expected: "event_id", desc: "camel with acronym"},
		{in: "source-name", expected: "source_name", desc: "hyphen"},
		{in: "a  -  b", expected: "a_b", desc: "mixed separator run"},
		{in: "score2Value", expected: "score2_value", desc: "digit boundary"},
		{in: "URL", expected: "url", desc: "all caps"},
		{in: "already_snake", expected: "already_snake", desc: "already canonical"},
		{in: "", expected: "", desc: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Canonicalize(tt.in)
			if got != tt.expected {
				t.Errorf("Canonicalize(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
			if again := Canonicalize(got); again != got {
				t.Errorf("Canonicalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestMapper_DefaultRules(t *testing.T) {
	m := DefaultMapper()

	var cols []string
	for _, name := range []string{
		"id", "Publisher", "Title", "description", "link",
		"Publish Date", "IngestedAt", "topic", "lang", "country_code",
		"byline", "tags", "sentiment_score", "score", "extra_field",
	} {
		cols = append(cols, Canonicalize(name))
	}
	mapping := m.Map(cols)

	expected := map[string]string{
		model.FieldEventID:        "id",
		model.FieldSource:         "publisher",
		model.FieldTitle:          "title",
		model.FieldSummary:        "description",
		model.FieldURL:            "link",
		model.FieldPublishedAt:    "publish_date",
		model.FieldIngestedAt:     "ingested_at",
		model.FieldCategory:       "topic",
		model.FieldLanguage:       "lang",
		model.FieldLocation:       "country_code",
		model.FieldAuthor:         "byline",
		model.FieldEntities:       "tags",
		model.FieldSentiment:      "sentiment_score",
		model.FieldRelevanceScore: "score",
	}

	if mapping.Len() != len(expected) {
		t.Fatalf("Expected %d mapped fields, got %d (%s)", len(expected), mapping.Len(), mapping)
	}
	for field, raw := range expected {
		got, ok := mapping.Source(field)
		if !ok || got != raw {
			t.Errorf("Field %s: expected source %q, got %q (ok=%v)", field, raw, got, ok)
		}
	}

	unmapped := mapping.Unmapped()
	if !reflect.DeepEqual(unmapped, []string{"extra_field"}) {
		t.Errorf("Expected only extra_field unmapped, got %v", unmapped)
	}
}

func TestMapper_AnchoredPatterns(t *testing.T) {
	m := DefaultMapper()

	mapping := m.Map([]string{"microdescription", "titles", "urls"})
	if mapping.Len() != 0 {
		t.Errorf("Expected no matches for partial names, got %s", mapping)
	}

	mapping = m.Map([]string{"description"})
	if f, ok := mapping.Field("description"); !ok || f != model.FieldSummary {
		t.Errorf("Expected description -> summary, got %q", f)
	}
}

func TestMapper_PatternPriority(t *testing.T) {
	m := DefaultMapper()

	// event_id pattern comes before id, regardless of column order
	mapping := m.Map([]string{"id", "event_id"})
	if src, _ := mapping.Source(model.FieldEventID); src != "event_id" {
		t.Errorf("Expected event_id to win over id, got %q", src)
	}

	// Within one pattern, the first raw column wins
	mapping = m.Map([]string{"source", "source_name"})
	if src, _ := mapping.Source(model.FieldSource); src != "source" {
		t.Errorf("Expected first matching column to win, got %q", src)
	}
}

func TestMapper_ClaimedColumnsAreExclusive(t *testing.T) {
	rules := []FieldRule{
		{Field: "first", Patterns: []string{`shared`}},
		{Field: "second", Patterns: []string{`shared`, `other`}},
	}
	m, err := NewMapper(rules)
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}

	mapping := m.Map([]string{"shared", "other"})
	if src, _ := mapping.Source("first"); src != "shared" {
		t.Errorf("Expected first <- shared, got %q", src)
	}
	if src, _ := mapping.Source("second"); src != "other" {
		t.Errorf("Expected second <- other once shared is claimed, got %q", src)
	}
}

func TestMapper_Injective(t *testing.T) {
	m := DefaultMapper()
	cols := []string{"id", "event_id", "date", "published", "updated_at", "ingested", "score", "relevance", "sentiment", "sentiment_score"}

	mapping := m.Map(cols)
	seenRaw := make(map[string]bool)
	for _, field := range mapping.Fields() {
		raw, _ := mapping.Source(field)
		if seenRaw[raw] {
			t.Errorf("Raw column %q mapped twice", raw)
		}
		seenRaw[raw] = true
		if back, _ := mapping.Field(raw); back != field {
			t.Errorf("Inverse lookup mismatch: %q -> %q, expected %q", raw, back, field)
		}
	}
}

func TestMapper_Deterministic(t *testing.T) {
	m := DefaultMapper()
	cols := []string{"link", "headline", "title", "topic", "section", "Lang"}

	first := m.Map(cols).String()
	for i := 0; i < 20; i++ {
		if got := m.Map(cols).String(); got != first {
			t.Fatalf("Mapping changed between runs: %v vs %v", first, got)
		}
	}
}

func TestNewMapper_Errors(t *testing.T) {
	if _, err := NewMapper([]FieldRule{{Field: "a", Patterns: []string{`(`}}}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
	if _, err := NewMapper([]FieldRule{{Field: "a"}, {Field: "a"}}); err == nil {
		t.Error("Expected error for duplicate field")
	}
}

func TestComplete_ExactCanonicalShape(t *testing.T) {
	raw := model.NewBatch(2)
	raw.AddColumn("headline_text", []model.Value{model.String("x"), model.String("y")})
	raw.AddColumn("title", []model.Value{model.String("A"), model.String("B")})
	raw.AddColumn("link", []model.Value{model.String("http://a.com/1"), model.Null})

	mapping := DefaultMapper().Map(raw.Columns())
	out := Complete(raw, mapping)

	if !reflect.DeepEqual(out.Columns(), model.CanonicalColumns()) {
		t.Fatalf("Expected canonical columns, got %v", out.Columns())
	}
	if out.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", out.Len())
	}
	if v := out.Value(0, model.FieldTitle); v.Str != "A" {
		t.Errorf("Expected title A, got %+v", v)
	}
	if v := out.Value(0, model.FieldURL); v.Str != "http://a.com/1" {
		t.Errorf("Expected url from link, got %+v", v)
	}
	if v := out.Value(1, model.FieldSummary); !v.IsNull() {
		t.Errorf("Expected null summary, got %+v", v)
	}
	if out.Has("headline_text") {
		t.Error("Expected unrecognized column to be dropped")
	}
}

func TestComplete_EmptyBatch(t *testing.T) {
	out := Complete(model.NewBatch(0), Mapping{})
	if len(out.Columns()) != len(model.CanonicalSchema) {
		t.Errorf("Expected %d columns, got %d", len(model.CanonicalSchema), len(out.Columns()))
	}
	if out.Len() != 0 {
		t.Errorf("Expected 0 rows, got %d", out.Len())
	}
}

func TestCanonicalizeColumns_Coalesce(t *testing.T) {
	raw := model.NewBatch(2)
	raw.AddColumn("publishedAt", []model.Value{model.String("2024-01-01"), model.Null})
	raw.AddColumn("published_at", []model.Value{model.String("ignored"), model.String("2024-02-02")})

	out := CanonicalizeColumns(raw)
	if !reflect.DeepEqual(out.Columns(), []string{"published_at"}) {
		t.Fatalf("Expected one coalesced column, got %v", out.Columns())
	}
	if v := out.Value(0, "published_at"); v.Str != "2024-01-01" {
		t.Errorf("Expected first column to win, got %q", v.Str)
	}
	if v := out.Value(1, "published_at"); v.Str != "2024-02-02" {
		t.Errorf("Expected null filled from later column, got %q", v.Str)
	}
}

func TestMapper_Normalize(t *testing.T) {
	raw := model.NewBatch(1)
	raw.AddColumn("Publish Date", []model.Value{model.String("2024-01-05")})
	raw.AddColumn("IngestedAt", []model.Value{model.String("2024-01-04")})

	raw.AddColumn("junk", []model.Value{model.Bool(true)})

	out, mapping := DefaultMapper().Normalize(raw)
	if !reflect.DeepEqual(mapping.Unmapped(), []string{"junk"}) {
		t.Errorf("Expected canonicalized junk unmapped, got %v", mapping.Unmapped())
	}
	if mapping.Len() != 2 {
		t.Fatalf("Expected 2 mapped fields, got %s", mapping)
	}
	if v := out.Value(0, model.FieldPublishedAt); v.Str != "2024-01-05" {
		t.Errorf("Expected published_at from Publish Date, got %+v", v)
	}
	if v := out.Value(0, model.FieldIngestedAt); v.Str != "2024-01-04" {
		t.Errorf("Expected ingested_at from IngestedAt, got %+v", v)
	}
	missing := mapping.Missing()
	if len(missing) != len(model.CanonicalSchema)-2 {
		t.Errorf("Expected %d missing fields, got %v", len(model.CanonicalSchema)-2, missing)
	}
}
