package schema

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ppiankov/newsclean/internal/model"
)

// FieldRule lists the name patterns accepted for one canonical field, narrowest first.
// Patterns are matched against the whole canonicalized column name.
type FieldRule struct {
	Field    string
	Patterns []string
}

// DefaultRules is the pattern table, in canonical field order
var DefaultRules = []FieldRule{
	{Field: model.FieldEventID, Patterns: []string{`event_?id`, `id`}},
	{Field: model.FieldSource, Patterns: []string{`source(_name)?`, `publisher`, `provider`}},
	{Field: model.FieldTitle, Patterns: []string{`title`}},
	{Field: model.FieldSummary, Patterns: []string{`summary`, `description`, `abstract`}},
	{Field: model.FieldURL, Patterns: []string{`url`, `link`}},
	{Field: model.FieldPublishedAt, Patterns: []string{`published(_at|_time|_ts)?`, `publish(ed)?_date`, `date`, `created_at`, `publishdate`}},
	{Field: model.FieldIngestedAt, Patterns: []string{`ingest(ed)?(_at|_time|_ts)?`, `received_at`, `indexed_at`, `updated_at`, `ingestedat`}},
	{Field: model.FieldCategory, Patterns: []string{`category`, `topic`, `section`}},
	{Field: model.FieldLanguage, Patterns: []string{`language`, `lang`, `locale`}},
	{Field: model.FieldLocation, Patterns: []string{`location`, `country(_code)?`, `geo`}},
	{Field: model.FieldAuthor, Patterns: []string{`author(s)?`, `byline`}},
	{Field: model.FieldEntities, Patterns: []string{`entities`, `tags`, `keywords`}},
	{Field: model.FieldSentiment, Patterns: []string{`sentiment`, `sentiment_score`}},
	{Field: model.FieldRelevanceScore, Patterns: []string{`relevance(_score)?`, `score`}},
}

type compiledRule struct {
	field    string
	patterns []*regexp.Regexp
}

// Mapper matches canonicalized raw column names onto canonical fields
type Mapper struct {
	rules []compiledRule
}

// NewMapper compiles the given rules. Patterns are anchored to the whole name.
func NewMapper(rules []FieldRule) (*Mapper, error) {
	m := &Mapper{rules: make([]compiledRule, 0, len(rules))}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Field] {
			return nil, fmt.Errorf("duplicate rule for field %q", r.Field)
		}
		seen[r.Field] = true

		cr := compiledRule{field: r.Field}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(`^(?:` + p + `)$`)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for %s: %w", p, r.Field, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		m.rules = append(m.rules, cr)
	}
	return m, nil
}

// DefaultMapper returns a mapper over DefaultRules
func DefaultMapper() *Mapper {
	m, err := NewMapper(DefaultRules)
	if err != nil {
		panic(err)
	}
	return m
}

// Map builds the raw to canonical mapping for one shard's column names.
// Fields are visited in rule order; for each field the first pattern with any
// match claims the first matching raw column, which is then unavailable to
// later fields. Fields without a match are absent from the mapping.
func (m *Mapper) Map(columns []string) Mapping {
	mapping := Mapping{
		byRaw:   make(map[string]string),
		byField: make(map[string]string),
		columns: append([]string(nil), columns...),
	}
	claimed := make(map[string]bool, len(columns))

	for _, rule := range m.rules {
		for _, re := range rule.patterns {
			hit := ""
			for _, col := range columns {
				if claimed[col] {
					continue
				}
				if re.MatchString(col) {
					hit = col
					break
				}
			}
			if hit != "" {
				claimed[hit] = true
				mapping.byRaw[hit] = rule.field
				mapping.byField[rule.field] = hit
				mapping.order = append(mapping.order, rule.field)
				break
			}
		}
	}
	return mapping
}

// Mapping is a one-to-one relation between raw column names and canonical fields
type Mapping struct {
	byRaw   map[string]string
	byField map[string]string
	order   []string // claimed fields in rule order
	columns []string // raw columns the mapping was built from
}

// Field returns the canonical field a raw column maps to
func (m Mapping) Field(raw string) (string, bool) {
	f, ok := m.byRaw[raw]
	return f, ok
}

// Source returns the raw column that feeds a canonical field
func (m Mapping) Source(field string) (string, bool) {
	r, ok := m.byField[field]
	return r, ok
}

// Len returns the number of mapped fields
func (m Mapping) Len() int {
	return len(m.order)
}

// Fields returns the mapped canonical fields in rule order
func (m Mapping) Fields() []string {
	return append([]string(nil), m.order...)
}

// Unmapped returns the raw columns the mapping does not use, in input order
func (m Mapping) Unmapped() []string {
	var out []string
	for _, c := range m.columns {
		if _, ok := m.byRaw[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Missing returns the canonical fields that received no raw column, in schema order
func (m Mapping) Missing() []string {
	var out []string
	for _, f := range model.CanonicalSchema {
		if _, ok := m.byField[f.Name]; !ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// String renders the mapping as "raw->field" pairs sorted by field
func (m Mapping) String() string {
	fields := m.Fields()
	sort.Strings(fields)
	s := ""
	for i, f := range fields {
		if i > 0 {
			s += " "
		}
		s += m.byField[f] + "->" + f
	}
	return s
}
