package model

// FieldType is the semantic type of a canonical field
type FieldType string

const (
	FieldText      FieldType = "text"      // Free text
	FieldTimestamp FieldType = "timestamp" // UTC instant
	FieldReal      FieldType = "real"      // Floating point number
)

// Field describes one column of the canonical schema
type Field struct {
	Name string
	Type FieldType
}

// Canonical field names
const (
	FieldEventID        = "event_id"
	FieldSource         = "source"
	FieldTitle          = "title"
	FieldSummary        = "summary"
	FieldURL            = "url"
	FieldPublishedAt    = "published_at"
	FieldIngestedAt     = "ingested_at"
	FieldCategory       = "category"
	FieldLanguage       = "language"
	FieldLocation       = "location"
	FieldAuthor         = "author"
	FieldEntities       = "entities"
	FieldSentiment      = "sentiment"
	FieldRelevanceScore = "relevance_score"
)

// CanonicalSchema is the fixed, ordered target structure every shard is normalized into
var CanonicalSchema = []Field{
	{Name: FieldEventID, Type: FieldText},
	{Name: FieldSource, Type: FieldText},
	{Name: FieldTitle, Type: FieldText},
	{Name: FieldSummary, Type: FieldText},
	{Name: FieldURL, Type: FieldText},
	{Name: FieldPublishedAt, Type: FieldTimestamp},
	{Name: FieldIngestedAt, Type: FieldTimestamp},
	{Name: FieldCategory, Type: FieldText},
	{Name: FieldLanguage, Type: FieldText},
	{Name: FieldLocation, Type: FieldText},
	{Name: FieldAuthor, Type: FieldText},
	{Name: FieldEntities, Type: FieldText},
	{Name: FieldSentiment, Type: FieldReal},
	{Name: FieldRelevanceScore, Type: FieldReal},
}

// CanonicalColumns returns the canonical field names in schema order
func CanonicalColumns() []string {
	names := make([]string, len(CanonicalSchema))
	for i, f := range CanonicalSchema {
		names[i] = f.Name
	}
	return names
}
