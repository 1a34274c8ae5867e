package clean

import (
	"regexp"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/ppiankov/newsclean/internal/model"
)

// trimStrings strips surrounding whitespace from every string cell
func trimStrings(b *model.Batch, _ *Report) {
	for _, name := range b.Columns() {
		forEach(b, name, func(v model.Value) model.Value {
			if v.Kind != model.KindString {
				return v
			}
			return model.String(strings.TrimSpace(v.Str))
		})
	}
}

// serializeEntities turns structured entity values into compact JSON text
func serializeEntities(b *model.Batch, _ *Report) {
	forEach(b, model.FieldEntities, SerializeStructured)
}

// SerializeStructured converts a structured value to a compact JSON string value.
// Scalars pass through unchanged.
func SerializeStructured(v model.Value) model.Value {
	if v.Kind != model.KindJSON {
		return v
	}
	return model.String(string(pretty.Ugly([]byte(v.Str))))
}

var languageSynonyms = map[string]string{
	"english": "en",
	"eng":     "en",
	"en-us":   "en",
	"en_us":   "en",
	"en-gb":   "en",
}

var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// NormalizeLanguage lowercases, resolves synonyms and validates a language code
func NormalizeLanguage(v model.Value) model.Value {
	if v.Kind != model.KindString {
		return model.Null
	}
	s := strings.ToLower(v.Str)
	if mapped, ok := languageSynonyms[s]; ok {
		s = mapped
	}
	if !languagePattern.MatchString(s) {
		return model.Null
	}
	return model.String(s)
}

func normalizeLanguage(b *model.Batch, r *Report) {
	forEach(b, model.FieldLanguage, nulling(model.FieldLanguage, r, NormalizeLanguage))
}

var categorySynonyms = map[string]string{
	"biz":        "business",
	"business":   "business",
	"tech":       "technology",
	"politic":    "politics",
	"world news": "world",
	"sci":        "science",
	"healthcare": "health",
	"fin":        "finance",
	"economics":  "economy",
}

// AllowedCategories is the closed category vocabulary
var AllowedCategories = map[string]bool{
	"politics":      true,
	"business":      true,
	"technology":    true,
	"sports":        true,
	"entertainment": true,
	"world":         true,
	"science":       true,
	"health":        true,
	"finance":       true,
	"economy":       true,
}

// NormalizeCategory lowercases, resolves synonyms and keeps only allowed categories
func NormalizeCategory(v model.Value) model.Value {
	if v.Kind != model.KindString {
		return model.Null
	}
	s := strings.ToLower(v.Str)
	if mapped, ok := categorySynonyms[s]; ok {
		s = mapped
	}
	if !AllowedCategories[s] {
		return model.Null
	}
	return model.String(s)
}

func normalizeCategory(b *model.Batch, r *Report) {
	forEach(b, model.FieldCategory, nulling(model.FieldCategory, r, NormalizeCategory))
}

var urlPattern = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)

// ValidateURL keeps only http(s) URLs with a plausible host
func ValidateURL(v model.Value) model.Value {
	if v.Kind != model.KindString || !urlPattern.MatchString(v.Str) {
		return model.Null
	}
	return v
}

func validateURLs(b *model.Batch, r *Report) {
	forEach(b, model.FieldURL, nulling(model.FieldURL, r, ValidateURL))
}
