package schema

import (
	"regexp"
	"strings"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	separatorRun  = regexp.MustCompile(`[\s\p{Z}-]+`)
)

// Canonicalize converts an arbitrary column name into a lowercase token with
// underscore separators: "PublishDate" and "Publish Date" both become "publish_date".
// Canonicalizing an already canonical name returns it unchanged.
func Canonicalize(name string) string {
	name = camelBoundary.ReplaceAllString(name, "${1}_${2}")
	name = separatorRun.ReplaceAllString(name, "_")
	return strings.ToLower(name)
}
