package run

import (
	"regexp"
	"strings"
)

// MaxSlugLength is the maximum length of a generated slug.
const MaxSlugLength = 50

// nonAlphanumRegexp matches any non-alphanumeric character.
var nonAlphanumRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// multiHyphenRegexp matches consecutive hyphens.
var multiHyphenRegexp = regexp.MustCompile(`-+`)

// Slug converts a plan name into a filesystem-safe directory name.
// It lowercases the input, replaces whitespace and special characters
// with hyphens, collapses consecutive hyphens, trims leading/trailing
// hyphens, and truncates to MaxSlugLength characters. A name with no
// usable characters maps to "default".
//
// Examples:
//   - "Smoke Tests v1" -> "smoke-tests-v1"
//   - "/plans/nightly" -> "plans-nightly"
func Slug(name string) string {
	slug := strings.ToLower(name)

	slug = nonAlphanumRegexp.ReplaceAllString(slug, "-")
	slug = multiHyphenRegexp.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
		slug = strings.TrimSuffix(slug, "-")
	}

	if slug == "" {
		return "default"
	}
	return slug
}
