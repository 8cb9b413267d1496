package gateway

import (
	"regexp"
	"strings"
)

var (
	fencePattern         = regexp.MustCompile("```(?:json)?\n?|\n?```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// cleanModelJSON strips the markdown code fences and trailing commas
// that language models wrap around JSON payloads. It does not validate
// the result; callers must still handle parse failures.
func cleanModelJSON(raw string) string {
	cleaned := fencePattern.ReplaceAllString(raw, "")
	cleaned = trailingCommaPattern.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}
