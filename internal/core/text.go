package core

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeText collapses whitespace and lowercases, the canonical form
// used for the asked-question ledger and answer classification.
func NormalizeText(s string) string {
	return strings.ToLower(spaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
}
