package catalog

import "strings"

// ExtractSymptom scans free text for the first configured keyword hit,
// case-insensitive, substring match. Returns "" when nothing matches;
// the caller decides the re-prompt policy.
func ExtractSymptom(text string, keywords []string) string {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
