package catalog

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ellipsis marks truncated free text so readers can tell the value was cut
const ellipsis = "…"

// TruncateText bounds free text to max runes, replacing the tail with an
// ellipsis marker. Input is NFC-normalized first so combining sequences do
// not split at the cut point. Values are never persisted untruncated.
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return ellipsis
	}
	return string(runes[:max-1]) + ellipsis
}
