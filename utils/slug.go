package utils

import "strings"

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single hyphen, producing a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // trims leading hyphens
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ValidSlug reports whether s contains only lowercase alphanumerics and
// hyphens, with no leading/trailing/doubled hyphens.
func ValidSlug(s string) bool {
	return s != "" && s == Slugify(s)
}
