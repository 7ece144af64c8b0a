package store

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks left over after NFD decomposition, so
// "Café" slugs to "cafe" rather than losing the letter entirely.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe room id from a display name: lowercase, spaces
// become hyphens, and anything outside [a-z0-9-] is dropped. When nothing
// survives (e.g. a name of only punctuation), a generated id is returned so
// room creation never produces an empty id.
func Slugify(name string) string {
	s, _, err := transform.String(stripMarks, name)
	if err != nil {
		s = name
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if slug == "" {
		return "room-" + uuid.NewString()[:8]
	}
	return slug
}
