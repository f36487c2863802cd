package post

import "strings"

// Slug derives a URL- and filesystem-safe identifier from a title:
// lowercase, strip everything but letters, digits, spaces and hyphens,
// collapse whitespace runs to single hyphens, collapse hyphen runs,
// trim leading and trailing hyphens.
//
// Deterministic and collision-blind; callers own uniqueness.
func Slug(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		}
	}

	parts := strings.Fields(b.String())
	slug := strings.Join(parts, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
