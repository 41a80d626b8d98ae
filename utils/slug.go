package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify turns a title into a URL slug: lowercase, latin letters and
// digits kept, everything else collapsed to single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// UniqueSlug appends a short random suffix, used when a generated slug
// collides with an existing post.
func UniqueSlug(slug string) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
