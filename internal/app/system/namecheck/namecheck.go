// Package namecheck validates and normalizes association display names.
//
// Display names end up in two places with different constraints: the UI
// (where stored markup would be an XSS vector) and the folder-provisioning
// backend (which chokes on shell-ish characters in mount points). Names are
// therefore stripped of any markup first, then restricted to letters,
// digits, spaces, underscores, hyphens and apostrophes.
package namecheck

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalidName is returned when a display name contains characters outside
// the allowed set.
var ErrInvalidName = errors.New("name may only contain letters, digits, spaces, underscores, hyphens and apostrophes")

// ErrEmptyName is returned for blank or whitespace-only names.
var ErrEmptyName = errors.New("name must not be empty")

var strict = bluemonday.StrictPolicy()

// Clean strips any markup from a raw display name and trims whitespace.
// It does not validate the character set; call Validate on the result.
func Clean(raw string) string {
	return strings.TrimSpace(strict.Sanitize(raw))
}

// Validate checks a cleaned display name against the allowed character set.
func Validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '_', '-', '\'':
			continue
		}
		return ErrInvalidName
	}
	return nil
}

var slugDashes = regexp.MustCompile(`-+`)

// Slugify derives the immutable association code from a display name:
// case-folded (diacritics stripped), with every run of non-alphanumeric
// characters collapsed to a single hyphen. "Club Photo" -> "club-photo".
func Slugify(name string) string {
	folded := text.Fold(name)
	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	slug := slugDashes.ReplaceAllString(b.String(), "-")
	return strings.Trim(slug, "-")
}
