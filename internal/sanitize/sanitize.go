// Package sanitize turns raw suggested names into filenames that are safe
// and unique on the target filesystem. All functions are pure: the only
// state consulted is the existing-name set supplied by the caller.
package sanitize

import (
	"fmt"
	"strings"
)

// DefaultMaxBytes is the common filename length ceiling (bytes).
const DefaultMaxBytes = 255

// placeholderStem is used when sanitization empties the input.
const placeholderStem = "unnamed"

// unsafe characters replaced with underscores. Path separators, shell
// metacharacters problematic across filesystems, and the null byte.
const unsafeChars = `<>:"/\|?*`

// Name sanitizes raw into a filename that is safe and collision-free.
// ext is the original extension including the leading dot (may be empty).
// If preserveExt is true, ext is appended regardless of what raw proposed.
// existing holds names already present in the destination directory plus
// names assigned earlier in the same batch; matching is case-insensitive.
func Name(raw, ext string, preserveExt bool, existing []string) string {
	if !preserveExt {
		ext = ""
	}
	ext = normalizeExt(ext)

	stem := Stem(raw, ext)

	taken := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		taken[strings.ToLower(n)] = struct{}{}
	}

	candidate := truncateStem(stem, ext, DefaultMaxBytes) + ext
	if _, ok := taken[strings.ToLower(candidate)]; !ok {
		return candidate
	}

	// Deterministic numeric disambiguator before the extension.
	for n := 2; ; n++ {
		suffix := fmt.Sprintf("-%d", n)
		s := truncateStem(stem, ext, DefaultMaxBytes-len(suffix))
		candidate = s + suffix + ext
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}

// Stem sanitizes raw into a bare stem: unsafe and control characters
// replaced, separator runs collapsed, leading dots reduced to one,
// trailing dots and whitespace removed. Never returns an empty string.
// If raw already carries ext as a suffix it is stripped first, so a model
// that echoes the extension does not produce a doubled one.
func Stem(raw, ext string) string {
	s := strings.TrimSpace(raw)
	if ext != "" && len(s) > len(ext) && strings.EqualFold(s[len(s)-len(ext):], ext) {
		s = s[:len(s)-len(ext)]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(unsafeChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	s = b.String()

	s = collapseSeparators(s)

	// At most one leading dot; none trailing.
	leading := s
	dots := 0
	for strings.HasPrefix(leading, ".") {
		leading = leading[1:]
		dots++
	}
	if dots > 1 {
		s = "." + leading
	}
	s = strings.TrimRight(s, ". ")
	s = strings.TrimSpace(s)

	if s == "" || s == "." {
		return placeholderStem
	}
	return s
}

// collapseSeparators reduces runs of two or more hyphens/underscores to a
// single hyphen. A lone separator is kept as written.
func collapseSeparators(s string) string {
	var b strings.Builder
	var pending []rune
	for _, r := range s {
		if r == '-' || r == '_' {
			pending = append(pending, r)
			continue
		}
		if len(pending) == 1 {
			b.WriteRune(pending[0])
		} else if len(pending) > 1 {
			b.WriteRune('-')
		}
		pending = pending[:0]
		b.WriteRune(r)
	}
	if len(pending) == 1 {
		b.WriteRune(pending[0])
	} else if len(pending) > 1 {
		b.WriteRune('-')
	}
	return b.String()
}

// truncateStem cuts stem so that stem+ext fits in maxBytes, cutting at a
// rune boundary and never touching the extension.
func truncateStem(stem, ext string, maxBytes int) string {
	budget := maxBytes - len(ext)
	if budget < 1 {
		budget = 1
	}
	if len(stem) <= budget {
		return stem
	}
	cut := budget
	for cut > 0 && !isRuneStart(stem[cut]) {
		cut--
	}
	s := strings.TrimRight(stem[:cut], "-_. ")
	if s == "" {
		return placeholderStem[:min(len(placeholderStem), budget)]
	}
	return s
}

func isRuneStart(b byte) bool { return b&0xc0 != 0x80 }

func normalizeExt(ext string) string {
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
