// Package caser applies case-style conventions to tokenized names.
package caser

import (
	"strings"
	"unicode"
)

// Style identifies a filename case convention.
type Style string

const (
	Camel       Style = "camel"       // tripPhotos
	Pascal      Style = "pascal"      // TripPhotos
	PascalSnake Style = "pascalSnake" // Trip_Photos
	Snake       Style = "snake"       // trip_photos
	Kebab       Style = "kebab"       // trip-photos
	Train       Style = "train"       // Trip-Photos
	Dot         Style = "dot"         // trip.photos
	Path        Style = "path"        // trip/photos
	Constant    Style = "constant"    // TRIP_PHOTOS
	Sentence    Style = "sentence"    // Trip photos
	Capital     Style = "capital"     // Trip Photos
	None        Style = "none"        // trip photos
)

// Styles returns every supported style.
func Styles() []Style {
	return []Style{
		Camel, Pascal, PascalSnake, Snake, Kebab, Train,
		Dot, Path, Constant, Sentence, Capital, None,
	}
}

// Valid reports whether s names a supported style.
func Valid(s Style) bool {
	for _, known := range Styles() {
		if s == known {
			return true
		}
	}
	return false
}

// Split tokenizes a name into words. Separators (-_./\ and spaces),
// lower-to-upper transitions, and letter/digit boundaries all start a
// new word.
func Split(name string) []string {
	var words []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || r == '.' || r == '/' || r == '\\' || unicode.IsSpace(r):
			flush()
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
			cur.WriteRune(r)
		case i > 0 && unicode.IsDigit(r) != unicode.IsDigit(runes[i-1]) && !unicode.IsSpace(runes[i-1]):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// Transform joins words according to style. For an unknown style it falls
// back to Kebab. Transforming output of the same style again returns it
// unchanged.
func Transform(words []string, style Style) string {
	if len(words) == 0 {
		return ""
	}
	switch style {
	case Camel:
		parts := make([]string, len(words))
		parts[0] = strings.ToLower(words[0])
		for i, w := range words[1:] {
			parts[i+1] = capitalize(w)
		}
		return strings.Join(parts, "")
	case Pascal:
		return joinMapped(words, "", capitalize)
	case PascalSnake:
		return joinMapped(words, "_", capitalize)
	case Snake:
		return joinMapped(words, "_", strings.ToLower)
	case Kebab:
		return joinMapped(words, "-", strings.ToLower)
	case Train:
		return joinMapped(words, "-", capitalize)
	case Dot:
		return joinMapped(words, ".", strings.ToLower)
	case Path:
		return joinMapped(words, "/", strings.ToLower)
	case Constant:
		return joinMapped(words, "_", strings.ToUpper)
	case Sentence:
		parts := make([]string, len(words))
		parts[0] = capitalize(words[0])
		for i, w := range words[1:] {
			parts[i+1] = strings.ToLower(w)
		}
		return strings.Join(parts, " ")
	case Capital:
		return joinMapped(words, " ", capitalize)
	case None:
		return joinMapped(words, " ", strings.ToLower)
	default:
		return joinMapped(words, "-", strings.ToLower)
	}
}

// Apply splits name and transforms it in one step.
func Apply(name string, style Style) string {
	words := Split(name)
	if len(words) == 0 {
		return name
	}
	return Transform(words, style)
}

func joinMapped(words []string, sep string, f func(string) string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = f(w)
	}
	return strings.Join(parts, sep)
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
