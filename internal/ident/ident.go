// Package ident turns arbitrary labels into storage-safe identifiers.
package ident

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLength is the longest identifier the storage layer keeps; PostgreSQL
// silently truncates longer names to 63 bytes.
const MaxLength = 63

var (
	// word characters are letters, digits and underscore in any script
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\p{Z}]`)
	whitespace = regexp.MustCompile(`[\s\v\p{Z}]+`)
)

// Sanitize replaces every character that is neither a word character nor
// whitespace with "_", then collapses whitespace runs into a single "_".
func Sanitize(s string) string {
	s = nonWord.ReplaceAllString(s, "_")
	return whitespace.ReplaceAllString(s, "_")
}

// Clean trims s before sanitizing it
func Clean(s string) string {
	return Sanitize(strings.TrimSpace(s))
}

// Join sanitizes "<prefix>_<name>". An empty prefix yields the sanitized name alone.
func Join(prefix, name string) string {
	if prefix == "" {
		return Sanitize(name)
	}
	return Sanitize(prefix + "_" + name)
}

// Truncate shortens s to at most n bytes without splitting a rune
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
