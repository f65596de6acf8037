// Package naming normalizes schema identifiers into type and member names.
//
// Both functions are pure and deterministic: the same raw schema key always
// yields the same name, which is what lets references written anywhere in a
// document agree on the type they point at.
package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordBoundary     = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	doubleUnderscore = regexp.MustCompile(`__([A-Z])`)
	lowerUpper       = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToTypeName splits raw on runs of '_' and '-' (and spaces), upper-cases the first
// letter of every word and concatenates the result. "user_created-event" becomes
// "UserCreatedEvent". The rest of each word is left untouched.
func ToTypeName(raw string) string {
	words := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	var sb strings.Builder
	sb.Grow(len(raw))
	for _, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(word[size:])
	}
	return sb.String()
}

// ToMemberName converts raw into lower snake case. An underscore is inserted before
// every upper-case led word, between a run of capitals and the word that follows it,
// and after a lower-case letter or digit that precedes a capital.
//
// The result contains no upper-case letters, so applying ToMemberName to its own
// output is a no-op.
func ToMemberName(raw string) string {
	name := wordBoundary.ReplaceAllString(raw, "${1}_${2}")
	name = doubleUnderscore.ReplaceAllString(name, "_${1}")
	name = lowerUpper.ReplaceAllString(name, "${1}_${2}")
	return strings.ToLower(name)
}

// ToGoIdentifier converts raw into an exported Go identifier. Characters that are not
// valid in an identifier act as word separators and a leading digit is prefixed with X.
func ToGoIdentifier(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, raw)

	name := ToTypeName(ToMemberName(cleaned))
	if name == "" {
		return ""
	}

	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		name = "X" + name
	}
	return name
}
