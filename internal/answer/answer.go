package answer

import (
	"strings"
	"unicode"
)

// SelfReport is the normalized answer part that affirms recognition
// without typing the exact answer.
const SelfReport = "y"

// Matches compares a learner's answer against the canonical answer.
// Returns true if the answer is correct.
//
// Normalization rules (see Normalize) are applied to every part of both
// tuples independently. If every normalized part of given is "y" the answer
// counts as a self-report and is accepted regardless of expected. Otherwise
// the tuples must be equal part by part, in order and length.
func Matches(given, expected []string) bool {
	g := normalizeAll(given)
	if isSelfReport(g) {
		return true
	}

	e := normalizeAll(expected)
	if len(g) != len(e) {
		return false
	}
	for i := range g {
		if g[i] != e[i] {
			return false
		}
	}
	return true
}

// Normalize reduces an answer part to its canonical comparison form:
//   - the literal substrings "ft." and "feat." are removed (case-sensitive,
//     not word-boundary aware)
//   - characters that are neither word characters nor whitespace are dropped
//   - the sequence "& " is removed
//   - whitespace runs collapse to a single space
//   - the result is lowercased and trimmed
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "ft.", "")
	s = strings.ReplaceAll(s, "feat.", "")
	s = strings.Map(func(r rune) rune {
		if isWord(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	s = strings.ReplaceAll(s, "& ", "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(strings.ToLower(s))
}

func normalizeAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Normalize(p)
	}
	return out
}

func isSelfReport(parts []string) bool {
	for _, p := range parts {
		if p != SelfReport {
			return false
		}
	}
	return true
}

// isWord reports whether r is a word character: a letter, a number or the
// underscore. Combining marks are not word characters, so a decomposed
// accent is stripped while a precomposed letter is kept.
func isWord(r rune) bool {
	return r == '_' ||
		unicode.IsLetter(r) ||
		unicode.IsNumber(r)
}
