package classifier

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MatcherKind tells how a keyword is searched for
type MatcherKind int

const (
	// PhraseMatcher is a case-insensitive substring search, used for terms
	// containing whitespace.
	PhraseMatcher MatcherKind = iota
	// WordMatcher requires a word boundary on both sides of the term.
	WordMatcher
)

func (k MatcherKind) String() string {
	switch k {
	case PhraseMatcher:
		return "phrase"
	case WordMatcher:
		return "word"
	default:
		return "unknown"
	}
}

// Matcher is the compiled form of one keyword. It is immutable and safe for
// concurrent use.
type Matcher struct {
	term  string
	kind  MatcherKind
	regex *regexp.Regexp
}

// newMatcher picks the matcher kind from the term and precompiles its regex.
// The term must be non-empty.
func newMatcher(term string) *Matcher {
	term = norm.NFC.String(term)

	kind := WordMatcher
	if strings.IndexFunc(term, unicode.IsSpace) >= 0 {
		kind = PhraseMatcher
	}

	return &Matcher{
		term:  term,
		kind:  kind,
		regex: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term)),
	}
}

// Term returns the keyword the matcher was built from
func (m *Matcher) Term() string { return m.term }

// Kind returns whether m is a phrase or word matcher
func (m *Matcher) Kind() MatcherKind { return m.kind }

// Match reports whether the keyword occurs in text. text is expected to be
// NFC-normalized already; Compiled.Labels takes care of that.
func (m *Matcher) Match(text string) bool {
	if m == nil || m.regex == nil {
		panic("classifier: uninitialized matcher")
	}

	if m.kind == PhraseMatcher {
		return m.regex.MatchString(text)
	}

	// Go's \b only knows ASCII word characters, so boundaries are checked
	// by hand. After a rejected candidate the search restarts one rune
	// further so overlapping occurrences are not skipped.
	for start := 0; start < len(text); {
		loc := m.regex.FindStringIndex(text[start:])
		if loc == nil {
			return false
		}
		i, j := start+loc[0], start+loc[1]
		if isBoundary(text, i) && isBoundary(text, j) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}
	return false
}

// isBoundary reports whether the word-rune status flips at byte offset i
func isBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
