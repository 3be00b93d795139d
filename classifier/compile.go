package classifier

import (
	"unicode/utf8"
)

// Compiled holds the matchers of every label, in dictionary order. It is
// never modified after Compile returns, so one value can be shared by any
// number of goroutines. Editing a dictionary means compiling a new one.
type Compiled struct {
	labels   []string
	matchers [][]*Matcher
}

// CompiledStats describes the matchers of one label
type CompiledStats struct {
	Label    string `json:"label"`
	Keywords int    `json:"keywords"`
	Phrases  int    `json:"phrases"`
	Words    int    `json:"words"`
}

// Compile turns a dictionary into matchers. Duplicate terms are collapsed
// and empty terms dropped, so a label whose vocabulary is empty (or only
// holds "") is kept but never hits.
func Compile(d Dictionary) (*Compiled, error) {
	c := &Compiled{
		labels:   make([]string, 0, len(d)),
		matchers: make([][]*Matcher, 0, len(d)),
	}

	seen := make(map[string]struct{}, len(d))
	for _, entry := range d {
		if entry.Label == "" {
			return nil, &CompileError{Label: entry.Label, Err: ErrEmptyLabel}
		}
		if _, ok := seen[entry.Label]; ok {
			return nil, &CompileError{Label: entry.Label, Err: ErrDuplicateLabel}
		}
		seen[entry.Label] = struct{}{}

		terms := dedupe(entry.Vocabulary)
		matchers := make([]*Matcher, 0, len(terms))
		for _, term := range terms {
			if !utf8.ValidString(term) {
				return nil, &CompileError{Label: entry.Label, Err: ErrInvalidKeyword}
			}
			if term == "" {
				continue
			}
			matchers = append(matchers, newMatcher(term))
		}

		c.labels = append(c.labels, entry.Label)
		c.matchers = append(c.matchers, matchers)
	}

	return c, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// dictionaries known to be valid, such as Default().
func MustCompile(d Dictionary) *Compiled {
	c, err := Compile(d)
	if err != nil {
		panic(err)
	}
	return c
}

// LabelNames returns the labels in compile order
func (c *Compiled) LabelNames() []string {
	return append([]string(nil), c.labels...)
}

// Matchers returns a copy of the matcher list of label.
func (c *Compiled) Matchers(label string) []*Matcher {
	for i, l := range c.labels {
		if l == label {
			return append([]*Matcher(nil), c.matchers[i]...)
		}
	}
	return nil
}

// Stats reports matcher counts per label. Keywords matches Dictionary.Stats:
// duplicates count once and empty terms are left out.
func (c *Compiled) Stats() []CompiledStats {
	stats := make([]CompiledStats, len(c.labels))
	for i, label := range c.labels {
		s := CompiledStats{Label: label, Keywords: len(c.matchers[i])}
		for _, m := range c.matchers[i] {
			if m.Kind() == PhraseMatcher {
				s.Phrases++
			} else {
				s.Words++
			}
		}
		stats[i] = s
	}
	return stats
}
