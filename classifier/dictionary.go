package classifier

// Entry is one label together with its vocabulary
type Entry struct {
	Label      string
	Vocabulary []string
}

// Dictionary maps labels to vocabularies. It is a slice rather than a map
// because the order of labels decides the order of the labels string.
type Dictionary []Entry

// LabelStats is the keyword count of one label
type LabelStats struct {
	Label    string `json:"label"`
	Keywords int    `json:"keywords"`
}

// Default returns a fresh copy of the starter dictionaries.
func Default() Dictionary {
	return Dictionary{
		{
			Label: "urgency_marketing",
			Vocabulary: []string{
				"limited", "limited time", "limited run", "limited edition", "order now",
				"last chance", "hurry", "while supplies last", "before they're gone",
				"selling out", "selling fast", "act now", "don't wait", "today only",
				"expires soon", "final hours", "almost gone",
			},
		},
		{
			Label: "exclusive_marketing",
			Vocabulary: []string{
				"exclusive", "exclusively", "exclusive offer", "exclusive deal",
				"members only", "vip", "special access", "invitation only",
				"premium", "privileged", "limited access", "select customers",
				"insider", "private sale", "early access",
			},
		},
	}
}

// Labels returns the labels in dictionary order
func (d Dictionary) Labels() []string {
	labels := make([]string, len(d))
	for i, e := range d {
		labels[i] = e.Label
	}
	return labels
}

// Lookup returns the vocabulary of label
func (d Dictionary) Lookup(label string) ([]string, bool) {
	for _, e := range d {
		if e.Label == label {
			return e.Vocabulary, true
		}
	}
	return nil, false
}

// With returns a copy of d where label carries vocabulary. An existing label
// keeps its position, a new one is appended. d itself is left untouched.
func (d Dictionary) With(label string, vocabulary ...string) Dictionary {
	out := d.Clone()
	vocab := append([]string(nil), vocabulary...)
	for i := range out {
		if out[i].Label == label {
			out[i].Vocabulary = vocab
			return out
		}
	}
	return append(out, Entry{Label: label, Vocabulary: vocab})
}

// Without returns a copy of d with label removed.
func (d Dictionary) Without(label string) Dictionary {
	out := make(Dictionary, 0, len(d))
	for _, e := range d.Clone() {
		if e.Label != label {
			out = append(out, e)
		}
	}
	return out
}

// Clone deep-copies the dictionary
func (d Dictionary) Clone() Dictionary {
	if d == nil {
		return nil
	}
	out := make(Dictionary, len(d))
	for i, e := range d {
		out[i] = Entry{Label: e.Label, Vocabulary: append([]string(nil), e.Vocabulary...)}
	}
	return out
}

// Stats reports the number of keywords per label. Duplicates count once and
// empty terms are not counted, the same rule Compile uses, so the numbers
// agree with Compiled.Stats.
func (d Dictionary) Stats() []LabelStats {
	stats := make([]LabelStats, len(d))
	for i, e := range d {
		n := 0
		for _, term := range dedupe(e.Vocabulary) {
			if term != "" {
				n++
			}
		}
		stats[i] = LabelStats{Label: e.Label, Keywords: n}
	}
	return stats
}

// dedupe collapses duplicate terms, keeping the first occurrence
func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
