package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrNotAnObject is returned when the top level of a dictionary document is
// not an object/mapping.
var ErrNotAnObject = errors.New("dictionary document must be an object of label to keywords")

// ParseJSON reads a dictionary from a JSON object. Values may be a single
// string or a list of strings. Labels keep their document order; a repeated
// label keeps its first position and takes the last value.
func ParseJSON(data []byte) (Dictionary, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse dictionary: %w", ErrNotAnObject)
	}

	d := Dictionary{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse dictionary: %w", err)
		}
		label, _ := tok.(string)

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse dictionary: label %q: %w", label, err)
		}

		vocab, err := vocabularyOf(label, raw)
		if err != nil {
			return nil, err
		}
		d = upsert(d, index, label, vocab)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse dictionary: unexpected data after object")
	}

	return d, nil
}

// ParseYAML reads a dictionary from a YAML mapping with the same shape as
// the JSON form.
func ParseYAML(data []byte) (Dictionary, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}

	d := Dictionary{}
	if doc.Kind == 0 {
		// empty document
		return d, nil
	}

	root := resolveAlias(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolveAlias(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse dictionary: %w", ErrNotAnObject)
	}

	index := make(map[string]int)
	for i := 0; i+1 < len(root.Content); i += 2 {
		label := root.Content[i].Value
		vocab, err := yamlVocabulary(label, resolveAlias(root.Content[i+1]))
		if err != nil {
			return nil, err
		}
		d = upsert(d, index, label, vocab)
	}

	return d, nil
}

// MarshalJSON writes the dictionary as a JSON object in label order.
func (d Dictionary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		vocab := e.Vocabulary
		if vocab == nil {
			vocab = []string{}
		}
		terms, err := json.Marshal(vocab)
		if err != nil {
			return nil, err
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.Write(terms)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON lets a Dictionary be embedded in request payloads.
func (d *Dictionary) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func upsert(d Dictionary, index map[string]int, label string, vocab []string) Dictionary {
	if i, ok := index[label]; ok {
		d[i].Vocabulary = vocab
		return d
	}
	index[label] = len(d)
	return append(d, Entry{Label: label, Vocabulary: vocab})
}

// vocabularyOf converts a decoded JSON value into a vocabulary
func vocabularyOf(label string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		terms := make([]string, 0, len(v))
		for i, item := range v {
			term, ok := item.(string)
			if !ok {
				return nil, &CompileError{Label: label, Err: fmt.Errorf("element %d (%T): %w", i, item, ErrInvalidKeyword)}
			}
			terms = append(terms, term)
		}
		return terms, nil
	default:
		return nil, &CompileError{Label: label, Err: fmt.Errorf("got %T: %w", value, ErrInvalidVocabulary)}
	}
}

func yamlVocabulary(label string, node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return nil, &CompileError{Label: label, Err: fmt.Errorf("got %s: %w", node.ShortTag(), ErrInvalidVocabulary)}
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		terms := make([]string, 0, len(node.Content))
		for i, item := range node.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return nil, &CompileError{Label: label, Err: fmt.Errorf("element %d (%s): %w", i, item.ShortTag(), ErrInvalidKeyword)}
			}
			terms = append(terms, item.Value)
		}
		return terms, nil
	default:
		return nil, &CompileError{Label: label, Err: ErrInvalidVocabulary}
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
