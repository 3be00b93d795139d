package classifier

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Missing marks a record without text, like an empty cell in a table.
// Classifying it yields no labels.
var Missing = missing{}

type missing struct{}

func (missing) String() string { return "" }

// Classify returns the comma-joined labels of c that hit text. It panics if
// c is nil.
func Classify(text interface{}, c *Compiled) string {
	if c == nil {
		panic("classifier: nil compiled dictionary")
	}
	return c.Classify(text)
}

// Classify returns the labels hit by text, joined by commas in compile order.
// Missing text yields "".
func (c *Compiled) Classify(text interface{}) string {
	return strings.Join(c.Labels(text), ",")
}

// Labels returns the labels hit by text in compile order.
func (c *Compiled) Labels(text interface{}) []string {
	if c == nil {
		panic("classifier: nil compiled dictionary")
	}

	s, ok := Coerce(text)
	if !ok {
		return nil
	}
	s = norm.NFC.String(s)

	var hits []string
	for i, label := range c.labels {
		for _, m := range c.matchers[i] {
			if m.Match(s) {
				hits = append(hits, label)
				break
			}
		}
	}
	return hits
}

// Coerce converts a loosely typed cell value to text. The second result is
// false when the value stands for missing data: nil, a nil pointer, slice or
// map, NaN (also behind a pointer) or Missing.
func Coerce(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "", false
		}
		// pointers to scalars are read through; pointers to structs keep
		// their own String methods
		if elem := rv.Elem(); elem.Kind() != reflect.Struct {
			return Coerce(elem.Interface())
		}
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return "", false
		}
	}

	switch t := v.(type) {
	case missing:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	case float64:
		if math.IsNaN(t) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		if math.IsNaN(float64(t)) {
			return "", false
		}
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
