package classifier

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileOf(t *testing.T, d Dictionary) *Compiled {
	t.Helper()
	c, err := Compile(d)
	require.NoError(t, err)
	return c
}

func TestClassify_WordBoundary(t *testing.T) {
	c := compileOf(t, Dictionary{{Label: "vip", Vocabulary: []string{"vip"}}})

	assert.Equal(t, "", c.Classify("envious"))
	assert.Equal(t, "", c.Classify("vipers"))
	assert.Equal(t, "vip", c.Classify("my vip pass"))
	assert.Equal(t, "vip", c.Classify("VIP"))
	assert.Equal(t, "vip", c.Classify("(vip)"))
}

func TestClassify_Phrase(t *testing.T) {
	c := compileOf(t, Dictionary{{Label: "urgency", Vocabulary: []string{"act now"}}})

	assert.Equal(t, "urgency", c.Classify("please act now!!"))
	assert.Equal(t, "", c.Classify("actnow"))
	// phrases are plain substrings, outer edges are not anchored
	assert.Equal(t, "urgency", c.Classify("react nowhere"))
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := compileOf(t, Dictionary{{Label: "x", Vocabulary: []string{"Hurry"}}})
	assert.Equal(t, "x", c.Classify("please HURRY up"))
}

func TestClassify_MissingText(t *testing.T) {
	c := MustCompile(Default())

	var (
		nilString *string
		nilTime   *time.Time
		nilInt    *int
		nilMap    map[string]string
		nilSlice  []string
	)
	nan := math.NaN()
	for _, v := range []interface{}{nil, nilString, math.NaN(), Missing, nilTime, nilInt, &nan, nilMap, nilSlice} {
		assert.Equal(t, "", c.Classify(v), "value %#v", v)
		assert.Nil(t, c.Labels(v))
	}
}

func TestClassify_MultiLabelOrder(t *testing.T) {
	c := compileOf(t, Dictionary{
		{Label: "a", Vocabulary: []string{"now"}},
		{Label: "b", Vocabulary: []string{"today"}},
	})
	assert.Equal(t, "a,b", c.Classify("order now, today only"))

	reversed := compileOf(t, Dictionary{
		{Label: "b", Vocabulary: []string{"today"}},
		{Label: "a", Vocabulary: []string{"now"}},
	})
	assert.Equal(t, "b,a", reversed.Classify("order now, today only"))
}

func TestClassify_SingleLabelIsolation(t *testing.T) {
	d := Default()
	c := compileOf(t, d)

	for _, e := range d {
		for _, term := range e.Vocabulary {
			// "limited access" contains "limited", which belongs to urgency
			if term == "limited access" {
				continue
			}
			assert.Equal(t, e.Label, c.Classify(term), "term %q", term)
		}
	}
	assert.Equal(t, "urgency_marketing,exclusive_marketing", c.Classify("limited access"))
}

func TestClassify_Idempotent(t *testing.T) {
	c := MustCompile(Default())
	text := "Exclusive offer for VIP members only, hurry while supplies last"

	first := c.Classify(text)
	assert.Equal(t, "urgency_marketing,exclusive_marketing", first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}

func TestClassify_Coercion(t *testing.T) {
	c := compileOf(t, Dictionary{
		{Label: "num", Vocabulary: []string{"42"}},
		{Label: "flag", Vocabulary: []string{"true"}},
	})

	assert.Equal(t, "num", c.Classify(42))
	assert.Equal(t, "num", c.Classify(int64(42)))
	assert.Equal(t, "num", c.Classify(42.0))
	assert.Equal(t, "", c.Classify(420.0))
	assert.Equal(t, "flag", c.Classify(true))
	assert.Equal(t, "num", c.Classify([]byte("answer 42")))
	assert.Equal(t, "num", c.Classify(fmt.Errorf("code 42")))

	answer := 42
	assert.Equal(t, "num", c.Classify(&answer))
	when := time.Date(2042, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "", c.Classify(&when))
}

func TestClassify_Unicode(t *testing.T) {
	c := compileOf(t, Dictionary{{Label: "cafe", Vocabulary: []string{"café"}}})

	assert.Equal(t, "cafe", c.Classify("un café noir"))
	assert.Equal(t, "cafe", c.Classify("CAFÉ"))
	// decomposed e + combining acute
	assert.Equal(t, "cafe", c.Classify("un cafe\u0301 noir"))
	assert.Equal(t, "", c.Classify("cafés"))
}

func TestClassify_EmptyKeywordNeverMatches(t *testing.T) {
	c := compileOf(t, Dictionary{{Label: "empty", Vocabulary: []string{""}}})

	assert.Equal(t, "", c.Classify("anything at all"))
	assert.Equal(t, "", c.Classify(""))
	assert.Equal(t, []string{"empty"}, c.LabelNames())
}

func TestClassify_NilCompiledPanics(t *testing.T) {
	assert.Panics(t, func() { Classify("text", nil) })

	var c *Compiled
	assert.Panics(t, func() { c.Labels("text") })
}

func TestMatcher_ZeroValuePanics(t *testing.T) {
	var m Matcher
	assert.Panics(t, func() { m.Match("text") })
}

func TestRecompileDoesNotTouchPrevious(t *testing.T) {
	d := Dictionary{{Label: "x", Vocabulary: []string{"hurry"}}}
	old := compileOf(t, d)

	edited := d.With("x", "wait")
	fresh := compileOf(t, edited)

	assert.Equal(t, "x", old.Classify("hurry up"))
	assert.Equal(t, "", old.Classify("please wait"))
	assert.Equal(t, "", fresh.Classify("hurry up"))
	assert.Equal(t, "x", fresh.Classify("please wait"))
	assert.Equal(t, []string{"hurry"}, d[0].Vocabulary)
}

func TestClassify_ConcurrentReaders(t *testing.T) {
	c := MustCompile(Default())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "exclusive_marketing", c.Classify("early access for insiders and insider friends"))
			}
		}()
	}
	wg.Wait()
}

func TestClassifyAll(t *testing.T) {
	c := MustCompile(Default())
	texts := []interface{}{"hurry!", nil, "nothing here", "VIP only", "act now, vip"}

	got, err := c.ClassifyAll(context.Background(), texts, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"urgency_marketing",
		"",
		"",
		"exclusive_marketing",
		"urgency_marketing,exclusive_marketing",
	}, got)
}

func TestClassifyAll_Empty(t *testing.T) {
	got, err := MustCompile(Default()).ClassifyAll(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassifyAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MustCompile(Default()).ClassifyAll(ctx, []interface{}{"hurry"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
