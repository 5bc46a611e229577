package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Load()
	require.NoError(t, err)
	return ix
}

func TestLoadCorpus(t *testing.T) {
	ix := loadIndex(t)
	assert.Greater(t, ix.EntryCount(), 30)
	assert.NotEmpty(t, ix.StyleRules())
}

func TestLookup(t *testing.T) {
	ix := loadIndex(t)

	e, ok := ix.Lookup("ta.sma")
	require.True(t, ok)
	assert.Equal(t, "sma", e.Name)
	assert.Equal(t, "ta", e.Namespace)
	assert.Equal(t, "ta.sma", e.QualifiedName())
	require.Len(t, e.Parameters, 2)
	assert.Equal(t, "source", e.Parameters[0].Name)
	assert.Equal(t, "length", e.Parameters[1].Name)

	_, ok = ix.Lookup("ta.nonexistent")
	assert.False(t, ok)
}

func TestLookupDeclarationStatements(t *testing.T) {
	ix := loadIndex(t)

	for _, name := range []string{"indicator", "strategy"} {
		e, ok := ix.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "", e.Namespace)
		assert.False(t, e.Deprecated)
	}

	// shorttitle is conventionally the second positional argument.
	assert.Equal(t, 1, ix.ParamIndex("indicator", "shorttitle"))
	assert.Equal(t, 1, ix.ParamIndex("strategy", "shorttitle"))
	assert.Equal(t, -1, ix.ParamIndex("indicator", "no_such_param"))
	assert.Equal(t, -1, ix.ParamIndex("no.such.fn", "shorttitle"))
}

func TestDeprecatedMapping(t *testing.T) {
	ix := loadIndex(t)
	m := ix.DeprecatedMapping()

	cases := map[string]string{
		"sma":       "ta.sma",
		"ema":       "ta.ema",
		"rsi":       "ta.rsi",
		"security":  "request.security",
		"study":     "indicator",
		"tostring":  "str.tostring",
		"crossover": "ta.crossover",
	}
	for legacy, modern := range cases {
		assert.Equal(t, modern, m[legacy], legacy)
	}

	// Current names must never appear as deprecated keys.
	_, ok := m["indicator"]
	assert.False(t, ok)
}

func TestNamespaceListing(t *testing.T) {
	ix := loadIndex(t)

	ta := ix.Namespace("ta")
	require.NotEmpty(t, ta)
	for i := 1; i < len(ta); i++ {
		assert.LessOrEqual(t, ta[i-1].Name, ta[i].Name)
	}
	for _, e := range ta {
		assert.Equal(t, "ta", e.Namespace)
		assert.False(t, e.Deprecated)
	}

	assert.Empty(t, ix.Namespace("nosuchnamespace"))
}

func TestStyleRuleLookup(t *testing.T) {
	ix := loadIndex(t)

	r, ok := ix.StyleRule("SHORT_TITLE_TOO_LONG")
	require.True(t, ok)
	assert.NotEmpty(t, r.Title)
	assert.NotEmpty(t, r.Description)

	_, ok = ix.StyleRule("NO_SUCH_RULE")
	assert.False(t, ok)
}

func TestSearchRanking(t *testing.T) {
	ix := loadIndex(t)

	results := ix.Search("ta.sma", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "ta.sma", results[0].Entry.QualifiedName())

	// Stemmed description terms still match.
	results = ix.Search("moving average", 10)
	require.NotEmpty(t, results)
	found := false
	for _, r := range results {
		if r.Entry.QualifiedName() == "ta.sma" {
			found = true
		}
	}
	assert.True(t, found, "ta.sma should match a moving-average query")
}

func TestSearchExcludesDeprecated(t *testing.T) {
	ix := loadIndex(t)
	for _, r := range ix.Search("sma", 20) {
		assert.False(t, r.Entry.Deprecated, r.Entry.QualifiedName())
	}
}

func TestSearchEmptyAndLimit(t *testing.T) {
	ix := loadIndex(t)
	assert.Empty(t, ix.Search("", 10))
	assert.Empty(t, ix.Search("   ", 10))

	results := ix.Search("plot color input", 2)
	assert.LessOrEqual(t, len(results), 2)
}

func TestSuggest(t *testing.T) {
	ix := loadIndex(t)

	got, ok := ix.Suggest("ta.smaa")
	require.True(t, ok)
	assert.Equal(t, "ta.sma", got)

	got, ok = ix.Suggest("indicater")
	require.True(t, ok)
	assert.Equal(t, "indicator", got)

	_, ok = ix.Suggest("zzzzzzzzzzzz")
	assert.False(t, ok)
	_, ok = ix.Suggest("")
	assert.False(t, ok)
}

func TestDocumentedParams(t *testing.T) {
	ix := loadIndex(t)
	params := ix.DocumentedParams()
	for _, name := range []string{"shorttitle", "source", "length", "precision", "formatString"} {
		_, ok := params[name]
		assert.True(t, ok, name)
	}
	_, ok := params["lineWidth"]
	assert.False(t, ok)
}
