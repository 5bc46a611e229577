package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect returns the token stream without the trailing EOF token.
func collect(t *testing.T, source string) []Token {
	t.Helper()
	tokens, _ := Tokenize(source)
	require.NotEmpty(t, tokens)
	require.Equal(t, TokenEOF, tokens[len(tokens)-1].Type)
	return tokens[:len(tokens)-1]
}

func TestTokenizeFunctionCall(t *testing.T) {
	tokens := collect(t, `ta.sma(close, 14)`)

	expected := []struct {
		tt    TokenType
		value string
	}{
		{TokenIdentifier, "ta"},
		{TokenPunctuation, "."},
		{TokenIdentifier, "sma"},
		{TokenPunctuation, "("},
		{TokenIdentifier, "close"},
		{TokenPunctuation, ","},
		{TokenNumber, "14"},
		{TokenPunctuation, ")"},
	}

	require.Len(t, tokens, len(expected))
	for i, exp := range expected {
		assert.Equal(t, exp.tt, tokens[i].Type, "token %d", i)
		assert.Equal(t, exp.value, tokens[i].Value, "token %d", i)
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens := collect(t, "plot(close)\nx = 1")

	// First token on line 1, column 0.
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 0, tokens[0].Column)

	// Find the x identifier on line 2.
	var x Token
	for _, tok := range tokens {
		if tok.Value == "x" {
			x = tok
		}
	}
	assert.Equal(t, 2, x.Line)
	assert.Equal(t, 0, x.Column)
	assert.Equal(t, 12, x.Offset)
}

func TestTokenizeStrings(t *testing.T) {
	t.Run("double quoted", func(t *testing.T) {
		tokens := collect(t, `indicator("My Script")`)
		var str Token
		for _, tok := range tokens {
			if tok.Type == TokenString {
				str = tok
			}
		}
		assert.Equal(t, `"My Script"`, str.Value)
		assert.Equal(t, "My Script", str.Literal)
	})

	t.Run("single quoted", func(t *testing.T) {
		tokens := collect(t, `plot(close, 'p1')`)
		var found bool
		for _, tok := range tokens {
			if tok.Type == TokenString && tok.Literal == "p1" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("escaped quote", func(t *testing.T) {
		tokens := collect(t, `title = "say \"hi\""`)
		var str Token
		for _, tok := range tokens {
			if tok.Type == TokenString {
				str = tok
			}
		}
		assert.Equal(t, `say "hi"`, str.Literal)
	})

	t.Run("parens inside string stay text", func(t *testing.T) {
		tokens := collect(t, `plot(close, ")not a paren(")`)
		parens := 0
		for _, tok := range tokens {
			if tok.Type == TokenPunctuation && (tok.Value == "(" || tok.Value == ")") {
				parens++
			}
		}
		// Only the real call parens count.
		assert.Equal(t, 2, parens)
	})

	t.Run("unterminated string", func(t *testing.T) {
		tokens, errs := Tokenize("s = \"oops\nplot(close)")
		require.Len(t, errs, 1)
		assert.Equal(t, 1, errs[0].Line)

		// Scanning continued: plot on line 2 is still tokenized.
		var foundPlot bool
		for _, tok := range tokens {
			if tok.Value == "plot" {
				foundPlot = true
			}
		}
		assert.True(t, foundPlot)
	})
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		literal any
	}{
		{"integer", "14", int64(14)},
		{"float", "1.5", 1.5},
		{"zero", "0", int64(0)},
		{"float with long fraction", "3.14159", 3.14159},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := collect(t, tt.source)
			require.Len(t, tokens, 1)
			assert.Equal(t, TokenNumber, tokens[0].Type)
			assert.Equal(t, tt.literal, tokens[0].Literal)
		})
	}
}

func TestTokenizeKeywords(t *testing.T) {
	tokens := collect(t, "if close > open\n    x := true")

	byValue := map[string]TokenType{}
	for _, tok := range tokens {
		byValue[tok.Value] = tok.Type
	}

	assert.Equal(t, TokenKeyword, byValue["if"])
	assert.Equal(t, TokenIdentifier, byValue["close"])
	assert.Equal(t, TokenComparison, byValue[">"])
	assert.Equal(t, TokenAssignment, byValue[":="])
	assert.Equal(t, TokenKeyword, byValue["true"])
}

func TestTokenizeLogicalWords(t *testing.T) {
	tokens := collect(t, "a and b or not c")
	logical := 0
	for _, tok := range tokens {
		if tok.Type == TokenLogical {
			logical++
		}
	}
	assert.Equal(t, 3, logical)
}

func TestTokenizeComments(t *testing.T) {
	tokens := collect(t, "//@version=6\nplot(close) // trailing")

	var comments []Token
	for _, tok := range tokens {
		if tok.Type == TokenComment {
			comments = append(comments, tok)
		}
	}
	require.Len(t, comments, 2)
	assert.Equal(t, "//@version=6", comments[0].Value)
	assert.Equal(t, 1, comments[0].Line)
	assert.Equal(t, "// trailing", comments[1].Value)
}

func TestTokenizeNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t\n",
		"\"",
		"'''",
		"@#$\x00\x7f",
		"plot(((((",
		"1.2.3.4",
		"a\r\nb",
	}
	for _, src := range inputs {
		tokens, _ := Tokenize(src)
		require.NotEmpty(t, tokens, "source %q", src)
		assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Type)
	}
}

func TestTokenizeEmptySource(t *testing.T) {
	tokens, errs := Tokenize("")
	assert.Empty(t, errs)
	require.Len(t, tokens, 1)
	assert.Equal(t, TokenEOF, tokens[0].Type)
}

func TestTokenizeIdempotent(t *testing.T) {
	src := "//@version=6\nindicator(\"T\", shorttitle=\"S\")\nplot(ta.sma(close, 14))"
	first, errs1 := Tokenize(src)
	second, errs2 := Tokenize(src)
	assert.Equal(t, first, second)
	assert.Equal(t, errs1, errs2)
}
