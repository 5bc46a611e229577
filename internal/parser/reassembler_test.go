package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectCompleteFunction(t *testing.T) {
	t.Run("single line is returned as-is", func(t *testing.T) {
		lines := []string{"plot(close)", "x = 1"}
		text, end := CollectCompleteFunction(lines, 0)
		assert.Equal(t, "plot(close)", text)
		assert.Equal(t, 0, end)
	})

	t.Run("multi-line call is merged", func(t *testing.T) {
		lines := []string{
			"strategy(\"My Strategy\",",
			"    overlay=true,",
			"    pyramiding=2)",
		}
		text, end := CollectCompleteFunction(lines, 0)
		assert.Equal(t, 2, end)
		assert.Contains(t, text, "pyramiding=2)")
		assert.Equal(t, 1, strings.Count(text, "strategy("))
	})

	t.Run("unbalanced paren inside string does not terminate early", func(t *testing.T) {
		lines := []string{
			"alertcondition(cross,",
			"    title=\"close ) paren\",",
			"    message=\"fire\")",
		}
		text, end := CollectCompleteFunction(lines, 0)
		assert.Equal(t, 2, end)
		assert.Contains(t, text, "message=\"fire\"")
	})

	t.Run("string state carries across lines", func(t *testing.T) {
		// The opening quote on line 0 never closes on that line; the
		// close paren on line 1 is inside the carried string state and
		// must not balance the call.
		lines := []string{
			"plot(close, title=\"broken",
			") still string\",",
			"linewidth=2)",
		}
		text, end := CollectCompleteFunction(lines, 0)
		assert.Equal(t, 2, end)
		assert.Contains(t, text, "linewidth=2)")
	})

	t.Run("never balances falls back to start line", func(t *testing.T) {
		lines := []string{"plot(close,", "x = 1"}
		text, end := CollectCompleteFunction(lines, 0)
		assert.Equal(t, "plot(close,", text)
		assert.Equal(t, 0, end)
	})

	t.Run("out of range index", func(t *testing.T) {
		text, end := CollectCompleteFunction([]string{"a"}, 5)
		assert.Equal(t, "", text)
		assert.Equal(t, 5, end)
	})

	t.Run("comment parens are ignored", func(t *testing.T) {
		lines := []string{
			"indicator(\"T\", // open ((",
			"    overlay=true)",
		}
		text, end := CollectCompleteFunction(lines, 0)
		assert.Equal(t, 1, end)
		assert.Contains(t, text, "overlay=true)")
	})
}

func TestCallStatements(t *testing.T) {
	lines := []string{
		"//@version=6",
		"indicator(\"My Script\",",
		"    overlay=true)",
		"x = 1 + 2",
		"plot(close)",
	}
	stmts := CallStatements(lines)
	require.Len(t, stmts, 2)

	assert.Equal(t, 2, stmts[0].StartLine)
	assert.Equal(t, 3, stmts[0].EndLine)
	assert.Contains(t, stmts[0].Text, "overlay=true)")

	assert.Equal(t, 5, stmts[1].StartLine)
	assert.Equal(t, 5, stmts[1].EndLine)
	assert.Equal(t, "plot(close)", stmts[1].Text)
}

func TestCallStatementsNoCalls(t *testing.T) {
	assert.Empty(t, CallStatements([]string{"// comment only", "x = 1"}))
}

func TestStartsFunctionCall(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"plot(close)", true},
		{"ta.sma(close, 14)", true},
		{"x = ta.ema(close, 9)", true},
		{"x = 1 + 2", false},
		{"// plot(close)", false},
		{`s = "plot(close)"`, false},
		{"", false},
		{"   (grouped)", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, startsFunctionCall(tt.line))
		})
	}
}
