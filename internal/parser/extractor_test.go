package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

func findCall(t *testing.T, result ExtractionResult, qualified string) types.FunctionCall {
	t.Helper()
	for _, call := range result.FunctionCalls {
		if call.QualifiedName() == qualified {
			return call
		}
	}
	t.Fatalf("call %s not found in %v", qualified, result.FunctionCalls)
	return types.FunctionCall{}
}

func TestExtractSimpleCall(t *testing.T) {
	result := ExtractFunctionCalls(`plot(close)`)
	require.Len(t, result.FunctionCalls, 1)

	call := result.FunctionCalls[0]
	assert.Equal(t, "plot", call.Name)
	assert.Empty(t, call.Namespace)
	assert.Equal(t, []string{"close"}, call.RawParams)
	assert.Equal(t, 1, call.Location.Line)
	assert.Equal(t, 0, call.Location.Column)
}

func TestExtractNamespacedCall(t *testing.T) {
	result := ExtractFunctionCalls(`ta.sma(close, 14)`)
	call := findCall(t, result, "ta.sma")

	assert.Equal(t, "sma", call.Name)
	assert.Equal(t, "ta", call.Namespace)
	assert.Equal(t, []string{"close", "14"}, call.RawParams)
	require.Len(t, call.Params.Positional, 2)
	assert.Equal(t, "close", call.Params.Positional[0].Raw)
	assert.Equal(t, "14", call.Params.Positional[1].Raw)
}

func TestExtractNamedParameters(t *testing.T) {
	result := ExtractFunctionCalls(`indicator("Test", shorttitle="TST", overlay=true)`)
	call := findCall(t, result, "indicator")

	require.Len(t, call.Params.Positional, 1)
	assert.Equal(t, `"Test"`, call.Params.Positional[0].Raw)

	require.Contains(t, call.Params.Named, "shorttitle")
	assert.Equal(t, `"TST"`, call.Params.Named["shorttitle"].Raw)
	require.Contains(t, call.Params.Named, "overlay")
	assert.Equal(t, "true", call.Params.Named["overlay"].Raw)

	flat := call.Params.Flatten()
	assert.Equal(t, `"Test"`, flat["_0"])
	assert.Equal(t, `"TST"`, flat["shorttitle"])
}

func TestExtractNestedCalls(t *testing.T) {
	result := ExtractFunctionCalls(`plot(ta.sma(close, 14), color=color.new(color.blue, 50))`)

	outer := findCall(t, result, "plot")
	inner := findCall(t, result, "ta.sma")
	colorCall := findCall(t, result, "color.new")

	// Nested-call completeness: inner call text is an argument of the outer.
	assert.Equal(t, "ta.sma(close, 14)", outer.RawParams[0])
	assert.Equal(t, 0, outer.Depth)
	assert.Equal(t, 1, inner.Depth)
	assert.Equal(t, 1, colorCall.Depth)
	assert.Equal(t, []string{"close", "14"}, inner.RawParams)
	assert.Equal(t, []string{"color.blue", "50"}, colorCall.RawParams)
}

func TestExtractDeeplyNested(t *testing.T) {
	result := ExtractFunctionCalls(`outer(middle(inner(a, b), c), d)`)
	require.Len(t, result.FunctionCalls, 3)

	outer := findCall(t, result, "outer")
	middle := findCall(t, result, "middle")
	inner := findCall(t, result, "inner")

	assert.Equal(t, "middle(inner(a, b), c)", outer.RawParams[0])
	assert.Equal(t, "inner(a, b)", middle.RawParams[0])
	assert.Equal(t, []string{"a", "b"}, inner.RawParams)
}

func TestExtractCommaHandling(t *testing.T) {
	t.Run("commas in strings do not split", func(t *testing.T) {
		result := ExtractFunctionCalls(`alertcondition(cross, title="a, b, c")`)
		call := findCall(t, result, "alertcondition")
		require.Len(t, call.RawParams, 2)
		assert.Equal(t, `"a, b, c"`, call.Params.Named["title"].Raw)
	})

	t.Run("commas in nested parens do not split", func(t *testing.T) {
		result := ExtractFunctionCalls(`plot(math.max(a, b))`)
		call := findCall(t, result, "plot")
		require.Len(t, call.RawParams, 1)
		assert.Equal(t, "math.max(a, b)", call.RawParams[0])
	})

	t.Run("commas in brackets do not split", func(t *testing.T) {
		result := ExtractFunctionCalls(`f(m[1, 2], x)`)
		call := findCall(t, result, "f")
		assert.Equal(t, []string{"m[1, 2]", "x"}, call.RawParams)
	})
}

func TestExtractMultiLineCall(t *testing.T) {
	src := "strategy(\"S\",\n    shorttitle=\"ST\",\n    overlay=true)"
	result := ExtractFunctionCalls(src)
	call := findCall(t, result, "strategy")

	assert.Equal(t, 1, call.Location.Line)
	require.Len(t, call.RawParams, 3)
	assert.Equal(t, `"ST"`, call.Params.Named["shorttitle"].Raw)

	// The named argument on line 2 carries its own position.
	assert.Equal(t, 2, call.Params.Named["shorttitle"].Location.Line)
}

func TestExtractSkipsCommentsAndStrings(t *testing.T) {
	src := "// sma(close, 10)\ns = \"ema(close, 5)\"\nplot(close)"
	result := ExtractFunctionCalls(src)

	require.Len(t, result.FunctionCalls, 1)
	assert.Equal(t, "plot", result.FunctionCalls[0].Name)
	assert.Equal(t, 3, result.FunctionCalls[0].Location.Line)
}

func TestExtractControlFlowIsNotACall(t *testing.T) {
	result := ExtractFunctionCalls("if (close > open)\n    v := plot(close)")
	require.Len(t, result.FunctionCalls, 1)
	assert.Equal(t, "plot", result.FunctionCalls[0].Name)
}

func TestExtractUnbalancedInput(t *testing.T) {
	result := ExtractFunctionCalls("plot(ta.sma(close, 14)")

	// Best effort: the inner complete call is still found, the outer
	// records a non-fatal error.
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "plot")
	inner := findCall(t, result, "ta.sma")
	assert.Equal(t, []string{"close", "14"}, inner.RawParams)
}

func TestExtractEmptySource(t *testing.T) {
	result := ExtractFunctionCalls("")
	assert.Empty(t, result.FunctionCalls)
	assert.Empty(t, result.Errors)
}

func TestExtractEmptyArgumentList(t *testing.T) {
	result := ExtractFunctionCalls("bar_index()")
	require.Len(t, result.FunctionCalls, 1)
	assert.Empty(t, result.FunctionCalls[0].RawParams)
	assert.Equal(t, 0, result.FunctionCalls[0].Params.Count())
}

func TestExtractComparisonIsNotNamedArg(t *testing.T) {
	result := ExtractFunctionCalls("plot(a == b ? 1 : 0)")
	call := findCall(t, result, "plot")
	require.Len(t, call.Params.Positional, 1)
	assert.Empty(t, call.Params.Named)
}

func TestExtractLinearScaling(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("//@version=6\n")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, "plot(ta.sma(close, %d), title=\"p%d\")\n", i+1, i)
	}

	result := ExtractFunctionCalls(sb.String())
	assert.Equal(t, 2000, len(result.FunctionCalls))
	assert.Less(t, result.Metrics.ValidationTimeMs, 1000.0)
}

func TestExtractIdempotent(t *testing.T) {
	src := "indicator(\"T\")\nplot(ta.sma(close, 14), linewidth=2)"
	first := ExtractFunctionCalls(src)
	second := ExtractFunctionCalls(src)
	assert.Equal(t, first.FunctionCalls, second.FunctionCalls)
	assert.Equal(t, first.Errors, second.Errors)
}
