// Package infer assigns a syntactic type tag to raw call-argument text.
//
// This is a heuristic classifier, not a type checker: it must degrade
// gracefully, so anything it cannot recognize gets TypeUnknown and the
// signature validator skips it rather than risk a false positive.
package infer

import (
	"regexp"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

var (
	intPattern    = regexp.MustCompile(`^-?\d+$`)
	floatPattern  = regexp.MustCompile(`^-?\d+\.\d+$`)
	stringPattern = regexp.MustCompile(`^(".*"|'.*')$`)
	callPattern   = regexp.MustCompile(`^[A-Za-z_]\w*(\.[A-Za-z_]\w*)*\s*\(`)
)

// seriesBuiltins is the "current bar price" identifier family. Each of
// these is a time-series value that changes per bar.
var seriesBuiltins = map[string]types.TypeTag{
	"close":     types.TypeSeriesFloat,
	"open":      types.TypeSeriesFloat,
	"high":      types.TypeSeriesFloat,
	"low":       types.TypeSeriesFloat,
	"volume":    types.TypeSeriesFloat,
	"hl2":       types.TypeSeriesFloat,
	"hlc3":      types.TypeSeriesFloat,
	"hlcc4":     types.TypeSeriesFloat,
	"ohlc4":     types.TypeSeriesFloat,
	"bar_index": types.TypeSeriesInt,
	"time":      types.TypeSeriesInt,
}

// knownReturnTypes maps qualified built-in function names to their
// declared return type. Only functions whose result commonly appears as a
// call argument are listed; everything else falls through to the generic
// function_result tag.
var knownReturnTypes = map[string]types.TypeTag{
	"ta.sma":           types.TypeSeriesFloat,
	"ta.ema":           types.TypeSeriesFloat,
	"ta.wma":           types.TypeSeriesFloat,
	"ta.rma":           types.TypeSeriesFloat,
	"ta.vwma":          types.TypeSeriesFloat,
	"ta.rsi":           types.TypeSeriesFloat,
	"ta.atr":           types.TypeSeriesFloat,
	"ta.stdev":         types.TypeSeriesFloat,
	"ta.highest":       types.TypeSeriesFloat,
	"ta.lowest":        types.TypeSeriesFloat,
	"ta.crossover":     types.TypeBool,
	"ta.crossunder":    types.TypeBool,
	"ta.change":        types.TypeSeriesFloat,
	"math.abs":         types.TypeFloat,
	"math.max":         types.TypeFloat,
	"math.min":         types.TypeFloat,
	"math.round":       types.TypeInt,
	"math.floor":       types.TypeInt,
	"math.ceil":        types.TypeInt,
	"str.tostring":     types.TypeString,
	"str.format":       types.TypeString,
	"str.length":       types.TypeInt,
	"color.new":        types.TypeColor,
	"color.rgb":        types.TypeColor,
	"request.security": types.TypeSeriesFloat,
	"input.int":        types.TypeInt,
	"input.float":      types.TypeFloat,
	"input.bool":       types.TypeBool,
	"input.string":     types.TypeString,
}

// InferParameterType classifies raw argument text, first match wins:
// string literal, int literal, float literal, bool literal, built-in
// series identifier, known function return type, generic function result,
// and finally unknown (no type constraint enforced).
func InferParameterType(raw string) types.TypeTag {
	text := strings.TrimSpace(raw)
	if text == "" {
		return types.TypeUnknown
	}

	switch {
	case stringPattern.MatchString(text):
		return types.TypeString
	case intPattern.MatchString(text):
		return types.TypeInt
	case floatPattern.MatchString(text):
		return types.TypeFloat
	case text == "true" || text == "false":
		return types.TypeBool
	}

	if tag, ok := seriesBuiltins[text]; ok {
		return tag
	}

	if callPattern.MatchString(text) {
		qualified := text[:strings.IndexByte(text, '(')]
		qualified = strings.TrimSpace(qualified)
		if tag, ok := knownReturnTypes[qualified]; ok {
			return tag
		}
		return types.TypeFunctionResult
	}

	return types.TypeUnknown
}

// ReturnTypeOf looks up the declared return type of a known built-in
// function; ok is false for functions outside the table.
func ReturnTypeOf(qualifiedName string) (types.TypeTag, bool) {
	tag, ok := knownReturnTypes[qualifiedName]
	return tag, ok
}
