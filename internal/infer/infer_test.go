package infer

import (
	"testing"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

func TestInferParameterType(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want types.TypeTag
	}{
		{"double quoted string", `"hello"`, types.TypeString},
		{"single quoted string", `'hi'`, types.TypeString},
		{"string with comma", `"a, b"`, types.TypeString},
		{"integer", "14", types.TypeInt},
		{"negative integer", "-5", types.TypeInt},
		{"float", "1.5", types.TypeFloat},
		{"negative float", "-0.25", types.TypeFloat},
		{"bool true", "true", types.TypeBool},
		{"bool false", "false", types.TypeBool},
		{"close is series", "close", types.TypeSeriesFloat},
		{"hl2 is series", "hl2", types.TypeSeriesFloat},
		{"bar_index is series int", "bar_index", types.TypeSeriesInt},
		{"known function return", "ta.sma(close, 14)", types.TypeSeriesFloat},
		{"known crossover returns bool", "ta.crossover(a, b)", types.TypeBool},
		{"known string producer", `str.tostring(close)`, types.TypeString},
		{"color constructor", "color.new(color.blue, 50)", types.TypeColor},
		{"unknown call", "myCustomFunc(x)", types.TypeFunctionResult},
		{"unknown namespaced call", "foo.bar(1)", types.TypeFunctionResult},
		{"plain identifier", "myVar", types.TypeUnknown},
		{"expression", "close + open", types.TypeUnknown},
		{"history reference", "close[1]", types.TypeUnknown},
		{"empty", "", types.TypeUnknown},
		{"whitespace padded int", "  42  ", types.TypeInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferParameterType(tt.raw); got != tt.want {
				t.Errorf("InferParameterType(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassificationOrder(t *testing.T) {
	// A quoted string that looks like a call must classify as string:
	// literal matching runs before call-shape matching.
	if got := InferParameterType(`"ta.sma(close, 14)"`); got != types.TypeString {
		t.Errorf("Expected string, got %q", got)
	}
}

func TestReturnTypeOf(t *testing.T) {
	tag, ok := ReturnTypeOf("ta.sma")
	if !ok || tag != types.TypeSeriesFloat {
		t.Errorf("ReturnTypeOf(ta.sma) = %q, %v", tag, ok)
	}

	if _, ok := ReturnTypeOf("totally.unknown"); ok {
		t.Error("Expected unknown function to miss the table")
	}
}
