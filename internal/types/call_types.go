package types

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeTag is the syntactic type classification assigned to a call argument.
// This is a heuristic label, not a checked type: unknown shapes get
// TypeUnknown and are never flagged.
type TypeTag string

const (
	TypeString         TypeTag = "string"
	TypeInt            TypeTag = "int"
	TypeFloat          TypeTag = "float"
	TypeBool           TypeTag = "bool"
	TypeSeriesFloat    TypeTag = "series float"
	TypeSeriesInt      TypeTag = "series int"
	TypeColor          TypeTag = "color"
	TypeFunctionResult TypeTag = "function_result"
	TypeUnknown        TypeTag = ""
)

// Value is one argument as it appeared at the call site: the raw source
// text plus the inferred type tag and location.
type Value struct {
	Raw      string         `json:"raw"`
	Type     TypeTag        `json:"type,omitempty"`
	Location SourceLocation `json:"location"`
}

// ParamBag separates positional from named arguments while preserving the
// positional order of the call site. It replaces the mixed `_0`/`name`
// key-probing scheme with explicit structure; PositionalKey reproduces the
// legacy keys for the wire format.
type ParamBag struct {
	Positional []Value          `json:"positional"`
	Named      map[string]Value `json:"named,omitempty"`
}

// PositionalKey is the wire key for positional slot n (`_0`, `_1`, ...).
func PositionalKey(n int) string {
	return "_" + strconv.Itoa(n)
}

// Lookup resolves a parameter by documented name: a named argument wins,
// otherwise the positional slot whose documented index matches. The index
// may be -1 for parameters with no positional form.
func (b ParamBag) Lookup(name string, positionalIndex int) (Value, bool) {
	if v, ok := b.Named[name]; ok {
		return v, true
	}
	if positionalIndex >= 0 && positionalIndex < len(b.Positional) {
		return b.Positional[positionalIndex], true
	}
	return Value{}, false
}

// Flatten renders the bag as the legacy flat key->raw map (`_N` keys for
// positional slots, identifier keys for named arguments) used by the
// review response format.
func (b ParamBag) Flatten() map[string]string {
	out := make(map[string]string, len(b.Positional)+len(b.Named))
	for i, v := range b.Positional {
		out[PositionalKey(i)] = v.Raw
	}
	for name, v := range b.Named {
		out[name] = v.Raw
	}
	return out
}

// Count returns the number of arguments supplied, positional and named.
func (b ParamBag) Count() int {
	return len(b.Positional) + len(b.Named)
}

// FunctionCall describes one extracted call site. Nested calls appear both
// as Raw argument text in the outer call's bag and as their own
// FunctionCall entries in the extraction result.
type FunctionCall struct {
	Name      string         `json:"name"`
	Namespace string         `json:"namespace,omitempty"`
	Params    ParamBag       `json:"parameters"`
	RawParams []string       `json:"rawParameters"`
	Location  SourceLocation `json:"location"`
	Depth     int            `json:"-"` // nesting depth, 0 for top-level calls
}

// QualifiedName returns "namespace.name" or the bare name.
func (c FunctionCall) QualifiedName() string {
	if c.Namespace != "" {
		return c.Namespace + "." + c.Name
	}
	return c.Name
}

// SplitQualifiedName breaks "ta.sma" into ("ta", "sma"); a bare name
// yields an empty namespace. Only the last dot splits, matching how the
// language nests namespaces.
func SplitQualifiedName(qualified string) (namespace, name string) {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return "", qualified
	}
	return qualified[:idx], qualified[idx+1:]
}

// String renders the call for diagnostics, e.g. "ta.sma(close, 14) at 3:0".
func (c FunctionCall) String() string {
	return fmt.Sprintf("%s(%s) at %s", c.QualifiedName(), strings.Join(c.RawParams, ", "), c.Location)
}
