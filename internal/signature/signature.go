// Package signature validates function calls against the documented
// reference signatures: parameter counts against required/total arity and
// inferred argument types against declared parameter types. Functions the
// reference does not document are skipped, never flagged.
package signature

import (
	"fmt"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/infer"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// Reasons attached to count-mismatch metadata.
const (
	ReasonTooManyParameters  = "too_many_parameters"
	ReasonMissingRequired    = "missing_required_parameters"
	ReasonParameterTypeClash = "parameter_type_mismatch"
)

// Expected describes the documented arity and parameter types of one
// function.
type Expected struct {
	Name       string
	Parameters []docs.Parameter
	Required   int
}

// GetExpectedSignature resolves the documented signature for a qualified
// name. ok is false for unknown or deprecated entries; callers must not
// report anything in that case.
func GetExpectedSignature(ix *docs.Index, qualifiedName string) (Expected, bool) {
	e, found := ix.Lookup(qualifiedName)
	if !found || e.Deprecated {
		return Expected{}, false
	}
	required := 0
	for _, p := range e.Parameters {
		if p.Required {
			required++
		}
	}
	return Expected{
		Name:       qualifiedName,
		Parameters: e.Parameters,
		Required:   required,
	}, true
}

// CountMismatch reports how a call's argument count violates the
// documented arity.
type CountMismatch struct {
	Reason   string
	Expected int // the bound that was violated
	Actual   int
}

// ValidateParameterCount checks actual against the documented arity.
// Valid when required <= actual <= total documented parameters.
func ValidateParameterCount(exp Expected, actual int) (CountMismatch, bool) {
	if actual > len(exp.Parameters) {
		return CountMismatch{
			Reason:   ReasonTooManyParameters,
			Expected: len(exp.Parameters),
			Actual:   actual,
		}, false
	}
	if actual < exp.Required {
		return CountMismatch{
			Reason:   ReasonMissingRequired,
			Expected: exp.Required,
			Actual:   actual,
		}, false
	}
	return CountMismatch{}, true
}

// TypeMismatch reports one argument whose inferred type is incompatible
// with the documented parameter type.
type TypeMismatch struct {
	Parameter string
	Expected  string
	Actual    types.TypeTag
	Value     types.Value
}

// typeCompatible reports whether an inferred argument type satisfies a
// documented parameter type. Unknown inferences and unlisted pairs are
// accepted; the checker only flags pairs it understands.
func typeCompatible(declared string, actual types.TypeTag) bool {
	if actual == types.TypeUnknown || actual == types.TypeFunctionResult {
		return true
	}
	declared = strings.TrimSpace(declared)

	// "int/float" style alternatives accept any listed branch.
	if strings.Contains(declared, "/") {
		for _, alt := range strings.Split(declared, "/") {
			if typeCompatible(strings.TrimSpace(alt), actual) {
				return true
			}
		}
		return false
	}

	if declared == string(actual) {
		return true
	}

	switch declared {
	case "series float":
		// A series parameter accepts literals and series of either
		// numeric kind.
		return actual == types.TypeInt || actual == types.TypeFloat ||
			actual == types.TypeSeriesInt || actual == types.TypeSeriesFloat
	case "series int":
		return actual == types.TypeInt || actual == types.TypeSeriesInt
	case "float":
		return actual == types.TypeInt
	case "int":
		return actual == types.TypeSeriesInt
	case "string":
		return false
	case "bool":
		return false
	case "color":
		return false
	}

	// Unlisted declared types never produce findings.
	return true
}

// ValidateParameterTypes checks each argument's inferred type against the
// documented parameter it binds to.
func ValidateParameterTypes(exp Expected, call *types.FunctionCall) []TypeMismatch {
	var out []TypeMismatch
	for i, p := range exp.Parameters {
		val, ok := call.Params.Lookup(p.Name, i)
		if !ok {
			continue
		}
		actual := infer.InferParameterType(val.Raw)
		if actual == types.TypeFunctionResult {
			// Resolve known return types so ta.sma(...) counts as
			// series float where it matters.
			if ret, known := infer.ReturnTypeOf(callTarget(val.Raw)); known {
				actual = ret
			}
		}
		if !typeCompatible(p.Type, actual) {
			out = append(out, TypeMismatch{
				Parameter: p.Name,
				Expected:  p.Type,
				Actual:    actual,
				Value:     val,
			})
		}
	}
	return out
}

// callTarget extracts the qualified function name from a call expression
// like "ta.sma(close, 20)".
func callTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	open := strings.IndexByte(raw, '(')
	if open < 0 {
		return raw
	}
	return strings.TrimSpace(raw[:open])
}

// countMessage renders the human-readable message for an arity violation.
func countMessage(fn string, m CountMismatch) string {
	if m.Reason == ReasonTooManyParameters {
		return fmt.Sprintf("%s accepts at most %d parameters but %d were provided", fn, m.Expected, m.Actual)
	}
	return fmt.Sprintf("%s requires at least %d parameters but %d were provided", fn, m.Expected, m.Actual)
}
