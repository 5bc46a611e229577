package signature

import (
	"fmt"

	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/parser"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// ValidateCall checks one extracted call against the reference. Unknown
// functions yield no violations.
func ValidateCall(ix *docs.Index, call *types.FunctionCall) []types.Violation {
	exp, known := GetExpectedSignature(ix, call.QualifiedName())
	if !known {
		return nil
	}

	var out []types.Violation

	if mismatch, ok := ValidateParameterCount(exp, call.Params.Count()); !ok {
		out = append(out, types.Violation{
			Rule:     types.RuleSignatureValidation,
			Severity: types.SeverityError,
			Category: "function_signature",
			Message:  countMessage(call.QualifiedName(), mismatch),
			Line:     call.Location.Line,
			Column:   call.Location.Column,
			Metadata: types.ViolationMetadata{
				FunctionName: call.QualifiedName(),
				Reason:       mismatch.Reason,
				Expected:     mismatch.Expected,
				Actual:       mismatch.Actual,
			},
		})
		// Arity is wrong; positional type binding would misreport.
		return out
	}

	for _, tm := range ValidateParameterTypes(exp, call) {
		out = append(out, types.Violation{
			Rule:     types.RuleSignatureValidation,
			Severity: types.SeverityError,
			Category: "function_signature",
			Message: fmt.Sprintf("%s parameter %q expects %s but got %s",
				call.QualifiedName(), tm.Parameter, tm.Expected, tm.Actual),
			Line:   tm.Value.Location.Line,
			Column: tm.Value.Location.Column,
			Metadata: types.ViolationMetadata{
				FunctionName:  call.QualifiedName(),
				ParameterName: tm.Parameter,
				Reason:        ReasonParameterTypeClash,
				ExpectedType:  tm.Expected,
				ActualType:    string(tm.Actual),
				ActualValue:   tm.Value.Raw,
			},
		})
	}
	return out
}

// QuickValidateFunctionSignatures runs signature validation over a whole
// source string. It parses independently so callers without a shared
// parse can still use it.
func QuickValidateFunctionSignatures(ix *docs.Index, source string) []types.Violation {
	result := parser.ExtractFunctionCalls(source)
	var out []types.Violation
	for i := range result.FunctionCalls {
		out = append(out, ValidateCall(ix, &result.FunctionCalls[i])...)
	}
	return out
}
