package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/config"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// Reasons attached to range violations.
const (
	reasonOutOfRange   = "out_of_range"
	reasonNotAnInteger = "not_an_integer"
)

// checkRange builds the check for one numeric-range rule identifier. The
// bound values live in the rule config; this only binds arguments and
// compares.
func checkRange(ruleID string) Func {
	return func(env *Env, in *Input) []types.Violation {
		var out []types.Violation
		for i := range in.Calls {
			call := &in.Calls[i]
			for _, rule := range env.Rules.NumericRangeRulesFor(call.QualifiedName()) {
				if rule.Rule != ruleID {
					continue
				}
				idx := env.Docs.ParamIndex(call.QualifiedName(), rule.Parameter)
				val, ok := call.Params.Lookup(rule.Parameter, idx)
				if !ok {
					continue
				}
				if v := checkNumericValue(call, rule, val); v != nil {
					out = append(out, *v)
				}
			}
		}
		return out
	}
}

func checkNumericValue(call *types.FunctionCall, rule config.NumericRangeRule, val types.Value) *types.Violation {
	raw := strings.TrimSpace(val.Raw)
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Expressions and variables cannot be judged statically.
		return nil
	}

	meta := types.ViolationMetadata{
		FunctionName:  call.QualifiedName(),
		ParameterName: rule.Parameter,
		ActualValue:   raw,
		MinValue:      formatBound(rule.Min),
		MaxValue:      formatBound(rule.Max),
	}

	if rule.IntegerOnly && strings.ContainsRune(raw, '.') {
		meta.Reason = reasonNotAnInteger
		return &types.Violation{
			Rule:     rule.Rule,
			Severity: types.SeverityError,
			Category: "parameter_validation",
			Message: fmt.Sprintf("%s %s must be an integer, got %s",
				call.QualifiedName(), rule.Parameter, raw),
			Line:     val.Location.Line,
			Column:   val.Location.Column,
			Metadata: meta,
		}
	}

	if num < rule.Min || num > rule.Max {
		meta.Reason = reasonOutOfRange
		return &types.Violation{
			Rule:     rule.Rule,
			Severity: types.SeverityError,
			Category: "parameter_validation",
			Message: fmt.Sprintf("%s %s must be between %s and %s, got %s",
				call.QualifiedName(), rule.Parameter, formatBound(rule.Min), formatBound(rule.Max), raw),
			Line:     val.Location.Line,
			Column:   val.Location.Column,
			Metadata: meta,
		}
	}

	return nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
