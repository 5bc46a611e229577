package rules

import (
	"fmt"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// CheckShortTitle enforces the length bound on declaration short titles.
// The value may arrive positionally (second argument) or by name; both
// forms resolve through the same lookup.
func CheckShortTitle(env *Env, in *Input) []types.Violation {
	var out []types.Violation
	for i := range in.Calls {
		call := &in.Calls[i]
		for _, rule := range env.Rules.StringLengthRulesFor(call.QualifiedName()) {
			val, ok := call.Params.Lookup(rule.Parameter, rule.PositionalIndex)
			if !ok {
				continue
			}
			text, isString := unquote(val.Raw)
			if !isString {
				continue
			}
			if len(text) <= rule.MaxLength {
				continue
			}
			out = append(out, types.Violation{
				Rule:     rule.Rule,
				Severity: types.SeverityError,
				Category: "style_guide",
				Message: fmt.Sprintf("%s %q is %d characters, maximum is %d",
					rule.Parameter, text, len(text), rule.MaxLength),
				Line:   val.Location.Line,
				Column: val.Location.Column,
				Metadata: types.ViolationMetadata{
					FunctionName:  call.QualifiedName(),
					ParameterName: rule.Parameter,
					ActualValue:   text,
					ActualLength:  len(text),
					MaxLength:     rule.MaxLength,
				},
				SuggestedFix: fmt.Sprintf("shorten %s to at most %d characters", rule.Parameter, rule.MaxLength),
			})
		}
	}
	return out
}

// unquote strips matching quotes from a string literal. ok is false when
// the raw text is not a quoted literal.
func unquote(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 {
		return "", false
	}
	q := raw[0]
	if (q != '"' && q != '\'') || raw[len(raw)-1] != q {
		return "", false
	}
	return raw[1 : len(raw)-1], true
}
