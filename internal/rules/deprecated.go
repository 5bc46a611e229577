package rules

import (
	"fmt"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// CheckDeprecatedFunctions flags calls to v4-era bare names that moved
// into namespaces. One violation per occurrence; the extractor already
// excludes comments and string contents, so only real call sites report.
func CheckDeprecatedFunctions(env *Env, in *Input) []types.Violation {
	mapping := env.Docs.DeprecatedMapping()

	var out []types.Violation
	for i := range in.Calls {
		call := &in.Calls[i]
		if call.Namespace != "" {
			continue
		}
		modern, ok := mapping[call.Name]
		if !ok {
			continue
		}
		out = append(out, types.Violation{
			Rule:     types.RuleDeprecatedFunction,
			Severity: types.SeverityError,
			Category: "language_version",
			Message:  fmt.Sprintf("%s is deprecated, use %s instead", call.Name, modern),
			Line:     call.Location.Line,
			Column:   call.Location.Column,
			Metadata: types.ViolationMetadata{
				FunctionName: call.Name,
				Replacement:  modern,
			},
			SuggestedFix: fmt.Sprintf("replace %s with %s", call.Name, modern),
		})
	}
	return out
}

// CheckMissingNamespace flags bare calls to functions that require a
// namespace qualifier in the current language version. Names covered by
// the deprecated-function table are excluded so each call site reports
// exactly one diagnostic.
func CheckMissingNamespace(env *Env, in *Input) []types.Violation {
	deprecated := env.Docs.DeprecatedMapping()

	var out []types.Violation
	for i := range in.Calls {
		call := &in.Calls[i]
		if call.Namespace != "" {
			continue
		}
		if _, isDeprecated := deprecated[call.Name]; isDeprecated {
			continue
		}
		ns := env.Rules.RequiredNamespace(call.Name)
		if ns == "" {
			continue
		}
		qualified := ns + "." + call.Name
		out = append(out, types.Violation{
			Rule:     types.RuleMissingNamespace,
			Severity: types.SeverityError,
			Category: "language_version",
			Message:  fmt.Sprintf("%s must be called as %s", call.Name, qualified),
			Line:     call.Location.Line,
			Column:   call.Location.Column,
			Metadata: types.ViolationMetadata{
				FunctionName: call.Name,
				Namespace:    ns,
				Replacement:  qualified,
			},
			SuggestedFix: fmt.Sprintf("qualify the call as %s", qualified),
		})
	}
	return out
}
