package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// CheckDeprecatedParameters flags named arguments superseded in the
// current language version, like resolution= on request.security.
func CheckDeprecatedParameters(env *Env, in *Input) []types.Violation {
	var out []types.Violation
	for i := range in.Calls {
		call := &in.Calls[i]
		for _, dp := range env.Rules.DeprecatedParametersFor(call.QualifiedName()) {
			val, ok := call.Params.Named[dp.Name]
			if !ok {
				continue
			}
			out = append(out, types.Violation{
				Rule:     types.RuleDeprecatedParamName,
				Severity: types.SeverityWarning,
				Category: "language_version",
				Message: fmt.Sprintf("parameter %q of %s is deprecated, use %s",
					dp.Name, call.QualifiedName(), dp.Replacement),
				Line:   val.Location.Line,
				Column: val.Location.Column,
				Metadata: types.ViolationMetadata{
					FunctionName:  call.QualifiedName(),
					ParameterName: dp.Name,
					Replacement:   dp.Replacement,
				},
				SuggestedFix: fmt.Sprintf("replace %s with %s", dp.Name, dp.Replacement),
			})
		}
	}
	return out
}

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
var allCaps = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// CheckParameterNaming flags named arguments that deviate from the
// snake_case convention built-in parameters follow. Spellings the
// language reference documents pass untouched, as do the configured
// exceptions covering spellings the corpus lacks.
func CheckParameterNaming(env *Env, in *Input) []types.Violation {
	documented := env.Docs.DocumentedParams()
	var out []types.Violation
	for i := range in.Calls {
		call := &in.Calls[i]
		for name, val := range call.Params.Named {
			if snakeCase.MatchString(name) {
				continue
			}
			if _, ok := documented[name]; ok {
				continue
			}
			if env.Rules.IsNamingException(name) {
				continue
			}
			convention := classifyConvention(name)
			if convention == "" {
				continue
			}
			suggested := toSnakeCase(name)
			out = append(out, types.Violation{
				Rule:     types.RuleInvalidParamNaming,
				Severity: types.SeveritySuggestion,
				Category: "naming_convention",
				Message: fmt.Sprintf("parameter %q uses %s, built-in parameters use snake_case",
					name, convention),
				Line:   val.Location.Line,
				Column: val.Location.Column,
				Metadata: types.ViolationMetadata{
					FunctionName:  call.QualifiedName(),
					ParameterName: name,
					Convention:    convention,
					Replacement:   suggested,
				},
				SuggestedFix: fmt.Sprintf("rename %s to %s", name, suggested),
			})
		}
	}
	return out
}

// classifyConvention names the convention a non-snake_case identifier
// follows. Unrecognized shapes return "" and are left alone.
func classifyConvention(name string) string {
	switch {
	case allCaps.MatchString(name):
		return "ALL_CAPS"
	case name[0] >= 'A' && name[0] <= 'Z':
		return "PascalCase"
	case strings.ContainsAny(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
		return "camelCase"
	}
	return ""
}

// toSnakeCase rewrites an identifier in snake_case.
func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && name[i-1] != '_' && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
