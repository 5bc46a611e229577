package rules

import (
	"fmt"

	"github.com/iamrichardD/mcp-server-pinescript/internal/lexer"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// CheckNamespaceConflict flags variable declarations whose name shadows a
// built-in namespace, like `position = 1`. Detection works on the token
// stream: an identifier at the start of a statement, optionally preceded
// by a declaration keyword, directly followed by an assignment operator.
func CheckNamespaceConflict(env *Env, in *Input) []types.Violation {
	var out []types.Violation

	atStatementStart := true
	for i := 0; i < len(in.Tokens); i++ {
		tok := in.Tokens[i]
		switch tok.Type {
		case lexer.TokenNewline:
			atStatementStart = true
			continue
		case lexer.TokenComment:
			continue
		case lexer.TokenKeyword:
			// `var position = 1` still declares position.
			if atStatementStart && (tok.Value == "var" || tok.Value == "varip") {
				continue
			}
			atStatementStart = false
			continue
		case lexer.TokenIdentifier:
			if atStatementStart && env.Rules.IsBuiltinNamespace(tok.Value) && isAssignmentNext(in.Tokens, i+1) {
				out = append(out, types.Violation{
					Rule:     types.RuleNamespaceConflict,
					Severity: types.SeverityError,
					Category: "naming_convention",
					Message:  fmt.Sprintf("%q is a built-in namespace and cannot be used as a variable name", tok.Value),
					Line:     tok.Line,
					Column:   tok.Column,
					Metadata: types.ViolationMetadata{
						ActualValue: tok.Value,
						Namespace:   tok.Value,
					},
					SuggestedFix: fmt.Sprintf("rename the variable, e.g. %sValue", tok.Value),
				})
			}
			atStatementStart = false
		default:
			atStatementStart = false
		}
	}
	return out
}

// isAssignmentNext reports whether the token at i is `=` or `:=`.
func isAssignmentNext(tokens []lexer.Token, i int) bool {
	if i >= len(tokens) {
		return false
	}
	t := tokens[i]
	return t.Type == lexer.TokenAssignment && (t.Value == "=" || t.Value == ":=")
}
