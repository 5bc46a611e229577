package rules

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/iamrichardD/mcp-server-pinescript/internal/lexer"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

var versionDirective = regexp.MustCompile(`^//@version=(\d+)\s*$`)

// CheckVersionDirective warns when a script declares an older language
// version than the one the linter targets. A script with no directive is
// left alone; only an explicit outdated declaration reports.
func CheckVersionDirective(env *Env, in *Input) []types.Violation {
	current := env.Rules.CurrentVersion()

	for _, tok := range in.Tokens {
		if tok.Type != lexer.TokenComment {
			continue
		}
		m := versionDirective.FindStringSubmatch(tok.Value)
		if m == nil {
			continue
		}
		declared, err := strconv.Atoi(m[1])
		if err != nil || declared >= current {
			return nil
		}
		return []types.Violation{{
			Rule:     types.RuleOutdatedVersion,
			Severity: types.SeverityWarning,
			Category: "language_version",
			Message:  fmt.Sprintf("script declares version %d, current is %d", declared, current),
			Line:     tok.Line,
			Column:   tok.Column,
			Metadata: types.ViolationMetadata{
				Version: declared,
			},
			SuggestedFix: fmt.Sprintf("update the directive to //@version=%d", current),
		}}
	}
	return nil
}
