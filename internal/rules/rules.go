// Package rules implements the individual style and correctness checks.
// Every rule is a pure function over one shared parse of the script: the
// same token stream and call extraction feed all of them, so no rule
// re-tokenizes and all report identical positions for the same construct.
package rules

import (
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/config"
	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/lexer"
	"github.com/iamrichardD/mcp-server-pinescript/internal/parser"
	"github.com/iamrichardD/mcp-server-pinescript/internal/signature"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// Input is the shared parse every rule consumes. Built once per script.
type Input struct {
	Source string
	Lines  []string
	Tokens []lexer.Token
	Calls  []types.FunctionCall
	Errors []types.ParseError
}

// NewInput tokenizes and extracts calls from source exactly once.
func NewInput(source string) *Input {
	tokens, lexErrors := lexer.Tokenize(source)
	extraction := parser.ExtractFunctionCalls(source)

	errs := make([]types.ParseError, 0, len(lexErrors)+len(extraction.Errors))
	errs = append(errs, lexErrors...)
	errs = append(errs, extraction.Errors...)

	return &Input{
		Source: source,
		Lines:  strings.Split(source, "\n"),
		Tokens: tokens,
		Calls:  extraction.FunctionCalls,
		Errors: errs,
	}
}

// Env bundles the immutable lookup data rules consult. Shared read-only
// across concurrent validations.
type Env struct {
	Rules *config.Rules
	Docs  *docs.Index
}

// Func is one rule check. Implementations must not mutate in or env.
type Func func(env *Env, in *Input) []types.Violation

// Rule pairs an identifier with its check for the registry.
type Rule struct {
	ID    string
	Check Func
}

// Registry returns every rule in its stable reporting order.
func Registry() []Rule {
	return []Rule{
		{types.RuleOutdatedVersion, CheckVersionDirective},
		{types.RuleShortTitleTooLong, CheckShortTitle},
		{types.RuleInvalidPrecision, checkRange(types.RuleInvalidPrecision)},
		{types.RuleInvalidMaxBarsBack, checkRange(types.RuleInvalidMaxBarsBack)},
		{types.RuleInvalidMaxLinesCount, checkRange(types.RuleInvalidMaxLinesCount)},
		{types.RuleInvalidMaxLabelsCount, checkRange(types.RuleInvalidMaxLabelsCount)},
		{types.RuleInvalidMaxBoxesCount, checkRange(types.RuleInvalidMaxBoxesCount)},
		{types.RuleDeprecatedFunction, CheckDeprecatedFunctions},
		{types.RuleMissingNamespace, CheckMissingNamespace},
		{types.RuleNamespaceConflict, CheckNamespaceConflict},
		{types.RuleDeprecatedParamName, CheckDeprecatedParameters},
		{types.RuleInvalidParamNaming, CheckParameterNaming},
		{types.RuleSignatureValidation, CheckSignatures},
	}
}

// CheckSignatures adapts signature validation to the shared-parse rule
// shape.
func CheckSignatures(env *Env, in *Input) []types.Violation {
	var out []types.Violation
	for i := range in.Calls {
		out = append(out, signature.ValidateCall(env.Docs, &in.Calls[i])...)
	}
	return out
}
