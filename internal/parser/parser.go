// Package parser reconstructs multi-line call statements, extracts
// function-call descriptors from Pine Script source, and builds the
// call-subset AST consumed by the validators.
package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/iamrichardD/mcp-server-pinescript/internal/lexer"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// ParseResult bundles the AST with the non-fatal errors and metrics of one
// parse. Errors never abort a parse; the AST is always present.
type ParseResult struct {
	AST     *Program           `json:"-"`
	Errors  []types.ParseError `json:"errors"`
	Metrics types.Metrics      `json:"metrics"`
}

// ParseScript tokenizes source, extracts every function call, and builds
// the Program AST from the top-level calls. Lexical and extraction errors
// are merged into one list.
func ParseScript(source string) ParseResult {
	start := time.Now()

	tokens, lexErrors := lexer.Tokenize(source)
	extraction := ExtractFunctionCalls(source)

	// Index descriptors by name offset so argument expressions that are
	// themselves calls become FunctionCallNode values.
	byOffset := make(map[int]types.FunctionCall, len(extraction.FunctionCalls))
	for _, call := range extraction.FunctionCalls {
		byOffset[call.Location.Offset] = call
	}

	program := &Program{Location: types.SourceLocation{Line: 1}}
	for _, call := range extraction.FunctionCalls {
		if call.Depth != 0 {
			continue
		}
		program.Statements = append(program.Statements, buildCallNode(source, call, byOffset))
	}

	errors := append([]types.ParseError{}, lexErrors...)
	errors = append(errors, extraction.Errors...)

	return ParseResult{
		AST:    program,
		Errors: errors,
		Metrics: types.Metrics{
			ValidationTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			FunctionsFound:   len(extraction.FunctionCalls),
			TokensScanned:    len(tokens),
			LinesScanned:     strings.Count(source, "\n") + 1,
		},
	}
}

// buildCallNode converts a descriptor into AST form, re-walking the raw
// argument list so the parameter order of the call site is preserved.
func buildCallNode(source string, call types.FunctionCall, byOffset map[int]types.FunctionCall) *FunctionCallNode {
	node := &FunctionCallNode{
		Name:      call.Name,
		Namespace: call.Namespace,
		Location:  call.Location,
	}

	positionalIndex := 0
	for _, raw := range call.RawParams {
		param := &ParameterNode{Index: -1}
		valueText := raw
		if name, value, ok := splitNamedArgument(raw); ok {
			param.Name = name
			valueText = value
			if v, found := call.Params.Named[name]; found {
				param.Location = v.Location
			}
		} else {
			param.Index = positionalIndex
			if positionalIndex < len(call.Params.Positional) {
				param.Location = call.Params.Positional[positionalIndex].Location
			}
			positionalIndex++
		}
		param.Value = buildValueNode(source, valueText, param.Location, byOffset)
		node.Parameters = append(node.Parameters, param)
	}
	return node
}

// buildValueNode classifies an argument expression into a literal, a
// nested call node, or a raw expression fallback.
func buildValueNode(source string, text string, loc types.SourceLocation, byOffset map[int]types.FunctionCall) Node {
	trimmed := strings.TrimSpace(text)

	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return &LiteralNode{Kind: LiteralString, Value: trimmed[1 : len(trimmed)-1], Location: loc}
		}
	}
	if trimmed == "true" || trimmed == "false" {
		return &LiteralNode{Kind: LiteralBoolean, Value: trimmed == "true", Location: loc}
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return &LiteralNode{Kind: LiteralNumber, Value: n, Location: loc}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && strings.Contains(trimmed, ".") {
		return &LiteralNode{Kind: LiteralNumber, Value: f, Location: loc}
	}

	// An argument that is exactly one nested call maps back to its
	// descriptor through the name offset.
	if idx := strings.IndexByte(trimmed, '('); idx > 0 {
		searchStart := loc.Offset
		if searchStart >= 0 && searchStart < len(source) {
			if abs := strings.Index(source[searchStart:], trimmed); abs >= 0 {
				if call, ok := byOffset[searchStart+abs]; ok && call.Location.Length == len(trimmed) {
					return buildCallNode(source, call, byOffset)
				}
			}
		}
	}

	return &RawExprNode{Text: trimmed, Location: loc}
}
