package parser

import (
	"strings"
	"time"

	"github.com/iamrichardD/mcp-server-pinescript/internal/lexer"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// ExtractionResult is the output of one extraction pass: every function
// call found in the source (nested calls included, each as its own entry),
// plus non-fatal errors and run metrics.
type ExtractionResult struct {
	FunctionCalls []types.FunctionCall `json:"functionCalls"`
	Errors        []types.ParseError   `json:"errors"`
	Metrics       types.Metrics        `json:"metrics"`
}

// maxNestingDepth bounds recursion into nested call arguments. Real
// scripts nest two or three levels; anything deeper is degenerate input.
const maxNestingDepth = 32

// ExtractFunctionCalls walks source in a single pass and produces a
// descriptor for every function call, however deeply nested. Malformed
// input yields a best-effort partial result with error entries; extraction
// never panics.
func ExtractFunctionCalls(source string) ExtractionResult {
	start := time.Now()
	e := &extractor{src: source, lineStarts: computeLineStarts(source)}
	e.scanRange(0, len(source), 0)

	return ExtractionResult{
		FunctionCalls: e.calls,
		Errors:        e.errors,
		Metrics: types.Metrics{
			ValidationTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			FunctionsFound:   len(e.calls),
			LinesScanned:     len(e.lineStarts),
		},
	}
}

type extractor struct {
	src        string
	lineStarts []int
	calls      []types.FunctionCall
	errors     []types.ParseError
}

// computeLineStarts returns the byte offset of the start of each line.
func computeLineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// locAt converts an absolute byte offset to a 1-based line and 0-based
// column using binary search over the line-start table.
func (e *extractor) locAt(offset int) (line, column int) {
	lo, hi := 0, len(e.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if e.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - e.lineStarts[lo]
}

// scanRange scans src[from:to] for function calls, recursing into each
// call's argument ranges. depth counts nesting of the calls themselves.
func (e *extractor) scanRange(from, to, depth int) {
	if depth > maxNestingDepth {
		return
	}

	i := from
	for i < to {
		ch := e.src[i]
		switch {
		case ch == '"' || ch == '\'':
			i = e.skipString(i, to)
		case ch == '/' && i+1 < to && e.src[i+1] == '/':
			i = e.skipLineComment(i, to)
		case isIdentStartChar(ch):
			nameStart := i
			i = e.scanQualifiedName(i, to)
			name := e.src[nameStart:i]
			if i < to && e.src[i] == '(' && !isCallKeyword(name) {
				i = e.parseCall(nameStart, name, i, to, depth)
			}
		default:
			i++
		}
	}
}

// scanQualifiedName consumes an identifier optionally extended by
// `.identifier` segments and returns the offset past the last segment.
func (e *extractor) scanQualifiedName(from, to int) int {
	i := from
	for i < to && isIdentPartChar(e.src[i]) {
		i++
	}
	for i+1 < to && e.src[i] == '.' && isIdentStartChar(e.src[i+1]) {
		i++
		for i < to && isIdentPartChar(e.src[i]) {
			i++
		}
	}
	return i
}

// skipString advances past a quoted literal starting at from.
func (e *extractor) skipString(from, to int) int {
	quote := e.src[from]
	i := from + 1
	for i < to {
		switch e.src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			// Strings do not span lines; give up at the line break.
			return i
		}
		i++
	}
	return to
}

func (e *extractor) skipLineComment(from, to int) int {
	i := from
	for i < to && e.src[i] != '\n' {
		i++
	}
	return i
}

// parseCall parses one call whose name starts at nameStart and whose
// opening paren sits at open. It emits a descriptor, recurses into the
// argument ranges for nested calls, and returns the offset to resume
// scanning at. A call whose parentheses never balance produces an error
// entry and no descriptor; scanning resumes just past the open paren so
// complete inner calls are still found.
func (e *extractor) parseCall(nameStart int, name string, open, to, depth int) int {
	closing, argRanges := e.splitArguments(open, to)
	if closing < 0 {
		line, col := e.locAt(open)
		e.errors = append(e.errors, types.ParseError{
			Message: "unbalanced parentheses in call to " + name,
			Line:    line,
			Column:  col,
		})
		return open + 1
	}

	namespace, bare := types.SplitQualifiedName(name)
	line, col := e.locAt(nameStart)
	call := types.FunctionCall{
		Name:      bare,
		Namespace: namespace,
		Location: types.SourceLocation{
			Line:   line,
			Column: col,
			Offset: nameStart,
			Length: closing + 1 - nameStart,
		},
		Depth: depth,
		Params: types.ParamBag{
			Positional: []types.Value{},
		},
	}

	for _, r := range argRanges {
		slice := e.src[r.start:r.end]
		raw := strings.TrimSpace(slice)
		if raw == "" {
			continue
		}
		call.RawParams = append(call.RawParams, raw)

		// Anchor the location at the first non-space byte of the argument.
		trimStart := r.start + (len(slice) - len(strings.TrimLeft(slice, " \t\r\n")))
		argLine, argCol := e.locAt(trimStart)
		value := types.Value{
			Raw: raw,
			Location: types.SourceLocation{
				Line:   argLine,
				Column: argCol,
				Offset: trimStart,
				Length: len(raw),
			},
		}

		if paramName, valueText, ok := splitNamedArgument(raw); ok {
			value.Raw = valueText
			if call.Params.Named == nil {
				call.Params.Named = make(map[string]types.Value)
			}
			call.Params.Named[paramName] = value
		} else {
			call.Params.Positional = append(call.Params.Positional, value)
		}
	}

	e.calls = append(e.calls, call)

	// Nested calls inside each argument become their own descriptors.
	for _, r := range argRanges {
		e.scanRange(r.start, r.end, depth+1)
	}

	return closing + 1
}

type argRange struct {
	start, end int
}

// splitArguments finds the close paren matching src[open] and returns the
// argument ranges split on top-level commas. Commas nested in inner parens,
// brackets, or string literals do not split. Returns closing = -1 when the
// parens never balance inside [open, to).
func (e *extractor) splitArguments(open, to int) (closing int, args []argRange) {
	depth := 1
	bracketDepth := 0
	argStart := open + 1

	i := open + 1
	for i < to {
		ch := e.src[i]
		switch ch {
		case '"', '\'':
			i = e.skipString(i, to)
			continue
		case '/':
			if i+1 < to && e.src[i+1] == '/' {
				i = e.skipLineComment(i, to)
				continue
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if i > argStart {
					args = append(args, argRange{argStart, i})
				}
				return i, args
			}
		case '[':
			bracketDepth++
		case ']':
			if bracketDepth > 0 {
				bracketDepth--
			}
		case ',':
			if depth == 1 && bracketDepth == 0 {
				args = append(args, argRange{argStart, i})
				argStart = i + 1
			}
		}
		i++
	}
	return -1, nil
}

// splitNamedArgument detects `name = value` syntax at the top level of an
// argument. The equals sign must not be part of a comparison (`==`, `<=`,
// `>=`, `!=`) or arrow (`=>`), and everything left of it must be a plain
// identifier.
func splitNamedArgument(raw string) (name, value string, ok bool) {
	depth := 0
	state := stateNone
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]

		if escaped {
			escaped = false
			continue
		}

		switch state {
		case stateSingle:
			if ch == '\\' {
				escaped = true
			} else if ch == '\'' {
				state = stateNone
			}
			continue
		case stateDouble:
			if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				state = stateNone
			}
			continue
		}

		switch ch {
		case '\'':
			state = stateSingle
		case '"':
			state = stateDouble
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(raw) && (raw[i+1] == '=' || raw[i+1] == '>') {
				return "", "", false
			}
			if i > 0 && strings.ContainsRune("=!<>:+-*/", rune(raw[i-1])) {
				return "", "", false
			}
			candidate := strings.TrimSpace(raw[:i])
			if !isIdentifier(candidate) {
				return "", "", false
			}
			return candidate, strings.TrimSpace(raw[i+1:]), true
		}
	}
	return "", "", false
}

// isIdentifier reports whether s is a plain unqualified identifier.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStartChar(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPartChar(s[i]) {
			return false
		}
	}
	return true
}

// isCallKeyword filters out control-flow words that precede parentheses
// without being calls, e.g. `if (cond)`.
func isCallKeyword(name string) bool {
	return lexer.IsKeyword(name)
}

func isIdentStartChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPartChar(ch byte) bool {
	return isIdentStartChar(ch) || (ch >= '0' && ch <= '9')
}
