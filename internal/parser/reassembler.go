package parser

import "strings"

// CallStatement is one logical call statement after multi-line
// reassembly, with the 1-based physical line span it covers.
type CallStatement struct {
	Text      string `json:"text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// CallStatements reassembles every logical call statement in lines. A
// statement opening a call whose parentheses do not close on the same
// physical line absorbs the continuation lines until they balance.
func CallStatements(lines []string) []CallStatement {
	var out []CallStatement
	for i := 0; i < len(lines); i++ {
		if !startsFunctionCall(lines[i]) {
			continue
		}
		text, end := CollectCompleteFunction(lines, i)
		out = append(out, CallStatement{
			Text:      text,
			StartLine: i + 1,
			EndLine:   end + 1,
		})
		i = end
	}
	return out
}

// stringState is the explicit automaton for "are we inside a string
// literal" tracking. The state is carried across physical lines so that a
// multi-line call whose string argument contains parentheses never confuses
// the depth count.
type stringState int

const (
	stateNone stringState = iota
	stateSingle
	stateDouble
)

// parenDelta scans one physical line and returns the change in effective
// parenthesis depth, ignoring parentheses inside string literals and line
// comments. The incoming string state is consumed and the outgoing state
// returned so callers can thread it across lines.
func parenDelta(line string, state stringState) (delta int, out stringState) {
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]

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
		case stateDouble:
			if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				state = stateNone
			}
		default:
			switch ch {
			case '\'':
				state = stateSingle
			case '"':
				state = stateDouble
			case '(':
				delta++
			case ')':
				delta--
			case '/':
				if i+1 < len(line) && line[i+1] == '/' {
					return delta, state
				}
			}
		}
	}
	return delta, state
}

// CollectCompleteFunction reassembles a function-call statement that starts
// on lines[startIndex] and may span several physical lines. It scans
// forward until unmatched opening parentheses return to zero and returns
// the joined logical statement plus the index of the last line consumed.
//
// If the parentheses never balance before end of input, only the starting
// line is returned so downstream extraction can still do best-effort work.
func CollectCompleteFunction(lines []string, startIndex int) (text string, endLine int) {
	if startIndex < 0 || startIndex >= len(lines) {
		return "", startIndex
	}

	depth, state := parenDelta(lines[startIndex], stateNone)
	if depth <= 0 {
		return lines[startIndex], startIndex
	}

	parts := []string{lines[startIndex]}
	for i := startIndex + 1; i < len(lines); i++ {
		var delta int
		delta, state = parenDelta(lines[i], state)
		parts = append(parts, lines[i])
		depth += delta
		if depth <= 0 {
			return strings.Join(parts, " "), i
		}
	}

	// Unbalanced to end of input: fall back to the starting line.
	return lines[startIndex], startIndex
}

// startsFunctionCall reports whether the line contains the opening of a
// function call: an identifier (optionally dot-qualified) immediately
// followed by `(`, outside of strings and comments.
func startsFunctionCall(line string) bool {
	state := stateNone
	escaped := false
	identLen := 0
	for i := 0; i < len(line); i++ {
		ch := line[i]

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
		case stateDouble:
			if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				state = stateNone
			}
		default:
			switch {
			case ch == '\'':
				state = stateSingle
				identLen = 0
			case ch == '"':
				state = stateDouble
				identLen = 0
			case ch == '/' && i+1 < len(line) && line[i+1] == '/':
				return false
			case ch == '(' && identLen > 0:
				return true
			case isIdentChar(ch) || ch == '.':
				identLen++
			default:
				identLen = 0
			}
		}
	}
	return false
}

func isIdentChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}
