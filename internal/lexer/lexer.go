package lexer

import (
	"strconv"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// Tokenize scans source and returns the complete token stream plus any
// lexical errors encountered. It is a pure function of its input and always
// returns, regardless of how malformed the source is. The stream ends with
// a TokenEOF token.
func Tokenize(source string) ([]Token, []types.ParseError) {
	s := &scanner{src: source, line: 1}
	return s.run()
}

type scanner struct {
	src    string
	pos    int // byte offset of the next unread character
	line   int // 1-based
	col    int // 0-based column of the next unread character
	tokens []Token
	errors []types.ParseError
}

func (s *scanner) run() ([]Token, []types.ParseError) {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\n':
			s.emit(TokenNewline, s.pos, 1, nil)
			s.pos++
			s.line++
			s.col = 0
		case ch == '\r':
			// Swallowed; the following \n produces the newline token.
			s.advance(1)
		case ch == ' ' || ch == '\t':
			s.advance(1)
		case ch == '/' && s.peek(1) == '/':
			s.scanComment()
		case ch == '"' || ch == '\'':
			s.scanString(ch)
		case isDigit(ch):
			s.scanNumber()
		case isIdentStart(ch):
			s.scanIdentifier()
		default:
			s.scanOperator()
		}
	}

	s.tokens = append(s.tokens, Token{
		Type: TokenEOF, Line: s.line, Column: s.col, Offset: s.pos,
	})
	return s.tokens, s.errors
}

func (s *scanner) peek(ahead int) byte {
	if s.pos+ahead < len(s.src) {
		return s.src[s.pos+ahead]
	}
	return 0
}

func (s *scanner) advance(n int) {
	s.pos += n
	s.col += n
}

func (s *scanner) emit(tt TokenType, start, length int, literal any) {
	s.tokens = append(s.tokens, Token{
		Type:    tt,
		Value:   s.src[start : start+length],
		Literal: literal,
		Line:    s.line,
		Column:  s.col - (s.pos - start),
		Offset:  start,
		Length:  length,
	})
}

func (s *scanner) addError(line, col int, msg string) {
	s.errors = append(s.errors, types.ParseError{
		Message: msg,
		Line:    line,
		Column:  col,
	})
}

// scanComment consumes `//` to end of line as a single comment token. The
// token value keeps the full text so the version-directive rule can read
// `//@version=N` out of it.
func (s *scanner) scanComment() {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.advance(1)
	}
	s.emit(TokenComment, start, s.pos-start, nil)
}

// scanString consumes a quoted literal delimited by quote, honoring
// backslash escapes. An unterminated string produces an error entry plus a
// TokenError covering the consumed text, and scanning resumes at the line
// end so the rest of the source still tokenizes.
func (s *scanner) scanString(quote byte) {
	start := s.pos
	startLine, startCol := s.line, s.col
	s.advance(1) // opening quote

	var decoded strings.Builder
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == '\n' {
			break
		}
		if ch == '\\' && s.pos+1 < len(s.src) {
			next := s.src[s.pos+1]
			switch next {
			case 'n':
				decoded.WriteByte('\n')
			case 't':
				decoded.WriteByte('\t')
			default:
				decoded.WriteByte(next)
			}
			s.advance(2)
			continue
		}
		if ch == quote {
			s.advance(1)
			s.tokens = append(s.tokens, Token{
				Type:    TokenString,
				Value:   s.src[start:s.pos],
				Literal: decoded.String(),
				Line:    startLine,
				Column:  startCol,
				Offset:  start,
				Length:  s.pos - start,
			})
			return
		}
		decoded.WriteByte(ch)
		s.advance(1)
	}

	s.addError(startLine, startCol, "unterminated string literal")
	s.tokens = append(s.tokens, Token{
		Type:    TokenError,
		Value:   s.src[start:s.pos],
		Line:    startLine,
		Column:  startCol,
		Offset:  start,
		Length:  s.pos - start,
	})
}

// scanNumber consumes an integer or float literal. A single decimal point
// followed by a digit makes the literal a float.
func (s *scanner) scanNumber() {
	start := s.pos
	startLine, startCol := s.line, s.col
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.advance(1)
	}

	isFloat := false
	if s.pos < len(s.src) && s.src[s.pos] == '.' && isDigit(s.peek(1)) {
		isFloat = true
		s.advance(1)
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.advance(1)
		}
	}

	text := s.src[start:s.pos]
	var literal any
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			s.addError(startLine, startCol, "invalid float literal")
		}
		literal = f
	} else {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			s.addError(startLine, startCol, "invalid integer literal")
		}
		literal = n
	}

	s.tokens = append(s.tokens, Token{
		Type:    TokenNumber,
		Value:   text,
		Literal: literal,
		Line:    startLine,
		Column:  startCol,
		Offset:  start,
		Length:  len(text),
	})
}

func (s *scanner) scanIdentifier() {
	start := s.pos
	startLine, startCol := s.line, s.col
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.advance(1)
	}

	text := s.src[start:s.pos]
	tt := TokenIdentifier
	var literal any
	if kw, ok := keywords[text]; ok {
		tt = kw
		if text == "true" {
			literal = true
		} else if text == "false" {
			literal = false
		}
	}

	s.tokens = append(s.tokens, Token{
		Type:    tt,
		Value:   text,
		Literal: literal,
		Line:    startLine,
		Column:  startCol,
		Offset:  start,
		Length:  len(text),
	})
}

// scanOperator consumes one operator or punctuation token, preferring the
// longest match. Characters that fit nothing are reported as lexical errors
// and skipped.
func (s *scanner) scanOperator() {
	start := s.pos
	ch := s.src[s.pos]
	next := s.peek(1)

	two := string(ch) + string(next)
	switch two {
	case "==", "!=", "<=", ">=":
		s.advance(2)
		s.emit(TokenComparison, start, 2, nil)
		return
	case ":=", "+=", "-=", "*=", "/=":
		s.advance(2)
		s.emit(TokenAssignment, start, 2, nil)
		return
	case "=>":
		s.advance(2)
		s.emit(TokenPunctuation, start, 2, nil)
		return
	}

	switch ch {
	case '+', '-', '*', '/', '%':
		s.advance(1)
		s.emit(TokenArithmetic, start, 1, nil)
	case '<', '>':
		s.advance(1)
		s.emit(TokenComparison, start, 1, nil)
	case '=':
		s.advance(1)
		s.emit(TokenAssignment, start, 1, nil)
	case '?', ':':
		s.advance(1)
		s.emit(TokenLogical, start, 1, nil)
	case '(', ')', '[', ']', ',', '.':
		s.advance(1)
		s.emit(TokenPunctuation, start, 1, nil)
	default:
		s.addError(s.line, s.col, "unexpected character "+strconv.QuoteRune(rune(ch)))
		s.advance(1)
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
