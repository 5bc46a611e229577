// Package lexer converts raw Pine Script source text into a flat stream of
// typed tokens with accurate 1-based line and 0-based column positions.
//
// The lexer never fails: malformed input produces TokenError entries and a
// parallel error list, and scanning always runs to the end of the source.
package lexer

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenNewline

	// Literals and names
	TokenIdentifier
	TokenKeyword
	TokenString
	TokenNumber

	// Operators
	TokenArithmetic // + - * / %
	TokenComparison // == != < <= > >=
	TokenLogical    // and or not ? :
	TokenAssignment // = := += -= *= /=

	// Structure
	TokenPunctuation // ( ) [ ] , . =>
	TokenComment     // // to end of line, including //@version directives
)

var tokenTypeNames = map[TokenType]string{
	TokenEOF:         "EOF",
	TokenError:       "ERROR",
	TokenNewline:     "NEWLINE",
	TokenIdentifier:  "IDENTIFIER",
	TokenKeyword:     "KEYWORD",
	TokenString:      "STRING",
	TokenNumber:      "NUMBER",
	TokenArithmetic:  "ARITHMETIC",
	TokenComparison:  "COMPARISON",
	TokenLogical:     "LOGICAL",
	TokenAssignment:  "ASSIGNMENT",
	TokenPunctuation: "PUNCTUATION",
	TokenComment:     "COMMENT",
}

// String returns the canonical name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexical unit of source text. Value is the exact source
// slice; Literal carries the decoded value for string, number, and bool
// tokens (string, int64, float64, bool). Tokens are immutable once emitted.
type Token struct {
	Type    TokenType
	Value   string
	Literal any
	Line    int // 1-based
	Column  int // 0-based byte column
	Offset  int // byte offset into the source
	Length  int
}

// String renders the token for diagnostics.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Value, t.Line, t.Column)
}

// keywords is the fixed reserved-word set of the language subset the
// validators care about. Declaration and control-flow words lex as
// TokenKeyword; and/or/not lex as TokenLogical; true/false lex as
// TokenKeyword with a decoded bool literal.
var keywords = map[string]TokenType{
	"if":     TokenKeyword,
	"else":   TokenKeyword,
	"for":    TokenKeyword,
	"to":     TokenKeyword,
	"by":     TokenKeyword,
	"while":  TokenKeyword,
	"switch": TokenKeyword,
	"var":    TokenKeyword,
	"varip":  TokenKeyword,
	"import": TokenKeyword,
	"export": TokenKeyword,
	"method": TokenKeyword,
	"type":   TokenKeyword,
	"enum":   TokenKeyword,
	"const":  TokenKeyword,
	"simple": TokenKeyword,
	"series": TokenKeyword,
	"true":   TokenKeyword,
	"false":  TokenKeyword,
	"na":     TokenKeyword,
	"and":    TokenLogical,
	"or":     TokenLogical,
	"not":    TokenLogical,
}

// IsKeyword reports whether the identifier text is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}
