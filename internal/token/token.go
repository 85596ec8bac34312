package token

import "fmt"

type TokenType string

const (
	ILLEGAL = "ILLEGAL" // no other pattern claimed the character
	EOF     = "EOF"

	// Trivia, dropped by lexer.Filter
	SPACE   = "SPACE"
	TAB     = "TAB"
	NEWLINE = "NEWLINE"
	COMMENT = "COMMENT"

	// Identifiers + literals
	IDENT  = "IDENT"  // x, total_2
	INT    = "INT"    // 1343456
	REAL   = "REAL"   // 3.14
	STRING = "STRING" // "foobar" or 'foobar'

	// Operators
	ASSIGN   = ":="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"

	LT     = "<"
	LT_EQ  = "<="
	GT     = ">"
	GT_EQ  = ">="
	EQ     = "="
	NOT_EQ = "/="

	ROCKET = "=>"
	RANGE  = ".."

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	VAR         = "VAR"
	TRUE        = "TRUE"
	FALSE       = "FALSE"
	AND         = "AND"
	OR          = "OR"
	XOR         = "XOR"
	NOT         = "NOT"
	PRINT       = "PRINT"
	RETURN      = "RETURN"
	IF          = "IF"
	THEN        = "THEN"
	ELSE        = "ELSE"
	END         = "END"
	WHILE       = "WHILE"
	FOR         = "FOR"
	IN          = "IN"
	LOOP        = "LOOP"
	FUNC        = "FUNC"
	IS          = "IS"
	INT_TYPE    = "INT_TYPE"
	REAL_TYPE   = "REAL_TYPE"
	BOOL_TYPE   = "BOOL_TYPE"
	STRING_TYPE = "STRING_TYPE"
	EMPTY       = "EMPTY"
	READ_INT    = "READ_INT"
	READ_REAL   = "READ_REAL"
	READ_STRING = "READ_STRING"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src byte offset of the token
	Line     int // 1-based
	Column   int // 1-based, counted in runes
	Length   int // span length in bytes
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Position + t.Length
}

func (t Token) String() string {
	return fmt.Sprintf("TokenType: %s, Value: %s, Line: %d, Column: %d", t.Type, t.Literal, t.Line, t.Column)
}

var trivia = map[TokenType]bool{
	SPACE:   true,
	TAB:     true,
	NEWLINE: true,
	COMMENT: true,
}

// IsTrivia reports whether tokens of this type are invisible to the parser.
func IsTrivia(t TokenType) bool {
	return trivia[t]
}
