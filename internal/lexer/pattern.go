package lexer

import (
	"lexwalk/internal/token"
	"regexp"
)

// Pattern is one row of the pattern table. Rank breaks ties between matches
// that start at the same offset: the lowest rank wins, and equal ranks fall
// back to registration order.
type Pattern struct {
	Type token.TokenType
	Rule *regexp.Regexp
	Rank int
}

// NewPattern compiles rule case-insensitively.
func NewPattern(t token.TokenType, rule string, rank int) Pattern {
	return Pattern{
		Type: t,
		Rule: regexp.MustCompile("(?i)" + rule),
		Rank: rank,
	}
}

func keyword(t token.TokenType, word string) Pattern {
	return NewPattern(t, `\b`+word+`\b`, 3)
}

// DefaultPatterns returns the pattern table of the language in registration
// order. Keywords are registered before IDENT so that a keyword and an
// identifier starting at the same offset resolve to the keyword.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Brackets
		NewPattern(token.LBRACE, `\{`, 2),
		NewPattern(token.RBRACE, `\}`, 2),
		NewPattern(token.LPAREN, `\(`, 2),
		NewPattern(token.RPAREN, `\)`, 2),
		NewPattern(token.LBRACKET, `\[`, 2),
		NewPattern(token.RBRACKET, `\]`, 2),

		// Values. The string rule is greedy up to the last quote on the line.
		NewPattern(token.STRING, `'.*'|".*"`, 1),
		NewPattern(token.INT, `[0-9]+`, 3),
		NewPattern(token.REAL, `[0-9]+\.[0-9]+`, 2),
		keyword(token.TRUE, "true"),
		keyword(token.FALSE, "false"),

		// Boolean operators
		keyword(token.AND, "and"),
		keyword(token.OR, "or"),
		keyword(token.XOR, "xor"),
		keyword(token.NOT, "not"),

		// Relations
		NewPattern(token.LT, `<`, 3),
		NewPattern(token.GT, `>`, 3),
		NewPattern(token.LT_EQ, `<=`, 2),
		NewPattern(token.GT_EQ, `>=`, 2),
		NewPattern(token.EQ, `=`, 3),
		NewPattern(token.NOT_EQ, `/=`, 2),

		// Arithmetic
		NewPattern(token.PLUS, `\+`, 2),
		NewPattern(token.MINUS, `-`, 2),
		NewPattern(token.ASTERISK, `\*`, 2),
		NewPattern(token.SLASH, `/`, 3),

		// Statements
		keyword(token.PRINT, "print"),
		keyword(token.RETURN, "return"),
		keyword(token.IF, "if"),
		keyword(token.THEN, "then"),
		keyword(token.ELSE, "else"),
		keyword(token.END, "end"),
		keyword(token.WHILE, "while"),
		keyword(token.FOR, "for"),
		keyword(token.IN, "in"),
		keyword(token.LOOP, "loop"),
		keyword(token.FUNC, "func"),

		// Types
		keyword(token.INT_TYPE, "int"),
		keyword(token.REAL_TYPE, "real"),
		keyword(token.BOOL_TYPE, "bool"),
		keyword(token.STRING_TYPE, "string"),
		keyword(token.EMPTY, "empty"),

		// Function bodies
		keyword(token.IS, "is"),
		NewPattern(token.ROCKET, `=>`, 2),

		// Host input
		keyword(token.READ_INT, "readInt"),
		keyword(token.READ_REAL, "readReal"),
		keyword(token.READ_STRING, "readString"),

		// Declarations
		keyword(token.VAR, "var"),
		NewPattern(token.ASSIGN, `:=`, 2),
		NewPattern(token.IDENT, `[A-Za-z_][0-9A-Za-z_]*`, 3),

		// Punctuation
		NewPattern(token.COMMA, `,`, 2),
		NewPattern(token.SEMICOLON, `;`, 2),
		NewPattern(token.COLON, `:`, 2),
		NewPattern(token.COMMENT, `//[^\n]*`, 1),

		NewPattern(token.ILLEGAL, `.`, 5),

		// Whitespace
		NewPattern(token.SPACE, `\s`, 4),
		NewPattern(token.NEWLINE, `\n`, 2),
		NewPattern(token.TAB, `\t`, 3),

		NewPattern(token.PERIOD, `\.`, 3),
		NewPattern(token.RANGE, `\.\.`, 2),
	}
}
