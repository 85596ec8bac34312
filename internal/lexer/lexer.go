package lexer

import (
	"lexwalk/internal/token"
	"log/slog"
	"sort"
	"unicode/utf8"
)

// Lexer runs every pattern of its table against the whole input and keeps,
// for each start offset, the lowest ranked match. Accepted matches never
// overlap: a candidate that starts inside the previously accepted match is
// dropped even when it is longer.
type Lexer struct {
	patterns []Pattern
	log      *slog.Logger
}

type match struct {
	start int
	end   int
	rank  int
	order int // registration index of the pattern
	typ   token.TokenType
}

func New(patterns ...Pattern) *Lexer {
	return &Lexer{patterns: patterns, log: slog.Default()}
}

// Default returns a lexer over DefaultPatterns.
func Default() *Lexer {
	return New(DefaultPatterns()...)
}

// WithLogger replaces the logger used for debug output.
func (l *Lexer) WithLogger(log *slog.Logger) *Lexer {
	if log != nil {
		l.log = log
	}
	return l
}

// Patterns returns the table in registration order.
func (l *Lexer) Patterns() []Pattern {
	return l.patterns
}

// Tokenize returns the accepted tokens in ascending offset order followed by
// a single EOF token. Trivia (spaces, tabs, newlines, comments) is kept; use
// Filter before handing the result to the parser.
func (l *Lexer) Tokenize(input string) []token.Token {
	best := l.bestByStart(input)

	starts := make([]int, 0, len(best))
	for start := range best {
		starts = append(starts, start)
	}
	sort.Ints(starts)

	tokens := make([]token.Token, 0, len(starts)+1)
	pos := newCursor()
	lastEnd := -1
	skipped := 0

	for _, start := range starts {
		m := best[start]
		if lastEnd >= 0 && m.start < lastEnd {
			skipped++
			continue
		}

		pos.advance(input[pos.offset:m.start])
		tokens = append(tokens, token.Token{
			Type:     m.typ,
			Literal:  input[m.start:m.end],
			Position: m.start,
			Line:     pos.line,
			Column:   pos.column,
			Length:   m.end - m.start,
		})
		pos.advance(input[m.start:m.end])
		lastEnd = m.end
	}

	pos.advance(input[pos.offset:])
	tokens = append(tokens, token.Token{
		Type:     token.EOF,
		Position: len(input),
		Line:     pos.line,
		Column:   pos.column,
	})

	l.log.Debug("tokenized input",
		slog.Int("bytes", len(input)),
		slog.Int("tokens", len(tokens)),
		slog.Int("candidates", len(starts)),
		slog.Int("overlapping", skipped))

	return tokens
}

// bestByStart matches every pattern independently against the whole input
// and keeps the winning candidate per start offset.
func (l *Lexer) bestByStart(input string) map[int]match {
	best := make(map[int]match)
	for i, p := range l.patterns {
		for _, loc := range p.Rule.FindAllStringIndex(input, -1) {
			if loc[1] == loc[0] {
				continue
			}
			candidate := match{start: loc[0], end: loc[1], rank: p.Rank, order: i, typ: p.Type}
			current, ok := best[loc[0]]
			if !ok || candidate.beats(current) {
				best[loc[0]] = candidate
			}
		}
	}
	return best
}

func (m match) beats(other match) bool {
	if m.rank != other.rank {
		return m.rank < other.rank
	}
	return m.order < other.order
}

// Filter drops whitespace and comment tokens. The input slice is not modified.
func Filter(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		if token.IsTrivia(tok.Type) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// cursor tracks the 1-based line and column of a byte offset.
type cursor struct {
	offset int
	line   int
	column int
}

func newCursor() *cursor {
	return &cursor{line: 1, column: 1}
}

func (c *cursor) advance(text string) {
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == '\n' {
			c.line++
			c.column = 1
		} else {
			c.column++
		}
		c.offset += size
		text = text[size:]
	}
}
