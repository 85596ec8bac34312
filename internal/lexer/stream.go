package lexer

import (
	"lexwalk/internal/token"
	"unicode/utf8"
)

// Tokenizer is what the parser pulls tokens from.
type Tokenizer interface {
	NextToken() token.Token
}

// Stream hands out a token slice one token at a time. Once the slice is
// exhausted it keeps returning the final EOF token.
type Stream struct {
	tokens []token.Token
	index  int
}

func NewStream(tokens []token.Token) *Stream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		eof := token.Token{Type: token.EOF, Line: 1, Column: 1}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Position = last.End()
			eof.Line = last.Line
			eof.Column = last.Column + utf8.RuneCountInString(last.Literal)
		}
		tokens = append(tokens, eof)
	}
	return &Stream{tokens: tokens}
}

// Lex tokenizes input with the default table and returns the filtered stream.
func Lex(input string) *Stream {
	return NewStream(Filter(Default().Tokenize(input)))
}

func (s *Stream) NextToken() token.Token {
	tok := s.tokens[s.index]
	if s.index < len(s.tokens)-1 {
		s.index++
	}
	return tok
}

// Tokens returns every token of the stream, including the trailing EOF.
func (s *Stream) Tokens() []token.Token {
	return s.tokens
}
