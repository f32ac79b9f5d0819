// Package lexer implements the s0 tokenizer.
package lexer

import (
	"github.com/s0lang/s0/pkg/ast"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokLParen TokenType = iota // (
	TokRParen                  // )
	TokAtom                    // any run of non-space, non-paren characters
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() && isSpace(s.peek()) {
		s.advance()
	}
}

// scanAtom accumulates a run of non-space, non-paren characters.
func (s *scanner) scanAtom() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() {
		ch := s.peek()
		if isSpace(ch) || ch == '(' || ch == ')' {
			break
		}
		s.advance()
	}

	return Token{
		Type:  TokAtom,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) nextToken() Token {
	s.skipWhitespace()

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}
	}

	startLine, startCol := s.line, s.col

	switch s.peek() {
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}
	}

	return s.scanAtom()
}

// Tokenize breaks source text into a slice of tokens ending with an EOF
// token. Tokenizing cannot fail: parens are single-character tokens,
// whitespace only separates, and every other character belongs to an atom.
// Empty input yields just the EOF token.
func Tokenize(source, filename string) []Token {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok := s.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens
}
