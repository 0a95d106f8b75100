// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides the tinyjs lexer. A Scanner is always positioned
// on a current token and can hand out independent, replayable scanners over
// any source range it has already passed.
package scanner

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"nickandperla.net/tinyjs/internal/token"
)

// Item represents a scanned token with its value.
type Item struct {
	Token token.Token
	Value string // Identifier text, decoded string content, or literal text
	Pos   int    // Byte offset of the token start within the scanner source
	Line  int    // Line number where this token started (1-based)
	Col   int    // Column where this token started (1-based)
}

// SyntaxError reports an unexpected token or malformed literal.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

// Scanner tokenizes tinyjs source text.
type Scanner struct {
	src       string
	firstLine int // Line number of src[0] in the original program

	off       int // Read offset
	line      int
	lineStart int

	cur  Item
	last Item
	err  error
}

// NewFromString creates a Scanner over s positioned on its first token.
func NewFromString(s string) *Scanner {
	return NewAt(s, 1)
}

// New creates a Scanner from an io.Reader. The whole input is read up front
// because replayable ranges are slices of the source text.
func New(r io.Reader) (*Scanner, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewFromString(string(data)), nil
}

// NewAt creates a Scanner over src, which starts on the given line of a
// larger program. Function bodies are re-scanned this way on every call.
func NewAt(src string, line int) *Scanner {
	s := &Scanner{src: src, firstLine: line}
	s.Reset()
	return s
}

// Reset rewinds the scanner to the start of its source and scans the first
// token again.
func (s *Scanner) Reset() {
	s.off = 0
	s.line = s.firstLine
	s.lineStart = 0
	s.err = nil
	s.cur = Item{}
	s.last = Item{}
	s.scan()
}

// Current returns the current token.
func (s *Scanner) Current() Item {
	return s.cur
}

// Token returns the kind of the current token.
func (s *Scanner) Token() token.Token {
	return s.cur.Token
}

// Value returns the text of the current token.
func (s *Scanner) Value() string {
	return s.cur.Value
}

// Last returns the previously consumed token.
func (s *Scanner) Last() Item {
	return s.last
}

// Line returns the line number of the current token (1-based).
func (s *Scanner) Line() int {
	return s.cur.Line
}

// FirstLine returns the line the scanner's source starts on.
func (s *Scanner) FirstLine() int {
	return s.firstLine
}

// Err returns the sticky error that halted this scanner, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Source returns the text this scanner reads.
func (s *Scanner) Source() string {
	return s.src
}

// Next consumes the current token and scans the following one.
func (s *Scanner) Next() error {
	if s.err != nil {
		return s.err
	}
	s.last = s.cur
	s.scan()
	return s.err
}

// Match consumes the current token if it has kind t. Otherwise it reports a
// syntax error, and the scanner refuses all further matches.
func (s *Scanner) Match(t token.Token) error {
	if s.err != nil {
		return s.err
	}
	if s.cur.Token != t {
		s.err = s.errorf("unexpected %s, expected %s", describe(s.cur), t)
		return s.err
	}
	return s.Next()
}

// Errorf halts the scanner with a syntax error at the current token.
func (s *Scanner) Errorf(format string, args ...any) error {
	if s.err == nil {
		s.err = s.errorf(format, args...)
	}
	return s.err
}

func (s *Scanner) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: s.cur.Line, Col: s.cur.Col, Msg: fmt.Sprintf(format, args...)}
}

func describe(it Item) string {
	switch it.Token {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", it.Value)
	case token.INT, token.FLOAT:
		return "number " + it.Value
	case token.STRING:
		return fmt.Sprintf("string %q", it.Value)
	case token.ILLEGAL:
		return fmt.Sprintf("character %q", it.Value)
	}
	return fmt.Sprintf("%q", it.Token.String())
}

// Mark returns a resumable offset: the start of the current token.
func (s *Scanner) Mark() int {
	return s.cur.Pos
}

// Sub returns an independent scanner over the source between the marker and
// the start of the current token. The range can be replayed any number of
// times with Reset.
func (s *Scanner) Sub(from int) *Scanner {
	end := s.cur.Pos
	if end < from {
		end = from
	}
	return NewAt(s.src[from:end], s.lineAt(from))
}

func (s *Scanner) lineAt(off int) int {
	return s.firstLine + strings.Count(s.src[:off], "\n")
}

// FunctionBody returns the raw text of the brace-delimited block starting at
// the current token, braces included, and advances past it.
func (s *Scanner) FunctionBody() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.cur.Token != token.LBRACE {
		return "", s.Match(token.LBRACE)
	}
	start := s.cur.Pos
	depth := 0
	for {
		switch s.cur.Token {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				end := s.cur.Pos + 1
				if err := s.Next(); err != nil {
					return "", err
				}
				return s.src[start:end], nil
			}
		case token.EOF:
			return "", s.Errorf("unterminated function body")
		}
		if err := s.Next(); err != nil {
			return "", err
		}
	}
}

// IntValue parses an INT token's text (decimal, 0x hex or leading-0 octal).
func IntValue(text string) (int, error) {
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FloatValue parses a FLOAT token's text.
func FloatValue(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}
