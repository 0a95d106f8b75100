// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"nickandperla.net/tinyjs/internal/token"
)

// scan reads the next token into s.cur.
func (s *Scanner) scan() {
	if !s.skipSpaceAndComments() {
		return
	}

	s.cur = Item{Pos: s.off, Line: s.line, Col: s.off - s.lineStart + 1}
	if s.off >= len(s.src) {
		s.cur.Token = token.EOF
		return
	}

	r, w := utf8.DecodeRuneInString(s.src[s.off:])
	switch {
	case isIdentStart(r):
		start := s.off
		for s.off < len(s.src) {
			r, w := utf8.DecodeRuneInString(s.src[s.off:])
			if !isIdentChar(r) {
				break
			}
			s.off += w
		}
		s.cur.Value = s.src[start:s.off]
		s.cur.Token = token.Lookup(s.cur.Value)

	case isDigit(r) || (r == '.' && isDigit(s.peekAt(1))):
		s.scanNumber()

	case r == '"' || r == '\'':
		s.scanString(r)

	default:
		s.off += w
		s.cur.Value = string(r)
		s.cur.Token = s.scanOperator(r)
		if s.cur.Token == token.ILLEGAL {
			s.err = s.errorf("unexpected character %q", r)
			return
		}
		s.cur.Value = s.src[s.cur.Pos:s.off]
	}
}

// skipSpaceAndComments consumes whitespace, // and /* */ comments.
// Returns false if an unterminated comment halted the scanner.
func (s *Scanner) skipSpaceAndComments() bool {
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch {
		case c == '\n':
			s.off++
			s.line++
			s.lineStart = s.off
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			s.off++
		case c == '/' && s.peekAt(1) == '/':
			for s.off < len(s.src) && s.src[s.off] != '\n' {
				s.off++
			}
		case c == '/' && s.peekAt(1) == '*':
			startLine, startCol := s.line, s.off-s.lineStart+1
			end := strings.Index(s.src[s.off+2:], "*/")
			if end < 0 {
				s.cur = Item{Token: token.ILLEGAL, Pos: s.off, Line: startLine, Col: startCol}
				s.err = &SyntaxError{Line: startLine, Col: startCol, Msg: "unterminated comment"}
				return false
			}
			comment := s.src[s.off : s.off+2+end+2]
			if n := strings.Count(comment, "\n"); n > 0 {
				s.line += n
				s.lineStart = s.off + strings.LastIndexByte(comment, '\n') + 1
			}
			s.off += len(comment)
		default:
			return true
		}
	}
	return true
}

func (s *Scanner) peekAt(n int) rune {
	if s.off+n >= len(s.src) {
		return 0
	}
	return rune(s.src[s.off+n])
}

func (s *Scanner) scanNumber() {
	start := s.off
	s.cur.Token = token.INT

	if s.src[s.off] == '0' && (s.peekAt(1) == 'x' || s.peekAt(1) == 'X') {
		s.off += 2
		for s.off < len(s.src) && isHexDigit(rune(s.src[s.off])) {
			s.off++
		}
		s.cur.Value = s.src[start:s.off]
		if s.off-start == 2 {
			s.err = s.errorf("malformed hex literal %q", s.cur.Value)
		}
		return
	}

	for s.off < len(s.src) && isDigit(rune(s.src[s.off])) {
		s.off++
	}
	if s.off < len(s.src) && s.src[s.off] == '.' && isDigit(s.peekAt(1)) {
		s.cur.Token = token.FLOAT
		s.off++
		for s.off < len(s.src) && isDigit(rune(s.src[s.off])) {
			s.off++
		}
	} else if s.off < len(s.src) && s.src[s.off] == '.' && s.off > start && !isIdentStart(s.peekAt(1)) {
		// "1." is a complete float
		s.cur.Token = token.FLOAT
		s.off++
	}
	if s.off < len(s.src) && (s.src[s.off] == 'e' || s.src[s.off] == 'E') {
		save := s.off
		s.off++
		if s.off < len(s.src) && (s.src[s.off] == '+' || s.src[s.off] == '-') {
			s.off++
		}
		if s.off < len(s.src) && isDigit(rune(s.src[s.off])) {
			s.cur.Token = token.FLOAT
			for s.off < len(s.src) && isDigit(rune(s.src[s.off])) {
				s.off++
			}
		} else {
			s.off = save
		}
	}
	s.cur.Value = s.src[start:s.off]
	if s.cur.Token == token.INT && len(s.cur.Value) > 1 && s.cur.Value[0] == '0' {
		for _, c := range s.cur.Value[1:] {
			if c > '7' {
				s.err = s.errorf("malformed octal literal %q", s.cur.Value)
				return
			}
		}
	}
}

func (s *Scanner) scanString(quote rune) {
	s.cur.Token = token.STRING
	s.off++ // opening quote
	var sb strings.Builder
	for {
		if s.off >= len(s.src) || s.src[s.off] == '\n' {
			s.err = s.errorf("unterminated string literal")
			return
		}
		r, w := utf8.DecodeRuneInString(s.src[s.off:])
		s.off += w
		if r == quote {
			break
		}
		if r != '\\' {
			sb.WriteRune(r)
			continue
		}
		if s.off >= len(s.src) {
			s.err = s.errorf("unterminated string literal")
			return
		}
		e, w := utf8.DecodeRuneInString(s.src[s.off:])
		s.off += w
		switch e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
			s.line++
			s.lineStart = s.off
		default:
			sb.WriteRune(e)
		}
	}
	s.cur.Value = sb.String()
}

// scanOperator resolves the operator starting with r (already consumed),
// preferring the longest match.
func (s *Scanner) scanOperator(r rune) token.Token {
	next := func(c byte) bool {
		if s.off < len(s.src) && s.src[s.off] == c {
			s.off++
			return true
		}
		return false
	}

	switch r {
	case '(':
		return token.LPAREN
	case ')':
		return token.RPAREN
	case '{':
		return token.LBRACE
	case '}':
		return token.RBRACE
	case '[':
		return token.LBRACK
	case ']':
		return token.RBRACK
	case ';':
		return token.SEMICOLON
	case ',':
		return token.COMMA
	case '.':
		return token.DOT
	case ':':
		return token.COLON
	case '?':
		return token.QUESTION
	case '~':
		return token.TILDE
	case '*':
		return token.MUL
	case '/':
		return token.QUO
	case '%':
		return token.REM
	case '^':
		return token.XOR
	case '+':
		if next('+') {
			return token.INC
		}
		if next('=') {
			return token.ADD_ASSIGN
		}
		return token.ADD
	case '-':
		if next('-') {
			return token.DEC
		}
		if next('=') {
			return token.SUB_ASSIGN
		}
		return token.SUB
	case '=':
		if next('=') {
			if next('=') {
				return token.TYPE_EQL
			}
			return token.EQL
		}
		return token.ASSIGN
	case '!':
		if next('=') {
			if next('=') {
				return token.TYPE_NEQ
			}
			return token.NEQ
		}
		return token.NOT
	case '<':
		if next('<') {
			return token.SHL
		}
		if next('=') {
			return token.LEQ
		}
		return token.LSS
	case '>':
		if next('>') {
			return token.SHR
		}
		if next('=') {
			return token.GEQ
		}
		return token.GTR
	case '&':
		if next('&') {
			return token.LAND
		}
		return token.AND
	case '|':
		if next('|') {
			return token.LOR
		}
		return token.OR
	}
	return token.ILLEGAL
}

// isIdentStart returns true if the rune can begin an identifier.
func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

// isIdentChar returns true if the rune is valid in an identifier (letter, digit, underscore, dollar).
func isIdentChar(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
