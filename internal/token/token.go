// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines tinyjs token kinds and the keyword table.
package token

// Token represents a tinyjs token kind.
type Token int

const (
	EOF Token = iota
	ILLEGAL

	// Literals
	IDENT
	INT    // 42, 0x2a, 052
	FLOAT  // 4.2, 1e3
	STRING // "text" or 'text'

	// Keywords
	VAR
	IF
	ELSE
	WHILE
	FOR
	RETURN
	FUNCTION
	BREAK
	CONTINUE
	NEW
	THIS
	TRUE
	FALSE
	NULL
	UNDEFINED

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACK    // [
	RBRACK    // ]
	SEMICOLON // ;
	COMMA     // ,
	DOT       // .
	COLON     // :
	QUESTION  // ?

	// Operators
	ASSIGN     // =
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	ADD        // +
	SUB        // -
	MUL        // *
	QUO        // /
	REM        // %
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	TYPE_EQL   // ===
	TYPE_NEQ   // !==
	LSS        // <
	GTR        // >
	LEQ        // <=
	GEQ        // >=
	SHL        // <<
	SHR        // >>
	AND        // &
	OR         // |
	XOR        // ^
	LAND       // &&
	LOR        // ||
	NOT        // !
	TILDE      // ~
)

var names = [...]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	IDENT:      "IDENT",
	INT:        "INT",
	FLOAT:      "FLOAT",
	STRING:     "STRING",
	VAR:        "var",
	IF:         "if",
	ELSE:       "else",
	WHILE:      "while",
	FOR:        "for",
	RETURN:     "return",
	FUNCTION:   "function",
	BREAK:      "break",
	CONTINUE:   "continue",
	NEW:        "new",
	THIS:       "this",
	TRUE:       "true",
	FALSE:      "false",
	NULL:       "null",
	UNDEFINED:  "undefined",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	LBRACK:     "[",
	RBRACK:     "]",
	SEMICOLON:  ";",
	COMMA:      ",",
	DOT:        ".",
	COLON:      ":",
	QUESTION:   "?",
	ASSIGN:     "=",
	ADD_ASSIGN: "+=",
	SUB_ASSIGN: "-=",
	ADD:        "+",
	SUB:        "-",
	MUL:        "*",
	QUO:        "/",
	REM:        "%",
	INC:        "++",
	DEC:        "--",
	EQL:        "==",
	NEQ:        "!=",
	TYPE_EQL:   "===",
	TYPE_NEQ:   "!==",
	LSS:        "<",
	GTR:        ">",
	LEQ:        "<=",
	GEQ:        ">=",
	SHL:        "<<",
	SHR:        ">>",
	AND:        "&",
	OR:         "|",
	XOR:        "^",
	LAND:       "&&",
	LOR:        "||",
	NOT:        "!",
	TILDE:      "~",
}

// String returns the source form of an operator or keyword, or the kind name
// for literals.
func (t Token) String() string {
	if t >= 0 && int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "UNKNOWN"
}

var keywords = map[string]Token{
	"var":       VAR,
	"if":        IF,
	"else":      ELSE,
	"while":     WHILE,
	"for":       FOR,
	"return":    RETURN,
	"function":  FUNCTION,
	"break":     BREAK,
	"continue":  CONTINUE,
	"new":       NEW,
	"this":      THIS,
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"undefined": UNDEFINED,
}

// Lookup maps an identifier to its keyword token, or IDENT.
func Lookup(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token is a reserved word.
func (t Token) IsKeyword() bool {
	return t >= VAR && t <= UNDEFINED
}

// IsLiteral returns true for identifiers and literal values.
func (t Token) IsLiteral() bool {
	return t >= IDENT && t <= STRING
}

// IsAssign returns true for =, += and -=.
func (t Token) IsAssign() bool {
	switch t {
	case ASSIGN, ADD_ASSIGN, SUB_ASSIGN:
		return true
	}
	return false
}

// IsComparison returns true for the equality and relational operators.
func (t Token) IsComparison() bool {
	switch t {
	case EQL, NEQ, TYPE_EQL, TYPE_NEQ, LSS, GTR, LEQ, GEQ:
		return true
	}
	return false
}

// IsLogic returns true for the operators handled at the logic level:
// & | ^ && ||.
func (t Token) IsLogic() bool {
	switch t {
	case AND, OR, XOR, LAND, LOR:
		return true
	}
	return false
}
