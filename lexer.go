package main

import (
	"strconv"
	"strings"
)

// TokenKind is the type of token (identifier, operator, literal, etc.).
type TokenKind string

const (
	// Special tokens
	EOF TokenKind = "EOF"

	// Identifiers + literals
	IDENT  TokenKind = "IDENT"  // main, foo, _bar
	INT    TokenKind = "INT"    // 12345, 0755, 0b101
	CHAR   TokenKind = "CHAR"   // 'a'
	STRING TokenKind = "STRING" // "hello\n"

	// Operators and punctuation; Token.Text tells them apart.
	RESERVED TokenKind = "RESERVED"

	// Keywords
	RETURN   TokenKind = "RETURN"
	IF       TokenKind = "IF"
	ELSE     TokenKind = "ELSE"
	FOR      TokenKind = "FOR"
	FUNC     TokenKind = "FUNC"
	EXTERN   TokenKind = "EXTERN"
	SIZEOF   TokenKind = "SIZEOF"
	TYPE     TokenKind = "TYPE"
	VAR      TokenKind = "VAR"
	BREAK    TokenKind = "BREAK"
	CONTINUE TokenKind = "CONTINUE"
	STRUCT   TokenKind = "STRUCT"
)

var keywords = map[string]TokenKind{
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"func":     FUNC,
	"extern":   EXTERN,
	"sizeof":   SIZEOF,
	"type":     TYPE,
	"var":      VAR,
	"break":    BREAK,
	"continue": CONTINUE,
	"struct":   STRUCT,
}

// Longer operators come first so they win over their prefixes.
var operators = []string{
	"...",
	"==", "!=", "<=", ">=", ":=", "||", "&&", "++", "--",
	"+", "-", "*", "/", "(", ")", "{", "}", "[", "]",
	"<", ">", ";", "=", "&", ",", ".", ":", "@",
}

// Token is one lexeme. Offset and Len locate it in the source buffer.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
	Len    int
	Value  int64  // INT, CHAR
	Str    []byte // STRING, escapes decoded
}

func (t *Token) String() string {
	if t.Kind == EOF {
		return "end of file"
	}
	return "'" + t.Text + "'"
}

// Lexer hands out tokens on demand from a NUL-terminated buffer.
type Lexer struct {
	input []byte
	pos   int    // current reading position in input
	cur   *Token // lookahead, nil until requested
}

// lexState is a snapshot used for bounded speculative parsing.
type lexState struct {
	pos int
	cur *Token
}

func NewLexer(input []byte) *Lexer {
	if len(input) == 0 || input[len(input)-1] != 0 {
		input = append(input[:len(input):len(input)], 0)
	}
	return &Lexer{input: input}
}

// Peek returns the current token without consuming it.
func (l *Lexer) Peek() *Token {
	if l.cur == nil {
		l.cur = l.scan()
	}
	return l.cur
}

// NextToken consumes and returns the current token. At the end of input it
// keeps returning the same EOF token.
func (l *Lexer) NextToken() *Token {
	tok := l.Peek()
	if tok.Kind != EOF {
		l.cur = nil
	}
	return tok
}

// Consume consumes the current token if it is the reserved text op.
func (l *Lexer) Consume(op string) *Token {
	if tok := l.Peek(); tok.Kind == RESERVED && tok.Text == op {
		return l.NextToken()
	}
	return nil
}

// ConsumeKind consumes the current token if it has the given kind.
func (l *Lexer) ConsumeKind(kind TokenKind) *Token {
	if l.Peek().Kind == kind {
		return l.NextToken()
	}
	return nil
}

// Expect consumes the reserved text op or aborts with a syntax error.
func (l *Lexer) Expect(op string) *Token {
	tok := l.Consume(op)
	if tok == nil {
		bailout(ErrSyntax, l.Peek(), "expected '%s', got %s", op, l.Peek())
	}
	return tok
}

// ExpectKind consumes a token of the given kind or aborts with a syntax error.
func (l *Lexer) ExpectKind(kind TokenKind) *Token {
	tok := l.ConsumeKind(kind)
	if tok == nil {
		bailout(ErrSyntax, l.Peek(), "expected %s, got %s", strings.ToLower(string(kind)), l.Peek())
	}
	return tok
}

// AtOp reports whether the current token is the reserved text op.
func (l *Lexer) AtOp(op string) bool {
	tok := l.Peek()
	return tok.Kind == RESERVED && tok.Text == op
}

func (l *Lexer) Save() lexState {
	return lexState{pos: l.pos, cur: l.cur}
}

func (l *Lexer) Restore(s lexState) {
	l.pos, l.cur = s.pos, s.cur
}

func (l *Lexer) scan() *Token {
	l.skipWhitespaceAndComments()

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == 0:
		return &Token{Kind: EOF, Offset: start}

	case isDigit(c):
		return l.readNumber()

	case isLetter(c):
		for isLetter(l.input[l.pos]) || isDigit(l.input[l.pos]) {
			l.pos++
		}
		text := string(l.input[start:l.pos])
		kind, ok := keywords[text]
		if !ok {
			kind = IDENT
		}
		return &Token{Kind: kind, Text: text, Offset: start, Len: l.pos - start}

	case c == '"':
		return l.readString()

	case c == '\'':
		return l.readChar()
	}

	for _, op := range operators {
		if l.hasPrefix(op) {
			l.pos += len(op)
			return &Token{Kind: RESERVED, Text: op, Offset: start, Len: len(op)}
		}
	}
	bailout(ErrLexical, &Token{Offset: start, Len: 1}, "unexpected character '%c'", c)
	return nil
}

func (l *Lexer) hasPrefix(s string) bool {
	return l.pos+len(s) <= len(l.input) && string(l.input[l.pos:l.pos+len(s)]) == s
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case l.hasPrefix("//"):
			for l.input[l.pos] != '\n' && l.input[l.pos] != 0 {
				l.pos++
			}
		case l.hasPrefix("/*"):
			start := l.pos
			l.pos += 2
			for !l.hasPrefix("*/") {
				if l.input[l.pos] == 0 {
					bailout(ErrLexical, &Token{Offset: start, Len: 2}, "unterminated comment")
				}
				l.pos++
			}
			l.pos += 2
		default:
			return
		}
	}
}

// readNumber follows strtol: base 10 unless the literal starts with 0, where
// 0b selects base 2 and anything else base 8. Digits are taken greedily while
// they are valid in the selected base.
func (l *Lexer) readNumber() *Token {
	start := l.pos
	base := 10
	if l.input[l.pos] == '0' {
		if l.input[l.pos+1] == 'b' {
			base = 2
			l.pos += 2
		} else {
			base = 8
		}
	}
	digitsStart := l.pos
	for isDigitInBase(l.input[l.pos], base) {
		l.pos++
	}
	digits := string(l.input[digitsStart:l.pos])
	tok := &Token{Kind: INT, Text: string(l.input[start:l.pos]), Offset: start, Len: l.pos - start}
	if digits == "" {
		// A lone "0b" carries no digits.
		return tok
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		bailout(ErrLexical, tok, "integer literal %s out of range", tok.Text)
	}
	tok.Value = v
	return tok
}

func (l *Lexer) readEscape() byte {
	c := l.input[l.pos]
	l.pos++
	if c != '\\' {
		return c
	}
	e := l.input[l.pos]
	l.pos++
	switch e {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\', '\'', '"':
		return e
	default:
		bailout(ErrLexical, &Token{Offset: l.pos - 2, Len: 2}, "unknown escape sequence '\\%c'", e)
		return 0
	}
}

func (l *Lexer) readString() *Token {
	start := l.pos
	l.pos++ // skip opening "
	var str []byte
	for l.input[l.pos] != '"' {
		if l.input[l.pos] == 0 || l.input[l.pos] == '\n' {
			bailout(ErrLexical, &Token{Offset: start, Len: 1}, "unterminated string literal")
		}
		str = append(str, l.readEscape())
	}
	l.pos++
	return &Token{Kind: STRING, Text: string(l.input[start:l.pos]), Offset: start, Len: l.pos - start, Str: str}
}

func (l *Lexer) readChar() *Token {
	start := l.pos
	l.pos++ // skip opening '
	if l.input[l.pos] == 0 || l.input[l.pos] == '\'' {
		bailout(ErrLexical, &Token{Offset: start, Len: 1}, "empty character literal")
	}
	v := l.readEscape()
	if l.input[l.pos] != '\'' {
		bailout(ErrLexical, &Token{Offset: start, Len: 1}, "unterminated character literal")
	}
	l.pos++
	return &Token{Kind: CHAR, Text: string(l.input[start:l.pos]), Offset: start, Len: l.pos - start, Value: int64(v)}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isDigitInBase(c byte, base int) bool {
	return isDigit(c) && int(c-'0') < base
}
