package toml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lexer splits input into tokens; comments and blank space never reach the parser
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Next returns the next token, KindEOF once input is exhausted
func (l *Lexer) Next() Token {
	l.skipBlank()
	line, col := l.line, l.col

	if l.pos >= len(l.src) {
		return Token{Kind: KindEOF, Line: line, Col: col}
	}

	tok := func(k Kind, text string) Token {
		return Token{Kind: k, Text: text, Line: line, Col: col}
	}

	ch := l.peek()
	switch ch {
	case '\n':
		l.advance()
		return tok(KindNewline, "\n")
	case '=':
		l.advance()
		return tok(KindEqual, "=")
	case '.':
		l.advance()
		return tok(KindDot, ".")
	case ',':
		l.advance()
		return tok(KindComma, ",")
	case '[':
		l.advance()
		return tok(KindLBrack, "[")
	case ']':
		l.advance()
		return tok(KindRBrack, "]")
	case '{':
		l.advance()
		return tok(KindLBrace, "{")
	case '}':
		l.advance()
		return tok(KindRBrace, "}")
	case '"':
		s, err := l.basicString()
		if err != nil {
			return tok(KindError, err.Error())
		}
		return tok(KindString, s)
	case '\'':
		s, err := l.literalString()
		if err != nil {
			return tok(KindError, err.Error())
		}
		return tok(KindString, s)
	}

	if isBareChar(ch) || ch == '+' {
		return tok(KindKey, l.bare())
	}

	l.advance()
	return tok(KindError, fmt.Sprintf("unexpected character %q", ch))
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRune(l.src[l.pos:])
	return r
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, w := utf8.DecodeRune(l.src[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipBlank eats spaces, tabs, carriage returns and comments up to the newline
func (l *Lexer) skipBlank() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		case '#':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// bare reads a key or a scalar literal; '.' stays inside when digits surround it
func (l *Lexer) bare() string {
	start := l.pos
	for l.pos < len(l.src) {
		ch := l.peek()
		switch {
		case isBareChar(ch) || ch == '+':
			l.advance()
		case ch == '.' && l.pos > start && isDigit(rune(l.src[l.pos-1])) && l.pos+1 < len(l.src) && isDigit(rune(l.src[l.pos+1])) && numericPrefix(l.src[start:l.pos]):
			l.advance()
		default:
			return string(l.src[start:l.pos])
		}
	}
	return string(l.src[start:l.pos])
}

func (l *Lexer) basicString() (string, error) {
	l.advance() // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		ch := l.advance()
		switch ch {
		case '"':
			return b.String(), nil
		case '\n':
			return "", fmt.Errorf("newline in string")
		case '\\':
			esc := l.advance()
			switch esc {
			case '"', '\\':
				b.WriteRune(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'u':
				if l.pos+4 > len(l.src) {
					return "", fmt.Errorf("short unicode escape")
				}
				hex := string(l.src[l.pos : l.pos+4])
				n, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return "", fmt.Errorf("bad unicode escape \\u%s", hex)
				}
				for i := 0; i < 4; i++ {
					l.advance()
				}
				b.WriteRune(rune(n))
			default:
				return "", fmt.Errorf("unknown escape \\%c", esc)
			}
		default:
			b.WriteRune(ch)
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (l *Lexer) literalString() (string, error) {
	l.advance() // opening quote
	start := l.pos
	for l.pos < len(l.src) {
		switch l.peek() {
		case '\'':
			s := string(l.src[start:l.pos])
			l.advance()
			return s, nil
		case '\n':
			return "", fmt.Errorf("newline in string")
		}
		l.advance()
	}
	return "", fmt.Errorf("unterminated string")
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isBareChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || isDigit(r) || r == '_' || r == '-'
}

// numericPrefix reports whether b so far can only be the start of a number
func numericPrefix(b []byte) bool {
	for i, c := range b {
		switch {
		case c >= '0' && c <= '9', c == '_':
		case (c == '+' || c == '-') && i == 0:
		default:
			return false
		}
	}
	return true
}
