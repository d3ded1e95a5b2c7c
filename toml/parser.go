package toml

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError locates a syntax error
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("toml: line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// Parser builds a tree of map[string]any from tokens
// Leaves are string, int64, float64, bool and []any
type Parser struct {
	lex     *Lexer
	cur     Token
	root    map[string]any
	scope   map[string]any
	headers map[string]bool // explicitly declared [tables]
}

func NewParser(src []byte) *Parser {
	p := &Parser{
		lex:     NewLexer(src),
		root:    make(map[string]any),
		headers: make(map[string]bool),
	}
	p.scope = p.root
	p.next()
	return p
}

// Parse consumes the whole input
func (p *Parser) Parse() (map[string]any, error) {
	for p.cur.Kind != KindEOF {
		switch p.cur.Kind {
		case KindNewline:
			p.next()
			continue
		case KindLBrack:
			if err := p.table(); err != nil {
				return nil, err
			}
		case KindKey, KindString:
			if err := p.keyValue(p.scope); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected %s", p.cur)
		}
		if p.cur.Kind != KindNewline && p.cur.Kind != KindEOF {
			return nil, p.errorf("expected end of line, got %s", p.cur)
		}
	}
	return p.root, nil
}

func (p *Parser) next() {
	p.cur = p.lex.Next()
}

func (p *Parser) errorf(format string, args ...any) error {
	if p.cur.Kind == KindError {
		return &ParseError{Line: p.cur.Line, Col: p.cur.Col, Msg: p.cur.Text}
	}
	return &ParseError{Line: p.cur.Line, Col: p.cur.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k Kind, what string) error {
	if p.cur.Kind != k {
		return p.errorf("expected %s, got %s", what, p.cur)
	}
	p.next()
	return nil
}

// table handles a [dotted.header] line
func (p *Parser) table() error {
	p.next()
	if p.cur.Kind == KindLBrack {
		return p.errorf("arrays of tables are not supported")
	}
	path, err := p.key()
	if err != nil {
		return err
	}
	if err := p.expect(KindRBrack, "']'"); err != nil {
		return err
	}

	name := strings.Join(path, ".")
	if p.headers[name] {
		return p.errorf("table [%s] defined twice", name)
	}
	p.headers[name] = true

	m, err := descend(p.root, path)
	if err != nil {
		return p.errorf("%v", err)
	}
	p.scope = m
	return nil
}

func (p *Parser) keyValue(scope map[string]any) error {
	path, err := p.key()
	if err != nil {
		return err
	}
	if err := p.expect(KindEqual, "'='"); err != nil {
		return err
	}
	val, err := p.value()
	if err != nil {
		return err
	}

	parent, err := descend(scope, path[:len(path)-1])
	if err != nil {
		return p.errorf("%v", err)
	}
	leaf := path[len(path)-1]
	if _, dup := parent[leaf]; dup {
		return p.errorf("key %q defined twice", strings.Join(path, "."))
	}
	parent[leaf] = val
	return nil
}

// key reads a possibly dotted key
func (p *Parser) key() ([]string, error) {
	var path []string
	for {
		if p.cur.Kind != KindKey && p.cur.Kind != KindString {
			return nil, p.errorf("expected key, got %s", p.cur)
		}
		if p.cur.Kind == KindKey && strings.ContainsRune(p.cur.Text, '+') {
			return nil, p.errorf("invalid bare key %q", p.cur.Text)
		}
		path = append(path, p.cur.Text)
		p.next()
		if p.cur.Kind != KindDot {
			return path, nil
		}
		p.next()
	}
}

func (p *Parser) value() (any, error) {
	switch p.cur.Kind {
	case KindString:
		s := p.cur.Text
		p.next()
		return s, nil
	case KindKey:
		v, err := scalar(p.cur.Text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		p.next()
		return v, nil
	case KindLBrack:
		return p.array()
	case KindLBrace:
		return p.inlineTable()
	}
	return nil, p.errorf("expected value, got %s", p.cur)
}

func (p *Parser) array() ([]any, error) {
	p.next() // [
	arr := []any{}
	for {
		p.skipNewlines()
		if p.cur.Kind == KindRBrack {
			p.next()
			return arr, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		p.skipNewlines()
		switch p.cur.Kind {
		case KindComma:
			p.next()
		case KindRBrack:
		default:
			return nil, p.errorf("expected ',' or ']' in array, got %s", p.cur)
		}
	}
}

func (p *Parser) inlineTable() (map[string]any, error) {
	p.next() // {
	m := make(map[string]any)
	if p.cur.Kind == KindRBrace {
		p.next()
		return m, nil
	}
	for {
		if err := p.keyValue(m); err != nil {
			return nil, err
		}
		switch p.cur.Kind {
		case KindComma:
			p.next()
		case KindRBrace:
			p.next()
			return m, nil
		default:
			return nil, p.errorf("expected ',' or '}' in inline table, got %s", p.cur)
		}
	}
}

func (p *Parser) skipNewlines() {
	for p.cur.Kind == KindNewline {
		p.next()
	}
}

// descend walks or creates nested tables along path
func descend(m map[string]any, path []string) (map[string]any, error) {
	for i, k := range path {
		switch v := m[k].(type) {
		case nil:
			child := make(map[string]any)
			m[k] = child
			m = child
		case map[string]any:
			m = v
		default:
			return nil, fmt.Errorf("key %q is a value, not a table", strings.Join(path[:i+1], "."))
		}
	}
	return m, nil
}

// scalar classifies an unquoted literal
func scalar(s string) (any, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "inf", "+inf", "-inf", "nan", "+nan", "-nan":
		return nil, fmt.Errorf("special float %q is not supported", s)
	}

	digits := strings.TrimLeft(s, "+-")
	if digits == "" || !isDigit(rune(digits[0])) {
		return nil, fmt.Errorf("invalid value %q (strings must be quoted)", s)
	}
	if strings.Contains(s, "__") || strings.HasPrefix(digits, "_") || strings.HasSuffix(s, "_") {
		return nil, fmt.Errorf("misplaced underscore in %q", s)
	}
	clean := strings.ReplaceAll(s, "_", "")

	if len(digits) > 2 && digits[0] == '0' && strings.ContainsRune("xob", rune(digits[1])) {
		if s[0] == '+' || s[0] == '-' {
			return nil, fmt.Errorf("sign not allowed on %q", s)
		}
		n, err := strconv.ParseInt(clean, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return n, nil
	}

	cleanDigits := strings.TrimLeft(clean, "+-")
	if strings.ContainsAny(cleanDigits, ".eE") {
		if len(cleanDigits) > 1 && cleanDigits[0] == '0' && cleanDigits[1] != '.' && cleanDigits[1] != 'e' && cleanDigits[1] != 'E' {
			return nil, fmt.Errorf("leading zero in %q", s)
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", s)
		}
		return f, nil
	}

	if len(cleanDigits) > 1 && cleanDigits[0] == '0' {
		return nil, fmt.Errorf("leading zero in %q", s)
	}
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}
