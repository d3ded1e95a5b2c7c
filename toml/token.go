// Package toml decodes the TOML subset windmap config files use:
// tables, dotted keys, strings, integers, floats, booleans, arrays and inline tables
package toml

import "fmt"

// Kind classifies a lexical token
type Kind int

const (
	KindError Kind = iota
	KindEOF
	KindNewline
	KindKey     // bare key or bool/number literal, resolved by the parser
	KindString  // "basic" or 'literal'
	KindEqual   // =
	KindDot     // .
	KindComma   // ,
	KindLBrack  // [
	KindRBrack  // ]
	KindLBrace  // {
	KindRBrace  // }
)

// Token is one lexeme with its 1-based position
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	switch t.Kind {
	case KindEOF:
		return "end of file"
	case KindNewline:
		return "newline"
	case KindError:
		return "error: " + t.Text
	}
	if len(t.Text) > 24 {
		return fmt.Sprintf("%q...", t.Text[:24])
	}
	return fmt.Sprintf("%q", t.Text)
}
