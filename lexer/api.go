package lexer

import "fmt"

// Position of a token within its source text.
type Position struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based
	Offset   int // byte offset of the start of the span
	Length   int // byte length of the span
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d, Offset: %d, Length: %d}",
		p.Filename, p.Line, p.Column, p.Offset, p.Length)
}

// A Token produced by a Lexer.
//
// Value starts out as the matched source text but a Transform may replace it
// with any application-level value.
type Token struct {
	Type  string
	Value interface{}
	Pos   Position
}

func (t Token) String() string {
	return fmt.Sprintf("%v", t.Value)
}

func (t Token) GoString() string {
	return fmt.Sprintf("Token@%s{%s, %v}", t.Pos, t.Type, t.Value)
}

// Transform rewrites a freshly matched token before it is emitted.
//
// Returning nil suppresses the token entirely: the matched span is still
// consumed but nothing is emitted. Use this for whitespace and comments.
type Transform func(Token) *Token

// Suppress is a Transform that discards every token it is given.
func Suppress(Token) *Token { return nil }

// A Rule associates a token type with the pattern that matches it and an
// optional Transform applied to each matched token.
type Rule struct {
	Type      string
	Pattern   string
	Transform Transform
}

// Must takes the result of a Definition constructor and panics if it errored.
//
//	def := lexer.Must(lexer.New(rules...))
func Must(def *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}
	return def
}
