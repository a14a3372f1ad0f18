package descent

import (
	"fmt"

	"github.com/descentparse/descent/lexer"
)

// An Action computes a production's value from its matched sub-results.
//
// Returning a non-nil error aborts the whole parse with that error; build one
// with Result.Errorf to position it at the offending sub-result. Returning a
// Spanned value overrides the span the engine would otherwise compute by
// merging the sub-results' positions.
type Action func(Result) (interface{}, error)

// Spanned wraps an action's return value with an explicit source span.
type Spanned struct {
	Value interface{}
	Pos   lexer.Position
}

// A Result is the read-only view of a production's matched sub-results handed
// to its Action: the values in match order, a structurally parallel tree of
// positions, the user context threaded through the parse, and a handle back to
// the live tokenizer.
type Result struct {
	items  []interface{}
	spans  []span
	user   interface{}
	cursor *lexer.Cursor
}

// Len returns the number of matched sub-results.
func (r Result) Len() int { return len(r.items) }

// Get returns the i'th matched value. Values of nested sequences and
// repetitions are []interface{}; unmatched optionals are nil.
func (r Result) Get(i int) interface{} { return r.items[i] }

// Pos returns the source span of the sub-result named by path, descending into
// nested sequence and repetition results. With an empty path it spans the
// whole production. Absent sub-results (unmatched optionals) yield the zero
// Position.
func (r Result) Pos(path ...int) lexer.Position {
	s := span{kids: r.spans}
	for _, i := range path {
		if s.kids == nil || i < 0 || i >= len(s.kids) {
			return lexer.Position{}
		}
		s = s.kids[i]
	}
	pos, ok := s.merge()
	if !ok {
		return lexer.Position{}
	}
	return pos
}

// Context returns the opaque user value passed to Parse.
func (r Result) Context() interface{} { return r.user }

// SetRules swaps the live tokenizer's token table, effective from the next
// match attempt. This is how a grammar switches lexical rules for an embedded
// sub-language once parse progress reaches it.
func (r Result) SetRules(rules ...lexer.Rule) error {
	return r.cursor.SetRules(rules...)
}

// SetMap is SetRules for unordered tables.
func (r Result) SetMap(rules map[string]lexer.Rule) error {
	return r.cursor.SetMap(rules)
}

// Errorf builds a semantic error positioned at the sub-result named by path.
// Return it from the Action to abort the parse.
func (r Result) Errorf(path []int, format string, args ...interface{}) error {
	pos := r.Pos(path...)
	return &ParseError{
		Msg:  fmt.Sprintf(format, args...),
		Pos:  pos,
		Line: r.cursor.SourceLine(pos),
	}
}
