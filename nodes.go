package descent

import "github.com/descentparse/descent/lexer"

// A span mirrors the shape of a matched value: a leaf carries one token's
// position, a branch carries the spans of a sequence's or repetition's
// elements. Optional misses and action results without an explicit span are
// absent leaves (ok false).
type span struct {
	pos  lexer.Position
	ok   bool
	kids []span // non-nil marks a branch
}

func absent() span { return span{} }

func leaf(pos lexer.Position) span { return span{pos: pos, ok: true} }

// first returns the position of the leftmost non-absent leaf.
func (s span) first() (lexer.Position, bool) {
	if s.kids == nil {
		return s.pos, s.ok
	}
	for _, k := range s.kids {
		if pos, ok := k.first(); ok {
			return pos, true
		}
	}
	return lexer.Position{}, false
}

// last returns the position of the rightmost non-absent leaf.
func (s span) last() (lexer.Position, bool) {
	if s.kids == nil {
		return s.pos, s.ok
	}
	for i := len(s.kids) - 1; i >= 0; i-- {
		if pos, ok := s.kids[i].last(); ok {
			return pos, true
		}
	}
	return lexer.Position{}, false
}

// merge computes the smallest position covering every non-absent leaf,
// skipping gaps left by unmatched optionals.
func (s span) merge() (lexer.Position, bool) {
	start, ok := s.first()
	if !ok {
		return lexer.Position{}, false
	}
	end, _ := s.last()
	start.Length = end.Offset + end.Length - start.Offset
	return start, true
}

// Context for a single parse. The rule arena and every node in it are
// read-only; all mutable state lives in the cursor.
type parseContext struct {
	rules  []*rule
	cursor *lexer.Cursor
	user   interface{}
}

// A node in the compiled grammar.
//
// Parse returns the matched value, the structurally parallel span tree, and
// whether the node matched. A failed match is an ordinary result, not an
// error; nodes that consume tokens before failing restore the cursor so no
// partial consumption escapes. Lexing failures and semantic action errors
// panic with an Error and are recovered by Parser.Parse.
type node interface {
	Parse(ctx *parseContext) (interface{}, span, bool)
	String() string
}

// A rule's compiled grammar, held in the Parser's arena and addressed by
// index so that rules may reference each other cyclically.
type rule struct {
	name string
	alt  *alternation // productions in declaration order
	node node         // alt, or the single production after collapsing
}

// <identifier>: either a rule reference or a terminal token type. Names are
// resolved once at build time: index addresses the rule arena, -1 means the
// name is a token type matched against the cursor.
type reference struct {
	name  string
	index int
}

func (r *reference) Parse(ctx *parseContext) (interface{}, span, bool) {
	if r.index >= 0 {
		return ctx.rules[r.index].node.Parse(ctx)
	}
	token := ctx.cursor.Accept(r.name)
	if token == nil {
		return nil, absent(), false
	}
	return token.Value, leaf(token.Pos), true
}

// <node> <node> ...
type sequence struct {
	items []node
}

func (s *sequence) Parse(ctx *parseContext) (interface{}, span, bool) {
	state := ctx.cursor.State()
	values := make([]interface{}, 0, len(s.items))
	spans := make([]span, 0, len(s.items))
	for _, item := range s.items {
		value, sp, ok := item.Parse(ctx)
		if !ok {
			ctx.cursor.Restore(state)
			return nil, absent(), false
		}
		values = append(values, value)
		spans = append(spans, sp)
	}
	return values, span{kids: spans}, true
}

// <node> | <node> | ...
type alternation struct {
	items []node
}

func (a *alternation) Parse(ctx *parseContext) (interface{}, span, bool) {
	// Ordered choice: first declared alternative that matches wins.
	for _, item := range a.items {
		if value, sp, ok := item.Parse(ctx); ok {
			return value, sp, true
		}
	}
	return nil, absent(), false
}

// <node>* or <node>+
type repeat struct {
	item node
	min  int
}

func (r *repeat) Parse(ctx *parseContext) (interface{}, span, bool) {
	state := ctx.cursor.State()
	values := []interface{}{}
	spans := []span{}
	for {
		value, sp, ok := r.item.Parse(ctx)
		if !ok {
			break
		}
		values = append(values, value)
		spans = append(spans, sp)
	}
	if len(values) < r.min {
		// Zero net consumption on failure, or a partial match would corrupt
		// the enclosing alternation's next attempt.
		ctx.cursor.Restore(state)
		return nil, absent(), false
	}
	return values, span{kids: spans}, true
}

// [ <node> ]
type optional struct {
	item node
}

func (o *optional) Parse(ctx *parseContext) (interface{}, span, bool) {
	if value, sp, ok := o.item.Parse(ctx); ok {
		return value, sp, true
	}
	// The item restored the cursor itself; absence is a successful match.
	return nil, absent(), true
}

// A production with a semantic action attached.
type action struct {
	body *sequence
	fn   Action
}

// newAction coerces body to a sequence so the action always receives an
// indexable view, even over a single-item production.
func newAction(body node, fn Action) *action {
	seq, ok := body.(*sequence)
	if !ok {
		seq = &sequence{items: []node{body}}
	}
	return &action{body: seq, fn: fn}
}

func (a *action) Parse(ctx *parseContext) (interface{}, span, bool) {
	value, sp, ok := a.body.Parse(ctx)
	if !ok {
		return nil, absent(), false
	}
	result := Result{
		items:  value.([]interface{}),
		spans:  sp.kids,
		user:   ctx.user,
		cursor: ctx.cursor,
	}
	out, err := a.fn(result)
	if err != nil {
		panic(a.semanticError(ctx, sp, err))
	}
	if spanned, ok := out.(Spanned); ok {
		return spanned.Value, leaf(spanned.Pos), true
	}
	merged, ok := sp.merge()
	if !ok {
		return out, absent(), true
	}
	return out, leaf(merged), true
}

// semanticError positions an action's error. Errors the action built itself
// (eg. via Result.Errorf) already carry a position and pass through untouched.
func (a *action) semanticError(ctx *parseContext, sp span, err error) error {
	if positioned, ok := err.(Error); ok && positioned.Position() != (lexer.Position{}) {
		return err
	}
	pos, ok := sp.merge()
	if !ok {
		pos = ctx.cursor.NextPosition()
	}
	return &ParseError{Msg: err.Error(), Pos: pos, Line: ctx.cursor.SourceLine(pos)}
}
