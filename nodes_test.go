package descent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descentparse/descent/lexer"
)

var abcTable = lexer.Must(lexer.New(
	lexer.Rule{Type: "A", Pattern: `a`},
	lexer.Rule{Type: "B", Pattern: `b`},
	lexer.Rule{Type: "C", Pattern: `c`},
	lexer.Rule{Type: "Space", Pattern: ` +`, Transform: lexer.Suppress},
))

func abcContext(text string) *parseContext {
	return &parseContext{cursor: abcTable.Lex(text, "")}
}

func term(typ string) node { return &reference{name: typ, index: -1} }

func TestSequenceBacktracksAtomically(t *testing.T) {
	ctx := abcContext("a b c")
	seq := &sequence{items: []node{term("A"), term("B"), term("A")}}

	before := ctx.cursor.State()
	_, _, ok := seq.Parse(ctx)
	assert.False(t, ok)
	// Two tokens were consumed before the failure; none of that consumption
	// escapes the failed sequence.
	assert.Equal(t, before, ctx.cursor.State())

	values, _, ok := (&sequence{items: []node{term("A"), term("B"), term("C")}}).Parse(ctx)
	require.True(t, ok)
	assert.Equal(t, []interface{}{"a", "b", "c"}, values)
}

func TestRepeatZeroNeverFails(t *testing.T) {
	ctx := abcContext("b")
	values, _, ok := (&repeat{item: term("A")}).Parse(ctx)
	require.True(t, ok)
	assert.Empty(t, values)
}

func TestRepeatCollects(t *testing.T) {
	ctx := abcContext("a a a b")
	values, _, ok := (&repeat{item: term("A"), min: 1}).Parse(ctx)
	require.True(t, ok)
	assert.Equal(t, []interface{}{"a", "a", "a"}, values)
}

// Regression: a repeat that matches some items but fewer than its minimum must
// restore the cursor. Leaking the partial consumption would corrupt the next
// alternative's attempt.
func TestRepeatRollsBackOnMinFailure(t *testing.T) {
	ctx := abcContext("a b a c")
	pair := &sequence{items: []node{term("A"), term("B")}}

	before := ctx.cursor.State()
	_, _, ok := (&repeat{item: pair, min: 2}).Parse(ctx)
	assert.False(t, ok)
	assert.Equal(t, before, ctx.cursor.State())

	// With the cursor intact, a later alternative still sees the full input.
	values, _, ok := (&sequence{items: []node{term("A"), term("B"), term("A"), term("C")}}).Parse(ctx)
	require.True(t, ok)
	assert.Len(t, values, 4)
}

func TestAlternationOrderedChoice(t *testing.T) {
	// Both alternatives match; the first declared one must win every time.
	first := newAction(term("A"), func(r Result) (interface{}, error) { return "first", nil })
	second := newAction(&sequence{items: []node{term("A")}}, func(r Result) (interface{}, error) {
		return "second", nil
	})
	alt := &alternation{items: []node{first, second}}
	for i := 0; i < 10; i++ {
		value, _, ok := alt.Parse(abcContext("a"))
		require.True(t, ok)
		assert.Equal(t, "first", value)
	}
}

func TestOptionalMissIsAbsent(t *testing.T) {
	ctx := abcContext("b")
	value, sp, ok := (&optional{item: term("A")}).Parse(ctx)
	require.True(t, ok)
	assert.Nil(t, value)
	_, present := sp.first()
	assert.False(t, present)

	// The cursor did not move; B still parses.
	_, _, ok = term("B").Parse(ctx)
	assert.True(t, ok)
}

func TestActionSpanMergeSkipsAbsent(t *testing.T) {
	// [B] A [B] over "a": the optional gaps must not break the merged span.
	var got lexer.Position
	act := newAction(&sequence{items: []node{
		&optional{item: term("B")},
		term("A"),
		&optional{item: term("B")},
	}}, func(r Result) (interface{}, error) {
		got = r.Pos()
		return r.Get(1), nil
	})
	_, sp, ok := act.Parse(abcContext("a"))
	require.True(t, ok)
	assert.Equal(t, lexer.Position{Line: 1, Column: 1, Offset: 0, Length: 1}, got)
	merged, present := sp.first()
	require.True(t, present)
	assert.Equal(t, 0, merged.Offset)
}

func TestActionSpannedOverride(t *testing.T) {
	override := lexer.Position{Filename: "synth", Line: 9, Column: 9, Offset: 99, Length: 1}
	inner := newAction(term("A"), func(r Result) (interface{}, error) {
		return Spanned{Value: "x", Pos: override}, nil
	})
	outer := newAction(&sequence{items: []node{inner, term("B")}}, func(r Result) (interface{}, error) {
		return r.Pos(0), nil
	})
	value, _, ok := outer.Parse(abcContext("a b"))
	require.True(t, ok)
	assert.Equal(t, override, value)
	// The Spanned wrapper is unwrapped; actions see the plain value.
	innerValue, _, ok := inner.Parse(abcContext("a"))
	require.True(t, ok)
	assert.Equal(t, "x", innerValue)
}

func TestSequenceUnzipsValuesAndSpans(t *testing.T) {
	act := newAction(&sequence{items: []node{term("A"), term("B"), term("C")}},
		func(r Result) (interface{}, error) {
			assert.Equal(t, 3, r.Len())
			assert.Equal(t, 0, r.Pos(0).Offset)
			assert.Equal(t, 2, r.Pos(1).Offset)
			assert.Equal(t, 4, r.Pos(2).Offset)
			return nil, nil
		})
	_, _, ok := act.Parse(abcContext("a b c"))
	assert.True(t, ok)
}
