package lexer

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Cursor is a position into a lazily produced, cached token stream.
//
// Backtracking parsers snapshot the cursor with State and roll back with
// Restore; both are O(1) and never discard cached tokens, so re-advancing
// after a rollback replays the cache rather than re-tokenizing.
//
// The Cursor also tracks the furthest position any Accept call reached and the
// set of token types queried there. A recursive-descent search that backtracks
// through many failed alternatives can then report the globally deepest, most
// informative failure instead of whichever alternative happened to fail last.
//
// A Cursor is not safe for use by more than one in-flight parse.
type Cursor struct {
	lex      *Lexer
	done     bool // token production exhausted
	text     string
	filename string
	cache    []*Token
	pos      int

	maxPos      int       // furthest position queried, -1 before the first Accept
	maxPosition *Position // position of the token at maxPos, nil at end of input
	maxExpected map[string]struct{}
}

// State is an opaque snapshot of a Cursor's position.
type State int

func newCursor(lex *Lexer, text, filename string) *Cursor {
	// maxPos starts below every valid position so the first Accept records the
	// first token's position even when it fails immediately.
	return &Cursor{
		lex:         lex,
		text:        text,
		filename:    filename,
		maxPos:      -1,
		maxExpected: map[string]struct{}{},
	}
}

func (c *Cursor) tokenAt(pos int) *Token {
	for !c.done && pos >= len(c.cache) {
		token := c.lex.Next() // may panic with *Error
		if token == nil {
			c.done = true
			break
		}
		c.cache = append(c.cache, token)
	}
	if pos >= len(c.cache) {
		return nil
	}
	return c.cache[pos]
}

// Peek returns the next token without consuming it, or nil at end of input.
func (c *Cursor) Peek() *Token {
	return c.tokenAt(c.pos)
}

// Accept consumes and returns the next token if it has the given type.
//
// Whether or not the token matches, Accept first records the query in the
// furthest-failure bookkeeping so that the final error message can list every
// token type that was acceptable at the deepest point reached.
func (c *Cursor) Accept(typ string) *Token {
	token := c.Peek()
	if c.pos >= c.maxPos {
		if c.pos > c.maxPos {
			c.maxPos = c.pos
			c.maxPosition = nil
			if token != nil {
				pos := token.Pos
				c.maxPosition = &pos
			}
			if len(c.maxExpected) > 0 {
				c.maxExpected = map[string]struct{}{}
			}
		}
		c.maxExpected[typ] = struct{}{}
	}
	if token != nil && token.Type == typ {
		c.pos++
		return token
	}
	return nil
}

// Expect consumes and returns the next token, panicking with an *Error if it
// does not have the given type.
func (c *Cursor) Expect(typ string) *Token {
	token := c.Accept(typ)
	if token == nil {
		Panicf(c.NextPosition(), "expected %s", typ)
	}
	return token
}

// State snapshots the cursor position.
func (c *Cursor) State() State {
	return State(c.pos)
}

// Restore rolls the cursor back to a previous snapshot. The token cache and
// the furthest-failure bookkeeping are untouched.
func (c *Cursor) Restore(state State) {
	c.pos = int(state)
}

// ReachedEnd reports whether the furthest point reached was the true end of
// available input, as opposed to a mismatch on a real token. It distinguishes
// "this input is a valid prefix, feed me more" from "this input is wrong" for
// incremental parsing.
func (c *Cursor) ReachedEnd() bool {
	return c.done && c.maxPos == len(c.cache)
}

// NextPosition returns the position of the next token, or the end of the
// consumed input once production is exhausted.
func (c *Cursor) NextPosition() Position {
	if token := c.Peek(); token != nil {
		return token.Pos
	}
	return c.lex.position(0)
}

// MaxPosition returns the position of the furthest token any Accept reached.
func (c *Cursor) MaxPosition() Position {
	if c.maxPosition != nil {
		return *c.maxPosition
	}
	return c.lex.position(0)
}

// Expected returns the sorted, de-duplicated set of token types queried at the
// furthest position reached.
func (c *Cursor) Expected() []string {
	expected := maps.Keys(c.maxExpected)
	slices.Sort(expected)
	return expected
}

// SourceLine extracts the line of source text containing the given position.
func (c *Cursor) SourceLine(pos Position) string {
	if pos.Offset > len(c.text) {
		return ""
	}
	start := strings.LastIndexByte(c.text[:pos.Offset], '\n') + 1
	end := strings.IndexByte(c.text[pos.Offset:], '\n')
	if end == -1 {
		return c.text[start:]
	}
	return c.text[start : pos.Offset+end]
}

// SetRules replaces the live Lexer's token table, effective at the next match
// attempt. Tokens already produced (including any cached ahead of the cursor)
// are never re-tokenized.
func (c *Cursor) SetRules(rules ...Rule) error {
	return c.lex.SetRules(rules...)
}

// SetMap is SetRules for unordered tables.
func (c *Cursor) SetMap(rules map[string]Rule) error {
	return c.lex.SetMap(rules)
}
