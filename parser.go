package descent

import (
	"fmt"
	"strings"

	"github.com/descentparse/descent/lexer"
)

// A Production pairs rule text in the mini-language with an optional semantic
// action computing the production's value.
type Production struct {
	Expr   string
	Action Action
}

// Prod pairs rule text with a semantic action.
func Prod(expr string, action Action) Production {
	return Production{Expr: expr, Action: action}
}

// A RuleDef declares one named rule as an ordered list of productions.
// Alternatives are tried in declaration order; the first that matches wins.
type RuleDef struct {
	Name        string
	Productions []Production
}

// Rule builds a RuleDef from productions. Plain strings are productions
// without an action:
//
//	descent.Rule("atom", "NUMBER", descent.Prod("LPAREN expr RPAREN", group))
func Rule(name string, productions ...interface{}) RuleDef {
	def := RuleDef{Name: name}
	for _, p := range productions {
		switch p := p.(type) {
		case string:
			def.Productions = append(def.Productions, Production{Expr: p})
		case Production:
			def.Productions = append(def.Productions, p)
		default:
			panic(fmt.Sprintf("rule %s: production must be string or Production, not %T", name, p))
		}
	}
	return def
}

// A Parser holds a compiled rule table. It is read-only after Build and may be
// shared by concurrent parses, each with its own Cursor.
//
// Rules may reference each other cyclically, but a rule must consume at least
// one token before referring back to itself: the engine is a backtracking
// recursive descent and left recursion will recurse without bound.
type Parser struct {
	rules []*rule
	index map[string]int
	start int
}

// Build compiles a rule table. Every production is compiled up front: a
// malformed production fails here, wrapped in a *GrammarError naming its rule,
// and no partially usable Parser is ever returned.
func Build(defs []RuleDef, start string) (*Parser, error) {
	p := &Parser{index: map[string]int{}}
	for _, def := range defs {
		r := p.addRule(def.Name)
		for _, prod := range def.Productions {
			n, err := compileProduction(prod.Expr)
			if err != nil {
				return nil, &GrammarError{Rule: def.Name, Err: err}
			}
			if prod.Action != nil {
				n = newAction(n, prod.Action)
			}
			r.alt.items = append(r.alt.items, n)
		}
	}
	for _, r := range p.rules {
		if len(r.alt.items) == 0 {
			return nil, &GrammarError{Rule: r.name, Err: fmt.Errorf("rule has no productions")}
		}
		r.node = collapse(r.alt)
	}
	// Resolve each referenced name to a rule index, or leave it as a terminal
	// token type. Resolution happens once, here, not per parse.
	for _, r := range p.rules {
		p.resolve(r.node, map[node]bool{})
	}
	index, ok := p.index[start]
	if !ok {
		return nil, fmt.Errorf("start rule %q not defined", start)
	}
	p.start = index
	return p, nil
}

// MustBuild calls Build and panics on error.
func MustBuild(defs []RuleDef, start string) *Parser {
	p, err := Build(defs, start)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Parser) addRule(name string) *rule {
	if i, ok := p.index[name]; ok {
		return p.rules[i]
	}
	r := &rule{name: name, alt: &alternation{}}
	p.index[name] = len(p.rules)
	p.rules = append(p.rules, r)
	return r
}

// collapse replaces a single-production alternation with the production
// itself. Pure simplification.
func collapse(alt *alternation) node {
	if len(alt.items) == 1 {
		return alt.items[0]
	}
	return alt
}

func (p *Parser) resolve(n node, seen map[node]bool) {
	if seen[n] {
		return
	}
	seen[n] = true
	switch n := n.(type) {
	case *reference:
		if i, ok := p.index[n.name]; ok {
			n.index = i
		}
	case *sequence:
		for _, item := range n.items {
			p.resolve(item, seen)
		}
	case *alternation:
		for _, item := range n.items {
			p.resolve(item, seen)
		}
	case *repeat:
		p.resolve(n.item, seen)
	case *optional:
		p.resolve(n.item, seen)
	case *action:
		p.resolve(n.body, seen)
	}
}

// Parse evaluates the start rule against the cursor's token stream.
//
// On success, meaning the rule matched and no token is left over, it returns the
// start rule's value. A parse in Lazy mode that failed only by running out of
// input returns ErrIncomplete. Every other failure returns a *ParseError
// positioned at the furthest point the search reached, listing the token types
// that were acceptable there across all backtracked alternatives.
func (p *Parser) Parse(cursor *lexer.Cursor, options ...ParseOption) (value interface{}, err error) {
	config := parseConfig{start: p.start}
	for _, option := range options {
		if cerr := option(p, &config); cerr != nil {
			return nil, cerr
		}
	}
	defer func() {
		switch e := recover().(type) {
		case nil:
		case *ParseError:
			err = e
		case *lexer.Error:
			// A lex error demanded lazily during the parse; fold it into the
			// parse error channel with the same position.
			err = &ParseError{Msg: e.Msg, Pos: e.Pos, Line: cursor.SourceLine(e.Pos)}
		default:
			panic(e)
		}
	}()
	ctx := &parseContext{rules: p.rules, cursor: cursor, user: config.user}
	result, _, ok := p.rules[config.start].node.Parse(ctx)
	if ok && cursor.Peek() == nil {
		return result, nil
	}
	if config.lazy && cursor.ReachedEnd() {
		return nil, ErrIncomplete
	}
	return nil, structuralError(cursor)
}

func structuralError(cursor *lexer.Cursor) *ParseError {
	pos := cursor.MaxPosition()
	msg := "unexpected input"
	if expected := cursor.Expected(); len(expected) > 0 {
		msg = "expected one of: " + strings.Join(expected, ", ")
	}
	return &ParseError{Msg: msg, Pos: pos, Line: cursor.SourceLine(pos)}
}
