package descent

import "github.com/descentparse/descent/lexer"

// The rule mini-language:
//
//	expr := seq (PIPE seq)*
//	seq  := atom+
//	atom := IDENT [ (STAR | PLUS) ]
//	      | LPAREN expr RPAREN [ (STAR | PLUS) ]
//	      | LBRACKET expr RBRACKET
//
// STAR and PLUS bind to the immediately preceding identifier or parenthesized
// group. Bracketed groups are optional and cannot be repeated directly; repeat
// a parenthesized group instead.
//
// The compiler is self-hosted: these three rules are assembled below as plain
// grammar nodes and executed by the same engine that runs user grammars, with
// semantic actions that construct the user's nodes.
var metaLexer = lexer.Must(lexer.New(
	lexer.Rule{Type: "IDENT", Pattern: `[a-zA-Z_]+`},
	lexer.Rule{Type: "LPAREN", Pattern: `\(`},
	lexer.Rule{Type: "RPAREN", Pattern: `\)`},
	lexer.Rule{Type: "LBRACKET", Pattern: `\[`},
	lexer.Rule{Type: "RBRACKET", Pattern: `\]`},
	lexer.Rule{Type: "PIPE", Pattern: `\|`},
	lexer.Rule{Type: "STAR", Pattern: `\*`},
	lexer.Rule{Type: "PLUS", Pattern: `\+`},
	lexer.Rule{Type: "SPACE", Pattern: `\s+`, Transform: lexer.Suppress},
))

var metaParser = newMetaParser()

func newMetaParser() *Parser {
	p := &Parser{index: map[string]int{}}
	expr := p.addRule("expr")
	seq := p.addRule("seq")
	atom := p.addRule("atom")

	ruleRef := func(name string) node { return &reference{name: name, index: p.index[name]} }
	term := func(typ string) node { return &reference{name: typ, index: -1} }
	// [ (STAR | PLUS) ]
	suffix := func() node {
		return &optional{item: &alternation{items: []node{term("STAR"), term("PLUS")}}}
	}

	// expr := seq (PIPE seq)*
	expr.alt.items = []node{newAction(&sequence{items: []node{
		ruleRef("seq"),
		&repeat{item: &sequence{items: []node{term("PIPE"), ruleRef("seq")}}},
	}}, compileExpr)}

	// seq := atom+
	seq.alt.items = []node{newAction(&repeat{item: ruleRef("atom"), min: 1}, compileSeq)}

	// atom := IDENT [(STAR|PLUS)] | LPAREN expr RPAREN [(STAR|PLUS)] | LBRACKET expr RBRACKET
	atom.alt.items = []node{
		newAction(&sequence{items: []node{term("IDENT"), suffix()}}, compileAtomIdent),
		newAction(&sequence{items: []node{
			term("LPAREN"), ruleRef("expr"), term("RPAREN"), suffix(),
		}}, compileAtomGroup),
		newAction(&sequence{items: []node{
			term("LBRACKET"), ruleRef("expr"), term("RBRACKET"),
		}}, compileAtomOptional),
	}

	for _, r := range p.rules {
		r.node = collapse(r.alt)
	}
	p.start = p.index["expr"]
	return p
}

// compileProduction parses one production's rule text into a grammar node.
// References are left unresolved; Build resolves them once every rule in the
// table is known.
func compileProduction(text string) (node, error) {
	value, err := metaParser.Parse(metaLexer.Lex(text, "<grammar>"))
	if err != nil {
		return nil, err
	}
	return value.(node), nil
}

func compileExpr(r Result) (interface{}, error) {
	first := r.Get(0).(node)
	rest := r.Get(1).([]interface{})
	if len(rest) == 0 {
		return first, nil
	}
	items := []node{first}
	for _, pair := range rest {
		items = append(items, pair.([]interface{})[1].(node))
	}
	return &alternation{items: items}, nil
}

func compileSeq(r Result) (interface{}, error) {
	atoms := r.Get(0).([]interface{})
	// A single atom stays flat so actions aren't forever unwrapping
	// one-element sequences.
	if len(atoms) == 1 {
		return atoms[0], nil
	}
	items := make([]node, len(atoms))
	for i, atom := range atoms {
		items[i] = atom.(node)
	}
	return &sequence{items: items}, nil
}

func compileAtomIdent(r Result) (interface{}, error) {
	name := r.Get(0).(string)
	return repeatSuffix(&reference{name: name, index: -1}, r.Get(1)), nil
}

func compileAtomGroup(r Result) (interface{}, error) {
	return repeatSuffix(r.Get(1).(node), r.Get(3)), nil
}

func compileAtomOptional(r Result) (interface{}, error) {
	return &optional{item: r.Get(1).(node)}, nil
}

func repeatSuffix(n node, suffix interface{}) node {
	switch suffix {
	case "*":
		return &repeat{item: n}
	case "+":
		return &repeat{item: n, min: 1}
	}
	return n
}
