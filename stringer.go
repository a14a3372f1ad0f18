package descent

import (
	"fmt"
	"strings"
)

// Nodes render back to the mini-language they were compiled from, mainly for
// debugging grammars and for Parser.String.

func (r *reference) String() string { return r.name }

func (s *sequence) String() string {
	parts := make([]string, len(s.items))
	for i, item := range s.items {
		parts[i] = grouped(item)
	}
	return strings.Join(parts, " ")
}

func (a *alternation) String() string {
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		parts[i] = item.String()
	}
	return strings.Join(parts, " | ")
}

func (r *repeat) String() string {
	if r.min > 0 {
		return grouped(r.item) + "+"
	}
	return grouped(r.item) + "*"
}

func (o *optional) String() string {
	return "[" + o.item.String() + "]"
}

func (a *action) String() string {
	if len(a.body.items) == 1 {
		return a.body.items[0].String()
	}
	return a.body.String()
}

// grouped parenthesizes compound nodes appearing where an atom is expected.
func grouped(n node) string {
	switch n := n.(type) {
	case *alternation:
		return "(" + n.String() + ")"
	case *sequence:
		if len(n.items) > 1 {
			return "(" + n.String() + ")"
		}
	case *action:
		if len(n.body.items) > 1 {
			return "(" + n.String() + ")"
		}
	}
	return n.String()
}

// String renders the compiled rule table, one rule per line.
func (p *Parser) String() string {
	out := &strings.Builder{}
	for i, r := range p.rules {
		if i > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(out, "%s := %s", r.name, r.alt.String())
	}
	return out.String()
}
