package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

var typeNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// A Definition is a compiled token table: one union matcher over every pattern,
// tagged by token type, plus the per-type transforms.
//
// Definitions are immutable once built and may be shared freely across
// concurrent lexes.
type Definition struct {
	re         *regexp.Regexp
	names      []string // submatch index to token type
	transforms map[string]Transform
	rules      []Rule
}

// New compiles an ordered token table into a Definition.
//
// Patterns are combined into a single alternation, so matching prefers rules in
// declared order: longer patterns sharing a prefix with shorter ones must come
// first or they will never be reached. Token types must be unique and valid
// capture-group names, and patterns must not themselves contain named groups.
func New(rules ...Rule) (*Definition, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("token table is empty")
	}
	transforms := map[string]Transform{}
	seen := map[string]bool{}
	parts := make([]string, 0, len(rules))
	for _, rule := range rules {
		if !typeNameRe.MatchString(rule.Type) {
			return nil, fmt.Errorf("token type %q is not a valid name", rule.Type)
		}
		if seen[rule.Type] {
			return nil, fmt.Errorf("duplicate token type %q", rule.Type)
		}
		seen[rule.Type] = true
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return nil, fmt.Errorf("token %s: %s", rule.Type, err)
		}
		if rule.Transform != nil {
			transforms[rule.Type] = rule.Transform
		}
		parts = append(parts, fmt.Sprintf("(?P<%s>%s)", rule.Type, rule.Pattern))
	}
	re, err := regexp.Compile(`\A(?:` + strings.Join(parts, "|") + `)`)
	if err != nil {
		return nil, err
	}
	return &Definition{
		re:         re,
		names:      re.SubexpNames(),
		transforms: transforms,
		rules:      rules,
	}, nil
}

// FromMap compiles an unordered token table.
//
// The map key supplies each rule's type (any Type set on the value is
// overridden). Since map order is meaningless, entries are ordered by
// decreasing pattern length before compilation, a heuristic so that longer
// patterns sharing a prefix with shorter ones are tried first. Tables with
// genuinely ambiguous prefixes should use New with an explicit order.
func FromMap(rules map[string]Rule) (*Definition, error) {
	ordered := make([]Rule, 0, len(rules))
	for name, rule := range rules {
		rule.Type = name
		ordered = append(ordered, rule)
	}
	slices.SortFunc(ordered, func(a, b Rule) int {
		if d := len(b.Pattern) - len(a.Pattern); d != 0 {
			return d
		}
		return strings.Compare(a.Type, b.Type)
	})
	return New(ordered...)
}

// Symbols returns the token types the Definition produces, in match order.
func (d *Definition) Symbols() []string {
	symbols := make([]string, len(d.rules))
	for i, rule := range d.rules {
		symbols[i] = rule.Type
	}
	return symbols
}

// Lex begins tokenizing text, returning a Cursor over the token stream.
//
// Tokenization is lazy: no text is matched until the Cursor pulls a token, so
// lexing errors surface during parsing rather than here.
func (d *Definition) Lex(text, filename string) *Cursor {
	lx := &Lexer{def: d, text: text, filename: filename, line: 1}
	return newCursor(lx, text, filename)
}

// A Lexer is one in-flight tokenization of a single text.
//
// Production is a deterministic, single-threaded pull: each Next call matches
// at the current offset using the active Definition. SetRules swaps the active
// Definition from the next match attempt onward, never retroactively.
type Lexer struct {
	def      *Definition
	text     string
	filename string
	pos      int // byte offset of the next match attempt
	line     int
	lastNL   int // offset just past the most recent newline
}

// Next produces the next non-suppressed token, or nil once the end of input is
// reached. If no pattern matches before end of input it panics with an *Error
// carrying the unmatched position.
func (l *Lexer) Next() *Token {
	for l.pos < len(l.text) {
		match := l.def.re.FindStringSubmatchIndex(l.text[l.pos:])
		if match == nil || match[1] == 0 {
			Panicf(l.position(1), "no token matches input")
		}
		typ := ""
		for i := 1; i < len(l.def.names); i++ {
			if l.def.names[i] != "" && match[2*i] != -1 {
				typ = l.def.names[i]
				break
			}
		}
		span := l.text[l.pos : l.pos+match[1]]
		token := &Token{Type: typ, Value: span, Pos: l.position(len(span))}
		if fn := l.def.transforms[typ]; fn != nil {
			token = fn(*token)
		}
		// Newline bookkeeping covers the consumed span whether or not the
		// token was suppressed, and handles multi-line token values.
		if nl := strings.Count(span, "\n"); nl > 0 {
			l.line += nl
			l.lastNL = l.pos + strings.LastIndexByte(span, '\n') + 1
		}
		l.pos += len(span)
		if token == nil {
			continue
		}
		return token
	}
	return nil
}

// SetRules replaces the active token table. The new table applies starting at
// the next unconsumed position; already-produced tokens are not re-tokenized.
func (l *Lexer) SetRules(rules ...Rule) error {
	def, err := New(rules...)
	if err != nil {
		return err
	}
	l.def = def
	return nil
}

// SetMap is SetRules for unordered tables, ordered as in FromMap.
func (l *Lexer) SetMap(rules map[string]Rule) error {
	def, err := FromMap(rules)
	if err != nil {
		return err
	}
	l.def = def
	return nil
}

func (l *Lexer) position(length int) Position {
	return Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.pos - l.lastNL + 1,
		Offset:   l.pos,
		Length:   length,
	}
}
