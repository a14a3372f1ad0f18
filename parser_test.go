package descent

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descentparse/descent/lexer"
)

var calcLexer = lexer.Must(lexer.New(
	lexer.Rule{Type: "NUMBER", Pattern: `[0-9]+(\.[0-9]*)?|\.[0-9]+`, Transform: func(t lexer.Token) *lexer.Token {
		value, _ := strconv.ParseFloat(t.Value.(string), 64)
		t.Value = value
		return &t
	}},
	lexer.Rule{Type: "PLUS", Pattern: `\+`},
	lexer.Rule{Type: "MINUS", Pattern: `-`},
	lexer.Rule{Type: "TIMES", Pattern: `\*`},
	lexer.Rule{Type: "DIVIDE", Pattern: `/`},
	lexer.Rule{Type: "POWER", Pattern: `\^`},
	lexer.Rule{Type: "LPAREN", Pattern: `\(`},
	lexer.Rule{Type: "RPAREN", Pattern: `\)`},
	lexer.Rule{Type: "SPACE", Pattern: `[ \t\n]+`, Transform: lexer.Suppress},
))

func reduceBinary(r Result) (interface{}, error) {
	result := r.Get(0).(float64)
	for _, item := range r.Get(1).([]interface{}) {
		pair := item.([]interface{})
		operand := pair[1].(float64)
		switch pair[0].(string) {
		case "+":
			result += operand
		case "-":
			result -= operand
		case "*":
			result *= operand
		case "/":
			result /= operand
		}
	}
	return result, nil
}

func calcParser(t *testing.T) *Parser {
	t.Helper()
	parser, err := Build([]RuleDef{
		Rule("atom",
			"NUMBER",
			Prod("LPAREN expr RPAREN", func(r Result) (interface{}, error) { return r.Get(1), nil }),
		),
		Rule("factor",
			Prod("atom POWER factor", func(r Result) (interface{}, error) {
				return math.Pow(r.Get(0).(float64), r.Get(2).(float64)), nil
			}),
			"atom",
			Prod("MINUS factor", func(r Result) (interface{}, error) {
				return -r.Get(1).(float64), nil
			}),
		),
		Rule("term", Prod("factor ((TIMES|DIVIDE) factor)*", reduceBinary)),
		Rule("expr", Prod("term ((PLUS|MINUS) term)*", reduceBinary)),
	}, "expr")
	require.NoError(t, err)
	return parser
}

func TestCalculator(t *testing.T) {
	parser := calcParser(t)
	tests := []struct {
		input    string
		expected float64
	}{
		{"2+3*4", 14},
		{"2*3+4", 10},
		{"2^3^2", 512}, // right associative
		{"(1+2)*3", 9},
		{"-2^2", -4},
		{"10 - 2 - 3", 5}, // left associative
		{"8/2/2", 2},
		{"1.5 * 4", 6},
		{".5+.25", 0.75},
	}
	for _, test := range tests {
		value, err := parser.Parse(calcLexer.Lex(test.input, ""))
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, value, test.input)
	}
}

func TestParseDeterministic(t *testing.T) {
	parser := calcParser(t)
	for i := 0; i < 10; i++ {
		value, err := parser.Parse(calcLexer.Lex("2+3*4", ""))
		require.NoError(t, err)
		assert.Equal(t, float64(14), value)
	}
}

func TestFurthestErrorAggregatesAlternatives(t *testing.T) {
	parser := calcParser(t)
	_, err := parser.Parse(calcLexer.Lex("1/", "test"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	// The expected set is the union across every alternative tried at the
	// deepest position (atom's NUMBER and LPAREN and factor's unary MINUS),
	// not just whichever alternative failed last.
	assert.Contains(t, perr.Msg, "NUMBER")
	assert.Contains(t, perr.Msg, "LPAREN")
	assert.Contains(t, perr.Msg, "MINUS")
	assert.Equal(t, 2, perr.Pos.Offset)
}

func TestErrorPositionIsFurthestNotLast(t *testing.T) {
	parser := calcParser(t)
	// The failure is at ")" even though backtracking retried much earlier
	// positions afterwards.
	_, err := parser.Parse(calcLexer.Lex("1+(2*)-3", "test"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 5, perr.Pos.Offset)
	assert.Contains(t, perr.Msg, "NUMBER")
}

func TestErrorAtFirstToken(t *testing.T) {
	parser := calcParser(t)
	// Failing on the very first token reports that token's position, not the
	// lexer's scan position beyond it.
	_, err := parser.Parse(calcLexer.Lex("*2", "test"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.Pos.Offset)
	assert.Equal(t, 1, perr.Pos.Column)
	assert.Equal(t, 1, perr.Pos.Length)
	assert.Contains(t, perr.Msg, "NUMBER")
}

func TestLeftoverTokensFail(t *testing.T) {
	parser := calcParser(t)
	_, err := parser.Parse(calcLexer.Lex("1 2", ""))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Pos.Offset)
}

func TestLexErrorBecomesParseError(t *testing.T) {
	parser := calcParser(t)
	_, err := parser.Parse(calcLexer.Lex("1 + $", "test"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "no token matches input", perr.Msg)
	assert.Equal(t, 4, perr.Pos.Offset)
	assert.Equal(t, "test", perr.Pos.Filename)
}

func lazyParser(t *testing.T) (*lexer.Definition, *Parser) {
	t.Helper()
	def := lexer.Must(lexer.New(
		lexer.Rule{Type: "X", Pattern: `x`},
		lexer.Rule{Type: "Y", Pattern: `y`},
		lexer.Rule{Type: "Z", Pattern: `z`},
	))
	parser, err := Build([]RuleDef{Rule("start", "X Y")}, "start")
	require.NoError(t, err)
	return def, parser
}

func TestLazyParse(t *testing.T) {
	def, parser := lazyParser(t)

	// A valid prefix is incomplete, not wrong.
	_, err := parser.Parse(def.Lex("x", ""), Lazy())
	assert.ErrorIs(t, err, ErrIncomplete)

	value, err := parser.Parse(def.Lex("xy", ""), Lazy())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x", "y"}, value)

	// A rejection before the end of input is a real error even in lazy mode.
	_, err = parser.Parse(def.Lex("z", ""), Lazy())
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	assert.NotErrorIs(t, err, ErrIncomplete)
}

func TestNonLazyPrefixIsError(t *testing.T) {
	def, parser := lazyParser(t)
	_, err := parser.Parse(def.Lex("x", ""))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "Y")
}

func TestFromRule(t *testing.T) {
	parser := calcParser(t)
	value, err := parser.Parse(calcLexer.Lex("2^3", ""), FromRule("factor"))
	require.NoError(t, err)
	assert.Equal(t, float64(8), value)

	_, err = parser.Parse(calcLexer.Lex("2", ""), FromRule("nonesuch"))
	assert.Error(t, err)
}

func TestWithContext(t *testing.T) {
	seenCtx := ""
	parser, err := Build([]RuleDef{
		Rule("start", Prod("X", func(r Result) (interface{}, error) {
			seenCtx = r.Context().(string)
			return r.Get(0), nil
		})),
	}, "start")
	require.NoError(t, err)
	def := lexer.Must(lexer.New(lexer.Rule{Type: "X", Pattern: `x`}))
	_, err = parser.Parse(def.Lex("x", ""), WithContext("user-context"))
	require.NoError(t, err)
	assert.Equal(t, "user-context", seenCtx)
}

func TestSemanticError(t *testing.T) {
	parser, err := Build([]RuleDef{
		Rule("expr", Prod("NUMBER DIVIDE NUMBER", func(r Result) (interface{}, error) {
			divisor := r.Get(2).(float64)
			if divisor == 0 {
				return nil, r.Errorf([]int{2}, "division by zero")
			}
			return r.Get(0).(float64) / divisor, nil
		})),
	}, "expr")
	require.NoError(t, err)

	value, err := parser.Parse(calcLexer.Lex("8/2", ""))
	require.NoError(t, err)
	assert.Equal(t, float64(4), value)

	_, err = parser.Parse(calcLexer.Lex("8 / 0", "calc"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "division by zero", perr.Msg)
	// Positioned at the referenced sub-result, not at the whole production.
	assert.Equal(t, 4, perr.Pos.Offset)
	assert.Equal(t, "calc(1): parse error: division by zero", perr.Error())
}

func TestSetRulesMidParse(t *testing.T) {
	// A marker token switches the lexer into an embedded sub-language whose
	// lexical rules only apply from the next match attempt onward.
	outer := lexer.Must(lexer.New(
		lexer.Rule{Type: "HASH", Pattern: `#`},
		lexer.Rule{Type: "WORD", Pattern: `[a-z]+`},
		lexer.Rule{Type: "SPACE", Pattern: ` +`, Transform: lexer.Suppress},
	))
	parser, err := Build([]RuleDef{
		Rule("marker", Prod("HASH", func(r Result) (interface{}, error) {
			return r.Get(0), r.SetRules(
				lexer.Rule{Type: "RAW", Pattern: `[^;]+`},
				lexer.Rule{Type: "SEMI", Pattern: `;`},
			)
		})),
		Rule("start", Prod("WORD marker RAW SEMI", func(r Result) (interface{}, error) {
			return r.Get(2), nil
		})),
	}, "start")
	require.NoError(t, err)

	value, err := parser.Parse(outer.Lex("say #anything at all;", ""))
	require.NoError(t, err)
	assert.Equal(t, "anything at all", value)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build([]RuleDef{Rule("start", "a |")}, "start")
	var gerr *GrammarError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "start", gerr.Rule)

	_, err = Build([]RuleDef{Rule("start", "a")}, "nonesuch")
	assert.Error(t, err)

	_, err = Build([]RuleDef{{Name: "start"}}, "start")
	assert.Error(t, err)
}

func TestRepeatedRuleNamesExtendAlternation(t *testing.T) {
	def := lexer.Must(lexer.New(
		lexer.Rule{Type: "A", Pattern: `a`},
		lexer.Rule{Type: "B", Pattern: `b`},
	))
	parser, err := Build([]RuleDef{
		Rule("start", "A"),
		Rule("start", "B"),
	}, "start")
	require.NoError(t, err)

	value, err := parser.Parse(def.Lex("b", ""))
	require.NoError(t, err)
	assert.Equal(t, "b", value)
}

func TestParserString(t *testing.T) {
	parser := calcParser(t)
	assert.Equal(t,
		"atom := NUMBER | LPAREN expr RPAREN\n"+
			"factor := atom POWER factor | atom | MINUS factor\n"+
			"term := factor ((TIMES | DIVIDE) factor)*\n"+
			"expr := term ((PLUS | MINUS) term)*",
		parser.String())
}
