// Command calc is a demonstration calculator built on descent: a REPL that
// evaluates arithmetic with +, -, *, /, ^, parentheses and unary minus,
// accumulating lines with lazy parsing until a full expression is entered.
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/chzyer/readline"

	"github.com/descentparse/descent"
	"github.com/descentparse/descent/lexer"
)

var cli struct {
	Eval    string `short:"e" help:"Evaluate a single expression and exit."`
	File    string `short:"f" type:"existingfile" help:"Evaluate expressions from a file, one per line."`
	Tokens  bool   `help:"Dump the token stream instead of evaluating."`
	Grammar bool   `help:"Print the compiled grammar and exit."`
}

var calcTable = []lexer.Rule{
	{Type: "NUMBER", Pattern: `[0-9]+(\.[0-9]*)?|\.[0-9]+`, Transform: toNumber},
	{Type: "PLUS", Pattern: `\+`},
	{Type: "MINUS", Pattern: `-`},
	{Type: "TIMES", Pattern: `\*`},
	{Type: "DIVIDE", Pattern: `/`},
	{Type: "POWER", Pattern: `\^`},
	{Type: "LPAREN", Pattern: `\(`},
	{Type: "RPAREN", Pattern: `\)`},
	{Type: "SPACE", Pattern: `[ \t\n]+`, Transform: lexer.Suppress},
}

func toNumber(t lexer.Token) *lexer.Token {
	value, err := strconv.ParseFloat(t.Value.(string), 64)
	if err != nil {
		return nil
	}
	t.Value = value
	return &t
}

// reduceBinary folds "operand ((OP) operand)*" left to right.
func reduceBinary(r descent.Result) (interface{}, error) {
	result := r.Get(0).(float64)
	for i, item := range r.Get(1).([]interface{}) {
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
			if operand == 0 {
				return nil, r.Errorf([]int{1, i, 1}, "division by zero")
			}
			result /= operand
		}
	}
	return result, nil
}

var calcRules = []descent.RuleDef{
	descent.Rule("atom",
		"NUMBER",
		descent.Prod("LPAREN expr RPAREN", func(r descent.Result) (interface{}, error) {
			return r.Get(1), nil
		}),
	),
	descent.Rule("factor",
		// Right associative: atom ^ factor.
		descent.Prod("atom POWER factor", func(r descent.Result) (interface{}, error) {
			return math.Pow(r.Get(0).(float64), r.Get(2).(float64)), nil
		}),
		"atom",
		descent.Prod("MINUS factor", func(r descent.Result) (interface{}, error) {
			return -r.Get(1).(float64), nil
		}),
	),
	descent.Rule("term", descent.Prod("factor ((TIMES|DIVIDE) factor)*", reduceBinary)),
	descent.Rule("expr", descent.Prod("term ((PLUS|MINUS) term)*", reduceBinary)),
}

func main() {
	kctx := kong.Parse(&cli, kong.Description(`An interactive calculator built on descent.`))
	kctx.FatalIfErrorf(run())
}

func run() error {
	def, err := lexer.New(calcTable...)
	if err != nil {
		return err
	}
	parser, err := descent.Build(calcRules, "expr")
	if err != nil {
		return err
	}

	switch {
	case cli.Grammar:
		fmt.Println(parser)
		return nil
	case cli.Tokens && cli.Eval != "":
		return dumpTokens(def, cli.Eval)
	case cli.Eval != "":
		value, err := parser.Parse(def.Lex(cli.Eval, ""))
		if err != nil {
			return err
		}
		fmt.Printf("%g\n", value)
		return nil
	case cli.File != "":
		return evalFile(def, parser, cli.File)
	}
	return repl(def, parser)
}

// evalFile evaluates a file of expressions, one per line, printing one result
// per line. The first failing line aborts with its error.
func evalFile(def *lexer.Definition, parser *descent.Parser, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		value, err := parser.Parse(def.Lex(line, path))
		if err != nil {
			return err
		}
		fmt.Printf("%g\n", value)
	}
	return nil
}

func dumpTokens(def *lexer.Definition, text string) (err error) {
	defer func() {
		switch e := recover().(type) {
		case nil:
		case *lexer.Error:
			err = e
		default:
			panic(e)
		}
	}()
	cursor := def.Lex(text, "")
	var tokens []lexer.Token
	for {
		token := cursor.Peek()
		if token == nil {
			break
		}
		tokens = append(tokens, *cursor.Accept(token.Type))
	}
	repr.Println(tokens)
	return nil
}

// repl reads lines until the parser either produces a value or rejects the
// input. Lazy parsing distinguishes the two: a valid prefix keeps the "... "
// continuation prompt going.
func repl(def *lexer.Definition, parser *descent.Parser) error {
	rl, err := readline.NewEx(&readline.Config{Prompt: ">>> "})
	if err != nil {
		return err
	}
	defer rl.Close()

	pending := ""
	for {
		if pending == "" {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			pending = ""
			continue
		} else if err == io.EOF {
			fmt.Println()
			return nil
		} else if err != nil {
			return err
		}

		pending += line + "\n"
		if cli.Tokens {
			if err := dumpTokens(def, pending); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		value, err := parser.Parse(def.Lex(pending, "<stdin>"), descent.Lazy())
		if errors.Is(err, descent.ErrIncomplete) {
			continue
		}
		var perr *descent.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, perr.Pretty())
		} else if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Printf("%g\n", value)
		}
		pending = ""
	}
}
