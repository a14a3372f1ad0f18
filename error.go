package descent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/descentparse/descent/lexer"
)

// Error is implemented by all positioned errors produced by this package.
type Error interface {
	error
	// Unadorned message.
	Message() string
	// Position the error occurred at.
	Position() lexer.Position
}

// ErrIncomplete is returned by lazy parses when the input failed only by
// ending too soon: everything supplied so far is a valid prefix, and the
// caller should gather more input before judging it invalid.
var ErrIncomplete = errors.New("incomplete parse")

// A ParseError reports a failure to parse input text, either structural (no
// grammar alternative matched, or tokens were left over) or semantic (raised
// by a user action). Lexing failures demanded during a parse are folded into
// ParseErrors too, so callers handle a single error type.
type ParseError struct {
	Msg  string
	Pos  lexer.Position
	Line string // source line containing Pos, used by Pretty
}

func (e *ParseError) Message() string { return e.Msg }

func (e *ParseError) Position() lexer.Position { return e.Pos }

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s(%d): parse error: %s", e.Pos.Filename, e.Pos.Line, e.Msg)
}

// Pretty renders the error over three lines: the message, the offending source
// line, and a caret line marking the error span.
func (e *ParseError) Pretty() string {
	col := e.Pos.Column - 1
	if col < 0 {
		col = 0
	}
	carets := e.Pos.Length
	if carets < 1 {
		carets = 1
	}
	return fmt.Sprintf("%s\n%s\n%s%s",
		e.Error(), e.Line, strings.Repeat(" ", col), strings.Repeat("^", carets))
}

// A GrammarError reports a malformed production in a rule table. It is only
// ever returned by Build: rule text is compiled up front, so a Parser that
// builds successfully can never fail on its own grammar at parse time.
type GrammarError struct {
	Rule string
	Err  error
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Err)
}

func (e *GrammarError) Unwrap() error { return e.Err }
