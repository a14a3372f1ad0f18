package lexer

import "fmt"

// Error represents an error encountered while producing tokens.
type Error struct {
	Msg string
	Pos Position
}

// Message returns the unadorned error message.
func (e *Error) Message() string { return e.Msg }

// Position returns where the error occurred.
func (e *Error) Position() Position { return e.Pos }

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
}

// Errorf creates a new Error at the given position.
func Errorf(pos Position, format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// Panicf throws an *Error. The parser's top-level Parse recovers it.
func Panicf(pos Position, format string, args ...interface{}) {
	panic(Errorf(pos, format, args...))
}
