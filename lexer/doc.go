// Package lexer turns a table of named regular-expression patterns into a lazy,
// resumable tokenizer.
//
// A Definition compiles the table into a single union matcher. Lexing it against
// input text yields a Cursor, which caches produced tokens so that a backtracking
// parser can snapshot and restore its position in O(1) without re-tokenizing.
//
// Per-type Transform functions can rewrite a token's value (eg. parse a number)
// or suppress it entirely (whitespace, comments). The active table can be swapped
// mid-stream with SetRules, which takes effect at the next match attempt. This is
// the mechanism for embedded sub-languages whose lexical rules depend on parse
// progress.
package lexer
