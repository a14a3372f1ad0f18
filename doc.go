// Package descent compiles named grammar rules written in a small EBNF-like
// notation into a backtracking recursive-descent parser, and pairs it with a
// regex-table tokenizer from the lexer subpackage.
//
// A grammar is a table of rules. Each rule is an ordered list of productions,
// and each production pairs rule text with an optional semantic action that
// computes its value:
//
//	def := lexer.Must(lexer.New(
//		lexer.Rule{Type: "NUMBER", Pattern: `[0-9]+`, Transform: toInt},
//		lexer.Rule{Type: "PLUS", Pattern: `\+`},
//		lexer.Rule{Type: "SPACE", Pattern: ` +`, Transform: lexer.Suppress},
//	))
//
//	parser := descent.MustBuild([]descent.RuleDef{
//		descent.Rule("sum", descent.Prod("NUMBER (PLUS NUMBER)*", add)),
//	}, "sum")
//
//	value, err := parser.Parse(def.Lex("1 + 2 + 3", ""))
//
// Rule text supports sequences, ordered alternation with |, grouping with
// parentheses, zero-or-more * and one-or-more + suffixes, and optional
// [bracketed] groups. Identifiers name either another rule or a token type.
//
// Alternatives are tried in declaration order and the first match wins; there
// is no ambiguity resolution and no longest-match preference. Failed
// alternatives backtrack atomically, and the parser remembers the furthest
// point any alternative reached so a failed parse reports the most informative
// error, not the last one. Left-recursive rules are not supported and must be
// rewritten with repetition.
package descent
