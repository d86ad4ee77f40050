package ast

import "github.com/alecthomas/repr"

// Dump renders a program's statement list as an indented Go-literal
// style tree for debug printing of parsed structures. It is used by
// the `yellow dump` CLI subcommand and never by production
// evaluation.
func Dump(program []Stmt) string {
	return repr.String(program, repr.Indent("  "), repr.OmitEmpty(true))
}
