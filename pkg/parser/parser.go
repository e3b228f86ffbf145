// Package parser evaluates declarative options records such as
//
//	{ mode: 'list', data: app.items, target: select('#main').id }
//
// Two interpreters share one grammar. The Interpreter resolves identifier
// and query expressions immediately against caller-supplied contexts; the
// TreeBuilder keeps them as ast nodes for later code generation. Both
// evaluate literals right away.
package parser

import (
	"github.com/chazu/winopts/pkg/lexer"
	"github.com/chazu/winopts/pkg/value"
)

// Parse evaluates text against vars and funcs using the default capability
// gate. Nil contexts are empty.
func Parse(text string, vars, funcs any) (any, error) {
	return ParseWith(text, vars, funcs, nil)
}

// ParseWith evaluates text with a caller-supplied capability gate.
func ParseWith(text string, vars, funcs any, gate value.Gate) (any, error) {
	return NewInterpreter(lexer.Lex(text), text, vars, funcs, gate).Run()
}

// ParseToTree parses text without resolving identifiers. The result is a
// plain value, an *ast.CallExpression, an *ast.IdentifierExpression, or a
// literal array or object containing them.
func ParseToTree(text string) (any, error) {
	return NewTreeBuilder(lexer.Lex(text), text).Run()
}
