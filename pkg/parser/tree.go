package parser

import (
	"fmt"

	"github.com/chazu/winopts/pkg/ast"
	"github.com/chazu/winopts/pkg/lexer"
)

// TreeBuilder parses an options record into values with deferred nodes.
// Literals are evaluated as they are read; identifier and query expressions
// become *ast.IdentifierExpression and *ast.CallExpression so a code
// generator can resolve them later.
type TreeBuilder struct {
	reader
}

// NewTreeBuilder creates a tree builder over tokens produced from source.
func NewTreeBuilder(tokens []lexer.Token, source string) *TreeBuilder {
	return &TreeBuilder{reader: newReader(tokens, source)}
}

// Run parses the record. The whole record must be a single Value.
func (tb *TreeBuilder) Run() (any, error) {
	v, err := tb.readValue(hooks{
		identifier: tb.buildIdentifierExpression,
		query:      tb.buildCallExpression,
	})
	if err != nil {
		return nil, err
	}
	if err := tb.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

// evaluateValue reads an index value. Indexes must be literals: another
// identifier chain there would need immediate evaluation.
func (tb *TreeBuilder) evaluateValue() (any, error) {
	return tb.readValue(hooks{
		identifier: tb.immediateEvaluation,
		query:      tb.immediateEvaluation,
	})
}

func (tb *TreeBuilder) immediateEvaluation() (any, error) {
	return nil, fmt.Errorf("%w: %s at offset %d", ErrImmediateEvaluation, tb.lexeme(tb.current), tb.current.Offset)
}

// buildIdentifierExpression collects ('this' | Identifier) AccessExpression*
// into an IdentifierExpression. A leading this contributes no part.
func (tb *TreeBuilder) buildIdentifierExpression() (any, error) {
	parts := []any{}
	if tb.current.Type == lexer.THIS {
		if _, err := tb.read(); err != nil {
			return nil, err
		}
	} else {
		tok, err := tb.read(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		parts = append(parts, tok.Value.(string))
	}
	parts, err := tb.buildAccessExpressions(parts)
	if err != nil {
		return nil, err
	}
	return &ast.IdentifierExpression{Parts: parts}, nil
}

// buildCallExpression builds a CallExpression, wrapped in an
// IdentifierExpression when access steps follow it.
func (tb *TreeBuilder) buildCallExpression() (any, error) {
	target, arg, err := tb.readQuery()
	if err != nil {
		return nil, err
	}
	call := &ast.CallExpression{Target: target, Arg0Value: arg}
	if tb.current.Type != lexer.DOT && tb.current.Type != lexer.LBRACKET {
		return call, nil
	}
	parts, err := tb.buildAccessExpressions([]any{call})
	if err != nil {
		return nil, err
	}
	return &ast.IdentifierExpression{Parts: parts}, nil
}

func (tb *TreeBuilder) buildAccessExpressions(parts []any) ([]any, error) {
	err := tb.readAccessExpressions(tb.evaluateValue, func(key any) error {
		parts = append(parts, key)
		return nil
	})
	return parts, err
}
