package parser

import (
	"fmt"

	"github.com/chazu/winopts/pkg/lexer"
	"github.com/chazu/winopts/pkg/value"
)

// Interpreter evaluates an options record directly into a value.
// Identifiers are looked up in the variable context, query functions in the
// function context, and every value reached that way must pass the gate.
type Interpreter struct {
	reader
	vars  any
	funcs any
	gate  value.Gate
}

// NewInterpreter creates an interpreter over tokens produced from source.
// Nil contexts are treated as empty objects; a nil gate is the default
// value.RequireSupportedForProcessing.
func NewInterpreter(tokens []lexer.Token, source string, vars, funcs any, gate value.Gate) *Interpreter {
	if vars == nil {
		vars = value.NewObject()
	}
	if funcs == nil {
		funcs = value.NewObject()
	}
	if gate == nil {
		gate = value.RequireSupportedForProcessing
	}
	return &Interpreter{
		reader: newReader(tokens, source),
		vars:   vars,
		funcs:  funcs,
		gate:   gate,
	}
}

// Run evaluates the record. The whole record must be a single Value.
func (in *Interpreter) Run() (any, error) {
	v, err := in.evaluateValue()
	if err != nil {
		return nil, err
	}
	if err := in.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func (in *Interpreter) hooks() hooks {
	return hooks{
		identifier: in.evaluateIdentifierExpression,
		query:      in.evaluateObjectQueryExpression,
	}
}

func (in *Interpreter) evaluateValue() (any, error) {
	return in.readValue(in.hooks())
}

// evaluateIdentifierExpression resolves ('this' | Identifier) AccessExpression*.
func (in *Interpreter) evaluateIdentifierExpression() (any, error) {
	start := in.current
	var v any
	if start.Type == lexer.THIS {
		if _, err := in.read(); err != nil {
			return nil, err
		}
		v = in.vars
	} else {
		tok, err := in.read(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if v, err = value.Get(in.vars, tok.Value); err != nil {
			return nil, in.evaluationError(start, err)
		}
	}
	if err := in.gate(v); err != nil {
		return nil, in.evaluationError(start, err)
	}
	return in.evaluateAccessExpressions(start, v)
}

// evaluateObjectQueryExpression calls a query function and resolves any
// access steps on its result.
func (in *Interpreter) evaluateObjectQueryExpression() (any, error) {
	start := in.current
	target, arg, err := in.readQuery()
	if err != nil {
		return nil, err
	}
	result, err := value.Invoke(in.funcs, target, arg, in.gate)
	if err != nil {
		return nil, in.evaluationError(start, err)
	}
	return in.evaluateAccessExpressions(start, result)
}

// evaluateAccessExpressions applies .name and [value] steps to v. Bracketed
// values are evaluated with the full grammar before being used as keys.
func (in *Interpreter) evaluateAccessExpressions(start lexer.Token, v any) (any, error) {
	err := in.readAccessExpressions(in.evaluateValue, func(key any) error {
		next, err := value.Path(v, in.gate, key)
		if err != nil {
			return in.evaluationError(start, err)
		}
		v = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// evaluationError ties a lookup failure to the expression it came from.
func (in *Interpreter) evaluationError(start lexer.Token, err error) error {
	return fmt.Errorf("evaluating %s at offset %d: %w", in.lexeme(start), start.Offset, err)
}
