// Package ast defines the nodes produced by the tree-building parser.
//
// Only deferred constructs become nodes. Literals, arrays and objects stay
// plain values from package value, with nodes possibly nested inside them.
package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chazu/winopts/pkg/lexer"
	"github.com/chazu/winopts/pkg/value"
)

// CallExpression represents a query: target("arg").
type CallExpression struct {
	Target    string
	Arg0Value string
}

// IdentifierExpression represents an access chain. Parts holds, in order,
// the leading identifier name (absent for a leading this), then one entry
// per access step: a property name for .name, or the evaluated index for
// [value]. A chain that starts with a query has its *CallExpression as the
// first part.
type IdentifierExpression struct {
	Parts []any
}

// Root returns the leading call of the chain, if any, and the remaining
// parts.
func (e *IdentifierExpression) Root() (*CallExpression, []any) {
	if len(e.Parts) > 0 {
		if call, ok := e.Parts[0].(*CallExpression); ok {
			return call, e.Parts[1:]
		}
	}
	return nil, e.Parts
}

func (c *CallExpression) String() string {
	return c.Target + "(" + Literal(c.Arg0Value) + ")"
}

func (e *IdentifierExpression) String() string {
	var sb strings.Builder
	call, parts := e.Root()
	if call != nil {
		sb.WriteString(call.String())
	} else if len(parts) == 0 {
		return "this"
	} else if name, ok := parts[0].(string); ok && isName(name, false) {
		sb.WriteString(name)
		parts = parts[1:]
	} else {
		sb.WriteString("this")
	}
	for _, p := range parts {
		if name, ok := p.(string); ok && isName(name, true) {
			sb.WriteString(".")
			sb.WriteString(name)
			continue
		}
		sb.WriteString("[")
		sb.WriteString(Literal(p))
		sb.WriteString("]")
	}
	return sb.String()
}

// isName reports whether name lexes as a single identifier token. After a
// dot, keywords are names too.
func isName(name string, afterDot bool) bool {
	tokens := lexer.Lex(name)
	if len(tokens) != 2 || tokens[0].Offset != 0 || tokens[0].End() != tokens[1].Offset {
		return false
	}
	if afterDot {
		return tokens[0].IsIdentifierName()
	}
	return tokens[0].Type == lexer.IDENTIFIER
}

// Literal renders a literal value in options syntax.
func Literal(v any) string {
	switch x := v.(type) {
	case float64:
		return value.FormatNumber(x)
	case fmt.Stringer:
		return x.String()
	}
	data, err := value.Encode(v)
	if err != nil {
		return value.PropertyKey(v)
	}
	return string(data)
}

// MarshalJSON encodes the node with a "type" discriminator.
func (c *CallExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Target    string `json:"target"`
		Arg0Value string `json:"arg0Value"`
	}{"CallExpression", c.Target, c.Arg0Value})
}

// MarshalJSON encodes the node with a "type" discriminator.
func (e *IdentifierExpression) MarshalJSON() ([]byte, error) {
	parts, err := value.Encode(e.Parts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":"IdentifierExpression","parts":`)
	buf.Write(parts)
	buf.WriteString("}")
	return buf.Bytes(), nil
}
