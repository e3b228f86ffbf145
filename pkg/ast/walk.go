package ast

import "github.com/chazu/winopts/pkg/value"

// Walk calls fn for v and, while fn returns true, for everything nested in
// it: array elements, object property values and the parts of identifier
// expressions.
func Walk(v any, fn func(any) bool) {
	if !fn(v) {
		return
	}
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			Walk(e, fn)
		}
	case *value.Object:
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			Walk(e, fn)
		}
	case *IdentifierExpression:
		for _, p := range x.Parts {
			Walk(p, fn)
		}
	}
}

// IsDeferred reports whether v contains any node, that is, whether it
// cannot be used as a plain value without evaluation.
func IsDeferred(v any) bool {
	found := false
	Walk(v, func(n any) bool {
		switch n.(type) {
		case *CallExpression, *IdentifierExpression:
			found = true
		}
		return !found
	})
	return found
}
