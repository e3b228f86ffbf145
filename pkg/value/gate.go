package value

import (
	"errors"
	"fmt"
)

// Gate decides whether a value reached from declarative markup may be
// returned or invoked. A nil error admits the value.
type Gate func(v any) error

// Processable is implemented by values that opt in to being reachable from
// declarative markup.
type Processable interface {
	SupportedForProcessing() bool
}

// QueryFunc is a function that can be named in a query expression such as
// select('#id'). A bare QueryFunc is not reachable from markup until it is
// marked with MarkSupportedForProcessing.
type QueryFunc func(query string) (any, error)

// SupportedFunc is a QueryFunc that has been marked safe for declarative
// invocation.
type SupportedFunc QueryFunc

// SupportedForProcessing implements Processable.
func (SupportedFunc) SupportedForProcessing() bool { return true }

// MarkSupportedForProcessing marks fn as callable from markup.
func MarkSupportedForProcessing(fn QueryFunc) SupportedFunc {
	return SupportedFunc(fn)
}

// ErrNotSupportedForProcessing indicates a value that markup is not allowed
// to reach.
var ErrNotSupportedForProcessing = errors.New("value is not marked as supported for processing")

// DeniedError reports a value rejected by the capability gate.
type DeniedError struct {
	Value any
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%v: %T", ErrNotSupportedForProcessing, e.Value)
}

func (e *DeniedError) Unwrap() error { return ErrNotSupportedForProcessing }

// RequireSupportedForProcessing is the default Gate. Plain data passes,
// Processable values pass when they say so, and everything else is denied.
func RequireSupportedForProcessing(v any) error {
	switch x := v.(type) {
	case nil, UndefinedType, bool, float64, string, []any, *Object, map[string]any:
		return nil
	case Processable:
		if x.SupportedForProcessing() {
			return nil
		}
	}
	return &DeniedError{Value: v}
}

// AllowAll is a Gate that admits every value. It is meant for trusted
// input only.
func AllowAll(any) error { return nil }

// Path applies each part as a property read starting from base, passing
// every intermediate result through gate. The base itself is not checked.
func Path(base any, gate Gate, parts ...any) (any, error) {
	if gate == nil {
		gate = RequireSupportedForProcessing
	}
	v := base
	for _, part := range parts {
		next, err := Get(v, part)
		if err != nil {
			return nil, err
		}
		if err := gate(next); err != nil {
			return nil, fmt.Errorf("property %q: %w", PropertyKey(part), err)
		}
		v = next
	}
	return v, nil
}

// Invoke looks up name in funcs and calls it with arg. Both the function
// and its result must pass gate.
func Invoke(funcs any, name, arg string, gate Gate) (any, error) {
	if gate == nil {
		gate = RequireSupportedForProcessing
	}
	fn, err := Get(funcs, name)
	if err != nil {
		return nil, err
	}
	if err := gate(fn); err != nil {
		return nil, fmt.Errorf("function %q: %w", name, err)
	}

	var result any
	switch f := fn.(type) {
	case SupportedFunc:
		result, err = f(arg)
	case QueryFunc:
		result, err = f(arg)
	case func(string) (any, error):
		result, err = f(arg)
	case func(string) any:
		result = f(arg)
	default:
		return nil, &AccessError{Op: "call", Key: name, Base: fn, Err: ErrNotCallable}
	}
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", name, err)
	}
	result = Normalize(result)
	if err := gate(result); err != nil {
		return nil, fmt.Errorf("result of %q: %w", name, err)
	}
	return result, nil
}
