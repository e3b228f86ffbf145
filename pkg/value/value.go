// Package value defines the dynamic values produced by evaluating options
// records and the property access rules applied to them.
//
// Values are represented with plain Go types:
//
//	null       - nil
//	undefined  - Undefined
//	number     - float64
//	string     - string
//	boolean    - bool
//	array      - []any
//	object     - *Object (keys keep declaration order)
//
// Contexts may also hold map[string]any and Getter values as objects. Go
// integer and float32 values read from a context become float64, and slices
// or string-keyed maps of such scalars become []any and map[string]any, so
// they pass the default gate like their plain counterparts.
package value

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"
)

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

// Undefined is the value of elided array slots and missing properties.
var Undefined UndefinedType

func (UndefinedType) String() string { return "undefined" }

// MarshalJSON encodes undefined the way JSON.stringify does inside arrays.
func (UndefinedType) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Getter is implemented by object-like values whose properties can be read
// by name.
type Getter interface {
	Get(key string) (any, bool)
}

// ErrNilAccess indicates a property read on null or undefined.
var ErrNilAccess = errors.New("cannot read property of null or undefined")

// ErrNotCallable indicates a query target that is not a function.
var ErrNotCallable = errors.New("value is not a function")

// AccessError reports a failed property read or call.
type AccessError struct {
	Op   string // "get" or "call"
	Key  string
	Base any
	Err  error
}

func (e *AccessError) Error() string {
	if e.Op == "call" {
		return fmt.Sprintf("cannot call %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("cannot read property %q of %s", e.Key, TypeOf(e.Base))
}

func (e *AccessError) Unwrap() error { return e.Err }

// Get reads property key of v. Keys are converted with PropertyKey, so
// arrays may be indexed with numbers or numeric strings. Missing properties
// read as Undefined; reading from null or undefined is an error.
func Get(v any, key any) (any, error) {
	k := PropertyKey(key)
	switch x := Normalize(v).(type) {
	case nil, UndefinedType:
		return nil, &AccessError{Op: "get", Key: k, Base: v, Err: ErrNilAccess}
	case Getter:
		if r, ok := x.Get(k); ok {
			return Normalize(r), nil
		}
	case map[string]any:
		if r, ok := x[k]; ok {
			return Normalize(r), nil
		}
	case []any:
		if k == "length" {
			return float64(len(x)), nil
		}
		if i, ok := arrayIndex(k); ok && i < len(x) {
			return Normalize(x[i]), nil
		}
	case string:
		units := utf16.Encode([]rune(x))
		if k == "length" {
			return float64(len(units)), nil
		}
		if i, ok := arrayIndex(k); ok && i < len(units) {
			return string(utf16.Decode(units[i : i+1])), nil
		}
	}
	return Undefined, nil
}

// Normalize converts Go numeric kinds to float64 and slices or string-keyed
// maps of scalars to []any and map[string]any. Other values are returned
// unchanged.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, UndefinedType, bool, float64, string, []any, *Object, map[string]any:
		return v
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !isScalarKind(rv.Type().Elem().Kind()) {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || !isScalarKind(rv.Type().Elem().Kind()) {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	}
	return v
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// arrayIndex parses a canonical non-negative integer key.
func arrayIndex(k string) (int, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(k)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// PropertyKey converts a value to the string used to look it up as a
// property name.
func PropertyKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return FormatNumber(x)
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case *Object:
		return "[object Object]"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			if e == nil || e == Undefined {
				continue
			}
			parts[i] = PropertyKey(e)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// FormatNumber renders f the way ECMAScript's Number toString does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + string(sign) + exp
}

// TypeOf names the kind of v for diagnostics.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object, map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
