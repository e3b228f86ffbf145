package value

import "bytes"

// Object is a string-keyed property bag that remembers insertion order.
// Setting an existing key replaces its value in place.
type Object struct {
	keys  []string
	props map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: map[string]any{}}
}

// Set assigns key. A new key is appended to the key order.
func (o *Object) Set(key string, v any) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// With sets key and returns o, for building objects in one expression.
func (o *Object) With(key string, v any) *Object {
	o.Set(key, v)
	return o
}

// Get returns the value of key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.props[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of properties.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
