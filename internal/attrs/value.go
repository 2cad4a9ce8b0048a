// Package attrs models the loosely-typed, vendor-specific attribute payloads
// attached to scraped jewelry listings. A payload is a recursive value
// (string | number | object | list) with typed accessors that default safely
// on shape mismatch.
package attrs

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindObject
	KindList
)

// Value is one node of an attribute payload. Objects preserve key order so
// that identical attribute content always serializes to identical text.
type Value struct {
	kind   Kind
	str    string
	num    float64
	keys   []string
	fields map[string]Value
	items  []Value
}

// String creates a string value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Object creates an empty object value
func Object() Value {
	return Value{kind: KindObject, fields: map[string]Value{}}
}

// List creates a list value from the given items
func List(items ...Value) Value {
	return Value{kind: KindList, items: items}
}

// Kind reports the shape of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent
func (v Value) IsNull() bool { return v.kind == KindNull }

// Set adds or replaces a field on an object value, preserving insertion
// order for new keys. No-op on non-objects.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindObject {
		return
	}
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = val
}

// Keys returns an object's keys in insertion order, nil otherwise
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.keys
}

// Field looks up an object field by exact key
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	val, ok := v.fields[key]
	return val, ok
}

// FieldFold looks up an object field by case-insensitive key
func (v Value) FieldFold(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, k := range v.keys {
		if strings.EqualFold(k, key) {
			return v.fields[k], true
		}
	}
	return Value{}, false
}

// SectionContaining finds the first object field whose key contains the
// given fragment, case-insensitive. Vendor schemas spell section names
// inconsistently ("Specifications", "Product Specification", "Stone(s)").
func (v Value) SectionContaining(fragment string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	fragment = strings.ToLower(fragment)
	for _, k := range v.keys {
		if strings.Contains(strings.ToLower(k), fragment) {
			return v.fields[k], true
		}
	}
	return Value{}, false
}

// Items returns a list's items, nil otherwise
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Text renders a scalar value as a trimmed string. Objects and lists
// render through Flatten.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindObject, KindList:
		return v.Flatten()
	default:
		return ""
	}
}

// Flatten serializes the value as a flat "key: value" sequence joined by
// ", " in key insertion order, recursing into nested objects. This is the
// canonical embedding text for a payload.
func (v Value) Flatten() string {
	var b strings.Builder
	v.flattenInto(&b)
	return b.String()
}

func (v Value) flattenInto(b *strings.Builder) {
	switch v.kind {
	case KindObject:
		for i, k := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			v.fields[k].flattenInto(b)
		}
	case KindList:
		for i, item := range v.items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.flattenInto(b)
		}
	case KindString:
		b.WriteString(strings.TrimSpace(v.str))
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.num, 'f', -1, 64))
	}
}

// MarshalJSON renders the value as standard JSON, objects in key order
func (v Value) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	v.marshalInto(&b)
	return []byte(b.String()), nil
}

func (v Value) marshalInto(b *strings.Builder) {
	switch v.kind {
	case KindObject:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			v.fields[k].marshalInto(b)
		}
		b.WriteByte('}')
	case KindList:
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			item.marshalInto(b)
		}
		b.WriteByte(']')
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.num, 'f', -1, 64))
	default:
		b.WriteString("null")
	}
}

// UnmarshalJSON decodes standard JSON into a Value, preserving object key
// order (encoding/json map decoding would lose it).
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, rest, err := decodeValue(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	if strings.TrimSpace(rest) != "" {
		return fmt.Errorf("attrs: trailing data after value")
	}
	*v = parsed
	return nil
}
