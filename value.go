package goAudit

import (
	"fmt"
	"math"

	"github.com/mailru/easyjson/jwriter"
)

// Kind is the variant tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindString
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

type member struct {
	name  string
	value *Value
}

// Value is one node of a Document tree. Only the fields matching kind are
// meaningful. Values are read-only outside this package.
type Value struct {
	kind Kind

	i int64
	f float64
	s string
	b bool

	// object members in first-insertion order, index maps name -> position
	members []member
	index   map[string]int

	elems []*Value
}

func nullValue() *Value           { return &Value{kind: KindNull} }
func intValue(v int64) *Value     { return &Value{kind: KindInteger, i: v} }
func floatValue(v float64) *Value { return &Value{kind: KindFloat, f: v} }
func stringValue(v string) *Value { return &Value{kind: KindString, s: v} }
func boolValue(v bool) *Value     { return &Value{kind: KindBool, b: v} }
func objectValue() *Value         { return &Value{kind: KindObject, index: map[string]int{}} }
func arrayValue() *Value          { return &Value{kind: KindArray} }

func containerValue(k Kind) *Value {
	if k == KindArray {
		return arrayValue()
	}
	return objectValue()
}

// set replaces an existing member in place or appends a new one.
func (v *Value) set(name string, val *Value) {
	if pos, ok := v.index[name]; ok {
		v.members[pos].value = val
		return
	}
	v.index[name] = len(v.members)
	v.members = append(v.members, member{name: name, value: val})
}

func (v *Value) push(val *Value) {
	v.elems = append(v.elems, val)
}

func (v *Value) clone() *Value {
	if v == nil {
		return nil
	}
	out := *v
	switch v.kind {
	case KindObject:
		out.members = make([]member, len(v.members))
		out.index = make(map[string]int, len(v.members))
		for i, m := range v.members {
			out.members[i] = member{name: m.name, value: m.value.clone()}
			out.index[m.name] = i
		}
	case KindArray:
		out.elems = make([]*Value, len(v.elems))
		for i, e := range v.elems {
			out.elems[i] = e.clone()
		}
	}
	return &out
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool {
	return v.Kind() == KindNull
}

func (v *Value) Int() (int64, bool) {
	if v.Kind() != KindInteger {
		return 0, false
	}
	return v.i, true
}

func (v *Value) Float() (float64, bool) {
	if v.Kind() != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.s, true
}

func (v *Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// Len returns the member count of an object or the element count of an
// array, and 0 for scalars.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.elems)
	default:
		return 0
	}
}

// Get looks up an object member.
func (v *Value) Get(name string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	pos, ok := v.index[name]
	if !ok {
		return nil, false
	}
	return v.members[pos].value, true
}

// Index returns an array element.
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != KindArray || i < 0 || i >= len(v.elems) {
		return nil, false
	}
	return v.elems[i], true
}

// Keys returns object member names in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	out := make([]string, len(v.members))
	for i, m := range v.members {
		out[i] = m.name
	}
	return out
}

// encode writes v in compact form. Non-finite floats have no JSON
// representation and fail the encoding.
func (v *Value) encode(w *jwriter.Writer) error {
	switch v.Kind() {
	case KindNull:
		w.RawString("null")
	case KindInteger:
		w.Int64(v.i)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("%w: non-finite float %v", ErrKindMismatch, v.f)
		}
		w.Float64(v.f)
	case KindString:
		w.String(v.s)
	case KindBool:
		w.Bool(v.b)
	case KindObject:
		w.RawByte('{')
		for i, m := range v.members {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(m.name)
			w.RawByte(':')
			if err := m.value.encode(w); err != nil {
				return err
			}
		}
		w.RawByte('}')
	case KindArray:
		w.RawByte('[')
		for i, e := range v.elems {
			if i > 0 {
				w.RawByte(',')
			}
			if err := e.encode(w); err != nil {
				return err
			}
		}
		w.RawByte(']')
	default:
		return ErrKindMismatch
	}
	return w.Error
}
