// Package bind maps call-site values onto declared parameters.
//
// Strict binding (Bind) is all-or-nothing and yields forwardable args and
// kwargs. Soft binding (Soft) never rejects a call for missing or extra
// values; it reports which parameters and values found a partner instead.
package bind

import (
	"fmt"
	"strings"

	"funcsig/internal/sigerr"
	"funcsig/internal/signature"
)

// Kwarg is one keyword argument.
type Kwarg struct {
	Value any
	Name  string
}

// Kwargs is an ordered list of keyword arguments.
type Kwargs []Kwarg

// KW builds Kwargs from alternating name, value pairs.
func KW(pairs ...any) Kwargs {
	if len(pairs)%2 != 0 {
		panic("bind.KW: odd number of arguments")
	}
	out := make(Kwargs, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("bind.KW: name at %d is %T, not string", i, pairs[i]))
		}
		out = append(out, Kwarg{Name: name, Value: pairs[i+1]})
	}
	return out
}

// Get returns the first value stored under name.
func (k Kwargs) Get(name string) (any, bool) {
	for _, kw := range k {
		if kw.Name == name {
			return kw.Value, true
		}
	}
	return nil, false
}

// Names returns the keyword names in order.
func (k Kwargs) Names() []string {
	out := make([]string, len(k))
	for i, kw := range k {
		out[i] = kw.Name
	}
	return out
}

func (k Kwargs) String() string {
	parts := make([]string, len(k))
	for i, kw := range k {
		parts[i] = kw.Name + "=" + signature.FormatValue(kw.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Value is a call-site argument: a position or name key, the supplied value,
// and the slot it is linked to once bound.
type Value struct {
	Value any
	slot  *Slot
	Key   signature.Key
}

// Slot is a declared parameter taking part in a soft bind.
type Slot struct {
	value    *Value
	Param    signature.Parameter
	Position int
}

// Values turns args and kwargs into unbound values, positional first.
func Values(args []any, kwargs Kwargs) []*Value {
	out := make([]*Value, 0, len(args)+len(kwargs))
	for i, a := range args {
		out = append(out, &Value{Key: signature.Pos(i), Value: a})
	}
	for _, kw := range kwargs {
		out = append(out, &Value{Key: signature.Name(kw.Name), Value: kw.Value})
	}
	return out
}

// Slot returns the linked slot, or nil.
func (v *Value) Slot() *Slot { return v.slot }

// IsBound reports whether the value found a parameter.
func (v *Value) IsBound() bool { return v.slot != nil }

// Param returns the linked parameter.
func (v *Value) Param() (signature.Parameter, bool) {
	if v.slot == nil {
		return signature.Parameter{}, false
	}
	return v.slot.Param, true
}

func (v *Value) String() string {
	param := "None"
	if v.slot != nil {
		param = v.slot.String()
	}
	return fmt.Sprintf("<Value key=%s param=%s value=%s>", v.Key, param, signature.FormatValue(v.Value))
}

// Value returns the linked value, or nil.
func (s *Slot) Value() *Value { return s.value }

// IsBound reports whether a value was linked to the slot.
func (s *Slot) IsBound() bool { return s.value != nil }

// Accepts reports whether key may supply this slot: positions for
// positional kinds, names for keyword kinds; variadic slots accept neither.
func (s *Slot) Accepts(key signature.Key) bool {
	if key.IsName() {
		return s.Param.IsKeyword() && s.Param.Name() == key.NameValue()
	}
	return s.Param.IsPositional() && s.Position == key.Position()
}

func (s *Slot) String() string {
	v := "_empty"
	if s.value != nil {
		v = signature.FormatValue(s.value.Value)
	}
	return fmt.Sprintf("<Slot name=%q pos=%d value=%s kind=%s>", s.Param.Name(), s.Position, v, s.Param.Kind())
}

// link connects v and s in both directions. Relinking the same pair is a
// no-op; linking either side to a different partner is a conflict.
func link(op sigerr.Op, v *Value, s *Slot) error {
	if v.slot != nil && v.slot != s {
		return sigerr.New(op, sigerr.KindBindingConflict).
			Param(s.Param.Name()).
			Value(v.Value).
			Detail("cannot rebind value %s to a different parameter: %s != %s", v.Key, v.slot, s).
			Build()
	}
	if s.value != nil && s.value != v {
		return sigerr.New(op, sigerr.KindBindingConflict).
			Param(s.Param.Name()).
			Value(v.Value).
			Detail("multiple values for parameter '%s': %s and %s", s.Param.Name(), s.value.Key, v.Key).
			Build()
	}
	v.slot = s
	s.value = v
	return nil
}
