package transform

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"funcsig/internal/bind"
	"funcsig/internal/sigerr"
	"funcsig/internal/signature"
)

// ErrArgumentType is the cause attached when a value cannot be passed as a
// Go function argument.
var ErrArgumentType = errors.New("argument type mismatch")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap turns a Go function into a Callable. Go functions take no keyword
// arguments; a trailing error result is returned as the call's error, and
// several remaining results are returned as []any.
func Wrap(fn any) (Callable, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("transform: cannot wrap %T, not a function", fn)
	}
	ft := fv.Type()
	name := FuncName(fn)

	return func(args []any, kwargs bind.Kwargs) (any, error) {
		if len(kwargs) > 0 {
			return nil, sigerr.New(sigerr.OpCall, sigerr.KindLookup).
				Param(kwargs[0].Name).
				Cause(bind.ErrUnexpectedKeyword).
				Detail("%s takes no keyword arguments, got %s", name, kwargs).
				Build()
		}

		fixed := ft.NumIn()
		if ft.IsVariadic() {
			fixed--
		}
		if len(args) < fixed || (!ft.IsVariadic() && len(args) > fixed) {
			cause := bind.ErrTooManyPositional
			if len(args) < fixed {
				cause = bind.ErrMissingArgument
			}
			return nil, sigerr.New(sigerr.OpCall, sigerr.KindLookup).
				Cause(cause).
				Detail("%s takes %d arguments but %d were given", name, fixed, len(args)).
				Build()
		}

		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			var t reflect.Type
			if i < fixed {
				t = ft.In(i)
			} else {
				t = ft.In(fixed).Elem()
			}
			v, err := convert(arg, t)
			if err != nil {
				return nil, sigerr.New(sigerr.OpCall, sigerr.KindLookup).
					Param(fmt.Sprintf("arg%d", i)).
					Value(arg).
					Cause(err).
					Detail("%s: cannot use %T as %s", name, arg, t).
					Build()
			}
			in[i] = v
		}
		return results(fv.Call(in), ft)
	}, nil
}

func results(out []reflect.Value, ft reflect.Type) (any, error) {
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}

// convert adapts a dynamically typed value to t. Numbers convert across
// numeric kinds and []any converts element-wise into typed slices.
func convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, ErrArgumentType
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return convertNumber(rv, t)
	}
	if list, ok := v.([]any); ok && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, len(list), len(list))
		for i, e := range list {
			ev, err := convert(e, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}
	return reflect.Value{}, ErrArgumentType
}

// convertNumber rejects conversions that change the value: truncated
// fractions, overflow and sign changes. Float narrowing only fails on overflow.
func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	if isFloat(rv.Kind()) && isFloat(t.Kind()) {
		if reflect.Zero(t).OverflowFloat(rv.Float()) {
			return reflect.Value{}, ErrArgumentType
		}
		return rv.Convert(t), nil
	}
	out := rv.Convert(t)
	if negative(rv) != negative(out) || !out.Convert(rv.Type()).Equal(rv) {
		return reflect.Value{}, ErrArgumentType
	}
	return out, nil
}

func negative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case v.CanFloat():
		return v.Float() < 0
	}
	return false
}

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// SignatureOf describes a Go function's parameters. Named parameters are
// positional-or-keyword; without names they are positional-only and called
// arg0, arg1 and so on. A variadic parameter is variadic-positional.
func SignatureOf(fn any, names ...string) (*signature.Signature, error) {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("transform: cannot describe %T, not a function", fn)
	}
	if len(names) > 0 && len(names) != ft.NumIn() {
		return nil, fmt.Errorf("transform: %s has %d parameters, %d names given", FuncName(fn), ft.NumIn(), len(names))
	}

	kind := signature.PositionalOnly
	if len(names) > 0 {
		kind = signature.PositionalOrKeyword
	}
	params := make([]signature.Parameter, ft.NumIn())
	for i := range params {
		name := fmt.Sprintf("arg%d", i)
		if len(names) > 0 {
			name = names[i]
		}
		t := ft.In(i)
		k := kind
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			k = signature.VarPositional
			t = t.Elem()
			if len(names) == 0 {
				name = "args"
			}
		}
		params[i] = signature.NewParameter(name, k, signature.WithAnnotation(t.String()))
	}
	return signature.New(params, signature.WithReturn(returnAnnotation(ft))), nil
}

func returnAnnotation(ft reflect.Type) string {
	var outs []string
	for i := 0; i < ft.NumOut(); i++ {
		if i == ft.NumOut()-1 && ft.Out(i) == errorType {
			break
		}
		outs = append(outs, ft.Out(i).String())
	}
	switch len(outs) {
	case 0:
		return ""
	case 1:
		return outs[0]
	}
	return "(" + strings.Join(outs, ", ") + ")"
}

// FuncName returns the unqualified name of a Go function.
func FuncName(fn any) string {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return ""
	}
	f := runtime.FuncForPC(fv.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Adapt describes fn, applies edit to the description and builds an adapter
// forwarding to fn. The original name defaults to fn's Go name.
func Adapt(fn any, names []string, edit func(*signature.Signature) error, opts ...Option) (*Adapter, error) {
	sig, err := SignatureOf(fn, names...)
	if err != nil {
		return nil, err
	}
	wrapped, err := Wrap(fn)
	if err != nil {
		return nil, err
	}
	if edit != nil {
		if err := edit(sig); err != nil {
			return nil, err
		}
	}
	return New(sig, wrapped, append([]Option{WithName(FuncName(fn))}, opts...)...)
}
