// Package transform derives adapter callables: an adapter exposes an edited
// signature and forwards every call to the original callable in the
// original calling convention.
package transform

import (
	"reflect"
	"slices"
	"strings"

	"funcsig/internal/bind"
	"funcsig/internal/sigerr"
	"funcsig/internal/signature"

	"go.uber.org/zap"
)

// Callable is the uniform calling convention adapters forward to.
type Callable func(args []any, kwargs bind.Kwargs) (any, error)

type source int

const (
	fromParam   source = iota // the current parameter with the same identity
	fromMember                // a member of a current compound parameter
	fromDefault               // the original default; the parameter was removed
	fromNothing               // a removed variadic; forwarded empty
)

// step resolves one original parameter from a bound call.
type step struct {
	param  signature.Parameter
	owner  signature.Parameter
	source source
	member int
}

// Adapter is a callable with an edited signature over an original callable.
type Adapter struct {
	fn      Callable
	sig     *signature.Signature
	origin  *signature.Signature
	name    string
	alias   string
	plan    []step
	extras  []signature.Parameter
	members map[uint64]int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithName sets the name of the original callable, used in Doc.
func WithName(name string) Option {
	return func(a *Adapter) {
		a.name = name
	}
}

// WithAlias sets the name the adapter is known by. It defaults to the
// original name.
func WithAlias(alias string) Option {
	return func(a *Adapter) {
		a.alias = alias
	}
}

// New builds an adapter whose external signature is sig as it stands now and
// whose internal signature is sig's provenance snapshot. Later edits to sig
// do not affect the adapter. The current signature must validate, and every
// required original parameter must still be reachable through it.
func New(sig *signature.Signature, fn Callable, opts ...Option) (*Adapter, error) {
	if err := sig.Validate(); err != nil {
		return nil, sigerr.Wrap(sigerr.OpTransform, sigerr.KindStructural, err, "cannot transform %s", sig)
	}

	a := &Adapter{
		fn:      fn,
		sig:     sig.Clone(),
		origin:  sig.OriginSignature(),
		members: make(map[uint64]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.alias == "" {
		a.alias = a.name
	}

	current := a.sig.Params()
	original, err := a.origin.Materialize()
	if err != nil {
		return nil, sigerr.Wrap(sigerr.OpTransform, sigerr.KindStructural, err, "original signature %s is invalid", a.origin)
	}

	byID := make(map[uint64]signature.Parameter, len(current))
	owners := make(map[uint64]signature.Parameter)
	for _, p := range current {
		byID[p.ID()] = p
		for i, m := range p.Members() {
			owners[m.ID()] = p
			a.members[m.ID()] = i
		}
	}

	used := make(map[uint64]bool, len(current))
	for _, p := range original {
		st := step{param: p}
		switch {
		case hasID(byID, p):
			st.source = fromParam
			st.owner = byID[p.ID()]
			used[p.ID()] = true
		case hasID(owners, p):
			st.source = fromMember
			st.owner = owners[p.ID()]
			st.member = a.members[p.ID()]
			used[st.owner.ID()] = true
		case p.HasDefault():
			st.source = fromDefault
		case p.Kind().Variadic():
			st.source = fromNothing
		default:
			return nil, sigerr.Structural(sigerr.OpTransform, p.Name(),
				"original parameter '%s' is required but %s cannot supply it", p.Name(), a.sig)
		}
		a.plan = append(a.plan, st)
	}

	for _, p := range current {
		if used[p.ID()] {
			continue
		}
		if err := a.acceptExtra(p); err != nil {
			return nil, err
		}
		a.extras = append(a.extras, p)
	}

	Logger().Debug("adapter built",
		zap.String("adapter", a.alias),
		zap.Stringer("signature", a.sig),
		zap.Stringer("original", a.origin),
		zap.Int("steps", len(a.plan)),
		zap.Int("extras", len(a.extras)),
	)
	return a, nil
}

func hasID(m map[uint64]signature.Parameter, p signature.Parameter) bool {
	_, ok := m[p.ID()]
	return ok
}

// acceptExtra checks that a parameter unknown to the original can still be
// forwarded, through the original's variadic parameters.
func (a *Adapter) acceptExtra(p signature.Parameter) error {
	var want signature.Kind
	switch {
	case p.IsCompound():
		return sigerr.Structural(sigerr.OpTransform, p.Name(),
			"compound parameter '%s' has no member known to the original", p.Name())
	case p.Kind() == signature.VarPositional:
		want = signature.VarPositional
	default:
		want = signature.VarKeyword
	}
	if len(a.origin.Bucket(want)) == 0 {
		return sigerr.Structural(sigerr.OpTransform, p.Name(),
			"parameter '%s' is unknown to %s%s and it takes no %s", p.Name(), a.name, a.origin, want)
	}
	return nil
}

// Call strict-binds the call against the adapter's signature, expands
// compound values, and forwards to the original callable.
func (a *Adapter) Call(args []any, kwargs bind.Kwargs) (any, error) {
	b, err := bind.Bind(a.sig, args, kwargs)
	if err != nil {
		return nil, err
	}
	b.ApplyDefaults()

	fargs, fkwargs, err := a.forward(b)
	if err != nil {
		return nil, err
	}
	Logger().Debug("forwarding call",
		zap.String("adapter", a.alias),
		zap.String("target", a.name),
		zap.Int("args", len(fargs)),
		zap.Strings("kwargs", fkwargs.Names()),
	)
	return a.fn(fargs, fkwargs)
}

func (a *Adapter) forward(b *bind.Bound) ([]any, bind.Kwargs, error) {
	var (
		args   []any
		kwargs bind.Kwargs
	)
	expanded := make(map[uint64][]any)
	for _, st := range a.plan {
		var v any
		switch st.source {
		case fromParam:
			v, _ = b.Lookup(st.owner)
		case fromMember:
			parts, ok := expanded[st.owner.ID()]
			if !ok {
				raw, _ := b.Lookup(st.owner)
				var err error
				parts, err = unpack(st.owner, raw)
				if err != nil {
					return nil, nil, err
				}
				expanded[st.owner.ID()] = parts
			}
			var err error
			if v, err = memberValue(st.owner, st.param, parts[st.member]); err != nil {
				return nil, nil, err
			}
		case fromDefault:
			v, _ = st.param.Default()
		case fromNothing:
			if st.param.Kind() == signature.VarPositional {
				v = []any{}
			} else {
				v = bind.Kwargs{}
			}
		}

		switch st.param.Kind() {
		case signature.PositionalOnly, signature.PositionalOrKeyword:
			args = append(args, v)
		case signature.VarPositional:
			rest, _ := v.([]any)
			args = append(args, rest...)
		case signature.KeywordOnly:
			kwargs = append(kwargs, bind.Kwarg{Name: st.param.Name(), Value: v})
		case signature.VarKeyword:
			extra, _ := v.(bind.Kwargs)
			kwargs = append(kwargs, extra...)
		}
	}

	for _, p := range a.extras {
		v, _ := b.Lookup(p)
		switch p.Kind() {
		case signature.VarPositional:
			rest, _ := v.([]any)
			args = append(args, rest...)
		case signature.VarKeyword:
			extra, _ := v.(bind.Kwargs)
			kwargs = append(kwargs, extra...)
		default:
			kwargs = append(kwargs, bind.Kwarg{Name: p.Name(), Value: v})
		}
	}
	return args, kwargs, nil
}

// memberValue normalises the value of a packed variadic member: *args takes
// any slice or array, **kwargs takes Kwargs or a map with string keys.
func memberValue(owner, member signature.Parameter, v any) (any, error) {
	switch member.Kind() {
	case signature.VarPositional:
		if v == nil {
			return []any{}, nil
		}
		if rest, ok := v.([]any); ok {
			return rest, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			rest := make([]any, rv.Len())
			for i := range rest {
				rest[i] = rv.Index(i).Interface()
			}
			return rest, nil
		}
	case signature.VarKeyword:
		if v == nil {
			return bind.Kwargs{}, nil
		}
		if extra, ok := v.(bind.Kwargs); ok {
			return extra, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			keys := rv.MapKeys()
			slices.SortFunc(keys, func(x, y reflect.Value) int { return strings.Compare(x.String(), y.String()) })
			extra := make(bind.Kwargs, 0, len(keys))
			for _, k := range keys {
				extra = append(extra, bind.Kwarg{Name: k.String(), Value: rv.MapIndex(k).Interface()})
			}
			return extra, nil
		}
	default:
		return v, nil
	}
	return nil, sigerr.New(sigerr.OpCall, sigerr.KindPacking).
		Param(owner.Name()).
		Value(v).
		Detail("member '%s' of '%s' cannot take %T", member.Name(), owner.Name(), v).
		Build()
}

// unpack splits a compound value into one value per member.
func unpack(p signature.Parameter, v any) ([]any, error) {
	n := len(p.Members())
	if parts, ok := v.([]any); ok {
		if len(parts) != n {
			return nil, sigerr.New(sigerr.OpCall, sigerr.KindPacking).
				Param(p.Name()).
				Value(v).
				Detail("'%s' expects %d values, got %d", p.Name(), n, len(parts)).
				Build()
		}
		return parts, nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, sigerr.New(sigerr.OpCall, sigerr.KindPacking).
			Param(p.Name()).
			Value(v).
			Detail("'%s' expects a sequence of %d values, got %T", p.Name(), n, v).
			Build()
	}
	if rv.Len() != n {
		return nil, sigerr.New(sigerr.OpCall, sigerr.KindPacking).
			Param(p.Name()).
			Value(v).
			Detail("'%s' expects %d values, got %d", p.Name(), n, rv.Len()).
			Build()
	}
	parts := make([]any, n)
	for i := range parts {
		parts[i] = rv.Index(i).Interface()
	}
	return parts, nil
}

// Signature returns a copy of the adapter's external signature.
func (a *Adapter) Signature() *signature.Signature { return a.sig.Clone() }

// Name returns the adapter's alias.
func (a *Adapter) Name() string { return a.alias }

// Doc describes the mapping from the adapter to the original callable.
func (a *Adapter) Doc() string {
	return "Transformed function\n" + a.alias + a.sig.String() + " ==> " + a.name + a.origin.String()
}
