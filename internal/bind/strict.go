package bind

import (
	"errors"

	"funcsig/internal/sigerr"
	"funcsig/internal/signature"
)

// Causes attached to lookup errors raised by Bind.
var (
	ErrTooManyPositional = errors.New("too many positional arguments")
	ErrUnexpectedKeyword = errors.New("unexpected keyword argument")
	ErrMissingArgument   = errors.New("missing required argument")
)

// Argument is a parameter together with its resolved value.
type Argument struct {
	Value    any
	Param    signature.Parameter
	Supplied bool // false when the value came from ApplyDefaults
}

// Bound is the result of a successful strict bind. Variadic-positional
// parameters hold a []any, variadic-keyword parameters hold Kwargs.
type Bound struct {
	values   map[uint64]any
	supplied map[uint64]bool
	params   []signature.Parameter
}

// Bind assigns args and kwargs to the parameters of sig. Any violation
// aborts the whole bind and no partial result is returned.
func Bind(sig *signature.Signature, args []any, kwargs Kwargs) (*Bound, error) {
	params, err := sig.Materialize()
	if err != nil {
		return nil, err
	}

	b := &Bound{
		params:   params,
		values:   make(map[uint64]any, len(params)),
		supplied: make(map[uint64]bool, len(params)),
	}

	var varKeyword *signature.Parameter
	for i := range params {
		if params[i].Kind() == signature.VarKeyword {
			varKeyword = &params[i]
		}
	}

	// positional values
	next := 0
	for i := 0; i < len(args); i++ {
		if next < len(params) && !params[next].IsPositional() && params[next].Kind() != signature.VarPositional {
			next = len(params)
		}
		if next >= len(params) {
			return nil, sigerr.New(sigerr.OpBind, sigerr.KindLookup).
				Value(args[i]).
				Cause(ErrTooManyPositional).
				Detail("takes %d positional arguments but %d were given", countPositional(params), len(args)).
				Build()
		}
		p := params[next]
		if p.Kind() == signature.VarPositional {
			rest := make([]any, len(args)-i)
			copy(rest, args[i:])
			b.set(p, rest)
			break
		}
		b.set(p, args[i])
		next++
	}

	// keyword values
	var extra Kwargs
	for _, kw := range kwargs {
		p, found := findKeyword(params, kw.Name)
		if !found {
			if varKeyword == nil {
				detail := "got an unexpected keyword argument '%s'"
				if q, ok := findName(params, kw.Name); ok && q.IsPositionalOnly() {
					detail = "got positional-only argument '%s' passed as keyword argument"
				}
				return nil, sigerr.New(sigerr.OpBind, sigerr.KindLookup).
					Param(kw.Name).
					Value(kw.Value).
					Cause(ErrUnexpectedKeyword).
					Detail(detail, kw.Name).
					Build()
			}
			if _, dup := extra.Get(kw.Name); dup {
				return nil, sigerr.Conflict(sigerr.OpBind, kw.Name, "multiple values for keyword argument '%s'", kw.Name)
			}
			extra = append(extra, kw)
			continue
		}
		if b.supplied[p.ID()] {
			return nil, sigerr.New(sigerr.OpBind, sigerr.KindBindingConflict).
				Param(p.Name()).
				Value(kw.Value).
				Detail("multiple values for argument '%s'", p.Name()).
				Build()
		}
		b.set(p, kw.Value)
	}
	if varKeyword != nil && len(extra) > 0 {
		b.set(*varKeyword, extra)
	}

	for _, p := range params {
		if b.supplied[p.ID()] || !p.Required() {
			continue
		}
		return nil, sigerr.New(sigerr.OpBind, sigerr.KindLookup).
			Param(p.Name()).
			Cause(ErrMissingArgument).
			Detail("missing a required argument: '%s'", p.Name()).
			Build()
	}
	return b, nil
}

func (b *Bound) set(p signature.Parameter, v any) {
	b.values[p.ID()] = v
	b.supplied[p.ID()] = true
}

func countPositional(params []signature.Parameter) int {
	n := 0
	for _, p := range params {
		if p.IsPositional() {
			n++
		}
	}
	return n
}

func findKeyword(params []signature.Parameter, name string) (signature.Parameter, bool) {
	for _, p := range params {
		if p.IsKeyword() && p.Name() == name {
			return p, true
		}
	}
	return signature.Parameter{}, false
}

func findName(params []signature.Parameter, name string) (signature.Parameter, bool) {
	for _, p := range params {
		if p.Name() == name {
			return p, true
		}
	}
	return signature.Parameter{}, false
}

// ApplyDefaults fills every unsupplied parameter with its default; variadic
// parameters get an empty collection.
func (b *Bound) ApplyDefaults() *Bound {
	for _, p := range b.params {
		if _, ok := b.values[p.ID()]; ok {
			continue
		}
		switch {
		case p.Kind() == signature.VarPositional:
			b.values[p.ID()] = []any{}
		case p.Kind() == signature.VarKeyword:
			b.values[p.ID()] = Kwargs{}
		case p.HasDefault():
			def, _ := p.Default()
			b.values[p.ID()] = def
		}
	}
	return b
}

// Arguments lists the parameters that hold a value, in declared order.
func (b *Bound) Arguments() []Argument {
	out := make([]Argument, 0, len(b.values))
	for _, p := range b.params {
		if v, ok := b.values[p.ID()]; ok {
			out = append(out, Argument{Param: p, Value: v, Supplied: b.supplied[p.ID()]})
		}
	}
	return out
}

// Get returns the value held by the named parameter.
func (b *Bound) Get(name string) (any, bool) {
	for _, p := range b.params {
		if p.Name() == name {
			v, ok := b.values[p.ID()]
			return v, ok
		}
	}
	return nil, false
}

// Lookup returns the value held by the parameter with p's identity.
func (b *Bound) Lookup(p signature.Parameter) (any, bool) {
	v, ok := b.values[p.ID()]
	return v, ok
}

// Args returns the positional arguments for forwarding: positional
// parameters up to the first one without a value, then the variadic tail.
func (b *Bound) Args() []any {
	var out []any
	for _, p := range b.params {
		if p.Kind() == signature.KeywordOnly || p.Kind() == signature.VarKeyword {
			break
		}
		v, ok := b.values[p.ID()]
		if !ok {
			break
		}
		if p.Kind() == signature.VarPositional {
			out = append(out, v.([]any)...)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Kwargs returns the keyword arguments for forwarding, complementing Args.
func (b *Bound) Kwargs() Kwargs {
	var out Kwargs
	started := false
	for _, p := range b.params {
		v, ok := b.values[p.ID()]
		if !started {
			switch {
			case p.Kind() == signature.KeywordOnly || p.Kind() == signature.VarKeyword:
				started = true
			case !ok:
				started = true
				continue
			default:
				continue
			}
		}
		if !ok {
			continue
		}
		switch p.Kind() {
		case signature.VarKeyword:
			out = append(out, v.(Kwargs)...)
		case signature.PositionalOnly, signature.VarPositional:
			// cannot be forwarded by name
		default:
			out = append(out, Kwarg{Name: p.Name(), Value: v})
		}
	}
	return out
}
