package bind

import (
	"slices"

	"funcsig/internal/sigerr"
	"funcsig/internal/signature"
)

// Selection filters slots and values by bind state.
type Selection int

const (
	All Selection = iota
	OnlyBound
	OnlyUnbound
)

func (s Selection) match(bound bool) bool {
	switch s {
	case OnlyBound:
		return bound
	case OnlyUnbound:
		return !bound
	default:
		return true
	}
}

type softConfig struct {
	ignore []string
}

// SoftOption configures Soft.
type SoftOption func(*softConfig)

// Ignore leaves the named parameters out of the bind.
func Ignore(names ...string) SoftOption {
	return func(c *softConfig) {
		c.ignore = append(c.ignore, names...)
	}
}

// SoftBound is the partition produced by a soft bind.
type SoftBound struct {
	slots  []*Slot
	values []*Value
}

// Soft matches every supplied value independently: a position matches the
// parameter at that materialized position if it accepts positional supply,
// a name matches the parameter of that name if it accepts keyword supply.
// The first match wins. Missing and extra values are reported, not
// rejected; only relinking an already linked value or parameter fails.
func Soft(sig *signature.Signature, args []any, kwargs Kwargs, opts ...SoftOption) (*SoftBound, error) {
	var cfg softConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.ignore) > 0 {
		sig = sig.Ignore(cfg.ignore...)
	}

	params, err := sig.Materialize()
	if err != nil {
		return nil, err
	}

	sb := &SoftBound{
		slots:  make([]*Slot, len(params)),
		values: Values(args, kwargs),
	}
	for i, p := range params {
		sb.slots[i] = &Slot{Param: p, Position: i}
	}

	for _, v := range sb.values {
		for _, s := range sb.slots {
			if !s.Accepts(v.Key) {
				continue
			}
			if err := link(sigerr.OpSoftBind, v, s); err != nil {
				return nil, err
			}
			break
		}
	}
	return sb, nil
}

// Slots returns the parameter slots matching sel, in declared order.
func (sb *SoftBound) Slots(sel Selection) []*Slot {
	var out []*Slot
	for _, s := range sb.slots {
		if sel.match(s.IsBound()) {
			out = append(out, s)
		}
	}
	return out
}

// Values returns the supplied values matching sel, positional first.
func (sb *SoftBound) Values(sel Selection) []*Value {
	var out []*Value
	for _, v := range sb.values {
		if sel.match(v.IsBound()) {
			out = append(out, v)
		}
	}
	return out
}

// Bound returns the linked slots; each carries its value.
func (sb *SoftBound) Bound() []*Slot { return sb.Slots(OnlyBound) }

// ParametersWithoutValues returns the unfilled parameters, required or not.
func (sb *SoftBound) ParametersWithoutValues() []signature.Parameter {
	return slotParams(sb.Slots(OnlyUnbound))
}

// ValuesWithoutParameters returns the supplied values that matched nothing.
func (sb *SoftBound) ValuesWithoutParameters() []*Value { return sb.Values(OnlyUnbound) }

// BoundSignature projects the matched parameters into a fresh signature.
func (sb *SoftBound) BoundSignature() *signature.Signature {
	return signature.New(slotParams(sb.Slots(OnlyBound)))
}

// UnboundSignature projects the unmatched parameters into a fresh signature.
func (sb *SoftBound) UnboundSignature() *signature.Signature {
	return signature.New(slotParams(sb.Slots(OnlyUnbound)))
}

// HasMissingValues reports whether a required parameter is unfilled.
func (sb *SoftBound) HasMissingValues() bool {
	return slices.ContainsFunc(sb.slots, func(s *Slot) bool {
		return !s.IsBound() && s.Param.Required()
	})
}

// HasExtraArgs reports whether a supplied value matched no parameter.
func (sb *SoftBound) HasExtraArgs() bool {
	return slices.ContainsFunc(sb.values, func(v *Value) bool { return !v.IsBound() })
}

// Args returns the positionally keyed values matching sel.
func (sb *SoftBound) Args(sel Selection) []any {
	var out []any
	for _, v := range sb.Values(sel) {
		if !v.Key.IsName() {
			out = append(out, v.Value)
		}
	}
	return out
}

// Kwargs returns the name keyed values matching sel.
func (sb *SoftBound) Kwargs(sel Selection) Kwargs {
	var out Kwargs
	for _, v := range sb.Values(sel) {
		if v.Key.IsName() {
			out = append(out, Kwarg{Name: v.Key.NameValue(), Value: v.Value})
		}
	}
	return out
}

// Slot finds a slot by key using the strict kind rule of Signature.Param.
func (sb *SoftBound) Slot(key signature.Key) (*Slot, error) {
	for _, s := range sb.slots {
		if key.IsName() && s.Param.Name() == key.NameValue() || !key.IsName() && s.Position == key.Position() {
			if !s.Accepts(key) {
				return nil, sigerr.New(sigerr.OpLookup, sigerr.KindLookup).
					Param(s.Param.Name()).
					Detail("%s cannot be supplied by %s", s, key).
					Build()
			}
			return s, nil
		}
	}
	if key.IsName() {
		return nil, sigerr.NotFound(sigerr.OpLookup, key.NameValue())
	}
	return nil, sigerr.NotFound(sigerr.OpLookup, key.Position())
}

func slotParams(slots []*Slot) []signature.Parameter {
	out := make([]signature.Parameter, len(slots))
	for i, s := range slots {
		out[i] = s.Param
	}
	return out
}
