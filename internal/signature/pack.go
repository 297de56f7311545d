package signature

import (
	"slices"
	"strings"

	"funcsig/internal/sigerr"
)

// CompoundSeparator joins constituent names into a compound parameter name.
const CompoundSeparator = "_"

// Pack replaces the designated parameters with one compound parameter
// appended to the positional-or-keyword bucket.
func (s *Signature) Pack(keys ...Key) (Parameter, error) {
	return s.PackAt(-1, keys...)
}

// PackAt replaces the designated parameters with one compound parameter
// inserted at a materialized position (counted after the constituents are
// removed); a negative position appends to the positional-or-keyword bucket.
//
// The compound's name joins the constituent names, its annotation is the
// tuple of their annotations, and it has a default only when every
// constituent has one. On error the signature is unchanged.
func (s *Signature) PackAt(position int, keys ...Key) (Parameter, error) {
	if len(keys) < 2 {
		return Parameter{}, sigerr.Packing("pack needs at least 2 identifiers, got %d", len(keys))
	}

	members := make([]Parameter, 0, len(keys))
	taken := make(map[int]bool, len(keys))
	for _, key := range keys {
		loc, err := s.locate(sigerr.OpPack, key, false)
		if err != nil {
			if owner, ok := s.compoundOwner(key); ok {
				return Parameter{}, sigerr.New(sigerr.OpPack, sigerr.KindPacking).
					Param(owner.name).
					Detail("%s is already inside compound parameter '%s'", key, owner.name).
					Build()
			}
			return Parameter{}, sigerr.New(sigerr.OpPack, sigerr.KindPacking).
				Cause(err).
				Detail("identifier %s not found", key).
				Build()
		}
		if loc.Param.IsCompound() {
			return Parameter{}, sigerr.New(sigerr.OpPack, sigerr.KindPacking).
				Param(loc.Param.name).
				Detail("'%s' is already a compound parameter", loc.Param.name).
				Build()
		}
		if taken[loc.Index] {
			return Parameter{}, sigerr.New(sigerr.OpPack, sigerr.KindPacking).
				Param(loc.Param.name).
				Detail("'%s' designated twice", loc.Param.name).
				Build()
		}
		taken[loc.Index] = true
		members = append(members, loc.Param)
	}

	compound := newCompound(members)

	remaining := make([]Parameter, 0, len(s.params)-len(members)+1)
	for i, p := range s.params {
		if !taken[i] {
			remaining = append(remaining, p)
		}
	}
	s.params = remaining
	if position < 0 {
		s.Add(compound)
	} else {
		s.Insert(position, compound)
	}
	return compound, nil
}

// Unpack replaces a compound parameter with its constituents at the
// compound's position, re-derived into kind buckets.
func (s *Signature) Unpack(key Key) error {
	loc, err := s.locate(sigerr.OpPack, key, false)
	if err != nil {
		return sigerr.New(sigerr.OpPack, sigerr.KindPacking).Cause(err).Detail("identifier %s not found", key).Build()
	}
	if !loc.Param.IsCompound() {
		return sigerr.New(sigerr.OpPack, sigerr.KindPacking).
			Param(loc.Param.name).
			Detail("'%s' is not a compound parameter", loc.Param.name).
			Build()
	}
	params := slices.Delete(slices.Clone(s.params), loc.Index, loc.Index+1)
	params = slices.Insert(params, loc.Index, loc.Param.members...)
	sortByKind(params)
	s.params = params
	s.touch()
	return nil
}

func (s *Signature) compoundOwner(key Key) (Parameter, bool) {
	if !key.IsName() {
		return Parameter{}, false
	}
	for _, p := range s.params {
		for _, m := range p.members {
			if m.name == key.NameValue() {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

func newCompound(members []Parameter) Parameter {
	names := make([]string, len(members))
	annotations := make([]string, len(members))
	defaults := make([]any, 0, len(members))
	for i, m := range members {
		names[i] = m.name
		annotations[i] = m.annotation
		if annotations[i] == "" {
			annotations[i] = "Any"
		}
		if m.hasDefault {
			defaults = append(defaults, m.def)
		}
	}

	p := NewParameter(strings.Join(names, CompoundSeparator), PositionalOrKeyword,
		WithAnnotation("tuple["+strings.Join(annotations, ", ")+"]"))
	if len(defaults) == len(members) {
		p = p.WithDefault(defaults)
	}
	p.members = slices.Clone(members)
	return p
}
