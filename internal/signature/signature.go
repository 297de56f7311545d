// Package signature models a callable's parameter declaration as a mutable,
// lazily validated container.
//
// A Signature keeps its parameters as one ordered sequence that is logically
// partitioned into five kind buckets (see Kind). Structural edits never fail
// on their own account; invariants are checked when a consumer validates,
// materializes or binds against the signature.
//
//	sig := signature.New([]signature.Parameter{
//		signature.NewParameter("a", signature.PositionalOrKeyword, signature.WithAnnotation("int")),
//		signature.NewParameter("c", signature.KeywordOnly, signature.WithDefault(4)),
//	})
//	sig.Reorder(signature.Name("c"), signature.Name("a"))
//	params, err := sig.Materialize()
package signature

import (
	"fmt"
	"slices"
	"sort"

	"funcsig/internal/sigerr"
)

// State is the validation state of a Signature.
type State int

const (
	Draft State = iota
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "draft"
	}
}

// Signature is an ordered, kind-partitioned collection of parameters with
// an optional return annotation. It is not safe for concurrent mutation.
type Signature struct {
	err              error
	returnAnnotation string
	params           []Parameter
	origin           []Parameter
	state            State
}

// Option configures a new Signature.
type Option func(*Signature)

// WithReturn sets the return annotation.
func WithReturn(annotation string) Option {
	return func(s *Signature) {
		s.returnAnnotation = annotation
	}
}

// New creates a signature from a declared parameter list. The list is kept
// as the provenance snapshot returned by Origin.
func New(params []Parameter, opts ...Option) *Signature {
	s := &Signature{
		params: slices.Clone(params),
		origin: slices.Clone(params),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromDescriptors builds a signature from an introspection adapter's output.
func FromDescriptors(descs []Descriptor, returnAnnotation string) *Signature {
	params := make([]Parameter, len(descs))
	for i, d := range descs {
		params[i] = d.Parameter()
	}
	return New(params, WithReturn(returnAnnotation))
}

// ReturnAnnotation returns the return type tag, empty when absent.
func (s *Signature) ReturnAnnotation() string { return s.returnAnnotation }

// SetReturnAnnotation replaces the return type tag.
func (s *Signature) SetReturnAnnotation(annotation string) {
	s.returnAnnotation = annotation
	s.touch()
}

// State returns the outcome of the last validation, or Draft after an edit.
func (s *Signature) State() State { return s.state }

// Origin returns the parameter list the signature was created from.
func (s *Signature) Origin() []Parameter { return slices.Clone(s.origin) }

// OriginSignature returns the provenance snapshot as a signature of its own.
func (s *Signature) OriginSignature() *Signature {
	return New(s.origin, WithReturn(s.returnAnnotation))
}

// Clone returns an independent copy sharing parameter identities.
func (s *Signature) Clone() *Signature {
	return &Signature{
		err:              s.err,
		returnAnnotation: s.returnAnnotation,
		params:           slices.Clone(s.params),
		origin:           slices.Clone(s.origin),
		state:            s.state,
	}
}

// Len returns the number of parameters.
func (s *Signature) Len() int { return len(s.params) }

// Params returns the parameters in their current order.
func (s *Signature) Params() []Parameter { return slices.Clone(s.params) }

// Filter returns the parameters for which fn returns true; nil fn returns all.
func (s *Signature) Filter(fn func(Parameter) bool) []Parameter {
	if fn == nil {
		return s.Params()
	}
	var out []Parameter
	for _, p := range s.params {
		if fn(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Signature) PositionalParams() []Parameter     { return s.Filter(Parameter.IsPositional) }
func (s *Signature) PositionalOnlyParams() []Parameter { return s.Filter(Parameter.IsPositionalOnly) }
func (s *Signature) KeywordParams() []Parameter        { return s.Filter(Parameter.IsKeyword) }
func (s *Signature) KeywordOnlyParams() []Parameter    { return s.Filter(Parameter.IsKeywordOnly) }

// Bucket returns the parameters of one kind in insertion order.
func (s *Signature) Bucket(kind Kind) []Parameter {
	return s.Filter(func(p Parameter) bool { return p.kind == kind })
}

// Add appends p to the end of its kind bucket.
func (s *Signature) Add(p Parameter) *Signature {
	s.params = slices.Insert(s.params, s.bucketEnd(p.kind), p)
	s.touch()
	return s
}

// AddDescriptor builds a parameter from d and appends it to its kind bucket.
func (s *Signature) AddDescriptor(d Descriptor) *Signature {
	return s.Add(d.Parameter())
}

// AddAt inserts p at index within its kind bucket. An index outside the
// bucket appends.
func (s *Signature) AddAt(bucketIndex int, p Parameter) *Signature {
	seen := 0
	for i, q := range s.params {
		if q.kind != p.kind {
			continue
		}
		if seen == bucketIndex {
			s.params = slices.Insert(s.params, i, p)
			s.touch()
			return s
		}
		seen++
	}
	return s.Add(p)
}

// Insert places p at a materialized position, clamped to the sequence
// bounds. It may break canonical kind order; that surfaces on validation.
func (s *Signature) Insert(index int, p Parameter) *Signature {
	index = max(0, min(index, len(s.params)))
	s.params = slices.Insert(s.params, index, p)
	s.touch()
	return s
}

// Remove deletes the parameter identified by key.
func (s *Signature) Remove(key Key) error {
	loc, err := s.locate(sigerr.OpRemove, key, false)
	if err != nil {
		return err
	}
	s.params = slices.Delete(s.params, loc.Index, loc.Index+1)
	s.touch()
	return nil
}

// Location describes where a parameter sits.
type Location struct {
	Param       Parameter
	Index       int // materialized position
	BucketIndex int // position within the kind bucket
}

// Param resolves key to a parameter. With strict set, a position that
// resolves to a parameter which cannot be supplied positionally, or a name
// that resolves to one which cannot be supplied by keyword, is a lookup error.
func (s *Signature) Param(key Key, strict bool) (Parameter, error) {
	loc, err := s.Locate(key, strict)
	if err != nil {
		return Parameter{}, err
	}
	return loc.Param, nil
}

// Locate is Param returning the full Location.
func (s *Signature) Locate(key Key, strict bool) (Location, error) {
	return s.locate(sigerr.OpLookup, key, strict)
}

func (s *Signature) locate(op sigerr.Op, key Key, strict bool) (Location, error) {
	counts := make(map[Kind]int, len(Kinds))
	for i, p := range s.params {
		loc := Location{Param: p, Index: i, BucketIndex: counts[p.kind]}
		counts[p.kind]++

		if key.IsName() {
			if p.name != key.NameValue() {
				continue
			}
			if strict && (p.kind == PositionalOnly || p.kind == VarPositional) {
				return Location{}, sigerr.New(op, sigerr.KindLookup).
					Param(p.name).
					Value(key.NameValue()).
					Detail("there is no keyword parameter '%s'; there is a %s parameter %s. Set strict=false to return this parameter", key.NameValue(), p.kind, p).
					Build()
			}
			return loc, nil
		}

		if i != key.Position() {
			continue
		}
		if strict && (p.kind == KeywordOnly || p.kind == VarKeyword) {
			return Location{}, sigerr.New(op, sigerr.KindLookup).
				Param(p.name).
				Value(i).
				Detail("there is no positional parameter %d; there is a %s parameter %s. Set strict=false to return this parameter", i, p.kind, p).
				Build()
		}
		return loc, nil
	}
	if key.IsName() {
		return Location{}, sigerr.NotFound(op, key.NameValue())
	}
	return Location{}, sigerr.NotFound(op, key.Position())
}

// Reorder replaces the parameter sequence with the parameters named by keys,
// in that order, re-derived into kind buckets. The keys must designate every
// parameter exactly once; otherwise the signature is left untouched.
func (s *Signature) Reorder(keys ...Key) error {
	if len(keys) != len(s.params) {
		return sigerr.Structural(sigerr.OpReorder, "",
			"reorder needs %d identifiers, got %d", len(s.params), len(keys))
	}
	seen := make(map[int]Key, len(keys))
	reordered := make([]Parameter, 0, len(keys))
	for _, key := range keys {
		loc, err := s.locate(sigerr.OpReorder, key, false)
		if err != nil {
			return sigerr.Wrap(sigerr.OpReorder, sigerr.KindStructural, err,
				"identifier %s does not designate a parameter", key)
		}
		if prev, dup := seen[loc.Index]; dup {
			return sigerr.Structural(sigerr.OpReorder, loc.Param.name,
				"parameter designated twice (by %s and %s)", prev, key)
		}
		seen[loc.Index] = key
		reordered = append(reordered, loc.Param)
	}
	sortByKind(reordered)
	s.params = reordered
	s.touch()
	return nil
}

// Partition splits the parameters into those matching pred and the rest.
// Both results are fresh signatures with their own provenance snapshot.
func (s *Signature) Partition(pred func(Parameter) bool) (matched, rest *Signature) {
	var in, out []Parameter
	for _, p := range s.params {
		if pred(p) {
			in = append(in, p)
		} else {
			out = append(out, p)
		}
	}
	return New(in), New(out)
}

// Ignore returns a copy without the named parameters.
func (s *Signature) Ignore(names ...string) *Signature {
	if len(names) == 0 {
		return s.Clone()
	}
	_, kept := s.Partition(func(p Parameter) bool { return slices.Contains(names, p.name) })
	kept.returnAnnotation = s.returnAnnotation
	return kept
}

// IsValid validates and reports the outcome.
func (s *Signature) IsValid() bool {
	return s.Validate() == nil
}

// Validate checks the structural invariants and records the outcome in State.
func (s *Signature) Validate() error {
	s.err = validate(s.params)
	if s.err != nil {
		s.state = Invalid
	} else {
		s.state = Valid
	}
	return s.err
}

// Materialize validates and returns the parameters in canonical order.
func (s *Signature) Materialize() ([]Parameter, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.Params(), nil
}

func (s *Signature) touch() {
	s.state = Draft
	s.err = nil
}

// bucketEnd returns the materialized index just past the last parameter
// whose kind sorts at or before kind.
func (s *Signature) bucketEnd(kind Kind) int {
	pos := 0
	for i, q := range s.params {
		if q.kind <= kind {
			pos = i + 1
		}
	}
	return pos
}

func sortByKind(params []Parameter) {
	sort.SliceStable(params, func(i, j int) bool { return params[i].kind < params[j].kind })
}

func validate(params []Parameter) error {
	names := make(map[string]struct{}, len(params))
	variadics := make(map[Kind]string, 2)
	prev := PositionalOnly
	var firstDefault string

	for i, p := range params {
		if p.name == "" {
			return sigerr.Structural(sigerr.OpValidate, "", "parameter at position %d has no name", i)
		}
		if !p.kind.Valid() {
			return sigerr.Structural(sigerr.OpValidate, p.name, "invalid parameter kind %s", p.kind)
		}
		if p.kind < prev {
			return sigerr.Structural(sigerr.OpValidate, p.name,
				"wrong parameter order: %s parameter before %s parameter", prev, p.kind)
		}
		prev = p.kind

		if _, dup := names[p.name]; dup {
			return sigerr.Structural(sigerr.OpValidate, p.name, "duplicate parameter name: '%s'", p.name)
		}
		names[p.name] = struct{}{}

		if p.kind.Positional() {
			switch {
			case p.hasDefault && firstDefault == "":
				firstDefault = p.name
			case !p.hasDefault && firstDefault != "":
				return sigerr.Structural(sigerr.OpValidate, p.name,
					"non-default parameter '%s' follows default parameter '%s'", p.name, firstDefault)
			}
		}

		if p.kind.Variadic() {
			if p.hasDefault {
				return sigerr.Structural(sigerr.OpValidate, p.name, "%s parameters cannot have default values", p.kind)
			}
			if other, ok := variadics[p.kind]; ok {
				return sigerr.Structural(sigerr.OpValidate, p.name,
					"more than one %s parameter: '%s' and '%s'", p.kind, other, p.name)
			}
			variadics[p.kind] = p.name
		}
	}
	return nil
}

// GoString is used by %#v and test failure output.
func (s *Signature) GoString() string {
	return fmt.Sprintf("signature.Signature%s", s.String())
}
