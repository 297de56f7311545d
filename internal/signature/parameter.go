package signature

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
)

var nextID atomic.Uint64

func newID() uint64 {
	return nextID.Add(1)
}

// Parameter is an immutable parameter declaration. Every constructed
// Parameter carries a provenance ID that survives reorder and pack, so an
// edited signature can be traced back to the one it was derived from.
type Parameter struct {
	name       string
	annotation string
	def        any
	members    []Parameter
	id         uint64
	kind       Kind
	hasDefault bool
}

// ParamOption customizes a Parameter built by NewParameter.
type ParamOption func(*Parameter)

// WithDefault makes the parameter optional.
func WithDefault(v any) ParamOption {
	return func(p *Parameter) {
		p.def = v
		p.hasDefault = true
	}
}

// WithAnnotation sets the opaque type tag.
func WithAnnotation(annotation string) ParamOption {
	return func(p *Parameter) {
		p.annotation = annotation
	}
}

// NewParameter creates a parameter with a fresh provenance ID. An
// unspecified kind becomes PositionalOrKeyword.
func NewParameter(name string, kind Kind, opts ...ParamOption) Parameter {
	if kind == KindUnspecified {
		kind = PositionalOrKeyword
	}
	p := Parameter{name: name, kind: kind, id: newID()}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Parameter) Name() string       { return p.name }
func (p Parameter) Kind() Kind         { return p.kind }
func (p Parameter) Annotation() string { return p.annotation }
func (p Parameter) HasDefault() bool   { return p.hasDefault }

// ID returns the provenance identity of the parameter.
func (p Parameter) ID() uint64 { return p.id }

// Default returns the default value and whether one is declared.
func (p Parameter) Default() (any, bool) {
	return p.def, p.hasDefault
}

// Required reports whether a call must supply a value. Variadic parameters
// are never required.
func (p Parameter) Required() bool {
	return !p.hasDefault && !p.kind.Variadic()
}

func (p Parameter) IsPositional() bool     { return p.kind.Positional() }
func (p Parameter) IsPositionalOnly() bool { return p.kind == PositionalOnly }
func (p Parameter) IsKeyword() bool        { return p.kind.Keyword() }
func (p Parameter) IsKeywordOnly() bool    { return p.kind == KeywordOnly }

// IsCompound reports whether the parameter was produced by Pack.
func (p Parameter) IsCompound() bool { return len(p.members) > 0 }

// Members returns the constituents of a compound parameter, in pack order.
func (p Parameter) Members() []Parameter {
	if len(p.members) == 0 {
		return nil
	}
	out := make([]Parameter, len(p.members))
	copy(out, p.members)
	return out
}

// WithKind returns a copy with a different kind and the same identity.
func (p Parameter) WithKind(kind Kind) Parameter {
	p.kind = kind
	return p
}

// WithDefault returns a copy with a default value and the same identity.
func (p Parameter) WithDefault(v any) Parameter {
	p.def = v
	p.hasDefault = true
	return p
}

// WithoutDefault returns a required copy with the same identity.
func (p Parameter) WithoutDefault() Parameter {
	p.def = nil
	p.hasDefault = false
	return p
}

// Same reports whether both values denote the same declaration.
func (p Parameter) Same(other Parameter) bool {
	return p.id == other.id
}

// String renders the parameter the way it appears inside a signature.
func (p Parameter) String() string {
	var b strings.Builder
	switch p.kind {
	case VarPositional:
		b.WriteByte('*')
	case VarKeyword:
		b.WriteString("**")
	}
	b.WriteString(p.name)
	if p.annotation != "" {
		b.WriteString(": ")
		b.WriteString(p.annotation)
	}
	if p.hasDefault {
		b.WriteString(" = ")
		b.WriteString(FormatValue(p.def))
	}
	return b.String()
}

// Descriptor is the declarative form of a parameter handed over by an
// introspection adapter.
type Descriptor struct {
	Default    any
	Name       string
	Annotation string
	Kind       Kind
	HasDefault bool
}

// Parameter builds a fresh Parameter from the descriptor.
func (d Descriptor) Parameter() Parameter {
	var opts []ParamOption
	if d.Annotation != "" {
		opts = append(opts, WithAnnotation(d.Annotation))
	}
	if d.HasDefault {
		opts = append(opts, WithDefault(d.Default))
	}
	return NewParameter(d.Name, d.Kind, opts...)
}

// Key identifies a parameter either by materialized position or by name.
type Key struct {
	name   string
	pos    int
	byName bool
}

// Pos returns a positional key.
func Pos(i int) Key { return Key{pos: i} }

// Name returns a name key.
func Name(s string) Key { return Key{name: s, byName: true} }

// Names turns a list of names into keys.
func Names(names ...string) []Key {
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = Name(n)
	}
	return keys
}

// IsName reports whether the key is a name.
func (k Key) IsName() bool { return k.byName }

// Position returns the positional index; only meaningful when !IsName().
func (k Key) Position() int { return k.pos }

// NameValue returns the name; only meaningful when IsName().
func (k Key) NameValue() string { return k.name }

func (k Key) String() string {
	if k.byName {
		return "'" + k.name + "'"
	}
	return strconv.Itoa(k.pos)
}

// ParseKey reads "3" as a position and anything else as a name.
func ParseKey(s string) Key {
	if i, err := strconv.Atoi(s); err == nil {
		return Pos(i)
	}
	return Name(s)
}

// FormatValue renders a default value in the canonical textual form. The
// output decodes back to an equal value with a YAML flow-scalar decoder.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := slices.Sorted(maps.Keys(x))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + FormatValue(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
