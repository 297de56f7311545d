package signature

import (
	"errors"
	"testing"

	"funcsig/internal/sigerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(params []Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name()
	}
	return out
}

// ab returns (a: int, b: int).
func ab() *Signature {
	return New([]Parameter{
		NewParameter("a", PositionalOrKeyword, WithAnnotation("int")),
		NewParameter("b", PositionalOrKeyword, WithAnnotation("int")),
	})
}

func TestKind(t *testing.T) {
	assert.True(t, PositionalOnly < PositionalOrKeyword)
	assert.True(t, VarPositional < KeywordOnly)
	assert.True(t, KeywordOnly < VarKeyword)
	assert.Equal(t, "KEYWORD_ONLY", KeywordOnly.String())

	for _, tc := range []struct {
		in   string
		want Kind
	}{
		{"positional_only", PositionalOnly},
		{"kwonly", KeywordOnly},
		{"**", VarKeyword},
		{"var-positional", VarPositional},
		{"", KindUnspecified},
	} {
		got, err := ParseKind(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	_, err := ParseKind("sideways")
	assert.Error(t, err)
}

func TestParameter_Predicates(t *testing.T) {
	tests := []struct {
		kind                                         Kind
		positional, positionalOnly, keyword, kwOnly bool
	}{
		{PositionalOnly, true, true, false, false},
		{PositionalOrKeyword, true, false, true, false},
		{VarPositional, false, false, false, false},
		{KeywordOnly, false, false, true, true},
		{VarKeyword, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			p := NewParameter("x", tt.kind)
			assert.Equal(t, tt.positional, p.IsPositional())
			assert.Equal(t, tt.positionalOnly, p.IsPositionalOnly())
			assert.Equal(t, tt.keyword, p.IsKeyword())
			assert.Equal(t, tt.kwOnly, p.IsKeywordOnly())
		})
	}

	p := NewParameter("x", KindUnspecified)
	assert.Equal(t, PositionalOrKeyword, p.Kind(), "unspecified kind defaults to positional-or-keyword")
	assert.True(t, p.Required())
	assert.False(t, NewParameter("args", VarPositional).Required())
	assert.NotEqual(t, p.ID(), NewParameter("x", KindUnspecified).ID())
}

func TestSignature_GetParam(t *testing.T) {
	s := ab()

	p, err := s.Param(Name("b"), true)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name())

	_, err = s.Param(Name("c"), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sigerr.ErrLookup))
	assert.Contains(t, err.Error(), "could not find parameter 'c'")

	_, err = s.Param(Pos(5), true)
	assert.True(t, errors.Is(err, sigerr.ErrLookup))
}

func TestSignature_GetParamStrictKinds(t *testing.T) {
	s := New([]Parameter{
		NewParameter("a", PositionalOnly),
		NewParameter("b", PositionalOrKeyword),
		NewParameter("c", KeywordOnly),
	})

	_, err := s.Param(Pos(2), true)
	assert.True(t, errors.Is(err, sigerr.ErrLookup), "keyword-only by position is rejected")
	p, err := s.Param(Pos(2), false)
	require.NoError(t, err)
	assert.Equal(t, "c", p.Name())

	_, err = s.Param(Name("a"), true)
	assert.True(t, errors.Is(err, sigerr.ErrLookup), "positional-only by name is rejected")
	p, err = s.Param(Name("a"), false)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name())

	loc, err := s.Locate(Name("b"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, loc.Index)
	assert.Equal(t, 0, loc.BucketIndex)
}

func TestSignature_Edits(t *testing.T) {
	t.Run("remove", func(t *testing.T) {
		s := ab()
		require.NoError(t, s.Remove(Name("a")))
		assert.Equal(t, []string{"b"}, names(s.Params()))
		assert.True(t, errors.Is(s.Remove(Name("a")), sigerr.ErrLookup))
		require.NoError(t, s.Remove(Pos(0)))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("add appends to bucket", func(t *testing.T) {
		s := ab()
		s.Add(NewParameter("k", KeywordOnly))
		s.Add(NewParameter("c", PositionalOrKeyword))
		s.Add(NewParameter("p", PositionalOnly))
		assert.Equal(t, []string{"p", "a", "b", "c", "k"}, names(s.Params()))
		assert.True(t, s.IsValid())
	})

	t.Run("add descriptor defaults kind", func(t *testing.T) {
		s := ab()
		s.AddDescriptor(Descriptor{Name: "c", Annotation: "float", Default: 4.0, HasDefault: true})
		p, err := s.Param(Name("c"), true)
		require.NoError(t, err)
		assert.Equal(t, PositionalOrKeyword, p.Kind())
		assert.Equal(t, "(a: int, b: int, c: float = 4.0)", s.String())
	})

	t.Run("add at bucket index", func(t *testing.T) {
		s := ab()
		s.AddAt(1, NewParameter("c", PositionalOrKeyword))
		assert.Equal(t, []string{"a", "c", "b"}, names(s.Params()))
		s.AddAt(0, NewParameter("k", KeywordOnly))
		assert.Equal(t, []string{"a", "c", "b", "k"}, names(s.Params()))
	})

	t.Run("insert at position", func(t *testing.T) {
		s := ab()
		s.Insert(1, NewParameter("c", PositionalOrKeyword))
		assert.Equal(t, []string{"a", "c", "b"}, names(s.Params()))
	})
}

func TestSignature_CanonicalOrderViolation(t *testing.T) {
	s := ab()
	s.Insert(0, NewParameter("c", KeywordOnly))

	assert.Equal(t, Draft, s.State())
	assert.False(t, s.IsValid())
	assert.Equal(t, Invalid, s.State())

	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sigerr.ErrStructural))
	assert.Contains(t, err.Error(), "wrong parameter order")

	_, err = s.Materialize()
	assert.True(t, errors.Is(err, sigerr.ErrStructural))

	require.NoError(t, s.Remove(Name("c")))
	assert.Equal(t, Draft, s.State(), "edits return the signature to draft")
	assert.True(t, s.IsValid())
	assert.Equal(t, Valid, s.State())
}

func TestSignature_AddAtKeepsCanonicalOrder(t *testing.T) {
	s := ab()
	s.AddAt(0, NewParameter("c", KeywordOnly))
	assert.True(t, s.IsValid(), "bucket index 0 is the start of the keyword-only bucket")
	assert.Equal(t, "(a: int, b: int, *, c)", s.String())

	s.AddAt(0, NewParameter("d", KeywordOnly))
	s.AddAt(0, NewParameter("p", PositionalOnly))
	assert.True(t, s.IsValid())
	assert.Equal(t, "(p, /, a: int, b: int, *, d, c)", s.String())
}

func TestSignature_Validate(t *testing.T) {
	tests := []struct {
		name   string
		params []Parameter
		msg    string
	}{
		{
			name:   "duplicate names",
			params: []Parameter{NewParameter("a", PositionalOnly), NewParameter("a", KeywordOnly)},
			msg:    "duplicate parameter name",
		},
		{
			name: "required after default",
			params: []Parameter{
				NewParameter("a", PositionalOnly, WithDefault(1)),
				NewParameter("b", PositionalOrKeyword),
			},
			msg: "non-default parameter 'b' follows default parameter 'a'",
		},
		{
			name:   "two var positionals",
			params: []Parameter{NewParameter("x", VarPositional), NewParameter("y", VarPositional)},
			msg:    "more than one VAR_POSITIONAL",
		},
		{
			name:   "two var keywords",
			params: []Parameter{NewParameter("x", VarKeyword), NewParameter("y", VarKeyword)},
			msg:    "more than one VAR_KEYWORD",
		},
		{
			name:   "variadic with default",
			params: []Parameter{NewParameter("x", VarPositional, WithDefault(1))},
			msg:    "cannot have default values",
		},
		{
			name:   "empty name",
			params: []Parameter{NewParameter("", PositionalOrKeyword)},
			msg:    "has no name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.params).Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, sigerr.ErrStructural))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("keyword-only required after default is fine", func(t *testing.T) {
		s := New([]Parameter{
			NewParameter("a", PositionalOrKeyword, WithDefault(1)),
			NewParameter("b", KeywordOnly),
		})
		assert.True(t, s.IsValid())
	})
}

func TestSignature_Reorder(t *testing.T) {
	abc := func() *Signature {
		return New([]Parameter{
			NewParameter("a", PositionalOrKeyword, WithAnnotation("int")),
			NewParameter("b", PositionalOrKeyword, WithAnnotation("int")),
			NewParameter("c", PositionalOrKeyword, WithAnnotation("int")),
		})
	}

	t.Run("by name", func(t *testing.T) {
		s := abc()
		require.NoError(t, s.Reorder(Names("b", "a", "c")...))
		assert.Equal(t, []string{"b", "a", "c"}, names(s.Params()))
	})

	t.Run("by position", func(t *testing.T) {
		s := abc()
		require.NoError(t, s.Reorder(Pos(1), Pos(0), Pos(2)))
		assert.Equal(t, []string{"b", "a", "c"}, names(s.Params()))
	})

	t.Run("mixed keys", func(t *testing.T) {
		s := abc()
		require.NoError(t, s.Reorder(Name("a"), Name("c"), Pos(1)))
		assert.Equal(t, []string{"a", "c", "b"}, names(s.Params()))
	})

	t.Run("re-derives buckets", func(t *testing.T) {
		s := New([]Parameter{
			NewParameter("a", PositionalOrKeyword),
			NewParameter("k", KeywordOnly),
			NewParameter("b", PositionalOrKeyword),
		})
		require.NoError(t, s.Reorder(Names("k", "b", "a")...))
		assert.Equal(t, []string{"b", "a", "k"}, names(s.Params()))
	})

	failures := map[string][]Key{
		"designated twice": {Pos(0), Name("a"), Pos(2)},
		"too few":          Names("a", "b"),
		"too many":         Names("a", "b", "c", "a"),
		"unknown":          Names("a", "b", "z"),
	}
	for name, keys := range failures {
		t.Run(name, func(t *testing.T) {
			s := abc()
			before := s.String()
			beforeParams := s.Params()

			err := s.Reorder(keys...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sigerr.ErrStructural))
			assert.Equal(t, before, s.String())
			assert.Equal(t, beforeParams, s.Params())
		})
	}
}

func TestSignature_Partition(t *testing.T) {
	s := New([]Parameter{
		NewParameter("a", PositionalOnly),
		NewParameter("b", PositionalOrKeyword, WithDefault(2)),
		NewParameter("c", KeywordOnly),
		NewParameter("d", KeywordOnly, WithDefault(5)),
	})

	withDefault, required := s.Partition(Parameter.HasDefault)
	assert.Equal(t, []string{"b", "d"}, names(withDefault.Params()))
	assert.Equal(t, []string{"a", "c"}, names(required.Params()))
	assert.Equal(t, []Kind{PositionalOrKeyword, KeywordOnly},
		[]Kind{withDefault.Params()[0].Kind(), withDefault.Params()[1].Kind()})
	assert.True(t, withDefault.IsValid())
	assert.True(t, required.IsValid())
	assert.Equal(t, 4, s.Len(), "partition leaves the source untouched")
}

func TestSignature_Views(t *testing.T) {
	s := New([]Parameter{
		NewParameter("a", PositionalOnly),
		NewParameter("b", PositionalOrKeyword),
		NewParameter("args", VarPositional),
		NewParameter("c", KeywordOnly),
		NewParameter("kw", VarKeyword),
	})

	assert.Equal(t, []string{"a", "b"}, names(s.PositionalParams()))
	assert.Equal(t, []string{"a"}, names(s.PositionalOnlyParams()))
	assert.Equal(t, []string{"b", "c"}, names(s.KeywordParams()))
	assert.Equal(t, []string{"c"}, names(s.KeywordOnlyParams()))
	assert.Equal(t, []string{"args"}, names(s.Bucket(VarPositional)))

	ignored := s.Ignore("a", "kw")
	assert.Equal(t, []string{"b", "args", "c"}, names(ignored.Params()))
	assert.Equal(t, 5, s.Len())
}

func TestSignature_CloneIsIndependent(t *testing.T) {
	s := ab()
	c := s.Clone()
	require.NoError(t, c.Reorder(Names("b", "a")...))

	assert.Equal(t, []string{"a", "b"}, names(s.Params()))
	assert.Equal(t, []string{"b", "a"}, names(c.Params()))
	assert.True(t, s.Params()[0].Same(c.Params()[1]))
	assert.Equal(t, []string{"a", "b"}, names(c.Origin()))
}
