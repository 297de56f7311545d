package transform

import (
	"errors"
	"testing"

	"funcsig/internal/bind"
	"funcsig/internal/sigerr"
	"funcsig/internal/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	args   []any
	kwargs bind.Kwargs
}

func record(args []any, kwargs bind.Kwargs) (any, error) {
	return call{args: args, kwargs: kwargs}, nil
}

func intParams(names ...string) []signature.Parameter {
	out := make([]signature.Parameter, len(names))
	for i, n := range names {
		out[i] = signature.NewParameter(n, signature.PositionalOrKeyword, signature.WithAnnotation("int"))
	}
	return out
}

func fn1(a, b, c int) [3]int { return [3]int{a, b, c} }

func TestTransform_Reorder(t *testing.T) {
	ad, err := Adapt(fn1, []string{"a", "b", "c"}, func(s *signature.Signature) error {
		return s.Reorder(signature.Pos(2), signature.Pos(1), signature.Pos(0))
	})
	require.NoError(t, err)

	assert.Equal(t, [3]int{1, 2, 3}, fn1(1, 2, 3))
	got, err := ad.Call([]any{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, [3]int{3, 2, 1}, got)

	got, err = ad.Call([]any{1}, bind.KW("a", 7, "b", 8))
	require.NoError(t, err)
	assert.Equal(t, [3]int{7, 8, 1}, got)

	assert.Equal(t, "fn1", ad.Name())
	assert.Equal(t, "(c: int, b: int, a: int) -> [3]int", ad.Signature().String())
}

func TestTransform_Doc(t *testing.T) {
	sig := signature.New(intParams("a", "b", "c"))
	require.NoError(t, sig.Reorder(signature.Pos(2), signature.Pos(1), signature.Pos(0)))

	ad, err := New(sig, record, WithName("fn1"))
	require.NoError(t, err)
	assert.Equal(t, "Transformed function\nfn1(c: int, b: int, a: int) ==> fn1(a: int, b: int, c: int)", ad.Doc())

	ad, err = New(sig, record, WithName("fn1"), WithAlias("fn2"))
	require.NoError(t, err)
	assert.Equal(t, "Transformed function\nfn2(c: int, b: int, a: int) ==> fn1(a: int, b: int, c: int)", ad.Doc())
}

func TestTransform_PackInverse(t *testing.T) {
	want, _ := record([]any{1, 2, 3}, nil)

	t.Run("packed first", func(t *testing.T) {
		sig := signature.New(intParams("a", "b", "c"))
		_, err := sig.PackAt(0, signature.Names("a", "b")...)
		require.NoError(t, err)

		ad, err := New(sig, record)
		require.NoError(t, err)
		assert.Equal(t, "(a_b: tuple[int, int], c: int)", ad.Signature().String())

		got, err := ad.Call([]any{[]any{1, 2}, 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, err = ad.Call(nil, bind.KW("c", 3, "a_b", []any{1, 2}))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("packed at end", func(t *testing.T) {
		sig := signature.New(intParams("a", "b", "c"))
		_, err := sig.Pack(signature.Names("a", "b")...)
		require.NoError(t, err)

		ad, err := New(sig, record)
		require.NoError(t, err)

		got, err := ad.Call([]any{3, [2]int{1, 2}}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("go function", func(t *testing.T) {
		ad, err := Adapt(fn1, []string{"a", "b", "c"}, func(s *signature.Signature) error {
			_, err := s.PackAt(0, signature.Names("a", "b")...)
			return err
		})
		require.NoError(t, err)
		got, err := ad.Call([]any{[]any{1, 2}, 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, fn1(1, 2, 3), got)
	})

	t.Run("variadic members", func(t *testing.T) {
		sig := signature.New([]signature.Parameter{
			signature.NewParameter("a", signature.PositionalOrKeyword),
			signature.NewParameter("rest", signature.VarPositional),
			signature.NewParameter("kw", signature.VarKeyword),
		})
		_, err := sig.PackAt(0, signature.Names("a", "rest", "kw")...)
		require.NoError(t, err)
		ad, err := New(sig, record)
		require.NoError(t, err)

		got, err := ad.Call([]any{[]any{1, []int{2, 3}, map[string]any{"y": 8, "x": 9}}}, nil)
		require.NoError(t, err)
		assert.Equal(t, call{args: []any{1, 2, 3}, kwargs: bind.KW("x", 9, "y", 8)}, got)

		got, err = ad.Call([]any{[]any{1, []any{2}, bind.KW("z", 0)}}, nil)
		require.NoError(t, err)
		assert.Equal(t, call{args: []any{1, 2}, kwargs: bind.KW("z", 0)}, got)

		got, err = ad.Call([]any{[]any{1, nil, nil}}, nil)
		require.NoError(t, err)
		assert.Equal(t, call{args: []any{1}}, got)

		_, err = ad.Call([]any{[]any{1, 5, nil}}, nil)
		assert.True(t, errors.Is(err, sigerr.ErrPacking), "scalar for *rest")

		_, err = ad.Call([]any{[]any{1, nil, []int{4}}}, nil)
		assert.True(t, errors.Is(err, sigerr.ErrPacking), "sequence for **kw")

		_, err = ad.Call([]any{[]any{1, nil, map[int]any{1: 2}}}, nil)
		assert.True(t, errors.Is(err, sigerr.ErrPacking), "non-string keys for **kw")
	})

	t.Run("arity mismatch", func(t *testing.T) {
		sig := signature.New(intParams("a", "b", "c"))
		_, err := sig.PackAt(0, signature.Names("a", "b")...)
		require.NoError(t, err)
		ad, err := New(sig, record)
		require.NoError(t, err)

		_, err = ad.Call([]any{[]any{1}, 3}, nil)
		assert.True(t, errors.Is(err, sigerr.ErrPacking))

		_, err = ad.Call([]any{1, 3}, nil)
		assert.True(t, errors.Is(err, sigerr.ErrPacking))
	})
}

func TestTransform_RoundTrips(t *testing.T) {
	want, _ := record([]any{1, 2, 3}, nil)

	t.Run("reorder then counter-reorder", func(t *testing.T) {
		sig := signature.New(intParams("a", "b", "c"))
		require.NoError(t, sig.Reorder(signature.Names("c", "a", "b")...))
		require.NoError(t, sig.Reorder(signature.Names("a", "b", "c")...))

		ad, err := New(sig, record)
		require.NoError(t, err)
		got, err := ad.Call([]any{1, 2, 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("pack then unpack", func(t *testing.T) {
		sig := signature.New(intParams("a", "b", "c"))
		_, err := sig.PackAt(1, signature.Names("b", "c")...)
		require.NoError(t, err)
		require.NoError(t, sig.Unpack(signature.Name("b_c")))

		ad, err := New(sig, record)
		require.NoError(t, err)
		got, err := ad.Call([]any{1, 2, 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestTransform_Removed(t *testing.T) {
	sig := signature.New([]signature.Parameter{
		signature.NewParameter("a", signature.PositionalOrKeyword),
		signature.NewParameter("b", signature.PositionalOrKeyword),
		signature.NewParameter("c", signature.PositionalOrKeyword, signature.WithDefault(3)),
		signature.NewParameter("args", signature.VarPositional),
	})
	require.NoError(t, sig.Remove(signature.Name("c")))
	require.NoError(t, sig.Remove(signature.Name("args")))

	ad, err := New(sig, record)
	require.NoError(t, err)
	got, err := ad.Call([]any{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, call{args: []any{1, 2, 3}}, got)

	require.NoError(t, sig.Remove(signature.Name("a")))
	_, err = New(sig, record)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sigerr.ErrStructural))
	assert.Contains(t, err.Error(), "'a' is required")
}

func TestTransform_KeywordsAndExtras(t *testing.T) {
	sig := signature.New([]signature.Parameter{
		signature.NewParameter("a", signature.PositionalOrKeyword),
		signature.NewParameter("k", signature.KeywordOnly, signature.WithDefault(1)),
		signature.NewParameter("kw", signature.VarKeyword),
	})
	sig.Add(signature.NewParameter("flag", signature.KeywordOnly, signature.WithDefault(false)))

	ad, err := New(sig, record)
	require.NoError(t, err)

	got, err := ad.Call([]any{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, call{args: []any{1}, kwargs: bind.KW("k", 1, "flag", false)}, got)

	got, err = ad.Call([]any{1}, bind.KW("flag", true, "k", 5, "x", 9))
	require.NoError(t, err)
	assert.Equal(t, call{args: []any{1}, kwargs: bind.KW("k", 5, "x", 9, "flag", true)}, got)

	_, err = ad.Call(nil, nil)
	assert.True(t, errors.Is(err, bind.ErrMissingArgument))

	closed := signature.New(intParams("a"))
	closed.Add(signature.NewParameter("flag", signature.KeywordOnly, signature.WithDefault(false)))
	_, err = New(closed, record)
	assert.True(t, errors.Is(err, sigerr.ErrStructural))
}

func TestTransform_InvalidSignature(t *testing.T) {
	sig := signature.New(intParams("a", "b"))
	sig.Insert(0, signature.NewParameter("k", signature.KeywordOnly))

	ad, err := New(sig, record)
	require.Error(t, err)
	assert.Nil(t, ad)
	assert.True(t, errors.Is(err, sigerr.ErrStructural))
	assert.True(t, errors.Is(err, &sigerr.Error{Kind: sigerr.KindStructural, Op: sigerr.OpTransform}))
	assert.Equal(t, signature.Invalid, sig.State())
}

func TestTransform_Snapshot(t *testing.T) {
	sig := signature.New(intParams("a", "b"))
	ad, err := New(sig, record)
	require.NoError(t, err)
	assert.Equal(t, signature.Valid, sig.State())

	require.NoError(t, sig.Reorder(signature.Names("b", "a")...))
	got, err := ad.Call([]any{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, call{args: []any{1, 2}}, got, "edits after construction do not leak into the adapter")
}
