package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		params []Parameter
		ret    string
		want   string
	}{
		{
			name: "annotations and defaults",
			params: []Parameter{
				NewParameter("a", PositionalOrKeyword, WithAnnotation("int")),
				NewParameter("b", PositionalOrKeyword, WithAnnotation("str")),
				NewParameter("c", PositionalOrKeyword, WithAnnotation("float"), WithDefault(4.0)),
			},
			ret:  "float",
			want: "(a: int, b: str, c: float = 4.0) -> float",
		},
		{
			name: "keyword-only marker",
			params: []Parameter{
				NewParameter("a", PositionalOrKeyword),
				NewParameter("c", KeywordOnly, WithDefault(4)),
				NewParameter("d", KeywordOnly, WithDefault(5)),
			},
			want: "(a, *, c = 4, d = 5)",
		},
		{
			name: "positional-only marker",
			params: []Parameter{
				NewParameter("a", PositionalOnly),
				NewParameter("b", PositionalOrKeyword),
			},
			want: "(a, /, b)",
		},
		{
			name:   "positional-only last has no marker",
			params: []Parameter{NewParameter("a", PositionalOnly), NewParameter("b", PositionalOnly)},
			want:   "(a, b)",
		},
		{
			name: "all kinds",
			params: []Parameter{
				NewParameter("a", PositionalOnly, WithAnnotation("int")),
				NewParameter("b", PositionalOrKeyword, WithDefault("x")),
				NewParameter("args", VarPositional),
				NewParameter("c", KeywordOnly, WithDefault(nil)),
				NewParameter("kwargs", VarKeyword, WithAnnotation("Any")),
			},
			want: `(a: int, /, b = "x", *args, c = None, **kwargs: Any)`,
		},
		{
			name: "out of order input is rendered canonically",
			params: []Parameter{
				NewParameter("k", KeywordOnly, WithDefault(true)),
				NewParameter("a", PositionalOrKeyword, WithDefault([]any{1, 2.5})),
			},
			want: "(a = [1, 2.5], *, k = True)",
		},
		{
			name: "empty",
			ret:  "None",
			want: "() -> None",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.params, WithReturn(tt.ret))
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "4.0", FormatValue(4.0))
	assert.Equal(t, "0.5", FormatValue(0.5))
	assert.Equal(t, "1e+21", FormatValue(1e21))
	assert.Equal(t, "3", FormatValue(3))
	assert.Equal(t, `"a \"b\""`, FormatValue(`a "b"`))
	assert.Equal(t, "False", FormatValue(false))
	assert.Equal(t, "None", FormatValue(nil))
	assert.Equal(t, `["x", None]`, FormatValue([]any{"x", nil}))
	assert.Equal(t, `{"a": 1, "b": [True]}`, FormatValue(map[string]any{"b": []any{true}, "a": 1}))
}
