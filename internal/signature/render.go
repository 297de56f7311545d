package signature

import (
	"slices"
	"strings"
)

// Separator markers of the canonical rendering.
const (
	PositionalOnlySeparator = "/"
	KeywordOnlySeparator    = "*"
)

// String renders the signature canonically:
//
//	(a: int, /, b: str = "x", *args, c, **kwargs) -> float
//
// Parameters are listed in canonical kind order. "/" follows the last
// positional-only parameter when anything comes after it, and "*" precedes
// the first keyword-only parameter unless a variadic-positional parameter
// already marks that boundary.
func (s *Signature) String() string {
	return Render(s.params, s.returnAnnotation)
}

// Render formats a parameter list and return annotation canonically.
func Render(params []Parameter, returnAnnotation string) string {
	ordered := slices.Clone(params)
	sortByKind(ordered)

	var b strings.Builder
	b.WriteByte('(')

	hasVarPositional := slices.ContainsFunc(ordered, func(p Parameter) bool { return p.kind == VarPositional })
	lastPosOnly := -1
	for i, p := range ordered {
		if p.kind == PositionalOnly {
			lastPosOnly = i
		}
	}

	first := true
	write := func(s string) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(s)
	}

	kwOnlySeen := false
	for i, p := range ordered {
		if p.kind == KeywordOnly && !kwOnlySeen {
			kwOnlySeen = true
			if !hasVarPositional {
				write(KeywordOnlySeparator)
			}
		}
		write(p.String())
		if i == lastPosOnly && i < len(ordered)-1 {
			write(PositionalOnlySeparator)
		}
	}

	b.WriteByte(')')
	if returnAnnotation != "" {
		b.WriteString(" -> ")
		b.WriteString(returnAnnotation)
	}
	return b.String()
}
