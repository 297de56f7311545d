package signature

import (
	"fmt"
	"strings"
)

// Kind fixes how a parameter may receive a call-site value. The constants
// are declared in canonical order, so kinds compare with < and >.
type Kind int

const (
	// KindUnspecified is the zero value; descriptors treat it as PositionalOrKeyword.
	KindUnspecified Kind = iota
	PositionalOnly
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

// Kinds lists every concrete kind in canonical order.
var Kinds = [...]Kind{PositionalOnly, PositionalOrKeyword, VarPositional, KeywordOnly, VarKeyword}

var kindNames = map[Kind]string{
	KindUnspecified:     "UNSPECIFIED",
	PositionalOnly:      "POSITIONAL_ONLY",
	PositionalOrKeyword: "POSITIONAL_OR_KEYWORD",
	VarPositional:       "VAR_POSITIONAL",
	KeywordOnly:         "KEYWORD_ONLY",
	VarKeyword:          "VAR_KEYWORD",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the five concrete kinds.
func (k Kind) Valid() bool {
	return k >= PositionalOnly && k <= VarKeyword
}

// Positional reports whether a value may be supplied by position.
func (k Kind) Positional() bool {
	return k == PositionalOnly || k == PositionalOrKeyword
}

// Keyword reports whether a value may be supplied by name.
func (k Kind) Keyword() bool {
	return k == PositionalOrKeyword || k == KeywordOnly
}

// Variadic reports whether the kind collects any number of values.
func (k Kind) Variadic() bool {
	return k == VarPositional || k == VarKeyword
}

// ParseKind accepts the String form as well as the short aliases used in
// configuration and on the command line ("posonly", "kwonly", "*", "**").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	switch norm {
	case "", "UNSPECIFIED":
		return KindUnspecified, nil
	case "POSITIONAL_ONLY", "POSONLY", "/":
		return PositionalOnly, nil
	case "POSITIONAL_OR_KEYWORD", "POSKW", "NORMAL":
		return PositionalOrKeyword, nil
	case "VAR_POSITIONAL", "VARARGS", "*":
		return VarPositional, nil
	case "KEYWORD_ONLY", "KWONLY":
		return KeywordOnly, nil
	case "VAR_KEYWORD", "VARKW", "**":
		return VarKeyword, nil
	}
	return KindUnspecified, fmt.Errorf("unknown parameter kind %q", s)
}
