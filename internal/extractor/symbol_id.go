package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"funcsig/internal/signature"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildStableSymbolID creates a deterministic symbol ID.
// The ID is derived from identity fields and a hash of the canonical signature,
// so it changes when the parameter list does and not when the body does.
func BuildStableSymbolID(unit *CodeUnit) string {
	if unit == nil {
		return ""
	}

	lang := strings.TrimSpace(unit.Language)
	if lang == "" {
		lang = "unknown"
	}

	pkg := strings.TrimSpace(unit.Package)
	if pkg == "" {
		pkg = "_"
	}

	kind := strings.TrimSpace(unit.UnitType)
	if kind == "" {
		kind = "symbol"
	}

	name := strings.TrimSpace(unit.Name)
	if name == "" {
		name = "_"
	}

	receiver := canonicalize(unit.Receiver)
	sig := canonicalize(signatureText(unit))

	fingerprint := strings.Join([]string{
		lang,
		pkg,
		kind,
		receiver,
		name,
		sig,
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	short := hex.EncodeToString(sum[:8])
	return fmt.Sprintf("%s/%s:%s:%s:%s", lang, pkg, kind, name, short)
}

// signatureText renders the unit's parameters without validating them, so
// that malformed declarations still get an ID.
func signatureText(unit *CodeUnit) string {
	params := make([]signature.Parameter, len(unit.Params))
	for i, d := range unit.Params {
		params[i] = d.Parameter()
	}
	return signature.Render(params, unit.Returns)
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
