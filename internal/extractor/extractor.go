// Package extractor is the introspection adapter: it reads Python and Go
// source with tree-sitter and turns every function into an ordered list of
// parameter descriptors plus a return annotation.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"funcsig/internal/signature"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
)

// Languages supported by NewExtractor.
const (
	LangGo     = "go"
	LangPython = "python"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case LangGo:
		langExt = &GoExtractor{}
	case LangPython, "py":
		lang = LangPython
		langExt = &PythonExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// LanguageFor maps a file name to a supported language, or "".
func LanguageFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo
	case ".py", ".pyi":
		return LangPython
	}
	return ""
}

// ForFile creates the extractor matching path's extension.
func ForFile(path string) (*Extractor, error) {
	lang := LanguageFor(path)
	if lang == "" {
		return nil, fmt.Errorf("no extractor for %s", path)
	}
	return NewExtractor(lang)
}

// Language returns the language name.
func (e *Extractor) Language() string { return e.langName }

// ExtractFromFile parses a single source file and extracts all function units.
func (e *Extractor) ExtractFromFile(path string) ([]*CodeUnit, error) {
	sourceCode, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.ExtractFromSource(context.Background(), path, sourceCode)
}

// ExtractFromSource extracts function units from in-memory source; path is
// only used for IDs and module naming.
func (e *Extractor) ExtractFromSource(ctx context.Context, path string, sourceCode []byte) ([]*CodeUnit, error) {
	units, syntaxErr, err := e.extract(ctx, path, sourceCode)
	if err != nil {
		return nil, err
	}
	if syntaxErr {
		Logger().Warn("source contains syntax errors", zap.String("file", path), zap.String("language", e.langName))
	}
	Logger().Debug("extracted units", zap.String("file", path), zap.Int("units", len(units)))
	return units, nil
}

// extract also reports whether the parse tree contains error nodes.
func (e *Extractor) extract(ctx context.Context, path string, sourceCode []byte) ([]*CodeUnit, bool, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	packageName := e.detectPackageName(root, sourceCode, path)

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, false, fmt.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	var codeUnits []*CodeUnit
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			captureName := query.CaptureNameForId(c.Index)
			unit := e.langExtractor.ExtractUnit(captureName, c.Node, sourceCode, path, packageName)
			if unit == nil {
				continue
			}
			unit.ID = BuildStableSymbolID(unit)
			codeUnits = append(codeUnits, unit)
		}
	}

	return codeUnits, root.HasError(), nil
}

func (e *Extractor) detectPackageName(root *sitter.Node, sourceCode []byte, path string) string {
	if e.langName == LangGo {
		pkgQuery, err := sitter.NewQuery([]byte(`(package_clause (package_identifier) @pkg)`), e.langExtractor.GetLanguage())
		if err != nil {
			return ""
		}
		defer pkgQuery.Close()
		pqc := sitter.NewQueryCursor()
		defer pqc.Close()
		pqc.Exec(pkgQuery, root)
		if m, ok := pqc.NextMatch(); ok && len(m.Captures) > 0 {
			return m.Captures[0].Node.Content(sourceCode)
		}
		return ""
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Find returns the first unit named name. A "Type.name" form also matches
// the receiver.
func Find(units []*CodeUnit, name string) (*CodeUnit, bool) {
	receiver, fn, qualified := strings.Cut(name, ".")
	if !qualified {
		fn = name
	}
	for _, u := range units {
		if u.Name != fn {
			continue
		}
		if qualified && !strings.Contains(u.Receiver, receiver) {
			continue
		}
		return u, true
	}
	return nil, false
}

// ParseSignature reads a rendered signature such as "(a, /, b = 1, *, c) -> int"
// back into a Signature, using the Python grammar.
func ParseSignature(text string) (*signature.Signature, error) {
	src := []byte("def _" + strings.TrimSpace(text) + ":\n    pass\n")
	ext := &Extractor{langExtractor: &PythonExtractor{}, langName: LangPython}
	units, syntaxErr, err := ext.extract(context.Background(), "<signature>", src)
	if err != nil {
		return nil, err
	}
	if syntaxErr || len(units) != 1 {
		return nil, fmt.Errorf("cannot parse signature %q", text)
	}
	return units[0].Signature(), nil
}
