package extractor

import (
	"funcsig/internal/signature"

	sitter "github.com/smacker/go-tree-sitter"
)

// CodeUnit is one callable found in a source file.
type CodeUnit struct {
	ID          string                 `json:"id"`
	Filepath    string                 `json:"filepath"`
	Package     string                 `json:"package"`
	Language    string                 `json:"language"`
	StartLine   int                    `json:"start_line"`
	EndLine     int                    `json:"end_line"`
	Content     string                 `json:"content"`
	UnitType    string                 `json:"unit_type"` // "function" or "method"
	Name        string                 `json:"name"`
	Receiver    string                 `json:"receiver,omitempty"`
	Description string                 `json:"description"`
	Params      []signature.Descriptor `json:"params"`
	Returns     string                 `json:"returns,omitempty"`
}

// Signature builds a fresh signature from the unit's parameter descriptors,
// leaving out the named parameters.
func (u *CodeUnit) Signature(ignore ...string) *signature.Signature {
	return signature.FromDescriptors(u.Params, u.Returns).Ignore(ignore...)
}

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit
}
