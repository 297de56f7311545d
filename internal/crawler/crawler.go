package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"

	"funcsig/internal/extractor"

	"go.uber.org/zap"
)

// DefaultSkipDirs are not descended into. Directories whose names start
// with "." or "_" are always skipped.
var DefaultSkipDirs = []string{"vendor", "node_modules", "testdata", "venv"}

// Crawler scans a directory for source files.
type Crawler struct {
	extractors map[string]*extractor.Extractor
	ignored    []string
	language   string
}

// NewCrawler creates a crawler for one language ("go" or "python"), or for
// every supported language when language is "" or "auto". skipDirs replaces
// DefaultSkipDirs when given.
func NewCrawler(language string, skipDirs ...string) *Crawler {
	if language == "auto" {
		language = ""
	}
	if len(skipDirs) == 0 {
		skipDirs = DefaultSkipDirs
	}
	return &Crawler{
		extractors: make(map[string]*extractor.Extractor),
		ignored:    skipDirs,
		language:   language,
	}
}

// ScanProject walks the root directory and processes all relevant files.
// It uses a callback to stream CodeUnits, preventing large memory buildup.
// Files that fail to parse are logged and skipped.
func (c *Crawler) ScanProject(root string, onUnit func(*extractor.CodeUnit)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		ext := c.extractorFor(path)
		if ext == nil {
			return nil
		}

		units, err := ext.ExtractFromFile(path)
		if err != nil {
			extractor.Logger().Warn("skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}

		for _, unit := range units {
			onUnit(unit)
		}
		return nil
	})
}

func (c *Crawler) extractorFor(path string) *extractor.Extractor {
	lang := extractor.LanguageFor(path)
	if lang == "" || (c.language != "" && c.language != lang) {
		return nil
	}
	if lang == extractor.LangGo && strings.HasSuffix(path, "_test.go") {
		return nil
	}
	if ext, ok := c.extractors[lang]; ok {
		return ext
	}
	ext, err := extractor.NewExtractor(lang)
	if err != nil {
		return nil
	}
	c.extractors[lang] = ext
	return ext
}
