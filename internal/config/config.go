package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	Extract struct {
		Language string   `yaml:"language"` // python, go or auto
		Ignore   []string `yaml:"ignore"`   // parameter names dropped from extracted signatures
		SkipDirs []string `yaml:"skip_dirs"`
	} `yaml:"extract"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Extract.Language = "auto"
	cfg.Log.Level = "info"
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config; a missing file keeps the defaults
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		var doc any
		if err := yaml.Unmarshal(file, &doc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if doc != nil {
			if err := validateDocument(doc); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if lang := os.Getenv("FUNCSIG_LANGUAGE"); lang != "" {
		cfg.Extract.Language = lang
	}
	if level := os.Getenv("FUNCSIG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if ignore := os.Getenv("FUNCSIG_IGNORE"); ignore != "" {
		cfg.Extract.Ignore = splitList(ignore)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown languages. It runs after environment overrides,
// which the file schema never sees.
func (c *Config) Validate() error {
	switch c.Extract.Language {
	case "", "auto", "go", "python":
		return nil
	}
	return fmt.Errorf("config: unsupported extract.language %q", c.Extract.Language)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
