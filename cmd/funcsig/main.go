package main

import (
	"fmt"
	"os"

	"funcsig/internal/config"
	"funcsig/internal/extractor"
	"funcsig/internal/transform"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rootCmd = &cobra.Command{
		Use:           "funcsig",
		Short:         "Inspect, bind and adapt function signatures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "funcsig.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(bindCmd)
	rootCmd.AddCommand(adaptCmd)
}

// setup loads the configuration and installs the logger in the library packages.
func setup() error {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err = newLogger(level)
	if err != nil {
		return err
	}
	extractor.SetLogger(logger.Named("extractor"))
	transform.SetLogger(logger.Named("transform"))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.Encoding = "console"
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc.Build()
}

// loadUnit extracts file and returns the function called name.
func loadUnit(file, name string) (*extractor.CodeUnit, error) {
	ext, err := extractor.ForFile(file)
	if err != nil {
		return nil, err
	}
	units, err := ext.ExtractFromFile(file)
	if err != nil {
		return nil, err
	}
	unit, ok := extractor.Find(units, name)
	if !ok {
		return nil, fmt.Errorf("function %s not found in %s", name, file)
	}
	logger.Debug("loaded function", zap.String("id", unit.ID), zap.Int("params", len(unit.Params)))
	return unit, nil
}
