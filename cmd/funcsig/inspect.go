package main

import (
	"fmt"

	"funcsig/internal/crawler"
	"funcsig/internal/extractor"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "List every function under path with its canonical signature",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Project.Root
		if len(args) > 0 {
			path = args[0]
		}

		out := cmd.OutOrStdout()
		count := 0
		cr := crawler.NewCrawler(cfg.Extract.Language, cfg.Extract.SkipDirs...)
		err := cr.ScanProject(path, func(unit *extractor.CodeUnit) {
			count++
			sig := unit.Signature(cfg.Extract.Ignore...)
			line := fmt.Sprintf("%s  %s%s", unit.ID, unit.Name, sig)
			if err := sig.Validate(); err != nil {
				line += "  [invalid: " + err.Error() + "]"
			}
			fmt.Fprintln(out, line)
		})
		if err != nil {
			return fmt.Errorf("scan %s: %w", path, err)
		}
		logger.Debug("inspect finished", zap.String("path", path), zap.Int("units", count))
		return nil
	},
}
