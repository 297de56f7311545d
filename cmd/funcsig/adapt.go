package main

import (
	"fmt"
	"strings"

	"funcsig/internal/bind"
	"funcsig/internal/signature"
	"funcsig/internal/transform"

	"github.com/spf13/cobra"
)

var (
	reorderFlag string
	packFlag    string
	removeFlags []string
	aliasFlag   string
	callKwFlags []string
)

var adaptCmd = &cobra.Command{
	Use:   "adapt <file> <func> [args...]",
	Short: "Edit a function's signature and show the resulting adapter",
	Long: "Applies --remove, --reorder and --pack in that order, then prints the adapter " +
		"description. Extra arguments are bound against the edited signature and shown " +
		"as the call forwarded to the original function.",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := loadUnit(args[0], args[1])
		if err != nil {
			return err
		}
		sig := unit.Signature(cfg.Extract.Ignore...)

		for _, name := range removeFlags {
			if err := sig.Remove(signature.ParseKey(name)); err != nil {
				return err
			}
		}
		if reorderFlag != "" {
			if err := sig.Reorder(parseKeys(reorderFlag)...); err != nil {
				return err
			}
		}
		if packFlag != "" {
			if _, err := sig.Pack(parseKeys(packFlag)...); err != nil {
				return err
			}
		}

		ad, err := transform.New(sig, echo(unit.Name),
			transform.WithName(unit.Name),
			transform.WithAlias(aliasFlag),
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ad.Doc())

		if len(args) == 2 && len(callKwFlags) == 0 {
			return nil
		}
		values, kwargs, err := parseCall(args[2:], callKwFlags)
		if err != nil {
			return err
		}
		forwarded, err := ad.Call(values, kwargs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "call: %s\n", forwarded)
		return nil
	},
}

func init() {
	adaptCmd.Flags().StringVar(&reorderFlag, "reorder", "", "New parameter order as a comma list of names or positions")
	adaptCmd.Flags().StringVar(&packFlag, "pack", "", "Parameters to pack into one compound parameter")
	adaptCmd.Flags().StringArrayVar(&removeFlags, "remove", nil, "Parameter to remove (repeatable)")
	adaptCmd.Flags().StringVar(&aliasFlag, "alias", "", "Name of the adapted function")
	adaptCmd.Flags().StringArrayVarP(&callKwFlags, "kw", "k", nil, "Keyword argument for the sample call as name=value")
}

func parseKeys(list string) []signature.Key {
	var keys []signature.Key
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, signature.ParseKey(part))
		}
	}
	return keys
}

// echo stands in for the original function and renders the call it receives.
func echo(name string) transform.Callable {
	return func(args []any, kwargs bind.Kwargs) (any, error) {
		parts := make([]string, 0, len(args)+len(kwargs))
		for _, a := range args {
			parts = append(parts, signature.FormatValue(a))
		}
		for _, kw := range kwargs {
			parts = append(parts, kw.Name+"="+signature.FormatValue(kw.Value))
		}
		return name + "(" + strings.Join(parts, ", ") + ")", nil
	}
}
