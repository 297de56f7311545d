package main

import (
	"fmt"
	"io"
	"strings"

	"funcsig/internal/bind"
	"funcsig/internal/extractor"
	"funcsig/internal/signature"

	"github.com/spf13/cobra"
)

var (
	kwFlags    []string
	strictBind bool
)

var bindCmd = &cobra.Command{
	Use:   "bind <file> <func> [args...]",
	Short: "Bind call-site values to a function's parameters",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := loadUnit(args[0], args[1])
		if err != nil {
			return err
		}
		sig := unit.Signature(cfg.Extract.Ignore...)

		values, kwargs, err := parseCall(args[2:], kwFlags)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s%s\n", unit.Name, sig)
		if strictBind {
			b, err := bind.Bind(sig, values, kwargs)
			if err != nil {
				return err
			}
			printStrict(out, b)
			return nil
		}

		sb, err := bind.Soft(sig, values, kwargs)
		if err != nil {
			return err
		}
		printSoft(out, sb)
		return nil
	},
}

func init() {
	bindCmd.Flags().StringArrayVarP(&kwFlags, "kw", "k", nil, "Keyword argument as name=value (repeatable)")
	bindCmd.Flags().BoolVar(&strictBind, "strict", false, "Fail on missing, extra or conflicting values")
}

// parseCall decodes positional values and name=value keyword flags.
func parseCall(args, kws []string) ([]any, bind.Kwargs, error) {
	values := make([]any, len(args))
	for i, a := range args {
		values[i] = extractor.ParseValue(a)
	}
	var kwargs bind.Kwargs
	for _, kv := range kws {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("invalid keyword argument %q, want name=value", kv)
		}
		kwargs = append(kwargs, bind.Kwarg{Name: name, Value: extractor.ParseValue(raw)})
	}
	return values, kwargs, nil
}

func formatValues(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = signature.FormatValue(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func printStrict(out io.Writer, b *bind.Bound) {
	b.ApplyDefaults()
	for _, a := range b.Arguments() {
		source := "default"
		if a.Supplied {
			source = "supplied"
		}
		fmt.Fprintf(out, "  %s = %s (%s)\n", a.Param.Name(), formatArgument(a.Param, a.Value), source)
	}
	fmt.Fprintf(out, "args: %s\n", formatValues(b.Args()))
	fmt.Fprintf(out, "kwargs: %s\n", b.Kwargs())
}

func formatArgument(p signature.Parameter, v any) string {
	switch p.Kind() {
	case signature.VarPositional:
		rest, _ := v.([]any)
		return formatValues(rest)
	case signature.VarKeyword:
		extra, _ := v.(bind.Kwargs)
		return extra.String()
	}
	return signature.FormatValue(v)
}

func printSoft(out io.Writer, sb *bind.SoftBound) {
	fmt.Fprintln(out, "bound:")
	for _, s := range sb.Bound() {
		fmt.Fprintf(out, "  %s = %s\n", s.Param.Name(), signature.FormatValue(s.Value().Value))
	}
	fmt.Fprintln(out, "missing:")
	for _, p := range sb.ParametersWithoutValues() {
		marker := ""
		if p.Required() {
			marker = " (required)"
		}
		fmt.Fprintf(out, "  %s%s\n", p, marker)
	}
	fmt.Fprintln(out, "extra:")
	for _, v := range sb.ValuesWithoutParameters() {
		fmt.Fprintf(out, "  %s = %s\n", v.Key, signature.FormatValue(v.Value))
	}
}
