package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/config"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available KLC rules",
	Long: `List every rule the checkers know, with its kind, default level and
the section of the KiCad Library Convention it implements.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().String("kind", "", "only list rules of this kind (footprint, symbol)")
	rulesCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
}

// ruleInfo is one row of the rule listing.
type ruleInfo struct {
	ID    string     `json:"id"    yaml:"id"`
	Kind  types.Kind `json:"kind"  yaml:"kind"`
	Title string     `json:"title" yaml:"title"`
	Level string     `json:"level" yaml:"level"`
	URL   string     `json:"url"   yaml:"url"`
}

func listRules(kind types.Kind) []ruleInfo {
	kinds := []types.Kind{types.KindFootprint, types.KindSymbol}
	if kind != "" {
		kinds = []types.Kind{kind}
	}
	var out []ruleInfo
	for _, k := range kinds {
		for _, m := range advisor.Rules(k) {
			level := types.RuleLevel_ERROR
			if r, ok := config.CatalogRule(k, m.ID); ok && r.Level != types.RuleLevel_LEVEL_UNSPECIFIED {
				level = r.Level
			}
			out = append(out, ruleInfo{
				ID:    m.ID,
				Kind:  k,
				Title: m.Title,
				Level: level.String(),
				URL:   m.URL(),
			})
		}
	}
	return out
}

func runRules(cmd *cobra.Command, _ []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	output, _ := cmd.Flags().GetString("output")

	kind := types.Kind(strings.ToLower(kindFlag))
	switch kind {
	case "", types.KindFootprint, types.KindSymbol:
	default:
		return errors.Errorf("unknown rule kind: %s", kindFlag)
	}

	return writeRules(cmd.OutOrStdout(), listRules(kind), strings.ToLower(output))
}

func writeRules(w io.Writer, rules []ruleInfo, output string) error {
	switch output {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return errors.Wrap(encoder.Encode(rules), "failed to encode rules")
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return errors.Wrap(encoder.Encode(rules), "failed to encode rules")
	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tLEVEL\tTITLE")
		for _, r := range rules {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.Level, r.Title)
		}
		return tw.Flush()
	default:
		return errors.Errorf("unsupported output format: %s", output)
	}
}
