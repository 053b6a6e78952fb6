package cli

import (
	"github.com/gzhole/clawguard/internal/rules"
	"github.com/gzhole/clawguard/internal/taxonomy"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the built-in rule pack",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the built-in rule pack",
	RunE:  runRulesList,
}

var rulesExplainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Print one rule's definition and its taxonomy category",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesExplain,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesExplainCmd)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	return printJSON(rules.DefaultPack)
}

func runRulesExplain(cmd *cobra.Command, args []string) error {
	for _, r := range rules.DefaultPack.Rules {
		if r.ID == args[0] {
			cat, _ := taxonomy.CategoryFor(r.ReasonCode)
			return printJSON(struct {
				rules.Rule
				Category taxonomy.Category `json:"category"`
			}{Rule: r, Category: cat})
		}
	}
	return fail("no such rule: %s", args[0])
}
