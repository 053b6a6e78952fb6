// Package cli wires every ClawGuard component (ingest, scanner, the two
// policy gates, trust store, hashing, logging, approval) into the
// cobra command surface described in spec §6.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	policyPath string
	trustPath  string
	logPath    string
	mode       string
)

var rootCmd = &cobra.Command{
	Use:   "clawguard",
	Short: "Deterministic safety gate for third-party agent skills",
	Long: `ClawGuard scans an agent skill bundle before install (the static
gate) and evaluates individual tool calls at runtime (the policy gate),
composing both into a single allow / needs_approval / deny decision.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Path to policy YAML file (default: ./.clawguard/policy.json)")
	rootCmd.PersistentFlags().StringVar(&trustPath, "trust-store", "", "Path to trust store JSON file (default: ./.clawguard/trust.json)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: ./.clawguard/audit.jsonl)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "untrusted", "Gate mode: untrusted or trusted")
}

func Execute() error {
	return rootCmd.Execute()
}
