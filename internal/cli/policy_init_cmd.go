package cli

import (
	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/decision"
	cgpolicy "github.com/gzhole/clawguard/internal/policy"
	"github.com/spf13/cobra"
)

var (
	policyInitPath string
	policyInitMode string
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage policy files",
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter policy file",
	RunE:  runPolicyInit,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyInitCmd)
	policyInitCmd.Flags().StringVar(&policyInitPath, "path", "", "Where to write the policy file (default: ./.clawguard/policy.json)")
	policyInitCmd.Flags().StringVar(&policyInitMode, "mode", "default", "Starting stance: default or untrusted")
}

func runPolicyInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	path := policyInitPath
	if path == "" {
		path = cfg.PolicyPath
	}

	p := cgpolicy.DefaultPolicy()
	if policyInitMode == "untrusted" {
		p, _ = decision.ComposeModeStance(p, decision.ModeUntrusted, "")
	}

	// policy init writes JSON, not the YAML internal/policy.Save produces —
	// §6 calls for a starter policy JSON specifically, and json.Marshal's
	// output is itself valid input to policy.Load's YAML parser (JSON is a
	// YAML subset) so the two round-trip without any format negotiation.
	if err := writeJSONAtomic(path, p); err != nil {
		return fail("failed to write policy: %v", err)
	}
	return printJSON(map[string]string{"wrote": path})
}
