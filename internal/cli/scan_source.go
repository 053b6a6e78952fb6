package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/decision"
	"github.com/gzhole/clawguard/internal/hashing"
	"github.com/gzhole/clawguard/internal/ingest"
	"github.com/gzhole/clawguard/internal/logger"
	"github.com/gzhole/clawguard/internal/policy"
	"github.com/gzhole/clawguard/internal/rules"
	"github.com/gzhole/clawguard/internal/scanner"
	"github.com/gzhole/clawguard/internal/skill"
	"github.com/gzhole/clawguard/internal/trust"
	"github.com/spf13/cobra"
)

var scanLimits limitFlags

var scanSourceCmd = &cobra.Command{
	Use:   "scan-source <path|url|zip>",
	Short: "Ingest and scan a skill source, printing a full install decision",
	Args:  cobra.ExactArgs(1),
	RunE:  runScanSource,
}

func init() {
	rootCmd.AddCommand(scanSourceCmd)
	scanSourceCmd.Flags().IntVar(&scanLimits.timeoutMs, "timeout-ms", 0, "Ingest/transport timeout in milliseconds")
	scanSourceCmd.Flags().IntVar(&scanLimits.maxFiles, "max-files", 0, "Maximum number of files to ingest")
	scanSourceCmd.Flags().Int64Var(&scanLimits.maxTotalBytes, "max-total-bytes", 0, "Maximum aggregate bytes of loaded text files")
	scanSourceCmd.Flags().Int64Var(&scanLimits.maxZipBytes, "max-zip-bytes", 0, "Maximum archive size accepted")
}

// bundleSummary is the CLI's wire shape for a scanned bundle: the bundle
// itself plus the two content-addressed hashes that key trust pins and
// receipts.
type bundleSummary struct {
	skill.Bundle
	ContentSHA256  string `json:"content_sha256"`
	ManifestSHA256 string `json:"manifest_sha256"`
}

// scanSourceOutput is the JSON object scan-source prints to stdout, per
// spec §6.
type scanSourceOutput struct {
	Bundle           bundleSummary      `json:"bundle"`
	ModeRequested    string             `json:"mode_requested"`
	ModeEffective    string             `json:"mode_effective"`
	Trust            string             `json:"trust"`
	TrustStore       string             `json:"trust_store"`
	Action           string             `json:"action"`
	PolicyThresholds policy.Thresholds  `json:"policy_thresholds"`
	Reasons          []policy.Reason    `json:"reasons"`
	Report           scanner.ScanReport `json:"report"`
}

func runScanSource(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	limits := scanLimits.resolve()
	ctx, cancel := context.WithTimeout(context.Background(), durationFromMs(limits.TimeoutMs))
	defer cancel()

	bundle, err := ingest.BuildSkillBundleFromSource(ctx, args[0], limits)
	if err != nil {
		return fail("ingest failed: %v", err)
	}

	report := scanner.Scan(bundle, rules.DefaultPack)

	basePolicy, err := loadPolicy(cfg)
	if err != nil {
		return fail("failed to load policy: %v", err)
	}

	store, err := trust.Load(cfg.TrustPath)
	if err != nil {
		return fail("failed to load trust store: %v", err)
	}
	trustStatus := trust.StatusForBundle(bundle, store)

	decisionReport := decision.Compose(report.RiskScore, report.Findings, basePolicy, cfg.Mode, string(trustStatus))

	auditLogger, err := logger.New(cfg.LogPath)
	if err != nil {
		return fail("failed to open audit log: %v", err)
	}
	defer auditLogger.Close()

	reasonCodes := make([]string, 0, len(decisionReport.Reasons))
	for _, r := range decisionReport.Reasons {
		reasonCodes = append(reasonCodes, r.ReasonCode)
	}
	contentHash := hashing.ContentSHA256(bundle)
	logErr := auditLogger.Log(logger.AuditEvent{
		Timestamp:   nowRFC3339(),
		Kind:        "install",
		SourceInput: args[0],
		Mode:        decisionReport.ModeEffective,
		Action:      decisionReport.Action,
		ReasonCodes: reasonCodes,
		RiskScore:   decisionReport.RiskScore,
		ContentHash: contentHash,
	})
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "clawguard: warning: failed to write audit log: %v\n", logErr)
	}

	effectivePolicy, _ := decision.ComposeModeStance(basePolicy, cfg.Mode, string(trustStatus))

	out := scanSourceOutput{
		Bundle: bundleSummary{
			Bundle:         *bundle,
			ContentSHA256:  contentHash,
			ManifestSHA256: hashing.ManifestSHA256(bundle),
		},
		ModeRequested:    cfg.Mode,
		ModeEffective:    decisionReport.ModeEffective,
		Trust:            string(trustStatus),
		TrustStore:       cfg.TrustPath,
		Action:           decisionReport.Action,
		PolicyThresholds: effectivePolicy.Thresholds,
		Reasons:          decisionReport.Reasons,
		Report:           report,
	}

	if err := printJSON(out); err != nil {
		return fail("failed to print result: %v", err)
	}

	os.Exit(exitCodeForAction(decisionReport.Action))
	return nil
}
