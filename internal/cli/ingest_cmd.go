package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/decision"
	"github.com/gzhole/clawguard/internal/hashing"
	"github.com/gzhole/clawguard/internal/ingest"
	"github.com/gzhole/clawguard/internal/rules"
	"github.com/gzhole/clawguard/internal/scanner"
	"github.com/gzhole/clawguard/internal/trust"
	"github.com/spf13/cobra"
)

var (
	ingestLimits limitFlags
	receiptDir   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path|url|zip>",
	Short: "Ingest a skill source and write a signed scan receipt",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&receiptDir, "receipt-dir", "", "Directory to write the receipt JSON into (default: ./.clawguard/receipts)")
	ingestCmd.Flags().IntVar(&ingestLimits.timeoutMs, "timeout-ms", 0, "Ingest/transport timeout in milliseconds")
	ingestCmd.Flags().IntVar(&ingestLimits.maxFiles, "max-files", 0, "Maximum number of files to ingest")
	ingestCmd.Flags().Int64Var(&ingestLimits.maxTotalBytes, "max-total-bytes", 0, "Maximum aggregate bytes of loaded text files")
	ingestCmd.Flags().Int64Var(&ingestLimits.maxZipBytes, "max-zip-bytes", 0, "Maximum archive size accepted")
}

// receiptBundle is the receipt's nested bundle summary: identifying fields
// plus the two content-addressed hashes, not the full file contents —
// a receipt is a provenance record, not a copy of the source.
type receiptBundle struct {
	ID             string `json:"id"`
	Source         string `json:"source"`
	ContentSHA256  string `json:"content_sha256"`
	ManifestSHA256 string `json:"manifest_sha256,omitempty"`
}

type receipt struct {
	ReceiptVersion int                `json:"receipt_version"`
	CreatedAt      string             `json:"created_at"`
	SourceInput    string             `json:"source_input"`
	Bundle         receiptBundle      `json:"bundle"`
	PolicySHA256   string             `json:"policy_sha256"`
	ScanReport     scanner.ScanReport `json:"scan_report"`
}

type receiptDocument struct {
	Action  string  `json:"action"`
	Receipt receipt `json:"receipt"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	limits := ingestLimits.resolve()
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
	policySHA, err := hashing.PolicySHA256(basePolicy)
	if err != nil {
		return fail("failed to hash policy: %v", err)
	}

	store, err := trust.Load(cfg.TrustPath)
	if err != nil {
		return fail("failed to load trust store: %v", err)
	}
	trustStatus := trust.StatusForBundle(bundle, store)

	decisionReport := decision.Compose(report.RiskScore, report.Findings, basePolicy, cfg.Mode, string(trustStatus))

	contentHash := hashing.ContentSHA256(bundle)
	doc := receiptDocument{
		Action: decisionReport.Action,
		Receipt: receipt{
			ReceiptVersion: 1,
			CreatedAt:      nowRFC3339(),
			SourceInput:    args[0],
			Bundle: receiptBundle{
				ID:             bundle.ID,
				Source:         string(bundle.Source),
				ContentSHA256:  contentHash,
				ManifestSHA256: hashing.ManifestSHA256(bundle),
			},
			PolicySHA256: policySHA,
			ScanReport:   report,
		},
	}

	dir := receiptDir
	if dir == "" {
		dir = cfg.ReceiptDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail("failed to create receipt directory: %v", err)
	}
	receiptPath := filepath.Join(dir, contentHash+".json")
	if err := writeJSONAtomic(receiptPath, doc); err != nil {
		return fail("failed to write receipt: %v", err)
	}

	if err := printJSON(doc); err != nil {
		return fail("failed to print receipt: %v", err)
	}

	os.Exit(exitCodeForAction(decisionReport.Action))
	return nil
}
