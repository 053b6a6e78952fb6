package cli

import (
	"context"
	"os"

	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/hashing"
	"github.com/gzhole/clawguard/internal/ingest"
	"github.com/gzhole/clawguard/internal/trust"
	"github.com/spf13/cobra"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the trust-pin store",
}

var trustAddCmd = &cobra.Command{
	Use:   "add <path|url|zip>",
	Short: "Ingest a source and pin it as trusted by content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrustAdd,
}

var trustCheckCmd = &cobra.Command{
	Use:   "check <path|url|zip>",
	Short: "Ingest a source and report whether it's pinned as trusted",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrustCheck,
}

var trustListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trust-pin records, newest first",
	RunE:  runTrustList,
}

var trustRemoveCmd = &cobra.Command{
	Use:   "remove <content_sha256>",
	Short: "Remove a trust-pin record by its content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrustRemove,
}

func init() {
	rootCmd.AddCommand(trustCmd)
	trustCmd.AddCommand(trustAddCmd, trustCheckCmd, trustListCmd, trustRemoveCmd)
}

func ingestForTrust(cfg *config.Config, raw string) (*ingestedBundle, error) {
	limits := config.DefaultLimits()
	ctx, cancel := context.WithTimeout(context.Background(), durationFromMs(limits.TimeoutMs))
	defer cancel()

	bundle, err := ingest.BuildSkillBundleFromSource(ctx, raw, limits)
	if err != nil {
		return nil, err
	}
	return &ingestedBundle{
		contentSHA256:  hashing.ContentSHA256(bundle),
		manifestSHA256: hashing.ManifestSHA256(bundle),
	}, nil
}

type ingestedBundle struct {
	contentSHA256  string
	manifestSHA256 string
}

func runTrustAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	b, err := ingestForTrust(cfg, args[0])
	if err != nil {
		return fail("ingest failed: %v", err)
	}

	record := trust.Record{
		ContentSHA256:  b.contentSHA256,
		ManifestSHA256: b.manifestSHA256,
		SourceInput:    args[0],
		CreatedAt:      nowRFC3339(),
	}
	if err := trust.Add(cfg.TrustPath, record); err != nil {
		return fail("failed to add trust record: %v", err)
	}

	return printJSON(record)
}

func runTrustCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	limits := config.DefaultLimits()
	ctx, cancel := context.WithTimeout(context.Background(), durationFromMs(limits.TimeoutMs))
	defer cancel()

	bundle, err := ingest.BuildSkillBundleFromSource(ctx, args[0], limits)
	if err != nil {
		return fail("ingest failed: %v", err)
	}

	store, err := trust.Load(cfg.TrustPath)
	if err != nil {
		return fail("failed to load trust store: %v", err)
	}
	status := trust.StatusForBundle(bundle, store)

	if err := printJSON(map[string]string{
		"content_sha256":  hashing.ContentSHA256(bundle),
		"manifest_sha256": hashing.ManifestSHA256(bundle),
		"status":          string(status),
	}); err != nil {
		return fail("failed to print status: %v", err)
	}

	if status == trust.StatusUntrusted {
		os.Exit(3)
	}
	return nil
}

func runTrustList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	records, err := trust.List(cfg.TrustPath)
	if err != nil {
		return fail("failed to list trust records: %v", err)
	}
	return printJSON(records)
}

func runTrustRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	if err := trust.RemoveByHash(cfg.TrustPath, args[0]); err != nil {
		return fail("failed to remove trust record: %v", err)
	}
	return printJSON(map[string]string{"removed": args[0]})
}
