package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gzhole/clawguard/internal/approval"
	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/logger"
	"github.com/gzhole/clawguard/internal/policy"
	"github.com/spf13/cobra"
)

var evalStdin bool

var evalToolCallCmd = &cobra.Command{
	Use:   "eval-tool-call",
	Short: "Evaluate a single tool call against the runtime policy gate",
	RunE:  runEvalToolCall,
}

func init() {
	rootCmd.AddCommand(evalToolCallCmd)
	evalToolCallCmd.Flags().BoolVar(&evalStdin, "stdin", false, "Read the ToolCall JSON from stdin")
}

// applyApproval resolves a needs_approval decision by prompting a human
// operator: approved decisions become allow, denied or non-interactive
// ones become deny with an approval_denied reason recording why. Any
// other action passes through unchanged.
func applyApproval(dec policy.Decision, toolName string) policy.Decision {
	if dec.Action != policy.ActionNeedsApproval {
		return dec
	}

	details := make([]string, 0, len(dec.Reasons))
	codes := make([]string, 0, len(dec.Reasons))
	for _, r := range dec.Reasons {
		codes = append(codes, r.ReasonCode)
		if r.Detail != "" {
			details = append(details, r.Detail)
		}
	}
	result := approval.Ask(approval.Prompt{
		ToolName:             toolName,
		ReasonCodes:          codes,
		Details:              details,
		SuggestedMitigations: dec.SuggestedMitigations,
	})
	if result.Approved {
		dec.Action = policy.ActionAllow
		return dec
	}
	dec.Action = policy.ActionDeny
	dec.Reasons = append(dec.Reasons, policy.Reason{ReasonCode: "approval_denied", Detail: result.UserAction})
	return dec
}

func runEvalToolCall(cmd *cobra.Command, args []string) error {
	if !evalStdin {
		return fail("eval-tool-call requires --stdin")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fail("failed to read stdin: %v", err)
	}

	var call policy.ToolCall
	if err := json.Unmarshal(data, &call); err != nil {
		return fail("malformed ToolCall JSON: %v", err)
	}
	if call.ToolName == "" {
		return fail("ToolCall is missing tool_name")
	}

	cfg, err := config.Load(policyPath, trustPath, logPath, mode)
	if err != nil {
		return fail("failed to load config: %v", err)
	}

	basePolicy, err := loadPolicy(cfg)
	if err != nil {
		return fail("failed to load policy: %v", err)
	}

	evaluator := policy.NewEvaluator(basePolicy)
	dec := applyApproval(evaluator.Evaluate(call), call.ToolName)

	auditLogger, err := logger.New(cfg.LogPath)
	if err != nil {
		return fail("failed to open audit log: %v", err)
	}
	defer auditLogger.Close()

	codes := make([]string, 0, len(dec.Reasons))
	for _, r := range dec.Reasons {
		codes = append(codes, r.ReasonCode)
	}
	if logErr := auditLogger.Log(logger.AuditEvent{
		Timestamp:   nowRFC3339(),
		Kind:        "tool_call",
		Mode:        cfg.Mode,
		ToolName:    call.ToolName,
		ToolArgs:    call.Args,
		Action:      dec.Action,
		ReasonCodes: codes,
	}); logErr != nil {
		fmt.Fprintf(os.Stderr, "clawguard: warning: failed to write audit log: %v\n", logErr)
	}

	if err := printJSON(dec); err != nil {
		return fail("failed to print decision: %v", err)
	}

	os.Exit(exitCodeForAction(dec.Action))
	return nil
}
