// Package decision is the install-gate's decision composer (C10): it
// maps a scan's risk_score onto an install action, and composes the
// untrusted/trusted mode stance that the static and runtime gates run
// under. The mode-stance merge follows the same union-and-override shape
// the teacher's policy pack loader uses for layering policy packs onto a
// base policy, applied here to a small, fixed pair of built-in stances
// instead of arbitrary on-disk packs.
package decision

import (
	"fmt"

	"github.com/gzhole/clawguard/internal/mitigation"
	"github.com/gzhole/clawguard/internal/policy"
	"github.com/gzhole/clawguard/internal/rules"
)

const (
	ModeUntrusted = "untrusted"
	ModeTrusted   = "trusted"
)

// stance is the fixed set of overrides a mode applies over a loaded base
// policy. Values are exact per the install-gate's mode design: untrusted
// mode sandboxes every system/browser/workflow tool and denies raw exec
// outright; trusted mode lifts the sandbox and exec denial but still
// requires elevated-tool approval.
type stance struct {
	sandboxOnly              []string
	denylistAdd              []string
	denylistRemove           []string
	elevatedRequiresApproval bool
	thresholds               policy.Thresholds
}

var untrustedStance = stance{
	sandboxOnly:              []string{"system_*", "browser_*", "workflow_tool"},
	denylistAdd:              []string{"system_exec"},
	elevatedRequiresApproval: true,
	thresholds:               policy.Thresholds{ScanApproveAt: 30, ScanDenyAt: 60},
}

var trustedStance = stance{
	sandboxOnly:              nil,
	denylistRemove:           []string{"system_exec"},
	elevatedRequiresApproval: true,
	thresholds:               policy.Thresholds{ScanApproveAt: 40, ScanDenyAt: 80},
}

// ComposeModeStance overlays the requested mode's stance onto base. A
// requested "trusted" mode is honored only when trustStatus is actually
// "trusted" — otherwise it silently falls back to the untrusted stance
// and reports modeEffective="untrusted", so a caller can tell a trust
// claim was rejected rather than granted.
func ComposeModeStance(base policy.Policy, requestedMode, trustStatus string) (effective policy.Policy, modeEffective string) {
	st := untrustedStance
	modeEffective = ModeUntrusted
	if requestedMode == ModeTrusted && trustStatus == "trusted" {
		st = trustedStance
		modeEffective = ModeTrusted
	}

	effective = policy.ClonePolicy(base)
	effective.Tool.SandboxOnly = append([]string(nil), st.sandboxOnly...)
	for _, add := range st.denylistAdd {
		if !contains(effective.Tool.Denylist, add) {
			effective.Tool.Denylist = append(effective.Tool.Denylist, add)
		}
	}
	if len(st.denylistRemove) > 0 {
		effective.Tool.Denylist = removeAll(effective.Tool.Denylist, st.denylistRemove)
	}
	effective.Tool.ElevatedRequiresApproval = st.elevatedRequiresApproval
	effective.Thresholds = st.thresholds
	return effective, modeEffective
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeAll(list []string, remove []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !contains(remove, v) {
			out = append(out, v)
		}
	}
	return out
}

// Action names for the install decision, distinct from policy's tool-call
// action constants even though they share the same four strings — the two
// gates' decisions are independent structs and shouldn't import each
// other's constants.
const (
	ActionAllow         = "allow"
	ActionDeny          = "deny"
	ActionNeedsApproval = "needs_approval"
)

// MapRiskScore maps a scan's risk_score onto an install action using the
// effective policy's thresholds: >= scan_deny_at denies, >= scan_approve_at
// needs approval, otherwise allow.
func MapRiskScore(riskScore int, t policy.Thresholds) string {
	switch {
	case riskScore >= t.ScanDenyAt:
		return ActionDeny
	case riskScore >= t.ScanApproveAt:
		return ActionNeedsApproval
	default:
		return ActionAllow
	}
}

// Report is the install-gate's top-level decision: the composed action,
// why it was reached, the effective mode (which may differ from the
// mode requested, if a trusted claim was rejected), and suggested
// mitigations for a human reviewing the install.
type Report struct {
	APIVersion           int             `json:"api_version"`
	Action               string          `json:"action"`
	ModeRequested        string          `json:"mode_requested"`
	ModeEffective        string          `json:"mode_effective"`
	RiskScore            int             `json:"risk_score"`
	Reasons              []policy.Reason `json:"reasons"`
	SuggestedMitigations []string        `json:"suggested_mitigations,omitempty"`
	Findings             []rules.Finding `json:"findings"`
}

// Compose combines a scan's risk score with the requested mode and a
// bundle's trust status into the final install Report. It first
// composes the mode stance (which determines the thresholds in play),
// then maps the risk score through those thresholds.
func Compose(riskScore int, findings []rules.Finding, basePolicy policy.Policy, requestedMode, trustStatus string) Report {
	effective, modeEffective := ComposeModeStance(basePolicy, requestedMode, trustStatus)
	action := MapRiskScore(riskScore, effective.Thresholds)

	report := Report{
		APIVersion:    1,
		Action:        action,
		ModeRequested: requestedMode,
		ModeEffective: modeEffective,
		RiskScore:     riskScore,
		Findings:      findings,
	}

	switch action {
	case ActionDeny:
		report.Reasons = []policy.Reason{{ReasonCode: "scan_deny_at", Detail: fmt.Sprintf("risk_score %d >= scan_deny_at %d", riskScore, effective.Thresholds.ScanDenyAt)}}
		report.SuggestedMitigations = mitigation.For(ActionDeny, "scan_deny_at")
	case ActionNeedsApproval:
		report.Reasons = []policy.Reason{{ReasonCode: "scan_approve_at", Detail: fmt.Sprintf("risk_score %d >= scan_approve_at %d", riskScore, effective.Thresholds.ScanApproveAt)}}
		report.SuggestedMitigations = mitigation.For(ActionNeedsApproval, "scan_approve_at")
	}

	return report
}
