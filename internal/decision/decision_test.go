package decision

import (
	"testing"

	"github.com/gzhole/clawguard/internal/policy"
)

func TestComposeModeStance_UntrustedByDefault(t *testing.T) {
	base := policy.DefaultPolicy()
	effective, mode := ComposeModeStance(base, ModeUntrusted, "unknown")
	if mode != ModeUntrusted {
		t.Fatalf("expected untrusted, got %s", mode)
	}
	if !contains(effective.Tool.Denylist, "system_exec") {
		t.Fatalf("expected system_exec in denylist under untrusted stance, got %v", effective.Tool.Denylist)
	}
	if effective.Thresholds.ScanDenyAt != 60 || effective.Thresholds.ScanApproveAt != 30 {
		t.Fatalf("unexpected untrusted thresholds: %+v", effective.Thresholds)
	}
}

func TestComposeModeStance_TrustedRequiresActualTrust(t *testing.T) {
	base := policy.DefaultPolicy()
	effective, mode := ComposeModeStance(base, ModeTrusted, "untrusted")
	if mode != ModeUntrusted {
		t.Fatalf("expected fallback to untrusted when trust status isn't trusted, got %s", mode)
	}
	if !contains(effective.Tool.Denylist, "system_exec") {
		t.Fatalf("expected untrusted stance to still deny system_exec")
	}
}

func TestComposeModeStance_TrustedHonoredWhenActuallyTrusted(t *testing.T) {
	base := policy.DefaultPolicy()
	base.Tool.Denylist = []string{"system_exec"}
	effective, mode := ComposeModeStance(base, ModeTrusted, "trusted")
	if mode != ModeTrusted {
		t.Fatalf("expected trusted mode honored, got %s", mode)
	}
	if contains(effective.Tool.Denylist, "system_exec") {
		t.Fatalf("expected system_exec removed from denylist under trusted stance, got %v", effective.Tool.Denylist)
	}
	if len(effective.Tool.SandboxOnly) != 0 {
		t.Fatalf("expected sandbox_only cleared under trusted stance, got %v", effective.Tool.SandboxOnly)
	}
}

func TestMapRiskScore(t *testing.T) {
	th := policy.Thresholds{ScanApproveAt: 30, ScanDenyAt: 60}
	cases := []struct {
		score int
		want  string
	}{
		{0, ActionAllow},
		{29, ActionAllow},
		{30, ActionNeedsApproval},
		{59, ActionNeedsApproval},
		{60, ActionDeny},
		{100, ActionDeny},
	}
	for _, c := range cases {
		if got := MapRiskScore(c.score, th); got != c.want {
			t.Errorf("MapRiskScore(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestCompose_DenyReportIncludesMitigations(t *testing.T) {
	report := Compose(90, nil, policy.DefaultPolicy(), ModeUntrusted, "unknown")
	if report.Action != ActionDeny {
		t.Fatalf("expected deny, got %+v", report)
	}
	if len(report.SuggestedMitigations) == 0 {
		t.Fatalf("expected suggested mitigations on a deny report")
	}
}
