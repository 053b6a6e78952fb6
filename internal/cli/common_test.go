package cli

import (
	"testing"

	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/decision"
	"github.com/gzhole/clawguard/internal/policy"
)

func TestExitCodeForAction(t *testing.T) {
	cases := []struct {
		action string
		want   int
	}{
		{decision.ActionAllow, 0},
		{decision.ActionDeny, 2},
		{decision.ActionNeedsApproval, 3},
		{policy.ActionSandboxOnly, 3},
		{"something_unexpected", 1},
	}
	for _, tc := range cases {
		if got := exitCodeForAction(tc.action); got != tc.want {
			t.Errorf("exitCodeForAction(%q) = %d, want %d", tc.action, got, tc.want)
		}
	}
}

func TestLimitFlagsResolve_ZeroValuesKeepDefaults(t *testing.T) {
	var f limitFlags
	got := f.resolve()
	want := config.DefaultLimits().Clamp()
	if got != want {
		t.Fatalf("expected defaults %+v, got %+v", want, got)
	}
}

func TestLimitFlagsResolve_OverridesApplyAndClamp(t *testing.T) {
	f := limitFlags{
		timeoutMs:     500,          // below the 1000 min, should clamp up
		maxFiles:      5,
		maxTotalBytes: 1_000_000,
		maxZipBytes:   500_000_000, // above the 200M max, should clamp down
	}
	got := f.resolve()
	if got.TimeoutMs != 1000 {
		t.Errorf("expected timeout clamped to 1000, got %d", got.TimeoutMs)
	}
	if got.MaxFiles != 5 {
		t.Errorf("expected max files 5, got %d", got.MaxFiles)
	}
	if got.MaxTotalBytes != 1_000_000 {
		t.Errorf("expected max total bytes 1000000, got %d", got.MaxTotalBytes)
	}
	if got.MaxZipBytes != 200_000_000 {
		t.Errorf("expected max zip bytes clamped to 200000000, got %d", got.MaxZipBytes)
	}
}
