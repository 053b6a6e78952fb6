package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/gzhole/clawguard/internal/rules"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestRunRulesList_PrintsFullPack(t *testing.T) {
	out := captureStdout(t, func() {
		if err := runRulesList(nil, nil); err != nil {
			t.Fatalf("runRulesList returned error: %v", err)
		}
	})

	var pack rules.RulePack
	if err := json.Unmarshal([]byte(out), &pack); err != nil {
		t.Fatalf("output was not valid JSON: %v\n%s", err, out)
	}
	if pack.PackID != rules.DefaultPack.PackID {
		t.Fatalf("expected pack_id %q, got %q", rules.DefaultPack.PackID, pack.PackID)
	}
	if len(pack.Rules) != len(rules.DefaultPack.Rules) {
		t.Fatalf("expected %d rules, got %d", len(rules.DefaultPack.Rules), len(pack.Rules))
	}
}

func TestRunRulesExplain_KnownRuleIncludesCategory(t *testing.T) {
	out := captureStdout(t, func() {
		if err := runRulesExplain(nil, []string{"R001"}); err != nil {
			t.Fatalf("runRulesExplain returned error: %v", err)
		}
	})

	var result struct {
		ID       string `json:"id"`
		Category struct {
			ID string `json:"id"`
		} `json:"category"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output was not valid JSON: %v\n%s", err, out)
	}
	if result.ID != "R001" {
		t.Fatalf("expected rule R001, got %q", result.ID)
	}
	if result.Category.ID != "credential-exposure" {
		t.Fatalf("expected category credential-exposure, got %q", result.Category.ID)
	}
}
