package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	p, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Thresholds.ScanDenyAt != DefaultPolicy().Thresholds.ScanDenyAt {
		t.Fatalf("expected default thresholds, got %+v", p.Thresholds)
	}
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("tool: [this is not valid: yaml structure"), 0o644); err != nil {
		t.Fatalf("failed to write test fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed policy file")
	}
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")

	original := DefaultPolicy()
	original.Tool.Denylist = []string{"system_exec"}
	original.Thresholds = Thresholds{ScanApproveAt: 25, ScanDenyAt: 55}

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tool.Denylist) != 1 || loaded.Tool.Denylist[0] != "system_exec" {
		t.Fatalf("denylist did not round-trip: %+v", loaded.Tool.Denylist)
	}
	if loaded.Thresholds != original.Thresholds {
		t.Fatalf("thresholds did not round-trip: got %+v want %+v", loaded.Thresholds, original.Thresholds)
	}
}
