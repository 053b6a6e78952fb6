package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/skill"
)

func testLimits() config.Limits {
	l := config.DefaultLimits()
	l.MaxFiles = 50
	l.MaxTotalBytes = 1_000_000
	return l
}

func TestBuildSkillBundleFromSource_Directory(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "SKILL.md"), "# a skill\n\nDoes stuff.")
	mustWriteFile(t, filepath.Join(dir, "scripts", "run.sh"), "echo hi")
	if err := os.Mkdir(filepath.Join(dir, "node_modules"), 0o755); err != nil {
		t.Fatalf("mkdir node_modules: %v", err)
	}
	mustWriteFile(t, filepath.Join(dir, "node_modules", "junk.js"), "skip me")
	mustWriteFile(t, filepath.Join(dir, "logo.png"), "\x89PNG\x00\x00\x00binarydata\x01\x02")

	bundle, err := BuildSkillBundleFromSource(context.Background(), dir, testLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Entrypoint != "SKILL.md" {
		t.Errorf("expected entrypoint SKILL.md, got %q", bundle.Entrypoint)
	}
	if _, ok := bundle.FileByPath("SKILL.md"); !ok {
		t.Error("expected SKILL.md loaded as text")
	}
	if _, ok := bundle.FileByPath("scripts/run.sh"); !ok {
		t.Error("expected scripts/run.sh loaded as text")
	}
	for _, f := range bundle.Files {
		if f.Path == "node_modules/junk.js" {
			t.Error("node_modules contents should never be walked")
		}
	}
	var sawBinary bool
	for _, m := range bundle.Manifest {
		if m.Path == "logo.png" {
			sawBinary = true
			if !m.IsBinary || m.SkippedReason != skill.SkippedBinary {
				t.Errorf("expected logo.png marked binary_skipped, got %+v", m)
			}
		}
	}
	if !sawBinary {
		t.Error("expected manifest entry for logo.png")
	}
}

func TestBuildSkillBundleFromSource_ArchiveFile(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "skill.zip")
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("SKILL.md")
	fw.Write([]byte("# zipped skill"))
	fw2, _ := w.Create("../SKILL.md")
	fw2.Write([]byte("malicious"))
	w.Close()
	mustWriteFile(t, zipPath, buf.String())

	bundle, err := BuildSkillBundleFromSource(context.Background(), zipPath, testLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Files) != 1 {
		t.Fatalf("expected exactly 1 loaded file, got %d: %+v", len(bundle.Files), bundle.Files)
	}
	if bundle.Files[0].Path != "SKILL.md" {
		t.Errorf("expected SKILL.md, got %q", bundle.Files[0].Path)
	}

	var sawInvalid bool
	for _, m := range bundle.Manifest {
		if m.RawPath == "../SKILL.md" {
			sawInvalid = true
			if m.SkippedReason != skill.SkippedInvalidPath {
				t.Errorf("expected invalid_path, got %q", m.SkippedReason)
			}
		}
	}
	if !sawInvalid {
		t.Error("expected manifest entry for traversal path")
	}
}

func TestBuildSkillBundleFromSource_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		w.Write([]byte("# remote skill"))
	}))
	defer srv.Close()

	bundle, err := BuildSkillBundleFromSource(context.Background(), srv.URL, testLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, ok := bundle.FileByPath("SKILL.md")
	if !ok {
		t.Fatal("expected a synthesized SKILL.md from the remote body")
	}
	if content != "# remote skill" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestBuildSkillBundleFromSource_MaxFilesStops(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		mustWriteFile(t, filepath.Join(dir, "f"+string(rune('a'+i))+".md"), "content")
	}
	limits := testLimits()
	limits.MaxFiles = 3

	bundle, err := BuildSkillBundleFromSource(context.Background(), dir, limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Manifest) > 3 {
		t.Errorf("expected manifest capped at 3, got %d", len(bundle.Manifest))
	}
	var sawWarning bool
	for _, w := range bundle.IngestWarnings {
		if w == "maxFiles reached (3)" {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Errorf("expected maxFiles warning, got %v", bundle.IngestWarnings)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
