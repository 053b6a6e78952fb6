package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestOpen_ListsEntries(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"SKILL.md":     "# a skill",
		"scripts/a.sh": "echo hi",
	})

	a, err := Open(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(a.Entries))
	}
	names := map[string]bool{}
	for _, e := range a.Entries {
		names[e.Name] = true
		if !e.ValidPath {
			t.Errorf("entry %q unexpectedly rejected", e.Name)
		}
	}
	if !names["SKILL.md"] || !names["scripts/a.sh"] {
		t.Fatalf("unexpected entry names: %+v", names)
	}
}

func TestOpen_RejectsTraversalPath(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"SKILL.md":    "clean",
		"../SKILL.md": "malicious",
	})

	a, err := Open(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawInvalid, sawValid bool
	for _, e := range a.Entries {
		if e.RawName == "../SKILL.md" {
			if e.ValidPath {
				t.Fatalf("traversal entry should have been rejected")
			}
			sawInvalid = true
		}
		if e.RawName == "SKILL.md" && e.ValidPath {
			sawValid = true
		}
	}
	if !sawInvalid || !sawValid {
		t.Fatalf("expected one invalid and one valid entry, entries=%+v", a.Entries)
	}
}

func TestExtract_StoredAndDeflate(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"SKILL.md": "hello world, this is a skill file with enough text to compress",
	})

	a, err := Open(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(a.Entries))
	}

	out, err := Extract(a, a.Entries[0], 1_000_000)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if string(out) != "hello world, this is a skill file with enough text to compress" {
		t.Fatalf("unexpected content: %q", out)
	}
}

func TestExtract_RespectsMaxBytes(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"big.txt": "0123456789",
	})
	a, err := Open(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Extract(a, a.Entries[0], 3)
	if err == nil {
		t.Fatal("expected error for entry exceeding maxBytes")
	}
}

func TestSelectForScanning_SkipsDirsAndOversized(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"SKILL.md":    "small file",
		"big.bin":     "0123456789",
		"scripts/a.sh": "echo hi",
	})
	a, err := Open(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	selected := SelectForScanning(a.Entries, 5, 1_000_000, 10)
	for _, e := range selected {
		if e.Name == "big.bin" {
			t.Fatalf("big.bin should have been skipped for exceeding maxEntryBytes")
		}
	}
}

func TestSelectForScanning_StopsAtMaxEntries(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"a.txt": "one",
		"b.txt": "two",
		"c.txt": "three",
	})
	a, err := Open(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	selected := SelectForScanning(a.Entries, 1_000_000, 1_000_000, 2)
	if len(selected) != 2 {
		t.Fatalf("expected 2 entries picked, got %d", len(selected))
	}
}

func TestLooksLikeArchive(t *testing.T) {
	raw := buildZip(t, map[string]string{"a.txt": "x"})
	if !LooksLikeArchive(raw) {
		t.Fatal("expected zip bytes to be detected as archive")
	}
	if LooksLikeArchive([]byte("# not a zip")) {
		t.Fatal("expected plain text to not be detected as archive")
	}
}
