package trust

import (
	"path/filepath"
	"testing"

	"github.com/gzhole/clawguard/internal/hashing"
	"github.com/gzhole/clawguard/internal/skill"
)

func TestLoad_MissingFileIsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Version != storeVersion || len(s.Records) != 0 {
		t.Fatalf("expected empty v%d store, got %+v", storeVersion, s)
	}
}

func TestAdd_DedupesByContentHashNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.json")

	if err := Add(path, Record{ContentSHA256: "aaa", SourceInput: "first", CreatedAt: "2026-01-01T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if err := Add(path, Record{ContentSHA256: "bbb", SourceInput: "second", CreatedAt: "2026-01-02T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if err := Add(path, Record{ContentSHA256: "aaa", SourceInput: "first-reapproved", CreatedAt: "2026-01-03T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Records) != 2 {
		t.Fatalf("expected 2 deduped records, got %d: %+v", len(s.Records), s.Records)
	}
	if s.Records[0].ContentSHA256 != "aaa" || s.Records[0].SourceInput != "first-reapproved" {
		t.Fatalf("expected the re-added record to be newest-first, got %+v", s.Records[0])
	}
}

func TestRemoveByHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.json")
	Add(path, Record{ContentSHA256: "aaa", CreatedAt: "2026-01-01T00:00:00Z"})
	Add(path, Record{ContentSHA256: "bbb", CreatedAt: "2026-01-02T00:00:00Z"})

	if err := RemoveByHash(path, "aaa"); err != nil {
		t.Fatal(err)
	}
	s, _ := Load(path)
	if len(s.Records) != 1 || s.Records[0].ContentSHA256 != "bbb" {
		t.Fatalf("expected only bbb to remain, got %+v", s.Records)
	}
}

func TestStatusForBundle_TrustedAfterAddUntrustedAfterByteChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.json")
	bundle := &skill.Bundle{Files: []skill.File{{Path: "SKILL.md", Content: "hello"}}}

	s, _ := Load(path)
	if StatusForBundle(bundle, s) != StatusUntrusted {
		t.Fatal("expected untrusted before any pin is added")
	}

	contentHash := hashing.ContentSHA256(bundle)
	Add(path, Record{ContentSHA256: contentHash, CreatedAt: "2026-01-01T00:00:00Z"})

	s, _ = Load(path)
	if StatusForBundle(bundle, s) != StatusTrusted {
		t.Fatal("expected trusted after pinning the bundle's content hash")
	}

	changed := &skill.Bundle{Files: []skill.File{{Path: "SKILL.md", Content: "hellp"}}}
	if StatusForBundle(changed, s) != StatusUntrusted {
		t.Fatal("expected untrusted once a byte of the bundle's content changes")
	}
}
