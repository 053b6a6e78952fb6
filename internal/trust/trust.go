// Package trust implements the trust-pin store (C9): an append-only,
// deduplicated record of bundles a human has explicitly approved, keyed
// by content hash. The store is a small JSON file, not a database — load,
// modify, atomic-rename-write, matching the same temp-file-then-rename
// pattern the teacher uses for its own on-disk state.
package trust

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/gzhole/clawguard/internal/hashing"
	"github.com/gzhole/clawguard/internal/skill"
)

const (
	storeVersion = 1
	maxRecords   = 5000
)

// Record pins a single approved bundle by its content hash.
type Record struct {
	ContentSHA256  string `json:"content_sha256"`
	ManifestSHA256 string `json:"manifest_sha256,omitempty"`
	SourceInput    string `json:"source_input"`
	CreatedAt      string `json:"created_at"`
}

// Store is the full on-disk trust-pin file.
type Store struct {
	Version int      `json:"version"`
	Records []Record `json:"records"`
}

// Load reads the trust store from path. A missing file is not an error —
// it returns an empty, version-1 store, the same as a malformed or
// version-mismatched file does: trust data is advisory, never load-bearing
// enough to crash the gate over.
func Load(path string) (Store, error) {
	empty := Store{Version: storeVersion}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return empty, err
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return empty, nil
	}
	if s.Version != storeVersion {
		return empty, nil
	}
	return s, nil
}

// Add appends r to the store at path, deduplicating by ContentSHA256
// (the newest record for a given hash wins and moves to the front),
// capping the store at maxRecords, and writing atomically: a temp file
// in the same directory, then a rename over the target.
func Add(path string, r Record) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	s.Version = storeVersion

	filtered := make([]Record, 0, len(s.Records)+1)
	filtered = append(filtered, r)
	for _, existing := range s.Records {
		if existing.ContentSHA256 == r.ContentSHA256 {
			continue
		}
		filtered = append(filtered, existing)
	}
	if len(filtered) > maxRecords {
		filtered = filtered[:maxRecords]
	}
	s.Records = filtered

	return writeAtomic(path, s)
}

// RemoveByHash drops every record matching contentSHA256 and writes the
// result atomically.
func RemoveByHash(path, contentSHA256 string) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	s.Version = storeVersion

	kept := make([]Record, 0, len(s.Records))
	for _, r := range s.Records {
		if r.ContentSHA256 == contentSHA256 {
			continue
		}
		kept = append(kept, r)
	}
	s.Records = kept
	return writeAtomic(path, s)
}

// List returns the store's records, newest first (the order Add maintains).
func List(path string) ([]Record, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	out := append([]Record(nil), s.Records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// Status is the outcome of checking a bundle against a trust store.
type Status string

const (
	StatusTrusted   Status = "trusted"
	StatusUntrusted Status = "untrusted"
)

// StatusForBundle computes the bundle's content and manifest hashes and
// checks them against s. A record matches iff content hashes are equal
// and either the record carries no manifest hash or both manifest hashes
// are equal — so a pin added before manifest hashing existed (or without
// one) still honors a bundle whose content is unchanged.
func StatusForBundle(bundle *skill.Bundle, s Store) Status {
	contentHash := hashing.ContentSHA256(bundle)
	manifestHash := hashing.ManifestSHA256(bundle)

	for _, r := range s.Records {
		if r.ContentSHA256 != contentHash {
			continue
		}
		if r.ManifestSHA256 == "" || r.ManifestSHA256 == manifestHash {
			return StatusTrusted
		}
	}
	return StatusUntrusted
}

func writeAtomic(path string, s Store) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".trust-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
