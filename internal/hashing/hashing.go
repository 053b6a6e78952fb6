// Package hashing computes the three content-addressed hashes the rest
// of the system keys off: a bundle's content hash and manifest hash, and
// a policy's hash. These are the trust-pin keys and the receipt keys —
// nothing about their format is negotiable, since a different ingest run
// producing a different hash for byte-identical content would silently
// break trust pinning.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/gzhole/clawguard/internal/policy"
	"github.com/gzhole/clawguard/internal/skill"
)

// ContentSHA256 hashes a bundle's file contents: sorted by path, each
// file contributing "path\n" followed by its bytes followed by "\n".
// Two bundles with the same set of (path, content) pairs hash identically
// regardless of the order files were ingested in.
func ContentSHA256(bundle *skill.Bundle) string {
	files := append([]skill.File(nil), bundle.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "%s\n", f.Path)
		h.Write([]byte(f.Content))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestSHA256 hashes a bundle's full manifest: sorted by path, each
// entry contributing its path, size, content hash, and boolean flags in
// a fixed field order. Unlike ContentSHA256, this captures entries that
// were skipped or truncated — two bundles that ingested the same source
// under different limits can have matching content hashes but differing
// manifest hashes.
func ManifestSHA256(bundle *skill.Bundle) string {
	entries := append([]skill.ManifestEntry(nil), bundle.Manifest...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s\n", e.Path)
		fmt.Fprintf(h, "%d\n", e.SizeBytes)
		fmt.Fprintf(h, "%s\n", e.ContentSHA256)
		fmt.Fprintf(h, "%s\n", boolStr(e.Partial))
		fmt.Fprintf(h, "%s\n", boolStr(e.IsBinary))
		fmt.Fprintf(h, "%s\n", boolStr(e.IsExecutable))
		fmt.Fprintf(h, "%s\n", boolStr(e.IsSymlink))
		fmt.Fprintf(h, "%s\n", boolStr(e.IsArchive))
		fmt.Fprintf(h, "%s\n", string(e.SkippedReason))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func boolStr(b bool) string {
	return strconv.FormatBool(b)
}

// PolicySHA256 hashes the canonical JSON serialization of a Policy.
// json.Marshal on a struct with fixed field order is deterministic for a
// fixed Go version, which is what "canonical" means here — the struct's
// field declaration order, not a sorted-keys re-encoding.
func PolicySHA256(p policy.Policy) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
