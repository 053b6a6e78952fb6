// Package ingest turns an arbitrary skill source — a directory, a local
// archive file, or a URL — into a bounded, read-only skill.Bundle. Nothing
// here executes or interprets the content it reads; it only classifies,
// caps, and copies bytes into memory.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gzhole/clawguard/internal/archive"
	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/skill"
	"github.com/gzhole/clawguard/internal/transport"
)

// Error reports a hard ingest failure: one that leaves no usable bundle at
// all, as opposed to a soft skip that's recorded in the manifest instead.
type Error struct {
	Cause string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest: %s", e.Cause)
}

var textExtensions = map[string]bool{
	".md": true, ".markdown": true, ".txt": true,
	".sh": true, ".bash": true, ".zsh": true, ".ps1": true,
	".py": true, ".js": true, ".mjs": true, ".ts": true,
	".json": true, ".toml": true, ".yaml": true, ".yml": true,
}

var skipDirNames = map[string]bool{
	".git": true, "node_modules": true, "dist": true, "build": true, ".pnpm": true,
}

const maxWalkDepth = 8

// BuildSkillBundleFromSource dispatches on raw's literal prefix: http(s)://
// URLs are fetched via internal/transport; anything else is treated as a
// filesystem path. A path resolving to a regular file is read as an
// archive; a directory is walked.
func BuildSkillBundleFromSource(ctx context.Context, raw string, limits config.Limits) (*skill.Bundle, error) {
	b := &builder{limits: limits}

	switch {
	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		return b.fromURL(ctx, raw)
	default:
		return b.fromFilesystem(raw)
	}
}

type builder struct {
	limits     config.Limits
	files      []skill.File
	manifest   []skill.ManifestEntry
	warnings   []string
	totalBytes int64
	stopped    bool
}

func (b *builder) addWarning(format string, args ...interface{}) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// appendManifest reports whether the entry was recorded. Once the manifest
// hits maxFiles it stops accepting entries and the caller should halt.
func (b *builder) appendManifest(e skill.ManifestEntry) bool {
	if len(b.manifest) >= b.limits.MaxFiles {
		if !b.stopped {
			b.addWarning("maxFiles reached (%d)", b.limits.MaxFiles)
			b.stopped = true
		}
		return false
	}
	b.manifest = append(b.manifest, e)
	return true
}

func (b *builder) bundle(id string, source skill.Source) *skill.Bundle {
	entrypoint := ""
	if _, ok := findFile(b.files, "SKILL.md"); ok {
		entrypoint = "SKILL.md"
	}
	return &skill.Bundle{
		ID:             id,
		Source:         source,
		Entrypoint:     entrypoint,
		Files:          b.files,
		Manifest:       b.manifest,
		IngestWarnings: b.warnings,
	}
}

func findFile(files []skill.File, p string) (skill.File, bool) {
	for _, f := range files {
		if f.Path == p {
			return f, true
		}
	}
	return skill.File{}, false
}

// fromURL fetches raw via the bounded transport, then treats the body as an
// archive (content-type containing "zip" or the PK\x03\x04 magic), or — if
// it isn't binary — as a single SKILL.md.
func (b *builder) fromURL(ctx context.Context, raw string) (*skill.Bundle, error) {
	res, err := transport.Fetch(ctx, raw, transport.Options{
		MaxBytes: b.limits.MaxZipBytes,
		Timeout:  durationFromMs(b.limits.TimeoutMs),
		Retries:  b.limits.Retries,
	})
	if err != nil {
		return nil, &Error{Cause: fmt.Sprintf("fetch %s: %v", raw, err)}
	}

	id := path.Base(strings.TrimSuffix(raw, "/"))
	if id == "" || id == "." || id == "/" {
		id = raw
	}

	if strings.Contains(strings.ToLower(res.ContentType), "zip") || archive.LooksLikeArchive(res.Bytes) {
		if err := b.ingestArchive(res.Bytes); err != nil {
			return nil, err
		}
		return b.bundle(id, skill.SourceRegistry), nil
	}

	if looksBinary(res.Bytes) {
		return nil, &Error{Cause: fmt.Sprintf("remote body from %s is neither an archive nor text", raw)}
	}

	b.addTextFile("SKILL.md", res.Bytes, skill.ManifestFromDir)
	return b.bundle(id, skill.SourceRegistry), nil
}

// fromFilesystem treats a regular file as an archive and a directory as a
// tree to walk.
func (b *builder) fromFilesystem(p string) (*skill.Bundle, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, &Error{Cause: fmt.Sprintf("stat %s: %v", p, err)}
	}

	id := filepath.Base(strings.TrimSuffix(p, string(filepath.Separator)))

	if info.Mode().IsRegular() {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, &Error{Cause: fmt.Sprintf("read %s: %v", p, err)}
		}
		if int64(len(raw)) > b.limits.MaxZipBytes {
			return nil, &Error{Cause: fmt.Sprintf("%s exceeds maxZipBytes (%d)", p, b.limits.MaxZipBytes)}
		}
		if err := b.ingestArchive(raw); err != nil {
			return nil, err
		}
		return b.bundle(id, skill.SourceLocal), nil
	}

	if err := b.walkDir(p, ""); err != nil {
		return nil, &Error{Cause: fmt.Sprintf("walk %s: %v", p, err)}
	}
	return b.bundle(id, skill.SourceLocal), nil
}

// addTextFile records a loaded text file and its matching manifest entry,
// enforcing the aggregate maxTotalBytes cap (I2).
func (b *builder) addTextFile(relPath string, content []byte, kind skill.ManifestSourceKind) {
	size := int64(len(content))
	if b.totalBytes+size > b.limits.MaxTotalBytes {
		if !b.stopped {
			b.addWarning("maxTotalBytes reached (%d)", b.limits.MaxTotalBytes)
		}
		b.stopped = true
		return
	}
	sum := sha256.Sum256(content)
	entry := skill.ManifestEntry{Path: relPath, SizeBytes: size, ContentSHA256: hex.EncodeToString(sum[:]), SourceKind: kind}
	if !b.appendManifest(entry) {
		return
	}
	b.totalBytes += size
	b.files = append(b.files, skill.File{Path: relPath, Content: string(content)})
}

func durationFromMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// walkDir implements the depth-first filesystem walker: depth cap 8,
// skip-listed directory names, symlinks recorded but never followed, and a
// hard stop (with warning) once maxFiles is reached.
func (b *builder) walkDir(absDir, relDir string) error {
	return b.walkDirRec(absDir, relDir, 0)
}

func (b *builder) walkDirRec(absDir, relDir string, depth int) error {
	if b.stopped {
		return nil
	}
	if depth > maxWalkDepth {
		return nil
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if b.stopped {
			return nil
		}
		name := entry.Name()
		relPath := name
		if relDir != "" {
			relPath = relDir + "/" + name
		}
		absPath := filepath.Join(absDir, name)

		// Symlinks are checked before directory-ness: a symlink to a
		// directory must never be followed.
		lstat, statErr := os.Lstat(absPath)
		if statErr == nil && lstat.Mode()&os.ModeSymlink != 0 {
			b.appendManifest(skill.ManifestEntry{
				Path: relPath, IsSymlink: true,
				SourceKind: skill.ManifestFromDir, SkippedReason: skill.SkippedSymlink,
			})
			continue
		}

		if entry.IsDir() {
			if skipDirNames[name] {
				continue
			}
			if err := b.walkDirRec(absPath, relPath, depth+1); err != nil {
				return err
			}
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		size := info.Size()
		isExec := info.Mode()&0o111 != 0
		ext := strings.ToLower(filepath.Ext(name))

		if size > b.limits.MaxFileBytes {
			b.appendManifest(skill.ManifestEntry{
				Path: relPath, SizeBytes: size, IsExecutable: isExec,
				SourceKind: skill.ManifestFromDir, SkippedReason: skill.SkippedTooLarge,
			})
			b.addWarning("skipped %s: exceeds maxFileBytes (%d)", relPath, b.limits.MaxFileBytes)
			continue
		}

		if !textExtensions[ext] {
			b.appendManifest(skill.ManifestEntry{
				Path: relPath, SizeBytes: size, IsExecutable: isExec, IsBinary: true,
				SourceKind: skill.ManifestFromDir, SkippedReason: skill.SkippedBinary,
			})
			continue
		}

		data, readErr := os.ReadFile(absPath)
		if readErr != nil {
			b.addWarning("skipped %s: %v", relPath, readErr)
			continue
		}
		if looksBinary(data) {
			b.appendManifest(skill.ManifestEntry{
				Path: relPath, SizeBytes: size, IsExecutable: isExec, IsBinary: true,
				SourceKind: skill.ManifestFromDir, SkippedReason: skill.SkippedBinary,
			})
			continue
		}

		if b.totalBytes+size > b.limits.MaxTotalBytes {
			b.addWarning("maxTotalBytes reached (%d)", b.limits.MaxTotalBytes)
			b.stopped = true
			return nil
		}
		if !b.appendManifest(skill.ManifestEntry{
			Path: relPath, SizeBytes: size, IsExecutable: isExec, SourceKind: skill.ManifestFromDir,
		}) {
			return nil
		}
		b.totalBytes += size
		b.files = append(b.files, skill.File{Path: relPath, Content: string(data)})
	}
	return nil
}

// ingestArchive records every central-directory entry in the manifest
// (including diagnostics for invalid paths, directories, and symlinks),
// then extracts the entries archive.SelectForScanning picks, binary-sniffs
// each buffer, and drops the ones that sniff as binary.
func (b *builder) ingestArchive(raw []byte) error {
	a, err := archive.Open(raw)
	if err != nil {
		return &Error{Cause: err.Error()}
	}

	var candidates []archive.Entry
	for _, e := range a.Entries {
		switch {
		case !e.ValidPath:
			b.appendManifest(skill.ManifestEntry{
				RawPath: e.RawName, SourceKind: skill.ManifestFromZip, SkippedReason: skill.SkippedInvalidPath,
			})
		case e.IsDirectory:
			b.appendManifest(skill.ManifestEntry{
				Path: e.Name, IsDirectory: true, SourceKind: skill.ManifestFromZip,
			})
		case e.IsSymlink():
			b.appendManifest(skill.ManifestEntry{
				Path: e.Name, IsSymlink: true, SizeBytes: int64(e.UncompressedSize),
				SourceKind: skill.ManifestFromZip, SkippedReason: skill.SkippedSymlink,
			})
		case int64(e.UncompressedSize) > b.limits.MaxZipEntryBytes:
			b.appendManifest(skill.ManifestEntry{
				Path: e.Name, SizeBytes: int64(e.UncompressedSize), IsExecutable: e.IsExecutable(),
				SourceKind: skill.ManifestFromZip, SkippedReason: skill.SkippedTooLarge,
			})
			b.addWarning("skipped %s: exceeds maxZipEntryBytes (%d)", e.Name, b.limits.MaxZipEntryBytes)
		default:
			candidates = append(candidates, e)
		}
		if b.stopped {
			break
		}
	}
	if b.stopped {
		return nil
	}

	remainingFiles := b.limits.MaxFiles - len(b.manifest)
	if remainingFiles < 0 {
		remainingFiles = 0
	}
	remainingBytes := b.limits.MaxTotalBytes - b.totalBytes
	if remainingBytes < 0 {
		remainingBytes = 0
	}
	selected := archive.SelectForScanning(candidates, b.limits.MaxZipEntryBytes, remainingBytes, remainingFiles)
	selectedSet := map[uint32]bool{}
	for _, e := range selected {
		selectedSet[e.LocalHeaderOffset] = true
	}

	for _, e := range candidates {
		if b.stopped {
			return nil
		}
		if !selectedSet[e.LocalHeaderOffset] {
			b.appendManifest(skill.ManifestEntry{
				Path: e.Name, SizeBytes: int64(e.UncompressedSize), IsExecutable: e.IsExecutable(),
				SourceKind: skill.ManifestFromZip, SkippedReason: skill.SkippedTooLarge,
			})
			continue
		}

		data, extractErr := archive.Extract(a, e, b.limits.MaxZipEntryBytes)
		if extractErr != nil {
			b.appendManifest(skill.ManifestEntry{
				Path: e.Name, SizeBytes: int64(e.UncompressedSize), IsExecutable: e.IsExecutable(),
				SourceKind: skill.ManifestFromZip, SkippedReason: skill.SkippedUnsupportedAlg,
			})
			b.addWarning("skipped %s: %v", e.Name, extractErr)
			continue
		}

		if looksBinary(data) {
			b.appendManifest(skill.ManifestEntry{
				Path: e.Name, SizeBytes: int64(e.UncompressedSize), IsExecutable: e.IsExecutable(), IsBinary: true,
				SourceKind: skill.ManifestFromZip, SkippedReason: skill.SkippedBinary,
			})
			continue
		}

		if b.totalBytes+int64(len(data)) > b.limits.MaxTotalBytes {
			b.addWarning("maxTotalBytes reached (%d)", b.limits.MaxTotalBytes)
			b.stopped = true
			return nil
		}
		if !b.appendManifest(skill.ManifestEntry{
			Path: e.Name, SizeBytes: int64(e.UncompressedSize), IsExecutable: e.IsExecutable(), SourceKind: skill.ManifestFromZip,
		}) {
			return nil
		}
		b.totalBytes += int64(len(data))
		b.files = append(b.files, skill.File{Path: e.Name, Content: string(data)})
	}
	return nil
}

// looksBinary sniffs up to the first 4 KiB: any NUL byte, or more than 20%
// of bytes in the control range (<9 or (>13 and <32)), marks it binary.
func looksBinary(data []byte) bool {
	if len(data) > 4096 {
		data = data[:4096]
	}
	if len(data) == 0 {
		return false
	}
	control := 0
	for _, c := range data {
		if c == 0 {
			return true
		}
		if c < 9 || (c > 13 && c < 32) {
			control++
		}
	}
	return float64(control)/float64(len(data)) > 0.2
}
