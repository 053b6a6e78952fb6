// Package archive implements a memory-only pkzip reader: just enough of the
// format to list entries, sanitize their names, and extract a capped buffer
// for stored or raw-deflate entries. It never shells out to unzip and never
// writes to disk.
package archive

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Error wraps a failure to parse or extract an archive.
type Error struct {
	Cause string
}

func (e *Error) Error() string {
	return fmt.Sprintf("archive: %s", e.Cause)
}

const (
	eocdSignature       = 0x06054b50
	centralDirSignature = 0x02014b50
	localHeaderSignature = 0x04034b50

	eocdMinSize   = 22
	maxEOCDScan   = eocdMinSize + 65535

	methodStored  = 0
	methodDeflate = 8

	unixFileTypeMask = 0xf000
	unixFileTypeSymlink = 0xa000 // 0o120000
	unixExecBits        = 0o111
)

// Entry describes one record in an archive's central directory.
type Entry struct {
	Name               string // sanitized, forward-slash, never absolute or traversing
	RawName            string // original name as stored in the archive
	CompressedSize     uint32
	UncompressedSize   uint32
	CompressionMethod  uint16
	LocalHeaderOffset  uint32
	ExternalAttrs      uint32
	IsDirectory        bool
	ValidPath          bool // false when Name was rejected by sanitization
}

// IsSymlink reports whether the entry's Unix mode bits mark it a symlink.
func (e Entry) IsSymlink() bool {
	mode := e.ExternalAttrs >> 16
	return mode&unixFileTypeMask == unixFileTypeSymlink
}

// IsExecutable reports whether any Unix executable bit is set.
func (e Entry) IsExecutable() bool {
	mode := e.ExternalAttrs >> 16
	return mode&unixExecBits != 0
}

// Archive is a parsed, in-memory pkzip central directory plus the raw bytes
// needed to later extract entries.
type Archive struct {
	raw     []byte
	Entries []Entry
}

// Open locates the end-of-central-directory record and parses every central
// directory entry. It never reads local file headers eagerly — that happens
// on demand in Extract.
func Open(raw []byte) (*Archive, error) {
	eocdOffset, err := findEOCD(raw)
	if err != nil {
		return nil, err
	}

	eocd := raw[eocdOffset:]
	if len(eocd) < eocdMinSize {
		return nil, &Error{Cause: "truncated end-of-central-directory record"}
	}

	entryCount := binary.LittleEndian.Uint16(eocd[10:12])
	cdSize := binary.LittleEndian.Uint32(eocd[12:16])
	cdOffset := binary.LittleEndian.Uint32(eocd[16:20])

	if int64(cdOffset)+int64(cdSize) > int64(len(raw)) {
		return nil, &Error{Cause: "central directory extends past archive end"}
	}

	entries := make([]Entry, 0, entryCount)
	cursor := int64(cdOffset)
	cdEnd := int64(cdOffset) + int64(cdSize)

	for i := 0; i < int(entryCount); i++ {
		if cursor+46 > cdEnd || cursor+46 > int64(len(raw)) {
			return nil, &Error{Cause: "truncated central directory record"}
		}
		rec := raw[cursor:]
		sig := binary.LittleEndian.Uint32(rec[0:4])
		if sig != centralDirSignature {
			return nil, &Error{Cause: fmt.Sprintf("bad central directory signature at offset %d", cursor)}
		}

		method := binary.LittleEndian.Uint16(rec[10:12])
		compressedSize := binary.LittleEndian.Uint32(rec[20:24])
		uncompressedSize := binary.LittleEndian.Uint32(rec[24:28])
		nameLen := binary.LittleEndian.Uint16(rec[28:30])
		extraLen := binary.LittleEndian.Uint16(rec[30:32])
		commentLen := binary.LittleEndian.Uint16(rec[32:34])
		externalAttrs := binary.LittleEndian.Uint32(rec[38:42])
		localHeaderOffset := binary.LittleEndian.Uint32(rec[42:46])

		nameStart := cursor + 46
		nameEnd := nameStart + int64(nameLen)
		if nameEnd > cdEnd || nameEnd > int64(len(raw)) {
			return nil, &Error{Cause: "truncated central directory file name"}
		}
		rawName := string(raw[nameStart:nameEnd])

		sanitized, ok := sanitizeName(rawName)
		isDir := strings.HasSuffix(rawName, "/")

		entries = append(entries, Entry{
			Name:              sanitized,
			RawName:           rawName,
			CompressedSize:    compressedSize,
			UncompressedSize:  uncompressedSize,
			CompressionMethod: method,
			LocalHeaderOffset: localHeaderOffset,
			ExternalAttrs:     externalAttrs,
			IsDirectory:       isDir,
			ValidPath:         ok,
		})

		cursor = nameEnd + int64(extraLen) + int64(commentLen)
	}

	return &Archive{raw: raw, Entries: entries}, nil
}

// findEOCD scans the last (22 + 65535) bytes of raw for the EOCD signature,
// searching backward so a trailing comment containing the same 4 bytes
// doesn't produce a false match ahead of the real record.
func findEOCD(raw []byte) (int, error) {
	if len(raw) < eocdMinSize {
		return 0, &Error{Cause: "archive too small to contain an end-of-central-directory record"}
	}

	scanStart := len(raw) - maxEOCDScan
	if scanStart < 0 {
		scanStart = 0
	}
	window := raw[scanStart:]

	sigBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sigBytes, eocdSignature)

	for i := len(window) - eocdMinSize; i >= 0; i-- {
		if bytes.Equal(window[i:i+4], sigBytes) {
			return scanStart + i, nil
		}
	}
	return 0, &Error{Cause: "end-of-central-directory signature not found"}
}

// sanitizeName rejects NUL bytes, absolute paths, and "." / ".." segments.
// It returns the cleaned, forward-slash name and whether it was accepted.
func sanitizeName(name string) (string, bool) {
	if strings.ContainsRune(name, 0) {
		return "", false
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return "", false
	}
	normalized := strings.ReplaceAll(name, "\\", "/")
	trimmed := strings.TrimSuffix(normalized, "/")
	if trimmed == "" {
		return "", false
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "." || seg == ".." || seg == "" {
			return "", false
		}
	}
	return normalized, true
}

// Extract reads entry's local header and decompresses its data, capped at
// maxBytes. Stored entries are copied verbatim; raw-deflate entries are
// inflated; any other method returns an "unsupported" error without
// disturbing the rest of the archive. Symlink entries must not be passed in
// by the caller.
func Extract(a *Archive, entry Entry, maxBytes int64) ([]byte, error) {
	offset := int64(entry.LocalHeaderOffset)
	if offset+30 > int64(len(a.raw)) {
		return nil, &Error{Cause: "local header offset past archive end"}
	}

	header := a.raw[offset:]
	sig := binary.LittleEndian.Uint32(header[0:4])
	if sig != localHeaderSignature {
		return nil, &Error{Cause: "bad local file header signature"}
	}

	nameLen := binary.LittleEndian.Uint16(header[26:28])
	extraLen := binary.LittleEndian.Uint16(header[28:30])

	dataStart := offset + 30 + int64(nameLen) + int64(extraLen)
	dataEnd := dataStart + int64(entry.CompressedSize)
	if dataEnd > int64(len(a.raw)) {
		return nil, &Error{Cause: "entry data extends past archive end"}
	}

	compressed := a.raw[dataStart:dataEnd]

	switch entry.CompressionMethod {
	case methodStored:
		if int64(len(compressed)) > maxBytes {
			return nil, &Error{Cause: "stored entry exceeds maxBytes"}
		}
		out := make([]byte, len(compressed))
		copy(out, compressed)
		return out, nil

	case methodDeflate:
		r := flate.NewReader(bytes.NewReader(compressed))
		defer r.Close()
		limited := io.LimitReader(r, maxBytes+1)
		out, err := io.ReadAll(limited)
		if err != nil {
			return nil, &Error{Cause: fmt.Sprintf("inflate: %v", err)}
		}
		if int64(len(out)) > maxBytes {
			return nil, &Error{Cause: "inflated entry exceeds maxBytes"}
		}
		return out, nil

	default:
		return nil, &Error{Cause: fmt.Sprintf("unsupported compression method %d", entry.CompressionMethod)}
	}
}

// SelectForScanning walks entries in central-directory order and picks the
// ones worth extracting as text candidates: directories and zero-length
// entries are skipped outright, an entry whose UncompressedSize exceeds
// maxEntryBytes is skipped, and selection stops as soon as accepting the
// next entry would push the running uncompressed total past
// maxTotalBytes or the picked count past maxEntries.
func SelectForScanning(entries []Entry, maxEntryBytes, maxTotalBytes int64, maxEntries int) []Entry {
	selected := make([]Entry, 0, len(entries))
	var running int64
	for _, e := range entries {
		if e.IsDirectory || !e.ValidPath {
			continue
		}
		if e.UncompressedSize == 0 {
			continue
		}
		if int64(e.UncompressedSize) > maxEntryBytes {
			continue
		}
		if len(selected) >= maxEntries {
			break
		}
		if running+int64(e.UncompressedSize) > maxTotalBytes {
			break
		}
		running += int64(e.UncompressedSize)
		selected = append(selected, e)
	}
	return selected
}

// LooksLikeArchive sniffs for the local-file-header magic at the start of a
// byte slice, the cheap test ingest uses before attempting a full Open.
func LooksLikeArchive(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(raw[0:4]) == localHeaderSignature
}
