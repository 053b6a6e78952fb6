// Package logger writes the append-only audit log: one JSON line per
// scan or tool-call evaluation, redacted before it ever touches disk.
// Rotation, redaction-before-write, and the file layout all follow the
// teacher's own audit logger.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gzhole/clawguard/internal/redact"
)

// defaultMaxLogBytes is the file size at which the log is rotated (10 MB).
const defaultMaxLogBytes = 10 * 1024 * 1024

// AuditEvent is one row of the audit log. Exactly one of ToolName or
// SourceInput is set, depending on whether this event came from
// eval-tool-call or from scan-source/ingest.
type AuditEvent struct {
	EventID     string                 `json:"event_id"`
	Timestamp   string                 `json:"timestamp"`
	Kind        string                 `json:"kind"` // "tool_call" | "install"
	SourceInput string                 `json:"source_input,omitempty"`
	Mode        string                 `json:"mode,omitempty"`
	ToolName    string                 `json:"tool_name,omitempty"`
	ToolArgs    map[string]interface{} `json:"tool_args,omitempty"`
	Action      string                 `json:"action"`
	ReasonCodes []string               `json:"reason_codes,omitempty"`
	RiskScore   int                    `json:"risk_score,omitempty"`
	ContentHash string                 `json:"content_sha256,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// DisplayLabel returns a human-readable label for a CLI progress line.
func (e AuditEvent) DisplayLabel() string {
	if e.ToolName != "" {
		return "[tool_call] " + e.ToolName
	}
	return "[install] " + e.SourceInput
}

type AuditLogger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &AuditLogger{path: path, file: file}, nil
}

// rotateIfNeeded rotates the log file once it crosses defaultMaxLogBytes.
// It renames the current file to <path>.1 (dropping any existing .1) and
// opens a fresh log file. Must be called with l.mu held.
func (l *AuditLogger) rotateIfNeeded() error {
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < defaultMaxLogBytes {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log before rotation: %w", err)
	}

	rotated := l.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open fresh log after rotation: %w", err)
	}
	l.file = f
	return nil
}

// Log redacts sensitive-looking values out of the event, stamps it with
// a fresh correlation id, and appends it as one JSON line. The id lets an
// operator tie a log line back to a receipt or a later support question
// without depending on timestamp-plus-tool-name being unique.
func (l *AuditLogger) Log(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "clawguard: warning: log rotation failed: %v\n", err)
	}

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.SourceInput = redact.Redact(event.SourceInput)
	if event.ToolArgs != nil {
		event.ToolArgs = redact.RedactArgMap(event.ToolArgs)
	}
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
