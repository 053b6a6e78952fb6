package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gzhole/clawguard/internal/config"
	"github.com/gzhole/clawguard/internal/decision"
	"github.com/gzhole/clawguard/internal/policy"
)

// limitFlags holds the §6 configuration-limit overrides shared by any
// command that ingests a source. Zero means "use the default".
type limitFlags struct {
	timeoutMs     int
	maxFiles      int
	maxTotalBytes int64
	maxZipBytes   int64
}

func (f limitFlags) resolve() config.Limits {
	l := config.DefaultLimits()
	if f.timeoutMs > 0 {
		l.TimeoutMs = f.timeoutMs
	}
	if f.maxFiles > 0 {
		l.MaxFiles = f.maxFiles
	}
	if f.maxTotalBytes > 0 {
		l.MaxTotalBytes = f.maxTotalBytes
	}
	if f.maxZipBytes > 0 {
		l.MaxZipBytes = f.maxZipBytes
	}
	return l.Clamp()
}

// exitCodeForAction implements §6's stable exit-code mapping:
// 0 allow, 2 deny, 3 needs_approval (sandbox_only maps here too), 1 error.
func exitCodeForAction(action string) int {
	switch action {
	case decision.ActionAllow:
		return 0
	case decision.ActionDeny:
		return 2
	case decision.ActionNeedsApproval:
		return 3
	case policy.ActionSandboxOnly:
		return 3
	default:
		return 1
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(format string, args ...interface{}) error {
	fmt.Fprintf(os.Stderr, "clawguard: "+format+"\n", args...)
	os.Exit(1)
	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func durationFromMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// writeJSONAtomic writes v to path as indented JSON with a trailing
// newline, via a temp file in the same directory followed by a rename —
// the same atomic-write idiom internal/trust and internal/policy use for
// their own on-disk state.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".clawguard-*.tmp")
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

func loadPolicy(cfg *config.Config) (policy.Policy, error) {
	return policy.Load(cfg.PolicyPath)
}
