package approval

import "testing"

func TestAsk_AutoDeniesWhenNonInteractive(t *testing.T) {
	// Tests run with stdin detached from a TTY, so IsInteractive() is
	// false here, exercising the auto-deny path without needing a pty.
	if IsInteractive() {
		t.Skip("stdin is a terminal in this environment; skipping non-interactive path test")
	}
	result := Ask(Prompt{ToolName: "system_exec", ReasonCodes: []string{"elevated_requires_approval"}})
	if result.Approved {
		t.Fatal("expected auto-deny when stdin is not a terminal")
	}
	if result.UserAction != "auto_deny_non_interactive" {
		t.Fatalf("expected auto_deny_non_interactive, got %s", result.UserAction)
	}
}
