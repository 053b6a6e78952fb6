// Package approval prompts a human operator for sign-off when a
// Decision comes back needs_approval. It never decides anything itself —
// it only renders a Prompt and reads back a's or d'.
package approval

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type Result struct {
	Approved   bool
	UserAction string
}

// Prompt carries everything a human needs to make the call: what was
// requested, why the gate flagged it, and what it suggests instead.
type Prompt struct {
	ToolName             string
	ReasonCodes          []string
	Details              []string
	SuggestedMitigations []string
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask renders p and blocks on a single keystroke-line answer. A
// non-interactive session is auto-denied rather than blocking forever —
// a CI pipeline with no TTY attached should never silently stall waiting
// for approval that can never come.
func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{Approved: false, UserAction: "auto_deny_non_interactive"}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║              APPROVAL REQUIRED                                ║")
	fmt.Fprintln(os.Stderr, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Tool: %s\n", p.ToolName)
	fmt.Fprintln(os.Stderr, "")

	if len(p.ReasonCodes) > 0 {
		fmt.Fprintf(os.Stderr, "Reason codes: %s\n", strings.Join(p.ReasonCodes, ", "))
	}
	if len(p.Details) > 0 {
		fmt.Fprintln(os.Stderr, "Details:")
		for _, d := range p.Details {
			fmt.Fprintf(os.Stderr, "  - %s\n", d)
		}
	}
	if len(p.SuggestedMitigations) > 0 {
		fmt.Fprintln(os.Stderr, "Suggested mitigations:")
		for _, m := range p.SuggestedMitigations {
			fmt.Fprintf(os.Stderr, "  - %s\n", m)
		}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  [a] Approve once")
	fmt.Fprintln(os.Stderr, "  [d] Deny")
	fmt.Fprintln(os.Stderr, "")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{Approved: false, UserAction: "error_reading_input"}
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "a", "approve", "yes", "y":
			return Result{Approved: true, UserAction: "approve_once"}
		case "d", "deny", "no", "n":
			return Result{Approved: false, UserAction: "deny"}
		default:
			fmt.Fprintln(os.Stderr, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}
