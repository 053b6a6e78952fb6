// Package mitigation turns a decision's action and reason codes into
// short, human-readable advice. It never executes anything and never
// touches the filesystem — it replaces the teacher's sandboxed diff
// runner, which this project's non-goals rule out (no dynamic execution
// of ingested content), with pure text generation over the same shape
// of inputs: an action plus the reasons that produced it.
package mitigation

// For returns the suggested_mitigations strings for a single reason
// code under the given action. Unknown reason codes return nil rather
// than a generic message, so callers can tell "no advice" from "advice
// was empty".
func For(action, reasonCode string) []string {
	switch reasonCode {
	case "tool_denylist":
		return []string{"This tool is blocked by policy; do not retry the call."}
	case "tool_not_allowlisted":
		return []string{"Add the tool to the policy allowlist if it is expected to be used, otherwise leave it blocked."}
	case "exec_deny_cmd":
		return []string{"This command is blocked by policy.", "Use an allowlisted command, or request a policy change."}
	case "exec_not_allowlisted":
		return []string{"Add the command to exec.allow_cmds if it is expected to run, otherwise leave it blocked."}
	case "exec_deny_pattern":
		return []string{"The command line matches a blocked pattern. Review it for destructive flags before retrying."}
	case "exec_shell_operators":
		return []string{"Avoid shell metacharacters (pipes, redirects, command substitution) in system_exec arguments.", "Pass arguments as a list instead of a single shell string."}
	case "path_denied":
		return []string{"Avoid reading or writing credential-adjacent paths.", "Route secret access through a scoped secrets manager instead."}
	case "url_scheme_denied":
		return []string{"Only http(s) URLs are permitted; file/data/javascript schemes are blocked by policy."}
	case "url_domain_denied", "url_domain_not_allowlisted":
		return []string{"Verify the target domain against the configured allow-list before retrying."}
	case "url_invalid":
		return []string{"The URL could not be parsed; check it for typos or malformed encoding."}
	case "sandbox_only":
		return []string{"Run this tool call inside an isolated sandbox with no host credentials and no unrestricted network access.", "Review the sandboxed run's output before applying any resulting changes."}
	case "elevated_requires_approval":
		return []string{"Ask a human operator to review and approve this call before it proceeds."}
	case "scan_deny_at":
		return []string{"Do not install this skill; the scan found issues at or above the deny threshold.", "Review the flagged findings and, if they are false positives, adjust the rule pack rather than overriding the decision."}
	case "scan_approve_at":
		return []string{"This skill needs a human approval step before install; review the flagged findings first."}
	default:
		return nil
	}
}
