package policy

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gzhole/clawguard/internal/mitigation"
	"mvdan.cc/sh/v3/syntax"
)

// shellOperatorChars are the characters whose mere presence in a joined
// command line is itself a finding, regardless of what they do: a tool
// call that needs a pipe, redirect, or subshell to express itself is
// reaching past what the declared args were meant to cover.
const shellOperatorChars = "|;&><`"

// Evaluator evaluates tool calls against a single Policy. It holds no
// mutable state, so one Evaluator can be shared across concurrent
// eval-tool-call invocations.
type Evaluator struct {
	policy Policy
}

// NewEvaluator builds an Evaluator bound to p.
func NewEvaluator(p Policy) *Evaluator {
	return &Evaluator{policy: p}
}

// Evaluate runs the ordered precedence chain:
//
//  1. tool denylist
//  2. tool allowlist (only enforced if non-empty)
//  3. exec checks (system_exec only)
//  4. path checks (system_read_file / system_write_file only)
//  5. URL checks (tool_name starting with browser_, or system_exec)
//  6. sandbox-only glob match
//  7. elevated-approval gate
//  8. allow
//
// The first step to produce a verdict wins; later steps never run.
func (e *Evaluator) Evaluate(call ToolCall) Decision {
	p := e.policy

	if matchesAny(p.Tool.Denylist, call.ToolName) {
		return deny("tool_denylist", fmt.Sprintf("tool %q is in the tool denylist", call.ToolName), "")
	}

	if len(p.Tool.Allowlist) > 0 && !matchesAny(p.Tool.Allowlist, call.ToolName) {
		return deny("tool_not_allowlisted", fmt.Sprintf("tool %q is not in the tool allowlist", call.ToolName), "")
	}

	if call.ToolName == "system_exec" {
		if d, matched := e.evaluateExec(call); matched {
			return d
		}
	}

	if d, matched := e.evaluatePaths(call); matched {
		return d
	}

	if d, matched := e.evaluateURLs(call); matched {
		return d
	}

	if matchesAny(p.Tool.SandboxOnly, call.ToolName) {
		return Decision{
			APIVersion:           1,
			Action:               ActionSandboxOnly,
			Reasons:              []Reason{{ReasonCode: "sandbox_only", Detail: fmt.Sprintf("tool %q is restricted to sandboxed runs", call.ToolName)}},
			SuggestedMitigations: mitigation.For(ActionSandboxOnly, "sandbox_only"),
		}
	}

	if p.Tool.ElevatedRequiresApproval && isElevatedTool(call.ToolName) {
		return Decision{
			APIVersion:           1,
			Action:               ActionNeedsApproval,
			Reasons:              []Reason{{ReasonCode: "elevated_requires_approval", Detail: fmt.Sprintf("tool %q requires human approval", call.ToolName)}},
			SuggestedMitigations: mitigation.For(ActionNeedsApproval, "elevated_requires_approval"),
		}
	}

	return Decision{APIVersion: 1, Action: ActionAllow}
}

func isElevatedTool(name string) bool {
	return strings.HasPrefix(name, "system_") || strings.HasPrefix(name, "browser_") || name == "workflow_tool"
}

// evaluateExec implements step 3: basename checks against exec.deny_cmds
// / exec.allow_cmds, a joined "cmd + args" regex check against
// exec.deny_patterns, and the shell-operator heuristic. Word splitting
// uses the same shell parser (mvdan.cc/sh/v3) the static exec-check
// component uses, rather than a naive strings.Fields, so quoting is
// handled the same way in both the static and runtime gates.
func (e *Evaluator) evaluateExec(call ToolCall) (Decision, bool) {
	cmd, _ := stringArg(call.Args, "cmd")
	argWords := stringSliceArg(call.Args, "args")

	words := splitWords(cmd)
	words = append(words, argWords...)
	if len(words) == 0 {
		return Decision{}, false
	}

	base := filepath.Base(words[0])
	if matchesAny(e.policy.Exec.DenyCmds, base) {
		return deny("exec_deny_cmd", fmt.Sprintf("command %q is in exec.deny_cmds", base), base), true
	}
	if len(e.policy.Exec.AllowCmds) > 0 && !matchesAny(e.policy.Exec.AllowCmds, base) {
		return deny("exec_not_allowlisted", fmt.Sprintf("command %q is not in exec.allow_cmds", base), base), true
	}

	joined := strings.Join(words, " ")
	for _, pat := range e.policy.Exec.DenyPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(joined); loc != nil {
			return deny("exec_deny_pattern", fmt.Sprintf("command matches deny pattern %q", pat), clip(joined[loc[0]:loc[1]])), true
		}
	}

	if strings.ContainsAny(joined, shellOperatorChars) || strings.Contains(joined, "$(") {
		return deny("exec_shell_operators", "command line contains shell operator characters", clip(joined)), true
	}

	return Decision{}, false
}

// evaluatePaths implements step 4: scoped to the file-touching tools
// (system_read_file, system_write_file), any string-valued argument
// matching a substring in paths.deny is a violation. It looks at every
// string argument rather than a fixed "path" key, since tools name the
// argument differently (path, file, target, dest).
func (e *Evaluator) evaluatePaths(call ToolCall) (Decision, bool) {
	if call.ToolName != "system_read_file" && call.ToolName != "system_write_file" {
		return Decision{}, false
	}
	if len(e.policy.Paths.Deny) == 0 {
		return Decision{}, false
	}
	for _, v := range call.Args {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, frag := range e.policy.Paths.Deny {
			if strings.Contains(s, frag) {
				return deny("path_denied", fmt.Sprintf("argument matches denied path fragment %q", frag), clip(s)), true
			}
		}
	}
	return Decision{}, false
}

// evaluateURLs implements step 5: scoped to tool_name values starting
// with browser_ or equal to system_exec, any string-valued argument that
// parses as an absolute URL is checked against urls.deny_schemes,
// urls.deny_domains, and — if non-empty — urls.allow_domains.
func (e *Evaluator) evaluateURLs(call ToolCall) (Decision, bool) {
	if !strings.HasPrefix(call.ToolName, "browser_") && call.ToolName != "system_exec" {
		return Decision{}, false
	}
	for _, v := range call.Args {
		s, ok := v.(string)
		if !ok || !looksLikeURL(s) {
			continue
		}
		u, err := url.Parse(s)
		if err != nil {
			return deny("url_invalid", fmt.Sprintf("could not parse URL %q", s), s), true
		}
		scheme := strings.ToLower(u.Scheme)
		if matchesAny(e.policy.URLs.DenySchemes, scheme) {
			return deny("url_scheme_denied", fmt.Sprintf("scheme %q is denied", scheme), s), true
		}
		host := strings.ToLower(u.Hostname())
		if matchesAny(e.policy.URLs.DenyDomains, host) {
			return deny("url_domain_denied", fmt.Sprintf("domain %q is denied", host), s), true
		}
		if len(e.policy.URLs.AllowDomains) > 0 && !matchesAny(e.policy.URLs.AllowDomains, host) {
			return deny("url_domain_not_allowlisted", fmt.Sprintf("domain %q is not in urls.allow_domains", host), s), true
		}
	}
	return Decision{}, false
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "://")
}

// matchesAny checks name against a list of literal or glob (filepath.Match
// semantics) patterns.
func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if strings.Contains(p, "*") {
			if ok, _ := filepath.Match(p, name); ok {
				return true
			}
		}
	}
	return false
}

// splitWords performs authoritative shell-word splitting on a command
// string using the same parser the static exec analyzer uses, so
// quoting and escaping are interpreted identically in both gates. A
// string that fails to parse as shell falls back to a plain field split.
func splitWords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(s), "")
	if err != nil {
		return strings.Fields(s)
	}
	var words []string
	printer := syntax.NewPrinter()
	for _, stmt := range file.Stmts {
		call, ok := stmt.Cmd.(*syntax.CallExpr)
		if !ok {
			continue
		}
		for _, w := range call.Args {
			var sb strings.Builder
			_ = printer.Print(&sb, w)
			words = append(words, sb.String())
		}
	}
	if len(words) == 0 {
		return strings.Fields(s)
	}
	return words
}

func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clip(s string) string {
	const max = 220
	if len(s) > max {
		return s[:max]
	}
	return s
}

func deny(reasonCode, detail, evidence string) Decision {
	return Decision{
		APIVersion:           1,
		Action:               ActionDeny,
		Reasons:              []Reason{{ReasonCode: reasonCode, Detail: detail, Evidence: evidence}},
		SuggestedMitigations: mitigation.For(ActionDeny, reasonCode),
	}
}
