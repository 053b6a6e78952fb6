// Package guardian is the escalation-only heuristic layer (C5b): a second,
// independent pass over a skill bundle's text looking for patterns the
// data-driven rule pack doesn't cover well — obfuscated payloads, disabled
// security checks, and exfiltration-shaped command combinations. Its
// findings are combined into the scanner's risk score the same way rule-
// pack findings are; a guardian finding can only ever raise risk_score,
// never lower it, because the combination itself (max/severity-floor) is
// monotonic in the set of findings.
package guardian

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gzhole/clawguard/internal/rules"
	"github.com/gzhole/clawguard/internal/skill"
	"github.com/gzhole/clawguard/internal/unicode"
)

type heuristic struct {
	id          string
	reasonCode  string
	severity    rules.Severity
	score       int
	description string
	patterns    []*regexp.Regexp
}

var heuristics = buildHeuristics()

func buildHeuristics() []heuristic {
	return []heuristic{
		{
			id: "G-disable-security", reasonCode: "privilege-escalation", severity: rules.SeverityHigh, score: 30,
			description: "instructs disabling TLS/signature verification",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(disable|skip|bypass|ignore)[\s_-]*(ssl|tls|cert(ificate)?|signature|verif\w*)`),
				regexp.MustCompile(`(?i)--no-verify\b|NODE_TLS_REJECT_UNAUTHORIZED\s*=\s*['"]?0`),
			},
		},
		{
			id: "G-obfuscated-base64-exec", reasonCode: "unauthorized-execution", severity: rules.SeverityHigh, score: 30,
			description: "decodes a base64 payload and feeds it to an interpreter",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)base64\s+(-d|--decode)[^\n]{0,80}\|\s*(sh|bash|zsh|python3?)\b`),
				regexp.MustCompile(`(?i)(atob\(|Buffer\.from\([^)]*base64[^)]*\))[^\n]{0,80}(exec|eval)\(`),
			},
		},
		{
			id: "G-obfuscated-hex", reasonCode: "unauthorized-execution", severity: rules.SeverityMedium, score: 15,
			description: "long run of hex-escaped bytes, a common obfuscation shape",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(\\x[0-9a-fA-F]{2}){12,}`),
			},
		},
		{
			id: "G-eval-risk", reasonCode: "unauthorized-execution", severity: rules.SeverityHigh, score: 30,
			description: "dynamic code evaluation or shell=True subprocess invocation",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\beval\s*\(|\bnew Function\s*\(`),
				regexp.MustCompile(`(?i)subprocess\.(Popen|call|run)\([^)]*shell\s*=\s*True`),
			},
		},
		{
			id: "G-bulk-exfiltration", reasonCode: "data-exfiltration", severity: rules.SeverityCritical, score: 50,
			description: "archives a directory then uploads it to a remote host",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\btar\s+[a-z]*c[a-z]*f?\b[^\n]{0,120}\|\s*(curl|wget|nc\s|ncat\s)`),
				regexp.MustCompile(`(?i)\bzip\s+-r\b[^\n]{0,120}(curl|wget|transfer\.sh|scp\s|rsync\s)`),
			},
		},
		{
			id: "G-secrets-in-command", reasonCode: "credential-exposure", severity: rules.SeverityHigh, score: 30,
			description: "reads a credential environment variable directly into a network command",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(export|set)\s+\S*(SECRET|TOKEN|API_KEY|PASSWORD)\S*\s*=[^\n]{0,160}\b(curl|wget|nc\s)`),
			},
		},
		{
			id: "G-indirect-injection", reasonCode: "unauthorized-execution", severity: rules.SeverityHigh, score: 30,
			description: "fetches instructions or a script from a remote URL and pipes it to a shell",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(curl|wget)\b[^\n]{0,120}\|\s*(sh|bash|zsh)\b`),
				regexp.MustCompile(`(?i)fetch\s+(the\s+)?(instructions?|latest\s+(config|script))\s+from\b`),
			},
		},
	}
}

// Analyze runs every heuristic against every loaded file's content and
// returns findings in heuristic order x file order x match order, matching
// the ordering discipline the rule engine uses. A final pass runs the
// rune-level unicode smuggling classifier over the same files.
func Analyze(bundle *skill.Bundle) []rules.Finding {
	var findings []rules.Finding
	for _, h := range heuristics {
		for _, f := range bundle.Files {
			for _, pattern := range h.patterns {
				for _, loc := range pattern.FindAllStringIndex(f.Content, -1) {
					evidence := f.Content[loc[0]:loc[1]]
					if len(evidence) > 220 {
						evidence = evidence[:220]
					}
					line := strings.Count(f.Content[:loc[0]], "\n") + 1
					findings = append(findings, rules.Finding{
						RuleID:     h.id,
						Title:      fmt.Sprintf("guardian: %s", h.description),
						Severity:   h.severity,
						ReasonCode: h.reasonCode,
						File:       f.Path,
						Line:       line,
						Evidence:   evidence,
						Score:      h.score,
					})
				}
			}
		}
	}
	findings = append(findings, unicodeFindings(bundle)...)
	return findings
}

// unicodeFindings converts unicode.Scan threats into guardian findings.
// "block"-severity threats (zero-width, bidi-override, tag characters,
// unsafe control characters) score as critical; "audit"-severity threats
// (script homoglyphs) score as high.
func unicodeFindings(bundle *skill.Bundle) []rules.Finding {
	var findings []rules.Finding
	for _, f := range bundle.Files {
		result := unicode.Scan(f.Content)
		if result.Clean {
			continue
		}
		for _, threat := range result.Threats {
			severity, score := rules.SeverityHigh, 30
			if threat.Severity == "block" {
				severity, score = rules.SeverityCritical, 50
			}
			line := strings.Count(f.Content[:threat.Position], "\n") + 1
			findings = append(findings, rules.Finding{
				RuleID:     "G-unicode-" + threat.Category,
				Title:      fmt.Sprintf("guardian: %s", threat.Description),
				Severity:   severity,
				ReasonCode: "unauthorized-execution",
				File:       f.Path,
				Line:       line,
				Evidence:   threat.Codepoint,
				Score:      score,
			})
		}
	}
	return findings
}
