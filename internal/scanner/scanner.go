// Package scanner composes the signal extractor, rule engine, and guardian
// heuristic layer into the single pure function spec §4.6 describes: a
// bundle and a rule pack go in, a deterministic ScanReport comes out.
package scanner

import (
	"github.com/gzhole/clawguard/internal/guardian"
	"github.com/gzhole/clawguard/internal/rules"
	"github.com/gzhole/clawguard/internal/signal"
	"github.com/gzhole/clawguard/internal/skill"
)

// ScanReport is the scanner's sole output: a risk score and the findings
// that produced it.
type ScanReport struct {
	APIVersion  int             `json:"api_version"`
	PackID      string          `json:"pack_id"`
	PackVersion string          `json:"pack_version"`
	RiskScore   int             `json:"risk_score"`
	Findings    []rules.Finding `json:"findings"`
}

const apiVersion = 1

// Scan is a pure function of (bundle, pack): same inputs always produce the
// same report, in the same finding order.
func Scan(bundle *skill.Bundle, pack rules.RulePack) ScanReport {
	engine := rules.NewEngine(pack)
	signals := signal.ExtractSignals(bundle)

	findings := engine.Match(signals)
	findings = append(findings, guardian.Analyze(bundle)...)
	findings = dedupe(findings)

	return ScanReport{
		APIVersion:  apiVersion,
		PackID:      pack.PackID,
		PackVersion: pack.PackVersion,
		RiskScore:   riskScore(findings),
		Findings:    findings,
	}
}

// dedupe keeps the first finding for each (rule_id, file, line, column,
// evidence) tuple, preserving the order findings were appended in.
func dedupe(findings []rules.Finding) []rules.Finding {
	type key struct {
		ruleID, file, evidence string
		line, column           int
	}
	seen := make(map[key]bool, len(findings))
	out := make([]rules.Finding, 0, len(findings))
	for _, f := range findings {
		k := key{f.RuleID, f.File, f.Evidence, f.Line, f.Column}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// riskScore implements §4.6: clamp(max(sum of scores, severity floor), 0, 100).
func riskScore(findings []rules.Finding) int {
	sum := 0
	floor := 0
	for _, f := range findings {
		sum += f.Score
		if sf := rules.SeverityFloor[f.Severity]; sf > floor {
			floor = sf
		}
	}
	score := sum
	if floor > score {
		score = floor
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
