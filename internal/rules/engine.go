package rules

import (
	"bytes"
	"regexp"

	"github.com/gzhole/clawguard/internal/signal"
)

// Engine compiles a rule pack once and matches it against signal sets.
// Rules with an unparseable regex are recorded but skipped rather than
// failing the whole engine (§7: malformed rule regexes are skipped).
type Engine struct {
	pack     RulePack
	compiled []compiledRule
	skipped  []string // rule IDs whose regex failed to compile
}

type compiledRule struct {
	rule *regexp.Regexp
	def  Rule
}

// NewEngine compiles every rule in pack, in pack order.
func NewEngine(pack RulePack) *Engine {
	e := &Engine{pack: pack}
	for _, r := range pack.Rules {
		flags := r.Flags
		if flags == "" {
			flags = "gi"
		}
		compiled, err := compileWithFlags(r.Match, flags)
		if err != nil {
			e.skipped = append(e.skipped, r.ID)
			continue
		}
		e.compiled = append(e.compiled, compiledRule{rule: compiled, def: r})
	}
	return e
}

// SkippedRules returns the IDs of rules whose regex failed to compile.
func (e *Engine) SkippedRules() []string {
	return e.skipped
}

// Match runs every compiled rule against every signal whose type the rule
// selects, in rule order × signal order × match order — the stable
// ordering §4.5 requires.
func (e *Engine) Match(signals []signal.Signal) []Finding {
	var findings []Finding
	for _, cr := range e.compiled {
		for _, sig := range signals {
			if !cr.def.selects(sig.Type) {
				continue
			}
			baseLine := sig.BaseLine
			if baseLine == 0 {
				baseLine = 1
			}
			for _, loc := range cr.rule.FindAllStringIndex(sig.Text, -1) {
				matchText := sig.Text[loc[0]:loc[1]]
				line, column := lineAndColumn(sig.Text, loc[0])
				findings = append(findings, Finding{
					RuleID:     cr.def.ID,
					Title:      cr.def.Title,
					Severity:   cr.def.Severity,
					ReasonCode: cr.def.ReasonCode,
					File:       sig.File,
					Line:       baseLine + line - 1,
					Column:     column,
					Evidence:   clipEvidence(matchText),
					Score:      cr.def.Score,
				})
			}
		}
	}
	return findings
}

// compileWithFlags translates a "gi"-style flag string into Go's inline
// regex flag group and compiles the result. "g" (global) is implicit in
// FindAllStringIndex and contributes no inline flag.
func compileWithFlags(pattern, flags string) (*regexp.Regexp, error) {
	inline := ""
	for _, f := range flags {
		switch f {
		case 'i':
			inline += "i"
		case 'm':
			inline += "m"
		case 's':
			inline += "s"
		}
	}
	if inline != "" {
		pattern = "(?" + inline + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// lineAndColumn returns the 1-based line and column of byte offset within
// text, counting newlines in the prefix.
func lineAndColumn(text string, offset int) (line, column int) {
	prefix := text[:offset]
	line = bytes.Count([]byte(prefix), []byte("\n")) + 1
	if idx := bytes.LastIndexByte([]byte(prefix), '\n'); idx >= 0 {
		column = offset - idx
	} else {
		column = offset + 1
	}
	return line, column
}
