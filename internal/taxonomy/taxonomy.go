// Package taxonomy maps a finding's reason_code onto one of a small,
// fixed set of security categories. The teacher's own taxonomy package
// loads an extensible, YAML-backed catalog of weaknesses with kingdom/
// category hierarchies and per-standard compliance mappings (OWASP LLM
// Top 10, MITRE ATT&CK); this project doesn't ship or need that external
// dataset, so the same idea — look up a stable category for a reason
// code — is expressed here as a small literal table instead.
package taxonomy

// Category is one of the fixed security categories a reason_code can
// belong to.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var categories = map[string]Category{
	"credential-exposure": {
		ID: "credential-exposure", Name: "Credential Exposure",
		Description: "Secrets, keys, or tokens present in plaintext or reachable by a tool call.",
	},
	"data-exfiltration": {
		ID: "data-exfiltration", Name: "Data Exfiltration",
		Description: "Content or credentials are packaged and sent to a destination outside the user's control.",
	},
	"unauthorized-execution": {
		ID: "unauthorized-execution", Name: "Unauthorized Execution",
		Description: "Code or commands run in a way that bypasses review, e.g. decode-then-execute or fetch-and-pipe.",
	},
	"destructive-ops": {
		ID: "destructive-ops", Name: "Destructive Operations",
		Description: "An action that deletes or irreversibly overwrites data or state.",
	},
	"privilege-escalation": {
		ID: "privilege-escalation", Name: "Privilege Escalation",
		Description: "An action that disables a security control or acquires elevated access.",
	},
	"persistence-evasion": {
		ID: "persistence-evasion", Name: "Persistence & Evasion",
		Description: "An action that installs a persistence mechanism or hides itself from review.",
	},
	"reconnaissance": {
		ID: "reconnaissance", Name: "Reconnaissance",
		Description: "An action that enumerates the host, network, or credentials without an obvious legitimate need.",
	},
	"supply-chain": {
		ID: "supply-chain", Name: "Supply Chain",
		Description: "Risk introduced through a dependency, registry, or package install rather than the skill's own code.",
	},
}

// reasonCodeCategory maps the literal reason_code strings used across
// internal/rules, internal/guardian, and internal/policy onto a
// Category ID. A reason code not present here has no taxonomy entry —
// CategoryFor returns ok=false rather than guessing.
var reasonCodeCategory = map[string]string{
	"credential-exposure":        "credential-exposure",
	"data-exfiltration":          "data-exfiltration",
	"unauthorized-execution":     "unauthorized-execution",
	"privilege-escalation":       "privilege-escalation",
	"tool_denylist":              "privilege-escalation",
	"tool_not_allowlisted":       "privilege-escalation",
	"exec_deny_cmd":              "destructive-ops",
	"exec_not_allowlisted":       "unauthorized-execution",
	"exec_deny_pattern":          "destructive-ops",
	"exec_shell_operators":       "unauthorized-execution",
	"path_denied":                "credential-exposure",
	"url_scheme_denied":          "data-exfiltration",
	"url_domain_denied":          "data-exfiltration",
	"url_domain_not_allowlisted": "data-exfiltration",
	"url_invalid":                "reconnaissance",
	"sandbox_only":               "privilege-escalation",
	"elevated_requires_approval": "privilege-escalation",
}

// CategoryFor looks up the Category for a reason_code.
func CategoryFor(reasonCode string) (Category, bool) {
	id, ok := reasonCodeCategory[reasonCode]
	if !ok {
		return Category{}, false
	}
	c, ok := categories[id]
	return c, ok
}

// All returns every known category, for `rules explain` style listings.
func All() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c)
	}
	return out
}
