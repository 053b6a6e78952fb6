package rules

import "github.com/gzhole/clawguard/internal/signal"

// DefaultPack is the built-in rule pack, frozen at clawguard-default 1.0.0.
// Its credential/secret and prompt-injection rules are lifted from a
// teacher's tool-call content/description scanners, re-targeted from
// MCP tool-call arguments and descriptions onto skill-bundle text; R012
// and R013 are new, covering a gap those scanners never had to cover
// (ingest-time path/size caps). Unicode smuggling (bidi overrides,
// zero-width characters, homoglyphs) is handled by rune-level
// classification in internal/unicode, wired into the guardian pass
// rather than expressed as a regex here.
var DefaultPack = RulePack{
	PackID:      "clawguard-default",
	PackVersion: "1.0.0",
	Rules: []Rule{
		{
			ID: "R001", Title: "Private key material", Severity: SeverityCritical,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY( BLOCK)?-----`,
			Score:      50,
		},
		{
			ID: "R002", Title: "AWS access key ID", Severity: SeverityCritical,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `AKIA[0-9A-Z]{16}`,
			Score:      50,
		},
		{
			ID: "R003", Title: "AWS secret key assignment", Severity: SeverityCritical,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `(aws_secret_access_key|aws_access_key_id|aws_session_token)\s*[=:]\s*\S{16,}`,
			Score:      50,
		},
		{
			ID: "R004", Title: "GitHub token", Severity: SeverityCritical,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `gh[opsur]_[A-Za-z0-9]{36}`,
			Score:      50,
		},
		{
			ID: "R005", Title: "Generic API key/secret assignment", Severity: SeverityHigh,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `(api_key|apikey|api-key|secret_key|secretkey|secret-key|access_token|auth_token|private_key)\s*[=:]\s*['"]?[A-Za-z0-9_\-/+=]{16,}['"]?`,
			Score:      30,
		},
		{
			ID: "R006", Title: "Bearer token literal", Severity: SeverityHigh,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `bearer\s+[A-Za-z0-9_\-.]{20,}`,
			Score:      30,
		},
		{
			ID: "R007", Title: "Basic auth credentials in URL", Severity: SeverityHigh,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock, signal.TypeURL},
			Match:      `https?://[^:]+:[^@]+@`,
			Score:      30,
		},
		{
			ID: "R008", Title: "Slack token", Severity: SeverityMedium,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-zA-Z0-9-]*`,
			Score:      15,
		},
		{
			ID: "R009", Title: "Stripe live secret key", Severity: SeverityCritical,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `[sr]k_live_[0-9a-zA-Z]{24}`,
			Score:      50,
		},
		{
			ID: "R010", Title: ".env-style variable assignment block", Severity: SeverityMedium,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeCodeblock},
			Match:      `(?m)^[A-Z_]{2,}=\S+`,
			Score:      15,
		},
		{
			ID: "R011", Title: "Large base64-looking blob", Severity: SeverityLow,
			ReasonCode: "data-exfiltration",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `[A-Za-z0-9+/=]{200,}`,
			Score:      5,
		},
		{
			ID: "R012", Title: "Archive entry rejected for path traversal", Severity: SeverityHigh,
			ReasonCode: "supply-chain",
			Selectors:  []signal.Type{signal.TypeMeta},
			Match:      `^path_traversal_entry raw=`,
			Score:      30,
		},
		{
			ID: "R013", Title: "Ingest cap exceeded", Severity: SeverityMedium,
			ReasonCode: "supply-chain",
			Selectors:  []signal.Type{signal.TypeMeta},
			Match:      `^ingest_warning: .*(exceeds maxFileBytes|maxTotalBytes reached|maxFiles reached)`,
			Score:      15,
		},
		{
			ID: "R014", Title: "Hidden instruction tag", Severity: SeverityCritical,
			ReasonCode: "unauthorized-execution",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown},
			Match:      `<(important|system|instruction|cmd)>`,
			Score:      50,
		},
		{
			ID: "R015", Title: "Prompt injection: override previous instructions", Severity: SeverityCritical,
			ReasonCode: "unauthorized-execution",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown},
			Match:      `ignore\s+(all\s+)?(previous\s+instructions|safety)|override\s+(all\s+)?(previous|system)`,
			Score:      50,
		},
		{
			ID: "R016", Title: "Coercive instruction to read local files", Severity: SeverityHigh,
			ReasonCode: "unauthorized-execution",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown},
			Match:      `you\s+must\s+(first|always)\s+read|before\s+using\s+this\s+tool.*read`,
			Score:      30,
		},
		{
			ID: "R017", Title: "Reference to sensitive dotfile or credential path", Severity: SeverityMedium,
			ReasonCode: "credential-exposure",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypePath},
			Match:      `~/?\.(ssh|aws|gnupg|kube|config/gcloud)|id_rsa|id_ed25519|id_ecdsa|authorized_keys|\.env\b`,
			Score:      15,
		},
		{
			ID: "R018", Title: "Instruction to exfiltrate data via network", Severity: SeverityHigh,
			ReasonCode: "data-exfiltration",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown, signal.TypeCodeblock},
			Match:      `send\s+(it|the|this|all)?\s*(to|via)\b|(curl|wget|fetch|http|post)\s.*(attacker|evil|exfil|collect|receive)|encode\s+(it|the|this|data)?\s*(as|in|to|with)\s*(base64|hex)`,
			Score:      30,
		},
		{
			ID: "R019", Title: "Social-engineering coercion phrasing", Severity: SeverityMedium,
			ReasonCode: "unauthorized-execution",
			Selectors:  []signal.Type{signal.TypeFile, signal.TypeMarkdown},
			Match:      `the\s+application\s+will\s+crash|all\s+data\s+will\s+be\s+lost|do\s+not\s+(mention|tell|inform|reveal|show|display|say)`,
			Score:      15,
		},
		{
			ID: "R020", Title: "Executable file in bundle", Severity: SeverityLow,
			ReasonCode: "unauthorized-execution",
			Selectors:  []signal.Type{signal.TypeMeta},
			Match:      `^executable_file$`,
			Score:      5,
		},
		{
			ID: "R021", Title: "Binary file in bundle", Severity: SeverityLow,
			ReasonCode: "reconnaissance",
			Selectors:  []signal.Type{signal.TypeMeta},
			Match:      `^binary_file$`,
			Score:      5,
		},
		{
			ID: "R022", Title: "Symlink entry in bundle", Severity: SeverityLow,
			ReasonCode: "supply-chain",
			Selectors:  []signal.Type{signal.TypeMeta},
			Match:      `^symlink_entry$`,
			Score:      5,
		},
		{
			ID: "R023", Title: "Shell fence pipes a fetch directly into an interpreter", Severity: SeverityHigh,
			ReasonCode: "unauthorized-execution",
			Selectors:  []signal.Type{signal.TypeMeta},
			Match:      `^shell_pipe_to_interpreter$`,
			Score:      30,
		},
	},
}
