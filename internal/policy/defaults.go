package policy

// DefaultPolicy is used whenever no policy file is configured, or an
// existing one fails to parse. It errs toward caution: a deny-list of
// credential-shaped paths and local/metadata-service URLs, no tool
// allowlist (so every tool is considered, subject to the other checks),
// and conservative install thresholds.
func DefaultPolicy() Policy {
	return Policy{
		APIVersion: 1,
		Tool: ToolPolicy{
			ElevatedRequiresApproval: true,
		},
		Exec: ExecPolicy{
			DenyPatterns: []string{
				`rm\s+-rf\s+/(\s|$)`,
				`:\(\)\{.*:\|:.*\};:`,
			},
		},
		Paths: PathPolicy{
			Deny: []string{
				".ssh", "id_rsa", "id_ed25519", ".aws/credentials",
				"keychain", "Keychains", "Cookies", ".env", ".npmrc", ".netrc",
				"AWS_SECRET_ACCESS_KEY", "GITHUB_TOKEN",
			},
		},
		URLs: URLPolicy{
			DenySchemes: []string{"file", "data", "javascript"},
			DenyDomains: []string{"localhost", "127.0.0.1", "169.254.169.254", "::1"},
		},
		Thresholds: Thresholds{
			ScanApproveAt: 30,
			ScanDenyAt:    60,
		},
	}
}
