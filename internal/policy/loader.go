package policy

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a policy YAML file from path. A missing file is not an
// error: it falls back to DefaultPolicy, the same as the teacher's
// loader does for its own default policy. A present-but-malformed file
// is an error, since the caller asked for a specific policy and got
// something else.
func Load(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return Policy{}, err
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, err
	}
	if p.APIVersion == 0 {
		p.APIVersion = 1
	}
	return p, nil
}

// Save writes p to path as YAML, creating the file if needed. Used by
// `policy init`.
func Save(path string, p Policy) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
