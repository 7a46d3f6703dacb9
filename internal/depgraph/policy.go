package depgraph

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Actions for Policy.DefaultAction.
const (
	ActionAllow = "allow"
	ActionDeny  = "deny"
)

// PolicyRule governs which targets a matching source module may import.
// Patterns are slash-separated path prefixes; "*" matches any module.
type PolicyRule struct {
	Source string   `yaml:"source"`
	Allow  []string `yaml:"allow,omitempty"`
	Deny   []string `yaml:"deny,omitempty"`
}

// Policy is the full allow/deny rule set plus the fallback for edges no
// rule covers. The fallback is explicit because it changes observable
// behavior: allow-by-default only reports known-bad edges, deny-by-default
// requires every edge to be covered.
type Policy struct {
	DefaultAction string       `yaml:"default_action"`
	Rules         []PolicyRule `yaml:"rules"`
}

// Validate checks the policy for structural problems.
func (p *Policy) Validate() error {
	switch p.DefaultAction {
	case ActionAllow, ActionDeny:
	case "":
		return fmt.Errorf("default_action is required (%q or %q)", ActionAllow, ActionDeny)
	default:
		return fmt.Errorf("invalid default_action %q", p.DefaultAction)
	}
	for i, r := range p.Rules {
		if r.Source == "" {
			return fmt.Errorf("rule %d: source is required", i)
		}
	}
	return nil
}

// LoadPolicy reads a YAML policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// DefaultPolicy encodes the layered module boundaries: shared layers (lib,
// components/ui) must not reach up into the app layer, while the app layer
// may import anything.
func DefaultPolicy() *Policy {
	return &Policy{
		DefaultAction: ActionAllow,
		Rules: []PolicyRule{
			{Source: "app", Allow: []string{"*"}},
			{Source: "components/ui", Allow: []string{"components/ui", "lib", "types"}, Deny: []string{"app", "components/custom"}},
			{Source: "components", Allow: []string{"components", "lib", "hooks", "types"}, Deny: []string{"app"}},
			{Source: "hooks", Allow: []string{"hooks", "lib", "types"}, Deny: []string{"app", "components"}},
			{Source: "lib", Allow: []string{"lib", "types"}, Deny: []string{"app", "components", "hooks"}},
		},
	}
}

// matchPattern reports whether a slash-normalized module path matches a
// prefix pattern, and how specific the match is (longer pattern wins).
// "*" matches everything with the lowest possible specificity.
func matchPattern(path, pattern string) (int, bool) {
	if pattern == "*" {
		return 0, true
	}
	pattern = strings.TrimSuffix(pattern, "/")
	if path == pattern || strings.HasPrefix(path, pattern+"/") {
		return len(pattern), true
	}
	return 0, false
}
