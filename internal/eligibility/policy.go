// Package eligibility classifies referenced entities (compatible devices)
// into verified/unknown/rejected buckets from distinct-source corroboration.
package eligibility

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DomainEntry is one trusted domain in a policy.
type DomainEntry struct {
	Domain       string `yaml:"domain" json:"domain"`
	HighPriority bool   `yaml:"high_priority" json:"high_priority"`
	Official     bool   `yaml:"official" json:"official"`
}

// Policy parameterizes the eligibility filter. Named profiles differ only
// in these values, never in code path. Policies are validated once at load
// and treated as immutable afterwards.
type Policy struct {
	Name                string        `yaml:"name" json:"name"`
	MinTrustedSources   int           `yaml:"min_trusted_sources" json:"min_trusted_sources"`
	TrustedDomains      []DomainEntry `yaml:"trusted_domains" json:"trusted_domains"`
	OfficialDomainBonus float64       `yaml:"official_domain_bonus" json:"official_domain_bonus"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold" json:"confidence_threshold"`
}

// Validate checks the policy constraints before first use.
func (p Policy) Validate() error {
	if p.MinTrustedSources < 1 || p.MinTrustedSources > 5 {
		return eris.Errorf("eligibility: policy %q: min_trusted_sources %d outside [1,5]", p.Name, p.MinTrustedSources)
	}
	if len(p.TrustedDomains) == 0 {
		return eris.Errorf("eligibility: policy %q: trusted domain list is empty", p.Name)
	}

	highPriority := 0
	official := 0
	for _, d := range p.TrustedDomains {
		if d.Domain == "" || strings.ContainsAny(d.Domain, " \t") || !strings.Contains(d.Domain, ".") {
			return eris.Errorf("eligibility: policy %q: malformed domain %q", p.Name, d.Domain)
		}
		if d.HighPriority {
			highPriority++
		}
		if d.Official {
			official++
		}
	}
	if highPriority < 2 {
		return eris.Errorf("eligibility: policy %q: needs at least 2 high-priority domains, has %d", p.Name, highPriority)
	}
	if p.OfficialDomainBonus != 0 && official == 0 {
		return eris.Errorf("eligibility: policy %q: official_domain_bonus set but no domain flagged official", p.Name)
	}
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return eris.Errorf("eligibility: policy %q: confidence_threshold %.2f outside [0,1]", p.Name, p.ConfidenceThreshold)
	}
	return nil
}

// trusted returns the entry for a domain, matched case-insensitively.
func (p Policy) trusted(domain string) (DomainEntry, bool) {
	d := strings.ToLower(strings.TrimSpace(domain))
	for _, e := range p.TrustedDomains {
		if strings.EqualFold(e.Domain, d) {
			return e, true
		}
	}
	return DomainEntry{}, false
}

// DefaultProfiles returns the built-in policy profiles. All share one
// domain list; only the thresholds move.
func DefaultProfiles() map[string]Policy {
	domains := []DomainEntry{
		{Domain: "hp.com", HighPriority: true, Official: true},
		{Domain: "canon.com", HighPriority: true, Official: true},
		{Domain: "brother.com", HighPriority: true, Official: true},
		{Domain: "trusted-retailer.example", HighPriority: true},
		{Domain: "regional-catalog.example", HighPriority: false},
	}
	return map[string]Policy{
		"strict": {
			Name:                "strict",
			MinTrustedSources:   3,
			TrustedDomains:      domains,
			OfficialDomainBonus: 0.15,
			ConfidenceThreshold: 0.60,
		},
		"standard": {
			Name:                "standard",
			MinTrustedSources:   2,
			TrustedDomains:      domains,
			OfficialDomainBonus: 0.20,
			ConfidenceThreshold: 0.50,
		},
		"lenient": {
			Name:                "lenient",
			MinTrustedSources:   1,
			TrustedDomains:      domains,
			OfficialDomainBonus: 0.25,
			ConfidenceThreshold: 0.30,
		},
		"ultra-strict": {
			Name:                "ultra-strict",
			MinTrustedSources:   4,
			TrustedDomains:      domains,
			OfficialDomainBonus: 0.10,
			ConfidenceThreshold: 0.75,
		},
	}
}

// LoadProfiles reads policy profiles from a YAML file and validates each.
// The file has a top-level "policies" key mapping profile name to policy.
func LoadProfiles(path string) (map[string]Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "eligibility: read profiles %s", path)
	}

	var wrapper struct {
		Policies map[string]Policy `yaml:"policies"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "eligibility: parse profiles")
	}

	for name, p := range wrapper.Policies {
		if p.Name == "" {
			p.Name = name
			wrapper.Policies[name] = p
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return wrapper.Policies, nil
}
