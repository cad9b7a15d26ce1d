// Package types provides type definitions for structured data used throughout the interview-prep system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Seniority is the normalized seniority level of a role.
type Seniority string

// Seniority levels, lowest first.
const (
	SeniorityIntern    Seniority = "intern"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityPrincipal Seniority = "principal"
	SeniorityExecutive Seniority = "executive"
)

// Domain is the broad field a job belongs to. It selects the question pattern.
type Domain string

// Known domains. DomainBusiness doubles as the fallback.
const (
	DomainSoftware    Domain = "software"
	DomainEngineering Domain = "engineering"
	DomainBusiness    Domain = "business"
	DomainHumanities  Domain = "humanities"
	DomainHealthcare  Domain = "healthcare"
	DomainCreative    Domain = "creative"
)

// DefaultDomain is used when a domain cannot be determined.
const DefaultDomain = DomainBusiness

// AllDomains lists domains in classification order.
var AllDomains = []Domain{
	DomainSoftware,
	DomainEngineering,
	DomainBusiness,
	DomainHumanities,
	DomainHealthcare,
	DomainCreative,
}

// ParseDomain maps a free-text value onto a known Domain, falling back to DefaultDomain.
func ParseDomain(s string) Domain {
	v := Domain(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range AllDomains {
		if v == d {
			return d
		}
	}
	return DefaultDomain
}

// JobProfile is the structured summary of a job description
type JobProfile struct {
	CompanyName     *string   `json:"company_name,omitempty"`
	JobTitle        string    `json:"job_title"`
	Industry        string    `json:"industry"`
	SeniorityLevel  Seniority `json:"seniority_level"`
	Domain          Domain    `json:"domain"`
	TechnicalSkills []string  `json:"technical_skills"`
	SoftSkills      []string  `json:"soft_skills"`
	KeySkills       []string  `json:"key_skills"`
	JobType         string    `json:"job_type"`

	// DomainHint is the analyzer's free-text domain before it was mapped onto Domain.
	DomainHint string `json:"domain_hint,omitempty"`
}

// Default values used when a job description cannot be analyzed.
const (
	DefaultJobTitle = "Professional"
	DefaultIndustry = "General"
	DefaultJobType  = "full-time"
)

// DefaultJobProfile returns the profile substituted for a failed analysis.
func DefaultJobProfile() *JobProfile {
	return &JobProfile{
		JobTitle:        DefaultJobTitle,
		Industry:        DefaultIndustry,
		SeniorityLevel:  SeniorityMid,
		Domain:          DefaultDomain,
		TechnicalSkills: []string{},
		SoftSkills:      []string{},
		KeySkills:       []string{},
		JobType:         DefaultJobType,
	}
}

// Company returns the company name, or "" when none was extracted.
func (p *JobProfile) Company() string {
	if p == nil || p.CompanyName == nil {
		return ""
	}
	return *p.CompanyName
}

// AllSkills returns technical skills followed by key skills, deduplicated case-insensitively.
func (p *JobProfile) AllSkills() []string {
	out := make([]string, 0, len(p.TechnicalSkills)+len(p.KeySkills))
	seen := make(map[string]bool)
	for _, list := range [][]string{p.TechnicalSkills, p.KeySkills} {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// EvidenceSnippet is one search result used as grounding for question extraction.
type EvidenceSnippet struct {
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Source  string  `json:"source"`
	URL     string  `json:"url"`
	Skill   *string `json:"skill,omitempty"`
}
