// Package domains maps a job's domain and role signals onto a fixed set of
// question-generation patterns.
package domains

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
)

// Pattern is the generation template and category taxonomy for one domain.
type Pattern struct {
	Domain types.Domain
	Name   string
	// Template has {{.Count}}, {{.Seniority}}, {{.JobTitle}} and {{.Skills}} placeholders.
	Template   string
	Categories []string
	// AllowsImplementation is true when the template permits calculation or
	// implementation style questions instead of purely conceptual ones.
	AllowsImplementation bool

	keywords []string
}

// Keywords returns the normalized keywords that select this pattern.
func (p Pattern) Keywords() []string {
	return append([]string(nil), p.keywords...)
}

// Render fills the template for a concrete role.
func (p Pattern) Render(count int, seniority, jobTitle string, skills []string) string {
	skillText := "general skills for the role"
	if len(skills) > 0 {
		skillText = strings.Join(skills, ", ")
	}
	return prompts.Format(p.Template, map[string]string{
		"Count":     fmt.Sprintf("%d", count),
		"Seniority": seniority,
		"JobTitle":  jobTitle,
		"Skills":    skillText,
	})
}

type patternFile struct {
	Name                 string   `json:"name"`
	Categories           []string `json:"categories"`
	AllowsImplementation bool     `json:"allows_implementation"`
	Keywords             []string `json:"keywords"`
	Template             string   `json:"template"`
}

// registry is filled once at init and only read afterwards.
var registry = mustLoad()

func mustLoad() map[types.Domain]Pattern {
	var raw map[string]patternFile
	if err := prompts.LoadJSON("domains.json", &raw); err != nil {
		panic(fmt.Sprintf("failed to load domain patterns: %v", err))
	}

	out := make(map[types.Domain]Pattern, len(types.AllDomains))
	for _, d := range types.AllDomains {
		pf, ok := raw[string(d)]
		if !ok {
			panic(fmt.Sprintf("domain pattern %q missing from domains.json", d))
		}
		keywords := make([]string, 0, len(pf.Keywords))
		for _, kw := range pf.Keywords {
			if n := normalize(kw); n != "" {
				keywords = append(keywords, n)
			}
		}
		out[d] = Pattern{
			Domain:               d,
			Name:                 pf.Name,
			Template:             pf.Template,
			Categories:           pf.Categories,
			AllowsImplementation: pf.AllowsImplementation,
			keywords:             keywords,
		}
	}
	return out
}

// Get returns the pattern for d.
func Get(d types.Domain) (Pattern, bool) {
	p, ok := registry[d]
	if !ok {
		return Pattern{}, false
	}
	return clonePattern(p), true
}

// Default returns the fallback pattern.
func Default() Pattern {
	p, _ := Get(types.DefaultDomain)
	return p
}

// All returns every pattern in classification order.
func All() []Pattern {
	out := make([]Pattern, 0, len(types.AllDomains))
	for _, d := range types.AllDomains {
		out = append(out, clonePattern(registry[d]))
	}
	return out
}

func clonePattern(p Pattern) Pattern {
	p.Categories = append([]string(nil), p.Categories...)
	p.keywords = append([]string(nil), p.keywords...)
	return p
}
