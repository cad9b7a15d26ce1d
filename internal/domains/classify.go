package domains

import (
	"cmp"
	"strings"
	"unicode"

	"github.com/jonathan/interview-prep/internal/types"
)

// Classify picks the pattern whose keywords appear in the combined hints.
// Domains are tried in types.AllDomains order and the first hit wins, so
// "software engineering" is software while "mechanical engineering" is engineering.
// No hit returns the default pattern.
func Classify(domainHint, jobTypeHint string) Pattern {
	text := " " + normalize(domainHint+" "+jobTypeHint) + " "
	if strings.TrimSpace(text) == "" {
		return Default()
	}

	for _, d := range types.AllDomains {
		p := registry[d]
		for _, kw := range p.keywords {
			if strings.Contains(text, " "+kw+" ") {
				return clonePattern(p)
			}
		}
	}
	return Default()
}

// ClassifyProfile classifies using the profile's domain hint, or its domain
// when there is no hint, together with its job type.
func ClassifyProfile(p *types.JobProfile) Pattern {
	if p == nil {
		return Default()
	}
	return Classify(cmp.Or(p.DomainHint, string(p.Domain)), p.JobType)
}

// normalize lower-cases s and turns every run of non-alphanumeric characters into one space.
func normalize(s string) string {
	var sb strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}
