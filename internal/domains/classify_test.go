package domains

import (
	"strings"
	"testing"

	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		domainHint string
		jobType    string
		want       types.Domain
	}{
		{"mechanical engineering", "Mechanical Engineering", "", types.DomainEngineering},
		{"empty hints fall back", "", "", types.DomainBusiness},
		{"software beats engineering", "Software Engineering", "", types.DomainSoftware},
		{"job type only", "", "backend software development", types.DomainSoftware},
		{"hyphenated keyword", "", "Front-End developer", types.DomainSoftware},
		{"multi word keyword", "", "site reliability", types.DomainSoftware},
		{"healthcare", "healthcare", "clinical nursing", types.DomainHealthcare},
		{"creative", "", "graphic designer", types.DomainCreative},
		{"humanities", "education", "high school teacher", types.DomainHumanities},
		{"business", "", "account executive, sales", types.DomainBusiness},
		{"unknown falls back", "zzz", "qqq", types.DomainBusiness},
		{"word boundary", "", "hospitality", types.DomainBusiness},
		{"case insensitive", "CIVIL", "", types.DomainEngineering},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.domainHint, tt.jobType)
			assert.Equal(t, tt.want, got.Domain)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	first := Classify("Mechanical Engineering", "")
	first.Categories[0] = "mutated"

	second := Classify("Mechanical Engineering", "")
	assert.NotEqual(t, "mutated", second.Categories[0])
}

func TestClassifyProfile(t *testing.T) {
	assert.Equal(t, types.DomainBusiness, ClassifyProfile(nil).Domain)

	p := &types.JobProfile{Domain: types.DomainSoftware, JobType: "backend"}
	assert.Equal(t, types.DomainSoftware, ClassifyProfile(p).Domain)

	// The hint carries more signal than the enum it fell back to.
	hinted := &types.JobProfile{Domain: types.DomainBusiness, DomainHint: "Nursing", JobType: "ward staff"}
	assert.Equal(t, types.DomainHealthcare, ClassifyProfile(hinted).Domain)
}

func TestRegistry_AllDomainsPresent(t *testing.T) {
	all := All()
	require.Len(t, all, len(types.AllDomains))
	for i, p := range all {
		assert.Equal(t, types.AllDomains[i], p.Domain)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Categories)
		assert.NotEmpty(t, p.Keywords())
		assert.ElementsMatch(t, []string{"Count", "JobTitle", "Seniority", "Skills"}, prompts.Placeholders(p.Template), p.Domain)
	}
}

func TestPatterns_ImplementationPolicy(t *testing.T) {
	for _, p := range All() {
		if p.Domain == types.DomainEngineering {
			assert.True(t, p.AllowsImplementation)
			continue
		}
		assert.False(t, p.AllowsImplementation, p.Domain)
	}

	software, ok := Get(types.DomainSoftware)
	require.True(t, ok)
	assert.Contains(t, software.Template, "Do NOT ask the candidate to write code")
}

func TestPattern_Render(t *testing.T) {
	p, ok := Get(types.DomainSoftware)
	require.True(t, ok)

	out := p.Render(4, "senior", "Backend Engineer", []string{"Python", "PostgreSQL"})
	assert.Contains(t, out, "exactly 4 technical")
	assert.Contains(t, out, "senior Backend Engineer")
	assert.Contains(t, out, "Python, PostgreSQL")
	assert.False(t, strings.Contains(out, "{{."))

	out = p.Render(2, "mid", "Engineer", nil)
	assert.Contains(t, out, "general skills for the role")
}

func TestGet_Unknown(t *testing.T) {
	_, ok := Get("astrology")
	assert.False(t, ok)
	assert.Equal(t, types.DomainBusiness, Default().Domain)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "full stack dev", normalize("  Full-Stack / DEV!! "))
	assert.Equal(t, "", normalize("--"))
}
