package parsing

import (
	"testing"

	"github.com/jonathan/interview-prep/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Golang to Go", "Golang", "Go"},
		{"go lang to Go", "go  lang", "Go"},
		{"JS to JavaScript", "JS", "JavaScript"},
		{"K8s to Kubernetes", "k8s", "Kubernetes"},
		{"postgres", "postgres", "PostgreSQL"},
		{"lowercase word capitalized", "python", "Python"},
		{"acronym preserved", "SQL", "SQL"},
		{"compliance acronym preserved", "HIPAA", "HIPAA"},
		{"multi-word stays as-is", "Distributed Systems", "Distributed Systems"},
		{"lowercase phrase stays as-is", "patient care", "patient care"},
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSkillName(tt.input))
		})
	}
}

func TestNormalizeSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, NormalizeSkills([]string{"golang", " ", "SQL", "Go", "sql"}))

	out := NormalizeSkills(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNormalizeSeniority(t *testing.T) {
	tests := []struct {
		input string
		want  types.Seniority
	}{
		{"", types.SeniorityMid},
		{"Internship", types.SeniorityIntern},
		{"Entry level", types.SeniorityJunior},
		{"jr", types.SeniorityJunior},
		{"mid-level", types.SeniorityMid},
		{"Senior", types.SenioritySenior},
		{"Tech Lead", types.SeniorityLead},
		{"Staff", types.SeniorityPrincipal},
		{"Principal", types.SeniorityPrincipal},
		{"Director", types.SeniorityExecutive},
		{"executive", types.SeniorityExecutive},
		{"something odd", types.SeniorityMid},
		{"Sr.", types.SenioritySenior},
		{"Mid-Senior level", types.SenioritySenior},
		{"Head of Platform", types.SeniorityExecutive},
		{"VP, Engineering", types.SeniorityExecutive},
		{"Engineering Manager", types.SeniorityLead},
		{"Summer interns", types.SeniorityIntern},
		{"internal tools", types.SeniorityMid},
		{"International", types.SeniorityMid},
		{"mvp builder", types.SeniorityMid},
		{"Misleading", types.SeniorityMid},
		{"Entrylevel", types.SeniorityMid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSeniority(tt.input))
		})
	}
}

func TestNormalizeCompany(t *testing.T) {
	name := func(s string) *string { return &s }

	assert.Nil(t, normalizeCompany(nil))
	assert.Nil(t, normalizeCompany(name("  ")))
	assert.Nil(t, normalizeCompany(name("Unknown")))
	assert.Equal(t, "Acme", *normalizeCompany(name(" Acme ")))
}
