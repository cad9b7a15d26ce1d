package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("analysis.json", "analyze-job")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobText}}")
	assert.Contains(t, prompt, "seniority_level")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "nonexistent.json")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("generation.json", "nonexistent-key")
	assert.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "nonexistent-key")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! {{.Missing}}"
	result := Format(template, map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! {{.Missing}}", result)
}

func TestFormat_ValueContainingPlaceholder(t *testing.T) {
	// values are inserted once and never re-expanded
	result := Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} b", result)
}

func TestRender(t *testing.T) {
	prompt, err := Render("generation.json", "behavioral", map[string]string{
		"Count":      "4",
		"Seniority":  "senior",
		"JobTitle":   "Backend Engineer",
		"Industry":   "Fintech",
		"SoftSkills": "communication",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "exactly 4 behavioral")
	assert.Contains(t, prompt, "STAR")
	assert.Empty(t, Placeholders(prompt))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}}"))
	assert.Empty(t, Placeholders("no placeholders"))
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("generation.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "behavioral")
	assert.Contains(t, keys, "situational")
	assert.Contains(t, keys, "output-format")
	assert.IsIncreasing(t, keys)
}

func TestLoadJSON(t *testing.T) {
	var patterns map[string]struct {
		Template string   `json:"template"`
		Keywords []string `json:"keywords"`
	}
	require.NoError(t, LoadJSON("domains.json", &patterns))
	assert.Len(t, patterns, 6)
	for name, p := range patterns {
		assert.NotEmpty(t, p.Template, name)
		assert.NotEmpty(t, p.Keywords, name)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a\n\nb", Join("a", "  ", "b\n"))
}

func TestAllPromptFilesParse(t *testing.T) {
	ClearCache()

	for _, file := range []string{"analysis.json", "extraction.json", "generation.json", "ingestion.json"} {
		keys, err := List(file)
		require.NoError(t, err, file)
		assert.NotEmpty(t, keys, file)
	}
}
