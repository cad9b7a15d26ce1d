package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_JobProfile(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{
			name: "valid profile",
			doc:  `{"job_title": "Backend Engineer", "company_name": null, "technical_skills": ["Go"]}`,
		},
		{
			name:       "missing title",
			doc:        `{"industry": "Fintech"}`,
			wantFields: []string{"job_title"},
		},
		{
			name:       "empty title",
			doc:        `{"job_title": ""}`,
			wantFields: []string{"job_title"},
		},
		{
			name:       "skills wrong type",
			doc:        `{"job_title": "Nurse", "technical_skills": "triage"}`,
			wantFields: []string{"technical_skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(JobProfile, tt.doc)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve.Fields(), len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, ve.Error(), f)
			}
		})
	}
}

func TestValidate_Favorite(t *testing.T) {
	valid := `{"id": "f1", "question": "Q", "answer": "A", "category": "behavioral", "created_at": "2026-01-02T03:04:05Z"}`
	assert.NoError(t, Validate(Favorite, valid))

	bad := `{"id": "f1", "question": "Q", "answer": "A", "category": "trivia", "created_at": "x"}`
	var ve *ValidationError
	require.ErrorAs(t, Validate(Favorite, bad), &ve)
	assert.Contains(t, ve.Error(), "category")
}

func TestValidate_UnknownSchema(t *testing.T) {
	var le *SchemaLoadError
	require.ErrorAs(t, Validate("missing", `{}`), &le)
	assert.Contains(t, le.Error(), "missing")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["id"]}`
	assert.NoError(t, ValidateJSONString(schema, `{"id": 1}`))

	var ve *ValidationError
	require.ErrorAs(t, ValidateJSONString(schema, `{not json`), &ve)
	assert.Equal(t, []string{"(root)"}, ve.Fields())

	var le *SchemaLoadError
	assert.ErrorAs(t, ValidateJSONString(`{"type": 12}`, `{}`), &le)
}

func TestValidate_CompilesOnce(t *testing.T) {
	first, err := schemaFor(Favorite)
	require.NoError(t, err)
	second, err := schemaFor(Favorite)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
