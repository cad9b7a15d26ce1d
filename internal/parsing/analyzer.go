// Package parsing turns raw job description text into a structured JobProfile using one LLM call.
package parsing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/schemas"
	"github.com/jonathan/interview-prep/internal/types"
)

// DefaultMaxInputChars caps how much of a job description is sent to the model.
const DefaultMaxInputChars = 4000

// AnalyzerOptions configures an Analyzer.
type AnalyzerOptions struct {
	// MaxInputChars is measured in runes. Zero means DefaultMaxInputChars.
	MaxInputChars int
	// Tier defaults to llm.TierLite.
	Tier llm.ModelTier
}

// Analyzer extracts a JobProfile from job description text.
type Analyzer struct {
	client llm.Client
	opts   AnalyzerOptions
}

// NewAnalyzer creates an Analyzer. A nil client makes every analysis fall back to the default profile.
func NewAnalyzer(client llm.Client, opts AnalyzerOptions) *Analyzer {
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}
	return &Analyzer{client: client, opts: opts}
}

// rawProfile is the shape the model is asked to return.
type rawProfile struct {
	CompanyName     *string  `json:"company_name"`
	JobTitle        string   `json:"job_title"`
	Industry        string   `json:"industry"`
	SeniorityLevel  string   `json:"seniority_level"`
	Domain          string   `json:"domain"`
	TechnicalSkills []string `json:"technical_skills"`
	SoftSkills      []string `json:"soft_skills"`
	KeySkills       []string `json:"key_skills"`
	JobType         string   `json:"job_type"`
}

// Analyze never fails: any provider, parse or validation problem yields
// types.DefaultJobProfile so the rest of the pipeline can continue.
func (a *Analyzer) Analyze(ctx context.Context, jobDescription string) (profile *types.JobProfile) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[parsing] job analysis panicked, using default profile: %v", r)
			profile = types.DefaultJobProfile()
		}
	}()

	p, err := a.AnalyzeStrict(ctx, jobDescription)
	if err != nil {
		log.Printf("[parsing] job analysis failed, using default profile: %v", err)
		return types.DefaultJobProfile()
	}
	return p
}

// AnalyzeStrict is Analyze with the failure reason exposed as an
// *APICallError, *ParseError or *ValidationError.
func (a *Analyzer) AnalyzeStrict(ctx context.Context, jobDescription string) (*types.JobProfile, error) {
	if a.client == nil {
		return nil, &APICallError{Message: "LLM client is not configured"}
	}

	prompt, err := a.buildPrompt(jobDescription)
	if err != nil {
		return nil, &APICallError{Message: "failed to build analysis prompt", Cause: err}
	}
	system := prompts.MustGet("analysis.json", "system")

	responseText, err := a.client.GenerateJSON(ctx, system, prompt, a.opts.Tier)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate job analysis", Cause: err}
	}

	jsonText, err := llm.Recover(responseText, llm.ShapeObject)
	if err != nil {
		return nil, &ParseError{Message: "failed to recover JSON object", Cause: err}
	}

	if err := schemas.Validate(schemas.JobProfile, jsonText); err != nil {
		return nil, &ValidationError{Field: "job_profile", Message: "model output does not match schema", Cause: err}
	}

	var raw rawProfile
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, &ParseError{Message: "failed to decode job profile", Cause: err}
	}

	return normalizeProfile(&raw), nil
}

func (a *Analyzer) buildPrompt(jobDescription string) (string, error) {
	text := TruncateRunes(jobDescription, a.opts.MaxInputChars)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("job description is empty")
	}
	return prompts.Render("analysis.json", "analyze-job", map[string]string{
		"JobText": text,
	})
}

// normalizeProfile fills defaults and canonicalizes enum fields and skill lists.
func normalizeProfile(raw *rawProfile) *types.JobProfile {
	return &types.JobProfile{
		CompanyName:     normalizeCompany(raw.CompanyName),
		JobTitle:        orDefault(raw.JobTitle, types.DefaultJobTitle),
		Industry:        orDefault(raw.Industry, types.DefaultIndustry),
		SeniorityLevel:  NormalizeSeniority(raw.SeniorityLevel),
		Domain:          types.ParseDomain(raw.Domain),
		DomainHint:      strings.TrimSpace(raw.Domain),
		TechnicalSkills: NormalizeSkills(raw.TechnicalSkills),
		SoftSkills:      NormalizeSkills(raw.SoftSkills),
		KeySkills:       NormalizeSkills(raw.KeySkills),
		JobType:         orDefault(raw.JobType, types.DefaultJobType),
	}
}
