package questions

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/interview-prep/internal/domains"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
)

// Generator defaults.
const (
	DefaultCount      = 4
	DefaultMaxSamples = 3
)

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	// Count is the number of questions per category when an input leaves it zero.
	Count int
	// MaxSamples caps the real questions shown as a depth reference.
	MaxSamples int
	Tier       llm.ModelTier
}

// Generator synthesizes new questions with the LLM.
type Generator struct {
	client llm.Client
	opts   GeneratorOptions
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, opts GeneratorOptions) *Generator {
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	return &Generator{client: client, opts: opts}
}

// DefaultCount returns the configured per-category count.
func (g *Generator) DefaultCount() int {
	return g.opts.Count
}

// TechnicalInput is the input for technical generation.
type TechnicalInput struct {
	Profile *types.JobProfile
	Pattern domains.Pattern
	// Samples are extracted real questions used to calibrate depth.
	Samples []types.GeneratedQuestion
	Count   int
	Exclude []string
}

// BehavioralInput is the input for behavioral generation.
type BehavioralInput struct {
	Profile *types.JobProfile
	Count   int
	Exclude []string
}

// SituationalInput is the input for situational generation.
type SituationalInput struct {
	Profile *types.JobProfile
	Pattern domains.Pattern
	Count   int
	Exclude []string
}

// Technical generates domain-specific technical questions from the pattern template.
func (g *Generator) Technical(ctx context.Context, in TechnicalInput) []types.GeneratedQuestion {
	p := profileOrDefault(in.Profile)
	pattern := in.Pattern
	if pattern.Template == "" {
		pattern = domains.Default()
	}
	count := g.count(in.Count)

	prompt := prompts.Join(
		pattern.Render(count, string(p.SeniorityLevel), p.JobTitle, p.AllSkills()),
		g.samplesBlock(in.Samples),
		excludeBlock(in.Exclude),
		prompts.MustGet("generation.json", "output-format"),
	)
	return g.generate(ctx, types.CategoryTechnical, prompt)
}

// Behavioral generates past-experience questions with STAR-method answers.
func (g *Generator) Behavioral(ctx context.Context, in BehavioralInput) []types.GeneratedQuestion {
	p := profileOrDefault(in.Profile)
	softSkills := "communication, collaboration, ownership"
	if len(p.SoftSkills) > 0 {
		softSkills = strings.Join(p.SoftSkills, ", ")
	}

	body := prompts.Format(prompts.MustGet("generation.json", "behavioral"), map[string]string{
		"Count":      fmt.Sprintf("%d", g.count(in.Count)),
		"Seniority":  string(p.SeniorityLevel),
		"JobTitle":   p.JobTitle,
		"Industry":   p.Industry,
		"SoftSkills": softSkills,
	})
	prompt := prompts.Join(body, excludeBlock(in.Exclude), prompts.MustGet("generation.json", "output-format"))
	return g.generate(ctx, types.CategoryBehavioral, prompt)
}

// Situational generates hypothetical "what would you do" scenarios for the role.
func (g *Generator) Situational(ctx context.Context, in SituationalInput) []types.GeneratedQuestion {
	p := profileOrDefault(in.Profile)
	domainName := in.Pattern.Name
	if domainName == "" {
		domainName = string(p.Domain)
	}

	body := prompts.Format(prompts.MustGet("generation.json", "situational"), map[string]string{
		"Count":     fmt.Sprintf("%d", g.count(in.Count)),
		"Seniority": string(p.SeniorityLevel),
		"JobTitle":  p.JobTitle,
		"Domain":    domainName,
		"Industry":  p.Industry,
	})
	prompt := prompts.Join(body, excludeBlock(in.Exclude), prompts.MustGet("generation.json", "output-format"))
	return g.generate(ctx, types.CategorySituational, prompt)
}

// ForCategory dispatches to the generator for category. Company-specific
// questions are never generated and return an empty list.
func (g *Generator) ForCategory(ctx context.Context, category types.Category, profile *types.JobProfile, pattern domains.Pattern, count int, exclude []string) []types.GeneratedQuestion {
	switch category {
	case types.CategoryTechnical:
		return g.Technical(ctx, TechnicalInput{Profile: profile, Pattern: pattern, Count: count, Exclude: exclude})
	case types.CategoryBehavioral:
		return g.Behavioral(ctx, BehavioralInput{Profile: profile, Count: count, Exclude: exclude})
	case types.CategorySituational:
		return g.Situational(ctx, SituationalInput{Profile: profile, Pattern: pattern, Count: count, Exclude: exclude})
	}
	return []types.GeneratedQuestion{}
}

func (g *Generator) generate(ctx context.Context, category types.Category, prompt string) []types.GeneratedQuestion {
	out := []types.GeneratedQuestion{}
	if g == nil || g.client == nil {
		return out
	}

	raw, err := g.client.GenerateJSON(ctx, prompts.MustGet("generation.json", "system"), prompt, g.opts.Tier)
	if err != nil {
		log.Printf("[questions] %s generation call failed: %v", category, err)
		return out
	}

	items, err := parseQuestions(raw)
	if err != nil {
		log.Printf("[questions] %s generation output unusable: %v", category, err)
		return out
	}

	for _, item := range items {
		if item.Question == "" {
			continue
		}
		out = append(out, types.GeneratedQuestion{
			Question:   item.Question,
			Answer:     item.Answer,
			Category:   category,
			Source:     types.SourceAIGenerated,
			Difficulty: types.ParseDifficulty(item.Difficulty),
		})
	}
	return out
}

func (g *Generator) count(n int) int {
	if n > 0 {
		return n
	}
	return g.opts.Count
}

func (g *Generator) samplesBlock(samples []types.GeneratedQuestion) string {
	var lines []string
	for _, s := range samples {
		if len(lines) == g.opts.MaxSamples {
			break
		}
		if text := strings.TrimSpace(s.Question); text != "" {
			lines = append(lines, "- "+text)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return prompts.Format(prompts.MustGet("generation.json", "technical-samples"), map[string]string{
		"Samples": strings.Join(lines, "\n"),
	})
}

func excludeBlock(existing []string) string {
	var lines []string
	for _, q := range existing {
		if q = strings.TrimSpace(q); q != "" {
			lines = append(lines, "- "+q)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return prompts.Format(prompts.MustGet("generation.json", "exclude"), map[string]string{
		"Existing": strings.Join(lines, "\n"),
	})
}

func profileOrDefault(p *types.JobProfile) *types.JobProfile {
	if p == nil {
		return types.DefaultJobProfile()
	}
	return p
}
