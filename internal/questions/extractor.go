// Package questions turns evidence and job profiles into interview questions.
package questions

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
)

// DefaultMaxEvidence caps how many snippets go into one extraction prompt.
const DefaultMaxEvidence = 12

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	MaxEvidence int
	// MaxQuestions bounds the questions requested from the model.
	MaxQuestions int
	Tier         llm.ModelTier
}

// ExtractOptions describes one extraction call.
type ExtractOptions struct {
	Category  types.Category
	Company   string
	Seniority string
	JobTitle  string
}

// Extractor pulls interview questions that actually appear in search evidence.
type Extractor struct {
	client llm.Client
	opts   ExtractorOptions
}

// NewExtractor creates an Extractor.
func NewExtractor(client llm.Client, opts ExtractorOptions) *Extractor {
	if opts.MaxEvidence <= 0 {
		opts.MaxEvidence = DefaultMaxEvidence
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultMaxEvidence
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	return &Extractor{client: client, opts: opts}
}

// Extract returns the questions found in evidence. Empty evidence makes no
// model call. Any call or parse failure yields an empty list.
func (e *Extractor) Extract(ctx context.Context, evidence []types.EvidenceSnippet, opts ExtractOptions) []types.GeneratedQuestion {
	out := []types.GeneratedQuestion{}
	if e == nil || e.client == nil || len(evidence) == 0 {
		return out
	}
	if len(evidence) > e.opts.MaxEvidence {
		evidence = evidence[:e.opts.MaxEvidence]
	}

	prompt := e.buildPrompt(evidence, opts)
	system := prompts.MustGet("extraction.json", "system")

	raw, err := e.client.GenerateJSON(ctx, system, prompt, e.opts.Tier)
	if err != nil {
		log.Printf("[questions] %s extraction call failed: %v", opts.Category, err)
		return out
	}

	items, err := parseQuestions(raw)
	if err != nil {
		log.Printf("[questions] %s extraction output unusable: %v", opts.Category, err)
		return out
	}

	byURL := make(map[string]types.EvidenceSnippet, len(evidence))
	for _, ev := range evidence {
		byURL[ev.URL] = ev
	}

	company := types.StringPtr(opts.Company)
	for _, item := range items {
		text := item.Question
		if text == "" {
			continue
		}

		cited, found := citedSnippet(item, evidence, byURL)
		sourceURL := item.SourceURL
		if sourceURL == "" && found {
			sourceURL = cited.URL
		}

		q := types.GeneratedQuestion{
			Question:   text,
			Answer:     item.Answer,
			Category:   opts.Category,
			Source:     types.SourceWebSearch,
			SourceURL:  types.StringPtr(sourceURL),
			Company:    company,
			Difficulty: types.ParseDifficulty(item.Difficulty),
		}
		if found && cited.Skill != nil {
			q.SkillTag = types.StringPtr(*cited.Skill)
		}
		out = append(out, q)
	}
	return out
}

// citedSnippet resolves which snippet a question came from: by URL first,
// then by the 1-based index the model cited.
func citedSnippet(item modelQuestion, evidence []types.EvidenceSnippet, byURL map[string]types.EvidenceSnippet) (types.EvidenceSnippet, bool) {
	if item.SourceURL != "" {
		if ev, ok := byURL[item.SourceURL]; ok {
			return ev, true
		}
	}
	if item.SourceIndex >= 1 && item.SourceIndex <= len(evidence) {
		return evidence[item.SourceIndex-1], true
	}
	return types.EvidenceSnippet{}, false
}

func (e *Extractor) buildPrompt(evidence []types.EvidenceSnippet, opts ExtractOptions) string {
	var b strings.Builder
	for i, ev := range evidence {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(ev.Title))
		if s := strings.TrimSpace(ev.Snippet); s != "" {
			fmt.Fprintf(&b, "%s\n", s)
		}
		fmt.Fprintf(&b, "URL: %s\n\n", ev.URL)
	}

	companyContext := ""
	if c := strings.TrimSpace(opts.Company); c != "" {
		companyContext = prompts.Format(prompts.MustGet("extraction.json", "company-context"), map[string]string{"Company": c})
	}

	return prompts.Format(prompts.MustGet("extraction.json", "extract-questions"), map[string]string{
		"CompanyContext": companyContext,
		"Evidence":       strings.TrimSpace(b.String()),
		"Seniority":      orDefault(opts.Seniority, string(types.SeniorityMid)),
		"JobTitle":       orDefault(opts.JobTitle, types.DefaultJobTitle),
		"Count":          fmt.Sprintf("%d", e.opts.MaxQuestions),
	})
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
