package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/domains"
	"github.com/jonathan/interview-prep/internal/types"
)

// CompositionError reports an assembled result that violates its invariants.
// It means a bug in assembly, not a provider failure.
type CompositionError struct {
	Category types.Category
	Reason   string
}

func (e *CompositionError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("composition error: %s", e.Reason)
	}
	return fmt.Sprintf("composition error in %s: %s", e.Category, e.Reason)
}

// parts are the branch outputs of one run.
type parts struct {
	extractedTechnical []types.GeneratedQuestion
	technical          []types.GeneratedQuestion
	behavioral         []types.GeneratedQuestion
	situational        []types.GeneratedQuestion
	companySpecific    []types.GeneratedQuestion
}

func (o *Orchestrator) compose(profile *types.JobProfile, pattern domains.Pattern, p parts) *types.AggregateResult {
	company := types.StringPtr(profile.Company())

	technical := make([]types.GeneratedQuestion, 0, len(p.extractedTechnical)+len(p.technical))
	technical = append(technical, p.extractedTechnical...)
	technical = append(technical, p.technical...)

	return &types.AggregateResult{
		JobAnalysis:      *profile,
		Domain:           pattern.Domain,
		DomainCategories: append([]string{}, pattern.Categories...),
		Technical:        o.finalize(technical, types.CategoryTechnical, company, nil),
		Behavioral:       o.finalize(p.behavioral, types.CategoryBehavioral, company, nil),
		Situational:      o.finalize(p.situational, types.CategorySituational, company, nil),
		CompanySpecific:  o.finalize(p.companySpecific, types.CategoryCompanySpecific, company, nil),
	}
}

// finalize stamps category, company and ID on every question and drops empty
// questions, exact-text duplicates and anything in exclude. The result is never nil.
func (o *Orchestrator) finalize(list []types.GeneratedQuestion, category types.Category, company *string, exclude map[string]bool) []types.GeneratedQuestion {
	out := make([]types.GeneratedQuestion, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, q := range list {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || seen[q.Question] || exclude[q.Question] {
			continue
		}
		seen[q.Question] = true

		q.Category = category
		if q.ID == "" {
			q.ID = o.opts.NewID()
		}
		if company != nil {
			c := *company
			q.Company = &c
		}
		if q.Source == "" {
			q.Source = types.SourceAIGenerated
		}
		if q.Difficulty == "" {
			q.Difficulty = types.DifficultyMedium
		}
		out = append(out, q)
	}
	return out
}

// Validate checks the invariants of an assembled result: lists are non-nil,
// every question is non-empty and filed under its own category, IDs are
// unique, and no list repeats a question text.
func Validate(result *types.AggregateResult) error {
	if result == nil {
		return &CompositionError{Reason: "result is nil"}
	}

	ids := make(map[string]bool)
	for _, c := range types.AllCategories {
		list := result.Questions(c)
		if list == nil {
			return &CompositionError{Category: c, Reason: "list is nil"}
		}

		texts := make(map[string]bool, len(list))
		for _, q := range list {
			switch {
			case strings.TrimSpace(q.Question) == "":
				return &CompositionError{Category: c, Reason: "empty question"}
			case q.Category != c:
				return &CompositionError{Category: c, Reason: fmt.Sprintf("question %q is filed as %s", q.ID, q.Category)}
			case q.ID == "":
				return &CompositionError{Category: c, Reason: "question without ID"}
			case ids[q.ID]:
				return &CompositionError{Category: c, Reason: fmt.Sprintf("duplicate ID %q", q.ID)}
			case texts[q.Question]:
				return &CompositionError{Category: c, Reason: fmt.Sprintf("duplicate question %q", q.Question)}
			case q.Source != types.SourceAIGenerated && q.Source != types.SourceWebSearch:
				return &CompositionError{Category: c, Reason: fmt.Sprintf("unknown source %q", q.Source)}
			}
			ids[q.ID] = true
			texts[q.Question] = true
		}
	}
	return nil
}
