package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/interview-prep/internal/domains"
	"github.com/jonathan/interview-prep/internal/questions"
	"github.com/jonathan/interview-prep/internal/types"
)

// UnknownCategoryError is returned by LoadMore for a category it cannot generate.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown question category %q", e.Category)
}

// LoadMore generates another batch of one category. It reuses req.JobAnalysis
// when present and otherwise analyzes the description again. Questions whose
// text is in req.ExistingQuestions are never returned.
func (o *Orchestrator) LoadMore(ctx context.Context, req types.LoadMoreRequest, opts ...RunOption) (*types.LoadMoreResult, error) {
	category, ok := types.ParseCategory(req.Category)
	if !ok {
		return nil, &UnknownCategoryError{Category: req.Category}
	}
	r := newRun(opts)
	started := time.Now()

	var profile *types.JobProfile
	var pattern domains.Pattern
	if req.JobAnalysis != nil {
		copied := *req.JobAnalysis
		profile = &copied
		pattern = domains.ClassifyProfile(profile)
		profile.Domain = pattern.Domain
	} else {
		profile, pattern = o.analyze(ctx, r, req.JobDescription)
	}

	exclude := make(map[string]bool, len(req.ExistingQuestions))
	existing := make([]string, 0, len(req.ExistingQuestions))
	for _, q := range req.ExistingQuestions {
		if q = strings.TrimSpace(q); q != "" && !exclude[q] {
			exclude[q] = true
			existing = append(existing, q)
		}
	}

	count := req.Count
	if count <= 0 {
		count = o.opts.QuestionsPerCategory
	}

	raw := o.loadCategory(ctx, r, category, profile, pattern, count, existing)
	batch := o.finalize(raw, category, types.StringPtr(profile.Company()), exclude)

	log.Printf("[pipeline] loaded %d more %s questions in %s", len(batch), category, time.Since(started).Round(time.Millisecond))
	return &types.LoadMoreResult{Category: category, Questions: batch}, nil
}

func (o *Orchestrator) loadCategory(ctx context.Context, r *run, category types.Category, profile *types.JobProfile, pattern domains.Pattern, count int, existing []string) (out []types.GeneratedQuestion) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[pipeline] load more %s panicked: %v", category, rec)
			out = nil
		}
	}()
	start := time.Now()

	switch category {
	case types.CategoryCompanySpecific:
		company := profile.Company()
		if company == "" || o.deps.Gatherer == nil || o.deps.Extractor == nil {
			return nil
		}
		evidence := o.deps.Gatherer.GatherCompanyEvidence(ctx, company, profile.JobTitle)
		r.emit(StepCompanyEvidence, "company evidence gathered", len(evidence), start)
		out = o.deps.Extractor.Extract(ctx, evidence, questions.ExtractOptions{
			Category:  category,
			Company:   company,
			Seniority: string(profile.SeniorityLevel),
			JobTitle:  profile.JobTitle,
		})
		r.emit(StepExtractCompany, "company questions extracted", len(out), start)
		return out

	case types.CategoryTechnical, types.CategoryBehavioral, types.CategorySituational:
		if o.deps.Generator == nil {
			return nil
		}
		out = o.deps.Generator.ForCategory(ctx, category, profile, pattern, count, existing)
		r.emit(generationSteps[category], string(category)+" questions generated", len(out), start)
	}
	return out
}

var generationSteps = map[types.Category]string{
	types.CategoryTechnical:   StepTechnical,
	types.CategoryBehavioral:  StepBehavioral,
	types.CategorySituational: StepSituational,
}
