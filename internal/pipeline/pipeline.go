// Package pipeline orchestrates analysis, research and generation into one question set.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-prep/internal/domains"
	"github.com/jonathan/interview-prep/internal/questions"
	"github.com/jonathan/interview-prep/internal/types"
)

// Analyzer turns a job description into a profile. It must never return nil
// for a failed analysis; implementations substitute a default profile.
type Analyzer interface {
	Analyze(ctx context.Context, jobDescription string) *types.JobProfile
}

// EvidenceGatherer searches the web for real interview questions.
type EvidenceGatherer interface {
	GatherSkillEvidence(ctx context.Context, skills []string, seniority string) []types.EvidenceSnippet
	GatherCompanyEvidence(ctx context.Context, company, role string) []types.EvidenceSnippet
}

// QuestionExtractor pulls questions out of evidence.
type QuestionExtractor interface {
	Extract(ctx context.Context, evidence []types.EvidenceSnippet, opts questions.ExtractOptions) []types.GeneratedQuestion
}

// QuestionGenerator synthesizes questions per category.
type QuestionGenerator interface {
	Technical(ctx context.Context, in questions.TechnicalInput) []types.GeneratedQuestion
	Behavioral(ctx context.Context, in questions.BehavioralInput) []types.GeneratedQuestion
	Situational(ctx context.Context, in questions.SituationalInput) []types.GeneratedQuestion
	// ForCategory generates count more questions of one generated category.
	ForCategory(ctx context.Context, category types.Category, profile *types.JobProfile, pattern domains.Pattern, count int, exclude []string) []types.GeneratedQuestion
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Analyzer  Analyzer
	Gatherer  EvidenceGatherer
	Extractor QuestionExtractor
	Generator QuestionGenerator
}

// Options tune a generation run.
type Options struct {
	// QuestionsPerCategory is passed to the generators. Zero uses their default.
	QuestionsPerCategory int
	// CalibrateTechnical delays technical generation until skill evidence has
	// been extracted, so the real questions can be shown as a depth reference.
	CalibrateTechnical bool
	// NewID creates question IDs. Defaults to uuid.NewString.
	NewID func() string
}

// Orchestrator runs the generation pipeline. It holds no per-request state
// and is safe for concurrent use.
type Orchestrator struct {
	deps Deps
	opts Options
}

// New creates an Orchestrator.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Orchestrator{deps: deps, opts: opts}
}

// RunOption customizes a single call.
type RunOption func(*run)

// WithProgress registers a callback for step completions. Calls to cb are
// serialized.
func WithProgress(cb ProgressCallback) RunOption {
	return func(r *run) {
		r.onProgress = cb
	}
}

// run carries the per-call state.
type run struct {
	mu         sync.Mutex
	onProgress ProgressCallback
}

func newRun(opts []RunOption) *run {
	r := &run{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *run) emit(step, message string, count int, start time.Time) {
	if r.onProgress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onProgress(ProgressEvent{
		Step:       step,
		Category:   CategoryForStep(step),
		Message:    message,
		Count:      count,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// branch runs fn as its own step on eg. A branch never fails the group.
func (r *run) branch(eg *errgroup.Group, step string, fn func() int) {
	eg.Go(func() error {
		r.step(step, fn)
		return nil
	})
}

// step runs fn in the calling goroutine and reports it. fn records its own
// result; a panic just leaves that result empty.
func (r *run) step(step string, fn func() int) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[pipeline] %s panicked after %s: %v", step, time.Since(start).Round(time.Millisecond), rec)
			r.emit(step, fmt.Sprintf("%s failed", step), 0, start)
		}
	}()

	n := fn()
	log.Printf("[pipeline] %s finished in %s with %d items", step, time.Since(start).Round(time.Millisecond), n)
	r.emit(step, fmt.Sprintf("%s complete", step), n, start)
}

func (o *Orchestrator) calibrating() bool {
	return o.opts.CalibrateTechnical && o.deps.Generator != nil
}

// analyze runs the analyzer and classifies the result. The returned profile's
// Domain is replaced with the classified domain.
func (o *Orchestrator) analyze(ctx context.Context, r *run, jobDescription string) (profile *types.JobProfile, pattern domains.Pattern) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[pipeline] analysis panicked, using default profile: %v", rec)
			profile = types.DefaultJobProfile()
			pattern = domains.ClassifyProfile(profile)
			profile.Domain = pattern.Domain
		}
	}()

	if o.deps.Analyzer != nil {
		profile = o.deps.Analyzer.Analyze(ctx, jobDescription)
	}
	if profile == nil {
		profile = types.DefaultJobProfile()
	}
	r.emit(StepAnalyze, fmt.Sprintf("Analyzed %s", profile.JobTitle), len(profile.AllSkills()), start)

	start = time.Now()
	pattern = domains.ClassifyProfile(profile)
	profile.Domain = pattern.Domain
	r.emit(StepClassify, fmt.Sprintf("Classified as %s", pattern.Name), len(pattern.Categories), start)
	return profile, pattern
}

// Generate produces the full question set for jobDescription. Provider failures
// only shrink the result; the returned error is non-nil only when the
// assembled result breaks its own invariants.
func (o *Orchestrator) Generate(ctx context.Context, jobDescription string, opts ...RunOption) (*types.AggregateResult, error) {
	r := newRun(opts)
	started := time.Now()

	profile, pattern := o.analyze(ctx, r, jobDescription)
	company := profile.Company()
	count := o.opts.QuestionsPerCategory

	var p parts
	seniority := string(profile.SeniorityLevel)

	// Every chain starts once the profile is known. Extraction follows its
	// own evidence search instead of waiting for the generators, and a
	// calibrated technical run follows skill extraction only.
	var eg errgroup.Group
	if o.deps.Gatherer != nil || o.calibrating() {
		eg.Go(func() error {
			var evidence []types.EvidenceSnippet
			if o.deps.Gatherer != nil {
				r.step(StepSkillEvidence, func() int {
					evidence = o.deps.Gatherer.GatherSkillEvidence(ctx, profile.AllSkills(), seniority)
					return len(evidence)
				})
			}
			if o.deps.Extractor != nil && len(evidence) > 0 {
				r.step(StepExtractSkill, func() int {
					p.extractedTechnical = o.deps.Extractor.Extract(ctx, evidence, questions.ExtractOptions{
						Category:  types.CategoryTechnical,
						Seniority: seniority,
						JobTitle:  profile.JobTitle,
					})
					return len(p.extractedTechnical)
				})
			}
			if o.calibrating() {
				r.step(StepTechnical, func() int {
					p.technical = o.deps.Generator.Technical(ctx, questions.TechnicalInput{
						Profile: profile,
						Pattern: pattern,
						Samples: p.extractedTechnical,
						Count:   count,
					})
					return len(p.technical)
				})
			}
			return nil
		})
	}
	if o.deps.Gatherer != nil && company != "" {
		eg.Go(func() error {
			var evidence []types.EvidenceSnippet
			r.step(StepCompanyEvidence, func() int {
				evidence = o.deps.Gatherer.GatherCompanyEvidence(ctx, company, profile.JobTitle)
				return len(evidence)
			})
			if o.deps.Extractor != nil && len(evidence) > 0 {
				r.step(StepExtractCompany, func() int {
					p.companySpecific = o.deps.Extractor.Extract(ctx, evidence, questions.ExtractOptions{
						Category:  types.CategoryCompanySpecific,
						Company:   company,
						Seniority: seniority,
						JobTitle:  profile.JobTitle,
					})
					return len(p.companySpecific)
				})
			}
			return nil
		})
	}
	if o.deps.Generator != nil {
		if !o.opts.CalibrateTechnical {
			r.branch(&eg, StepTechnical, func() int {
				p.technical = o.deps.Generator.Technical(ctx, questions.TechnicalInput{Profile: profile, Pattern: pattern, Count: count})
				return len(p.technical)
			})
		}
		r.branch(&eg, StepBehavioral, func() int {
			p.behavioral = o.deps.Generator.Behavioral(ctx, questions.BehavioralInput{Profile: profile, Count: count})
			return len(p.behavioral)
		})
		r.branch(&eg, StepSituational, func() int {
			p.situational = o.deps.Generator.Situational(ctx, questions.SituationalInput{Profile: profile, Pattern: pattern, Count: count})
			return len(p.situational)
		})
	}
	_ = eg.Wait()

	composeStart := time.Now()
	result := o.compose(profile, pattern, p)
	if err := Validate(result); err != nil {
		return nil, err
	}
	r.emit(StepCompose, fmt.Sprintf("Assembled %d questions", result.Total()), result.Total(), composeStart)

	log.Printf("[pipeline] generated %d questions for %q in %s", result.Total(), profile.JobTitle, time.Since(started).Round(time.Millisecond))
	return result, nil
}
