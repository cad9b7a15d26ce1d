package research

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-prep/internal/types"
)

// Gatherer defaults.
const (
	DefaultMaxSkills       = 4
	DefaultResultsPerQuery = 3
	DefaultSearchTimeout   = 10 * time.Second
)

// GathererOptions configures a Gatherer.
type GathererOptions struct {
	// MaxSkills caps how many skills are searched.
	MaxSkills int
	// ResultsPerQuery is passed to the provider as num.
	ResultsPerQuery int
	// Timeout bounds each provider call.
	Timeout time.Duration
}

// Gatherer turns skills and company names into evidence snippets by
// running search queries concurrently.
type Gatherer struct {
	searcher Searcher
	opts     GathererOptions
}

// NewGatherer creates a Gatherer. A nil searcher means search is not
// configured and every gather returns no evidence without doing I/O.
func NewGatherer(searcher Searcher, opts GathererOptions) *Gatherer {
	if opts.MaxSkills <= 0 {
		opts.MaxSkills = DefaultMaxSkills
	}
	if opts.ResultsPerQuery <= 0 {
		opts.ResultsPerQuery = DefaultResultsPerQuery
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSearchTimeout
	}
	return &Gatherer{searcher: searcher, opts: opts}
}

// Configured reports whether a search provider is available.
func (g *Gatherer) Configured() bool {
	return g != nil && g.searcher != nil
}

type query struct {
	text  string
	skill *string
}

// GatherSkillEvidence searches for interview questions about the first
// MaxSkills non-blank skills. Failed queries contribute nothing.
func (g *Gatherer) GatherSkillEvidence(ctx context.Context, skills []string, seniority string) []types.EvidenceSnippet {
	if !g.Configured() {
		return []types.EvidenceSnippet{}
	}

	var queries []query
	used := 0
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if used == g.opts.MaxSkills {
			break
		}
		used++
		tag := skill
		for _, q := range SkillQueries(skill, seniority) {
			queries = append(queries, query{text: q, skill: &tag})
		}
	}

	return g.run(ctx, queries)
}

// GatherCompanyEvidence searches for interview reports about company.
// A blank company returns no evidence.
func (g *Gatherer) GatherCompanyEvidence(ctx context.Context, company, role string) []types.EvidenceSnippet {
	if !g.Configured() || strings.TrimSpace(company) == "" {
		return []types.EvidenceSnippet{}
	}

	var queries []query
	for _, q := range CompanyQueries(company, role) {
		queries = append(queries, query{text: q})
	}
	return g.run(ctx, queries)
}

// run issues all queries at once and flattens their results in query order.
func (g *Gatherer) run(ctx context.Context, queries []query) []types.EvidenceSnippet {
	slots := make([][]SearchResult, len(queries))

	var eg errgroup.Group
	for i, q := range queries {
		eg.Go(func() error {
			slots[i] = g.searchOne(ctx, q.text)
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]types.EvidenceSnippet, 0)
	seen := make(map[string]bool)
	for i, results := range slots {
		for _, r := range results {
			if r.Link == "" || seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			out = append(out, types.EvidenceSnippet{
				Title:   r.Title,
				Snippet: r.Snippet,
				Source:  SourceName(r.Link),
				URL:     r.Link,
				Skill:   queries[i].skill,
			})
		}
	}
	return out
}

// searchOne runs a single bounded query. Errors, timeouts and panics yield nil.
// The deadline is enforced here as well, so a provider that ignores ctx
// cannot hold up the gather.
func (g *Gatherer) searchOne(ctx context.Context, q string) []SearchResult {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	type outcome struct {
		results []SearchResult
		err     error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		results, err := g.searcher.Search(ctx, q, g.opts.ResultsPerQuery)
		done <- outcome{results: results, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			log.Printf("[research] search %q failed after %s: %v", q, time.Since(start).Round(time.Millisecond), o.err)
			return nil
		}
		return o.results
	case <-ctx.Done():
		log.Printf("[research] search %q abandoned after %s: %v", q, time.Since(start).Round(time.Millisecond), ctx.Err())
		return nil
	}
}
