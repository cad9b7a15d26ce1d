// Package research gathers web search evidence of real interview questions.
package research

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchResult is one hit returned by a search provider.
type SearchResult struct {
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
	Link          string `json:"link"`
	DisplayedLink string `json:"displayed_link"`
}

// Searcher is a web search provider.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]SearchResult, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string, num int) ([]SearchResult, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	return f(ctx, query, num)
}

// SkillQueries returns the search queries issued for one skill.
func SkillQueries(skill, seniority string) []string {
	skill = strings.TrimSpace(skill)
	seniority = strings.TrimSpace(seniority)
	level := ""
	if seniority != "" {
		level = seniority + " "
	}
	return []string{
		fmt.Sprintf("%s%s interview questions and answers", level, skill),
		fmt.Sprintf("%s technical interview questions asked", skill),
	}
}

// CompanyQueries returns the search queries issued for a company.
func CompanyQueries(company, role string) []string {
	company = strings.TrimSpace(company)
	role = strings.TrimSpace(role)
	subject := company
	if role != "" {
		subject = company + " " + role
	}
	return []string{
		fmt.Sprintf("%s interview questions", subject),
		fmt.Sprintf("%s interview experience glassdoor", company),
	}
}

// SourceName returns a display name for a result URL: its host without "www.".
func SourceName(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	// Prepend scheme if missing
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
