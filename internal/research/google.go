package research

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// maxResultsPerCall is the Custom Search API's per-request cap.
const maxResultsPerCall = 10

// GoogleSearcher queries the Google Custom Search JSON API.
type GoogleSearcher struct {
	svc     *customsearch.Service
	cx      string
	limiter *rate.Limiter
}

// GoogleOptions configures a GoogleSearcher.
type GoogleOptions struct {
	// QPS caps outbound requests per second. Zero disables pacing.
	QPS float64
	// Burst is the limiter burst size; defaults to 1.
	Burst int
	// ClientOptions are passed to the underlying service, e.g. option.WithEndpoint in tests.
	ClientOptions []option.ClientOption
}

// NewGoogleSearcher creates a searcher for the given API key and search engine ID.
func NewGoogleSearcher(ctx context.Context, apiKey, cx string, opts GoogleOptions) (*GoogleSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google search requires both an API key and a search engine ID")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts.ClientOptions...)
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}

	var limiter *rate.Limiter
	if opts.QPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.QPS), burst)
	}

	return &GoogleSearcher{svc: svc, cx: cx, limiter: limiter}, nil
}

// Search runs one query and returns up to num results.
func (g *GoogleSearcher) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if num <= 0 {
		num = 3
	}
	if num > maxResultsPerCall {
		num = maxResultsPerCall
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search rate limit wait: %w", err)
		}
	}

	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:         item.Title,
			Snippet:       item.Snippet,
			Link:          item.Link,
			DisplayedLink: item.DisplayLink,
		})
	}
	return results, nil
}
