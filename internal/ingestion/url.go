package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/interview-prep/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page cannot be fetched.
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when the page HTML cannot be parsed.
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// ExtractURL fetches a job posting and returns its cleaned text. Platform
// selectors pick the posting body; pages that render client-side are retried
// in a headless browser when one is configured.
func (e *Extractor) ExtractURL(ctx context.Context, urlStr string) (*Document, error) {
	if err := fetch.ValidateURL(urlStr); err != nil {
		return nil, err
	}
	if e.guard {
		if err := fetch.CheckHost(ctx, urlStr); err != nil {
			log.Printf("[ingestion] refused %s: %v", urlStr, err)
			return nil, err
		}
	}

	platform := fetch.DetectPlatform(urlStr)
	result, cached, err := e.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	method := MethodHTTP

	if e.useBrowser && fetch.ShouldUseBrowser(text) {
		log.Printf("[ingestion] %s yielded %d chars, rendering in browser", urlStr, len(text))
		html, renderErr := e.renderer.Render(ctx, urlStr)
		if renderErr != nil {
			log.Printf("[ingestion] browser rendering failed for %s: %v", urlStr, renderErr)
		} else if rendered, extractErr := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...); extractErr == nil && len(rendered) > len(text) {
			text, method = rendered, MethodBrowser
		}
	}

	text = CleanText(text)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", urlStr, ErrEmptyText)
	}

	return newDocument(text, Metadata{
		Source:      "url",
		URL:         urlStr,
		Platform:    string(platform),
		ContentType: result.ContentType,
		Method:      method,
		Cached:      cached,
	}), nil
}
