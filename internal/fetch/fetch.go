// Package fetch retrieves web pages and reduces their HTML to readable text.
package fetch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetch defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; InterviewPrep/1.0)"
	// DefaultMaxBytes bounds how much of a response body is read.
	DefaultMaxBytes = 5 << 20
)

// ErrInvalidURL is the cause of every URL validation failure.
var ErrInvalidURL = errors.New("invalid URL")

// Result is one fetched page. HTML holds at most Options.MaxBytes of the body.
type Result struct {
	URL         string `json:"url"`
	HTML        string `json:"html"`
	Text        string `json:"text,omitempty"`
	ContentType string `json:"content_type"`
	StatusCode  int    `json:"status_code"`
}

// Error describes a failed fetch. StatusCode is set when the server
// answered with something other than 200.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	msg := "fetch " + e.URL + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Options tunes a fetch. Zero fields fall back to the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
	// Client replaces the HTTP client, and with it Timeout and BlockPrivate.
	Client *http.Client
	// BlockPrivate refuses connections to loopback, private, link-local and
	// unspecified addresses, checked after DNS resolution.
	BlockPrivate bool
}

func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent, MaxBytes: DefaultMaxBytes}
}

func (o *Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	c := &http.Client{Timeout: DefaultTimeout}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.BlockPrivate {
		c.Transport = guardedTransport()
	}
	return c
}

func (o *Options) limit() int64 {
	if o.MaxBytes > 0 {
		return o.MaxBytes
	}
	return DefaultMaxBytes
}

func (o *Options) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", cmp.Or(o.UserAgent, DefaultUserAgent))
	h.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for k, v := range o.Headers {
		h.Set(k, v)
	}
	return h
}

// ValidateURL accepts only absolute http and https URLs. Failures wrap
// ErrInvalidURL.
func ValidateURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	switch {
	case err != nil:
		return &Error{URL: urlStr, Message: "unparseable", Cause: fmt.Errorf("%w: %v", ErrInvalidURL, err)}
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		return &Error{URL: urlStr, Message: "want an absolute http(s) URL", Cause: ErrInvalidURL}
	}
	return nil
}

// URL GETs urlStr. On a non-200 answer the page is still returned, along
// with an *Error carrying the status.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := ValidateURL(urlStr); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "building request", Cause: err}
	}
	req.Header = opts.header()

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.limit()))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "reading body", Cause: err}
	}

	res := &Result{
		URL:         urlStr,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return res, &Error{URL: urlStr, Message: "status " + strconv.Itoa(resp.StatusCode), StatusCode: resp.StatusCode}
	}
	return res, nil
}

// baseNoise is removed from every page before text extraction.
const baseNoise = "nav, footer, header, script, style, noscript, svg, iframe, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// ExtractMainText parses HTML and returns the text of the first element
// matching contentSelectors, falling back to the body. Elements matching
// noiseSelectors are removed first.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(baseNoise).Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			main = selection.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	// Block elements run together in Text(); give each its own line.
	main.Find("p, li, h1, h2, h3, h4, h5, h6, br, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(main.Text()), nil
}

// DefaultTextSelectors returns standard selectors for general web content.
func DefaultTextSelectors() []string {
	return []string{"main", "article", ".content", "#content", ".main-content", "#main-content"}
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line, collapses inner runs of spaces and drops blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
