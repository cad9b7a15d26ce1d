package fetch

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP
// fetch before a browser render is attempted.
const MinContentLength = 500

// DefaultRenderTimeout bounds one headless browser render.
const DefaultRenderTimeout = 30 * time.Second

// ShouldUseBrowser reports whether text from a plain fetch is too thin to
// be the posting, which usually means the page renders client-side.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer produces the rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, url string) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// ChromeRenderer loads pages in a local headless Chrome. Chrome or Chromium
// must be installed.
type ChromeRenderer struct {
	Timeout time.Duration
	// Settle is the pause after load for client-side rendering.
	Settle time.Duration
}

const defaultSettle = 3 * time.Second

// Containers rarely have a usable shared memory or a GPU.
var chromeFlags = append(chromedp.DefaultExecAllocatorOptions[:],
	chromedp.Flag("headless", true),
	chromedp.Flag("disable-gpu", true),
	chromedp.Flag("no-sandbox", true),
	chromedp.Flag("disable-dev-shm-usage", true),
)

// Job boards commonly gate content behind a consent banner.
const consentButton = `button[id*="accept"], button[class*="accept"]`

func (c ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromeFlags...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelRun := context.WithTimeout(tabCtx, cmp.Or(c.Timeout, DefaultRenderTimeout))
	defer cancelRun()

	var html string
	if err := chromedp.Run(tabCtx, c.actions(url, &html)...); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	log.Printf("[fetch] rendered %s: %d bytes in %s", url, len(html), time.Since(start).Round(time.Millisecond))
	return html, nil
}

func (c ChromeRenderer) actions(url string, html *string) []chromedp.Action {
	dismissConsent := chromedp.ActionFunc(func(ctx context.Context) error {
		// Absent banners are fine.
		_ = chromedp.Click(consentButton, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
		return nil
	})
	return []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(cmp.Or(c.Settle, defaultSettle)),
		dismissConsent,
		chromedp.OuterHTML("html", html),
	}
}
