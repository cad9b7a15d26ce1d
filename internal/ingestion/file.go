package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
)

// MaxUploadBytes is the largest file ExtractFile accepts.
const MaxUploadBytes = 10 << 20

// ErrEmptyText is returned when a file yields no readable text.
var ErrEmptyText = errors.New("no text could be extracted")

// UnsupportedTypeError is returned for files that are not text, HTML, PDF or
// a supported image format.
type UnsupportedTypeError struct {
	Filename    string
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q for %s", e.ContentType, e.Filename)
}

// TooLargeError is returned when an upload exceeds MaxUploadBytes.
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file is %d bytes, limit is %d", e.Size, e.Limit)
}

// VisionError wraps a failed OCR call.
type VisionError struct {
	MimeType string
	Cause    error
}

func (e *VisionError) Error() string {
	return fmt.Sprintf("text recognition failed for %s: %v", e.MimeType, e.Cause)
}

func (e *VisionError) Unwrap() error {
	return e.Cause
}

type fileKind int

const (
	kindUnknown fileKind = iota
	kindText
	kindHTML
	kindPDF
	kindImage
)

var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".pdf":      "application/pdf",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".webp":     "image/webp",
	".gif":      "image/gif",
}

func kindOf(mimeType string) fileKind {
	switch mimeType {
	case "text/plain", "text/markdown", "text/x-markdown":
		return kindText
	case "text/html", "application/xhtml+xml":
		return kindHTML
	case "application/pdf":
		return kindPDF
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		return kindImage
	}
	return kindUnknown
}

// detectType resolves a file's MIME type from its extension, then the
// declared content type, then its leading bytes.
func detectType(filename, contentType string, data []byte) (string, fileKind) {
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt, kindOf(mt)
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if kind := kindOf(mt); kind != kindUnknown {
			return mt, kind
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt, kindOf(mt)
}

// Extractor turns uploaded files and URLs into job-description text.
type Extractor struct {
	vision     llm.VisionClient
	tier       llm.ModelTier
	fetcher    *fetch.CachedFetcher
	renderer   fetch.Renderer
	maxUpload  int64
	useBrowser bool
	guard      bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithVision enables OCR of images and scanned PDFs.
func WithVision(client llm.VisionClient) Option {
	return func(e *Extractor) { e.vision = client }
}

// WithFetcher sets the page fetcher used by ExtractURL.
func WithFetcher(f *fetch.CachedFetcher) Option {
	return func(e *Extractor) { e.fetcher = f }
}

// WithBrowser renders pages whose plain fetch yields too little text.
func WithBrowser(r fetch.Renderer) Option {
	return func(e *Extractor) {
		e.renderer = r
		e.useBrowser = r != nil
	}
}

// WithAddressGuard refuses URLs whose host resolves to a loopback, private,
// link-local or unspecified address. The host is checked before any fetch or
// browser render, and the default fetcher also checks every dialed address.
func WithAddressGuard() Option {
	return func(e *Extractor) { e.guard = true }
}

// WithMaxUpload overrides MaxUploadBytes.
func WithMaxUpload(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxUpload = n
		}
	}
}

// NewExtractor creates an Extractor. Without WithVision, images and PDFs
// without a text layer fail.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{tier: llm.TierLite, maxUpload: MaxUploadBytes}
	for _, opt := range opts {
		opt(e)
	}
	if e.fetcher == nil {
		opts := fetch.DefaultOptions()
		opts.BlockPrivate = e.guard
		e.fetcher = fetch.NewCachedFetcher(nil, opts, 0)
	}
	return e
}

// MaxUpload returns the upload size limit.
func (e *Extractor) MaxUpload() int64 {
	return e.maxUpload
}

// ExtractFile returns the cleaned text of an uploaded file.
func (e *Extractor) ExtractFile(ctx context.Context, filename, contentType string, data []byte) (*Document, error) {
	if int64(len(data)) > e.maxUpload {
		return nil, &TooLargeError{Size: int64(len(data)), Limit: e.maxUpload}
	}

	mimeType, kind := detectType(filename, contentType, data)
	meta := Metadata{Source: "file", Filename: filename, ContentType: mimeType}

	var (
		text string
		err  error
	)
	switch kind {
	case kindText:
		text, meta.Method = string(data), MethodPlain
	case kindHTML:
		meta.Method = MethodHTML
		text, err = fetch.ExtractMainText(string(data), fetch.JobPostingSelectors(), fetch.PlatformNoiseSelectors(fetch.PlatformUnknown)...)
	case kindPDF:
		text, meta.Method, err = e.extractPDF(ctx, data)
	case kindImage:
		meta.Method = MethodVision
		text, err = e.recognize(ctx, "extract-image-text", mimeType, data)
	default:
		return nil, &UnsupportedTypeError{Filename: filename, ContentType: mimeType}
	}
	if err != nil {
		return nil, err
	}

	text = CleanText(text)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyText)
	}
	log.Printf("[ingestion] extracted %d chars from %s via %s", len(text), filename, meta.Method)
	return newDocument(text, meta), nil
}

// extractPDF reads the text layer and falls back to OCR for scanned documents.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, Method, error) {
	text, err := pdfText(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, MethodPDFText, nil
	}
	if err != nil {
		log.Printf("[ingestion] PDF text layer unreadable: %v", err)
	}
	if e.vision == nil {
		if err != nil {
			return "", MethodPDFText, fmt.Errorf("failed to read PDF: %w", err)
		}
		return "", MethodPDFText, nil
	}
	text, err = e.recognize(ctx, "extract-pdf-text", "application/pdf", data)
	return text, MethodVision, err
}

// pdfText returns the plain text layer of a PDF. The parser panics on some
// malformed files.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Extractor) recognize(ctx context.Context, promptKey, mimeType string, data []byte) (string, error) {
	if e.vision == nil {
		return "", &VisionError{MimeType: mimeType, Cause: llm.ErrVisionUnsupported}
	}
	prompt := prompts.MustGet("ingestion.json", promptKey)
	text, err := e.vision.GenerateFromBlob(ctx, prompt, mimeType, data, e.tier)
	if err != nil {
		return "", &VisionError{MimeType: mimeType, Cause: err}
	}
	return text, nil
}
