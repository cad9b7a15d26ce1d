package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-prep/internal/llm"
)

// MockVisionClient is a func-field fake of llm.VisionClient.
type MockVisionClient struct {
	GenerateFromBlobFunc func(ctx context.Context, prompt, mimeType string, data []byte, tier llm.ModelTier) (string, error)

	calls      int
	lastMime   string
	lastPrompt string
}

func (m *MockVisionClient) GenerateContent(context.Context, string, string, llm.ModelTier) (string, error) {
	return "", errors.New("not implemented")
}

func (m *MockVisionClient) GenerateJSON(context.Context, string, string, llm.ModelTier) (string, error) {
	return "", errors.New("not implemented")
}

func (m *MockVisionClient) GenerateFromBlob(ctx context.Context, prompt, mimeType string, data []byte, tier llm.ModelTier) (string, error) {
	m.calls++
	m.lastMime = mimeType
	m.lastPrompt = prompt
	if m.GenerateFromBlobFunc != nil {
		return m.GenerateFromBlobFunc(ctx, prompt, mimeType, data, tier)
	}
	return "", errors.New("not implemented")
}

func (m *MockVisionClient) GetModel(llm.ModelTier) string { return "mock-vision" }

func (m *MockVisionClient) Close() error { return nil }

func ocr(text string) *MockVisionClient {
	return &MockVisionClient{
		GenerateFromBlobFunc: func(context.Context, string, string, []byte, llm.ModelTier) (string, error) {
			return text, nil
		},
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDetectType(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantMime    string
		wantKind    fileKind
	}{
		{"txt extension", "job.txt", "", []byte("hello"), "text/plain", kindText},
		{"markdown extension", "JOB.MD", "application/octet-stream", []byte("# hi"), "text/markdown", kindText},
		{"html extension", "posting.htm", "", []byte("<html>"), "text/html", kindHTML},
		{"pdf extension", "jd.pdf", "", []byte("%PDF-1.7"), "application/pdf", kindPDF},
		{"jpeg extension", "scan.jpeg", "", nil, "image/jpeg", kindImage},
		{"declared type with params", "upload", "text/plain; charset=utf-8", []byte("x"), "text/plain", kindText},
		{"sniffed png", "blob", "application/octet-stream", pngHeader, "image/png", kindImage},
		{"sniffed pdf", "blob", "", []byte("%PDF-1.4\n..."), "application/pdf", kindPDF},
		{"sniffed text", "notes", "", []byte("plain words"), "text/plain", kindText},
		{"docx unsupported", "cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("PK\x03\x04"), "application/zip", kindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt, kind := detectType(tt.filename, tt.contentType, tt.data)
			assert.Equal(t, tt.wantMime, mt)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestExtractFile_PlainText(t *testing.T) {
	e := NewExtractor()
	doc, err := e.ExtractFile(context.Background(), "job.txt", "text/plain", []byte("Senior   Go Engineer\r\n\r\n\r\n- Kubernetes"))
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Engineer\n\n- Kubernetes", doc.Text)
	assert.Equal(t, MethodPlain, doc.Metadata.Method)
	assert.Equal(t, "file", doc.Metadata.Source)
	assert.Equal(t, "job.txt", doc.Metadata.Filename)
	assert.Equal(t, len([]rune(doc.Text)), doc.Metadata.Characters)
}

func TestExtractFile_HTML(t *testing.T) {
	html := `<html><body><nav>Menu</nav><div class="job-description"><h2>About the role</h2><p>Build APIs in Go.</p></div><form>Apply</form></body></html>`

	doc, err := NewExtractor().ExtractFile(context.Background(), "posting.html", "", []byte(html))
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "About the role")
	assert.Contains(t, doc.Text, "Build APIs in Go.")
	assert.NotContains(t, doc.Text, "Menu")
	assert.NotContains(t, doc.Text, "Apply")
	assert.Equal(t, MethodHTML, doc.Metadata.Method)
}

func TestExtractFile_ImageUsesVision(t *testing.T) {
	vision := ocr("Data Analyst\n• SQL")
	e := NewExtractor(WithVision(vision))

	doc, err := e.ExtractFile(context.Background(), "screenshot.png", "image/png", pngHeader)
	require.NoError(t, err)

	assert.Equal(t, "Data Analyst\n- SQL", doc.Text)
	assert.Equal(t, MethodVision, doc.Metadata.Method)
	assert.Equal(t, "image/png", vision.lastMime)
	assert.Contains(t, vision.lastPrompt, "image")
}

func TestExtractFile_ImageWithoutVision(t *testing.T) {
	_, err := NewExtractor().ExtractFile(context.Background(), "screenshot.png", "", pngHeader)
	require.Error(t, err)

	var visionErr *VisionError
	require.ErrorAs(t, err, &visionErr)
	assert.ErrorIs(t, err, llm.ErrVisionUnsupported)
}

func TestExtractFile_VisionFailure(t *testing.T) {
	vision := &MockVisionClient{
		GenerateFromBlobFunc: func(context.Context, string, string, []byte, llm.ModelTier) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	_, err := NewExtractor(WithVision(vision)).ExtractFile(context.Background(), "a.jpg", "", []byte("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractFile_MalformedPDFFallsBackToVision(t *testing.T) {
	vision := ocr("Scanned job description")
	e := NewExtractor(WithVision(vision))

	doc, err := e.ExtractFile(context.Background(), "scan.pdf", "application/pdf", []byte("%PDF-1.4\nnot really a pdf"))
	require.NoError(t, err)

	assert.Equal(t, "Scanned job description", doc.Text)
	assert.Equal(t, MethodVision, doc.Metadata.Method)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, "application/pdf", vision.lastMime)
	assert.Contains(t, vision.lastPrompt, "PDF")
}

func TestExtractFile_MalformedPDFWithoutVision(t *testing.T) {
	_, err := NewExtractor().ExtractFile(context.Background(), "scan.pdf", "", []byte("%PDF-1.4\nbroken"))
	require.Error(t, err)
}

func TestExtractFile_Unsupported(t *testing.T) {
	_, err := NewExtractor().ExtractFile(context.Background(), "cv.docx", "", []byte("PK\x03\x04rest"))

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "cv.docx", unsupported.Filename)
}

func TestExtractFile_TooLarge(t *testing.T) {
	e := NewExtractor(WithMaxUpload(8))
	_, err := e.ExtractFile(context.Background(), "job.txt", "", []byte("123456789"))

	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(9), tooLarge.Size)
	assert.Equal(t, int64(8), tooLarge.Limit)
	assert.Equal(t, int64(8), e.MaxUpload())
}

func TestExtractFile_EmptyText(t *testing.T) {
	_, err := NewExtractor().ExtractFile(context.Background(), "blank.txt", "", []byte(strings.Repeat(" \n", 10)))
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNewExtractor_Defaults(t *testing.T) {
	e := NewExtractor(WithMaxUpload(0), WithBrowser(nil))
	assert.Equal(t, int64(MaxUploadBytes), e.MaxUpload())
	assert.False(t, e.useBrowser)
	assert.NotNil(t, e.fetcher)
}
