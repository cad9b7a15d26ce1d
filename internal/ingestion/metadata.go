package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Method records how text was obtained.
type Method string

// Extraction methods.
const (
	MethodPlain   Method = "plain"
	MethodHTML    Method = "html"
	MethodPDFText Method = "pdf_text"
	MethodVision  Method = "vision"
	MethodHTTP    Method = "http"
	MethodBrowser Method = "browser"
)

// Metadata describes where an ingested document came from.
type Metadata struct {
	Source      string `json:"source"` // "file" or "url"
	Filename    string `json:"filename,omitempty"`
	URL         string `json:"url,omitempty"`
	Platform    string `json:"platform,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Method      Method `json:"method"`
	Cached      bool   `json:"cached,omitempty"`
	Characters  int    `json:"characters"`
	Hash        string `json:"hash"`      // SHA256 hex digest of Text
	Timestamp   string `json:"timestamp"` // RFC3339
}

// Document is extracted job-description text plus its metadata.
type Document struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// newDocument fills the text-derived metadata fields.
func newDocument(text string, meta Metadata) *Document {
	meta.Characters = utf8.RuneCountInString(text)
	meta.Hash = computeHash(text)
	meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return &Document{Text: text, Metadata: meta}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON.
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
