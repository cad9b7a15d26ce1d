package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/types"
)

// multipartOverhead is the allowance for boundaries and part headers on top
// of the file itself.
const multipartOverhead = 64 << 10

// handleExtractText extracts job description text from an uploaded file.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	limit := s.extractor.MaxUpload()
	if r.ContentLength > limit+multipartOverhead {
		s.failure(w, r, &ingestion.TooLargeError{Size: r.ContentLength, Limit: limit})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.failure(w, r, &ingestion.TooLargeError{Size: r.ContentLength, Limit: limit})
			return
		}
		s.failure(w, r, &ErrValidation{Field: "file", Message: "expected a multipart form upload"})
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		s.failure(w, r, &ErrValidation{Field: "file", Message: "required"})
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		s.failure(w, r, err)
		return
	}

	doc, err := s.extractor.ExtractFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ExtractTextResponse{
		Text:       doc.Text,
		Filename:   header.Filename,
		Characters: doc.Metadata.Characters,
	})
}

// handleExtractURL fetches a job posting and returns its main text.
func (s *Server) handleExtractURL(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	doc, err := s.extractor.ExtractURL(r.Context(), req.URL)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ExtractTextResponse{
		Text:       doc.Text,
		URL:        req.URL,
		Characters: doc.Metadata.Characters,
	})
}
