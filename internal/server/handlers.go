package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/types"
)

// maxJSONBody caps JSON request bodies. Job descriptions are the largest field.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON body into v and runs its validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{ Validate() error }) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "empty request body"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := v.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

// handleGenerate runs the full pipeline and returns every category.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, err := s.questions.Generate(r.Context(), req.JobDescription)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream runs the pipeline and streams progress via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	progress := pipeline.WithProgress(func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			log.Printf("[server] error writing SSE event: %v", err)
		}
	})

	// Run synchronously; the connection stays open until the result is sent.
	result, err := s.questions.Generate(r.Context(), req.JobDescription, progress)
	if err != nil {
		log.Printf("[server] streaming generation failed: %v", err)
		sse.WriteError(publicMessage(err))
		return
	}

	if err := sse.WriteEvent(eventResult, result); err != nil {
		log.Printf("[server] error writing SSE result: %v", err)
		return
	}
	sse.WriteComplete("completed", result.Total())
}

// handleLoadMore returns another batch for one category.
func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	var req types.LoadMoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, err := s.questions.LoadMore(r.Context(), req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
