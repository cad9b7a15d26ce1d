// Package server provides the HTTP REST API for the interview prep generator.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/server/ratelimit"
	"github.com/jonathan/interview-prep/internal/types"
)

// QuestionService generates question sets.
type QuestionService interface {
	Generate(ctx context.Context, jobDescription string, opts ...pipeline.RunOption) (*types.AggregateResult, error)
	LoadMore(ctx context.Context, req types.LoadMoreRequest, opts ...pipeline.RunOption) (*types.LoadMoreResult, error)
}

// TextExtractor turns uploads and URLs into job description text.
type TextExtractor interface {
	ExtractFile(ctx context.Context, filename, contentType string, data []byte) (*ingestion.Document, error)
	ExtractURL(ctx context.Context, url string) (*ingestion.Document, error)
	MaxUpload() int64
}

// Server is the HTTP API. Build one with New.
type Server struct {
	httpServer  *http.Server
	store       db.Store
	questions   QuestionService
	extractor   TextExtractor
	rateLimiter *ratelimit.Limiter
}

// Config carries listener settings.
type Config struct {
	Port int
	// RateLimit defaults to ratelimit.LoadConfig(os.Getenv).
	RateLimit *ratelimit.Config
}

// Deps are the services the handlers call.
type Deps struct {
	Store     db.Store
	Questions QuestionService
	Extractor TextExtractor
}

// Timeouts for the listener. Writes get long enough for a full generation run.
const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute
	idleTimeout     = time.Minute
	shutdownTimeout = 30 * time.Second
)

func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Questions == nil:
		return nil, errors.New("server: question service is required")
	case deps.Extractor == nil:
		return nil, errors.New("server: extractor is required")
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig(os.Getenv)
	}
	s := &Server{
		store:       deps.Store,
		questions:   deps.Questions,
		extractor:   deps.Extractor,
		rateLimiter: ratelimit.NewLimiter(rl),
	}
	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s, nil
}

// Handler returns the routes wrapped in rate limiting, logging and CORS,
// outermost first.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/{$}", s.handleRoot)

	mux.HandleFunc("POST /api/generate-questions", s.handleGenerate)
	mux.HandleFunc("POST /api/generate-questions/stream", s.handleGenerateStream)
	mux.HandleFunc("POST /api/load-more-questions", s.handleLoadMore)

	mux.HandleFunc("POST /api/extract-text", s.handleExtractText)
	mux.HandleFunc("POST /api/extract-text-from-url", s.handleExtractURL)

	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/favorites", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", s.handleDeleteFavorite)

	return chain(mux, s.withRateLimit, withLogging, withCORS)
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// releases the limiter and the store.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.store.Close()
	defer s.rateLimiter.Stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	log.Println("[server] stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Interview Prep API is running"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] encoding response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status and writes it. Server-side failures are logged,
// and only the ones publicMessage allows keep their detail.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.errorResponse(w, status, publicMessage(err))
}
