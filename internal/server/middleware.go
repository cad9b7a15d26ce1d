package server

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/interview-prep/internal/server/ratelimit"
)

type middleware func(http.Handler) http.Handler

// chain wraps h so that the first middleware sees the request first.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// withCORS allows any origin. Preflight requests are answered here.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[server] %s %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// statusRecorder remembers the status for the access log. Flush is forwarded
// so streamed responses still reach the client.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withRateLimit charges one token per request against the caller's bucket
// for the matched endpoint. Preflight requests are free.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		writeLimitHeaders(w.Header(), info)
		if !allowed {
			s.rejectRateLimited(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID is the caller's IP. Forwarding headers are ignored because the
// server may be reached directly.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeLimitHeaders(h http.Header, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

type rateLimitBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	ResetAt    string `json:"reset_at"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	body := rateLimitBody{
		Error:     "rate_limit_exceeded",
		Message:   "Too many requests. Try again later.",
		Limit:     info.Limit,
		Remaining: info.Remaining,
		ResetAt:   info.ResetTime.UTC().Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		body.RetryAfter = max(1, int(info.RetryAfter.Round(time.Second)/time.Second))
		w.Header().Set("Retry-After", strconv.Itoa(body.RetryAfter))
	}
	log.Printf("[server] rate limited %s on %s %s (limit %d)", clientID(r), r.Method, r.URL.Path, info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, body)
}
