package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/server/ratelimit"
	"github.com/jonathan/interview-prep/internal/types"
)

type fakeQuestions struct {
	GenerateFunc func(ctx context.Context, jobDescription string) (*types.AggregateResult, error)
	LoadMoreFunc func(ctx context.Context, req types.LoadMoreRequest) (*types.LoadMoreResult, error)
}

func (f *fakeQuestions) Generate(ctx context.Context, jobDescription string, _ ...pipeline.RunOption) (*types.AggregateResult, error) {
	if f.GenerateFunc == nil {
		return &types.AggregateResult{}, nil
	}
	return f.GenerateFunc(ctx, jobDescription)
}

func (f *fakeQuestions) LoadMore(ctx context.Context, req types.LoadMoreRequest, _ ...pipeline.RunOption) (*types.LoadMoreResult, error) {
	if f.LoadMoreFunc == nil {
		return &types.LoadMoreResult{}, nil
	}
	return f.LoadMoreFunc(ctx, req)
}

type fakeExtractor struct {
	FileFunc func(ctx context.Context, filename, contentType string, data []byte) (*ingestion.Document, error)
	URLFunc  func(ctx context.Context, url string) (*ingestion.Document, error)
	Max      int64
}

func (f *fakeExtractor) ExtractFile(ctx context.Context, filename, contentType string, data []byte) (*ingestion.Document, error) {
	return f.FileFunc(ctx, filename, contentType, data)
}

func (f *fakeExtractor) ExtractURL(ctx context.Context, url string) (*ingestion.Document, error) {
	return f.URLFunc(ctx, url)
}

func (f *fakeExtractor) MaxUpload() int64 {
	if f.Max == 0 {
		return ingestion.MaxUploadBytes
	}
	return f.Max
}

type fakeStore struct {
	favorites []types.FavoriteQuestion
	listLimit int
	ListErr   error
}

func (f *fakeStore) EnsureSchema(context.Context) error { return nil }

func (f *fakeStore) InsertFavorite(_ context.Context, fav *types.FavoriteQuestion) error {
	fav.ID = "fav-1"
	fav.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.favorites = append(f.favorites, *fav)
	return nil
}

func (f *fakeStore) ListFavorites(_ context.Context, limit int) ([]types.FavoriteQuestion, error) {
	f.listLimit = limit
	return f.favorites, f.ListErr
}

func (f *fakeStore) DeleteFavorite(_ context.Context, id string) (int64, error) {
	for i, fav := range f.favorites {
		if fav.ID == id {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) Close() {}

var _ db.Store = (*fakeStore)(nil)

type testDeps struct {
	questions *fakeQuestions
	extractor *fakeExtractor
	store     *fakeStore
}

func newTestServer(t *testing.T, rl *ratelimit.Config) (http.Handler, *testDeps) {
	t.Helper()
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	d := &testDeps{questions: &fakeQuestions{}, extractor: &fakeExtractor{}, store: &fakeStore{}}
	s, err := New(Config{Port: 0, RateLimit: rl}, Deps{Store: d.store, Questions: d.questions, Extractor: d.extractor})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s.Handler(), d
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}

func sampleResult() *types.AggregateResult {
	q := types.GeneratedQuestion{ID: "q1", Question: "What is a goroutine?", Answer: "A lightweight thread.",
		Category: types.CategoryTechnical, Source: types.SourceAIGenerated, Difficulty: types.DifficultyMedium}
	return &types.AggregateResult{
		JobAnalysis:      types.JobProfile{JobTitle: "Backend Engineer"},
		Domain:           types.Domain("engineering"),
		DomainCategories: []string{"system_design"},
		Technical:        []types.GeneratedQuestion{q},
		Behavioral:       []types.GeneratedQuestion{},
		Situational:      []types.GeneratedQuestion{},
		CompanySpecific:  []types.GeneratedQuestion{},
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.Error(t, err)
}

func TestHealthAndRoot(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := doJSON(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doJSON(h, http.MethodGet, "/api/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Interview Prep API is running"}`, w.Body.String())
}

func TestGenerate(t *testing.T) {
	h, d := newTestServer(t, nil)
	var got string
	d.questions.GenerateFunc = func(_ context.Context, jd string) (*types.AggregateResult, error) {
		got = jd
		return sampleResult(), nil
	}

	w := doJSON(h, http.MethodPost, "/api/generate-questions", `{"job_description":"Go engineer"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Go engineer", got)

	var resp types.AggregateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Technical, 1)
	assert.Equal(t, "Backend Engineer", resp.JobAnalysis.JobTitle)
}

func TestGenerate_BadRequests(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"empty body", "", "empty request body"},
		{"invalid json", "{", "invalid JSON"},
		{"missing description", `{}`, "job_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestServer(t, nil)
			w := doJSON(h, http.MethodPost, "/api/generate-questions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.wantError)
		})
	}
}

func TestGenerate_ServerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"composition failure is described", &pipeline.CompositionError{Category: types.CategoryBehavioral, Reason: "duplicate id q1"}, "composition error in behavioral: duplicate id q1"},
		{"unknown failure is hidden", errors.New("dial tcp 10.0.0.5:5432: refused"), "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, d := newTestServer(t, nil)
			d.questions.GenerateFunc = func(context.Context, string) (*types.AggregateResult, error) {
				return nil, tt.err
			}

			w := doJSON(h, http.MethodPost, "/api/generate-questions", `{"job_description":"x"}`)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.want, decodeError(t, w))
		})
	}
}

func TestGenerateStream(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.questions.GenerateFunc = func(context.Context, string) (*types.AggregateResult, error) {
		return sampleResult(), nil
	}

	w := doJSON(h, http.MethodPost, "/api/generate-questions/stream", `{"job_description":"Go engineer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, "event: complete\n")
	assert.Contains(t, body, `"total":1`)
	assert.Less(t, strings.Index(body, "event: result"), strings.Index(body, "event: complete"))
}

func TestGenerateStream_Error(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.questions.GenerateFunc = func(context.Context, string) (*types.AggregateResult, error) {
		return nil, context.DeadlineExceeded
	}

	w := doJSON(h, http.MethodPost, "/api/generate-questions/stream", `{"job_description":"x"}`)
	body := w.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.NotContains(t, body, "event: result")
}

func TestGenerateStream_CompositionErrorIsDescribed(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.questions.GenerateFunc = func(context.Context, string) (*types.AggregateResult, error) {
		return nil, &pipeline.CompositionError{Reason: "result is nil"}
	}

	w := doJSON(h, http.MethodPost, "/api/generate-questions/stream", `{"job_description":"x"}`)
	assert.Contains(t, w.Body.String(), `data: {"error":"composition error: result is nil"}`)
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "internal server error", publicMessage(errors.New("secret")))
	assert.Equal(t, "composition error: bad", publicMessage(fmt.Errorf("run: %w", &pipeline.CompositionError{Reason: "bad"})))
	assert.Equal(t, "Favorite not found", publicMessage(&ErrNotFound{Resource: "Favorite"}))
}

func TestGenerateStream_ValidationIsPlainJSON(t *testing.T) {
	h, _ := newTestServer(t, nil)
	w := doJSON(h, http.MethodPost, "/api/generate-questions/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestLoadMore(t *testing.T) {
	h, d := newTestServer(t, nil)
	var got types.LoadMoreRequest
	d.questions.LoadMoreFunc = func(_ context.Context, req types.LoadMoreRequest) (*types.LoadMoreResult, error) {
		got = req
		return &types.LoadMoreResult{Category: types.CategoryBehavioral, Questions: []types.GeneratedQuestion{}}, nil
	}

	body := `{"job_description":"jd","category":"behavioral","existing_questions":["Tell me about a conflict."],"count":3}`
	w := doJSON(h, http.MethodPost, "/api/load-more-questions", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "behavioral", got.Category)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, []string{"Tell me about a conflict."}, got.ExistingQuestions)
}

func TestLoadMore_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad category", `{"job_description":"jd","category":"trivia"}`, "category"},
		{"count too high", `{"job_description":"jd","category":"technical","count":11}`, "count"},
		{"missing description", `{"category":"technical"}`, "job_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestServer(t, nil)
			w := doJSON(h, http.MethodPost, "/api/load-more-questions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.field)
		})
	}
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExtractText(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.extractor.FileFunc = func(_ context.Context, filename, _ string, data []byte) (*ingestion.Document, error) {
		assert.Equal(t, "job.txt", filename)
		assert.Equal(t, "Senior Go Engineer", string(data))
		return &ingestion.Document{Text: "Senior Go Engineer", Metadata: ingestion.Metadata{Characters: 18}}, nil
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, "file", "job.txt", []byte("Senior Go Engineer")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.ExtractTextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Senior Go Engineer", resp.Text)
	assert.Equal(t, "job.txt", resp.Filename)
	assert.Equal(t, 18, resp.Characters)
}

func TestExtractText_Errors(t *testing.T) {
	t.Run("missing file field", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, "upload", "job.txt", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		h, _ := newTestServer(t, nil)
		w := doJSON(h, http.MethodPost, "/api/extract-text", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		h, d := newTestServer(t, nil)
		d.extractor.FileFunc = func(_ context.Context, filename, contentType string, _ []byte) (*ingestion.Document, error) {
			return nil, &ingestion.UnsupportedTypeError{Filename: filename, ContentType: contentType}
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, "file", "tool.exe", []byte{0x4d, 0x5a}))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		h, d := newTestServer(t, nil)
		d.extractor.Max = 16
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, "file", "big.txt", bytes.Repeat([]byte("a"), 128<<10)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("empty text", func(t *testing.T) {
		h, d := newTestServer(t, nil)
		d.extractor.FileFunc = func(context.Context, string, string, []byte) (*ingestion.Document, error) {
			return nil, ingestion.ErrEmptyText
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, "file", "blank.txt", []byte("   ")))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestExtractURL(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.extractor.URLFunc = func(_ context.Context, url string) (*ingestion.Document, error) {
		assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", url)
		return &ingestion.Document{Text: "Role text", Metadata: ingestion.Metadata{Characters: 9}}, nil
	}

	w := doJSON(h, http.MethodPost, "/api/extract-text-from-url", `{"url":"https://boards.greenhouse.io/acme/jobs/1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.ExtractTextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Role text", resp.Text)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", resp.URL)
}

func TestExtractURL_InvalidURL(t *testing.T) {
	h, _ := newTestServer(t, nil)
	w := doJSON(h, http.MethodPost, "/api/extract-text-from-url", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "url")
}

func TestExtractURL_PrivateAddressRejected(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.extractor.URLFunc = func(ctx context.Context, url string) (*ingestion.Document, error) {
		return ingestion.NewExtractor(ingestion.WithAddressGuard()).ExtractURL(ctx, url)
	}
	w := doJSON(h, http.MethodPost, "/api/extract-text-from-url", `{"url":"http://127.0.0.1:6379/"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "address not allowed")
}

func TestFavorites_Lifecycle(t *testing.T) {
	h, d := newTestServer(t, nil)

	w := doJSON(h, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, db.DefaultFavoritesLimit, d.store.listLimit)

	body := `{"question":"Why Go?","answer":"Simplicity.","category":"company_specific","source":"web_search","company":"Acme"}`
	w = doJSON(h, http.MethodPost, "/api/favorites", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved types.FavoriteQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "fav-1", saved.ID)
	assert.Equal(t, types.CategoryCompanySpecific, saved.Category)
	assert.Equal(t, types.SourceWebSearch, saved.Source)
	require.NotNil(t, saved.Company)
	assert.Equal(t, "Acme", *saved.Company)

	w = doJSON(h, http.MethodGet, "/api/favorites?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, d.store.listLimit)
	var list []types.FavoriteQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = doJSON(h, http.MethodDelete, "/api/favorites/fav-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Favorite removed successfully"}`, w.Body.String())

	w = doJSON(h, http.MethodDelete, "/api/favorites/fav-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Favorite not found", decodeError(t, w))
}

func TestFavorites_Validation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"bad limit", http.MethodGet, "/api/favorites?limit=abc", ""},
		{"zero limit", http.MethodGet, "/api/favorites?limit=0", ""},
		{"missing answer", http.MethodPost, "/api/favorites", `{"question":"q","category":"technical"}`},
		{"bad category", http.MethodPost, "/api/favorites", `{"question":"q","answer":"a","category":"misc"}`},
		{"bad source", http.MethodPost, "/api/favorites", `{"question":"q","answer":"a","category":"technical","source":"forum"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestServer(t, nil)
			w := doJSON(h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestFavorites_StoreFailure(t *testing.T) {
	h, d := newTestServer(t, nil)
	d.store.ListErr = assert.AnError

	w := doJSON(h, http.MethodGet, "/api/favorites", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w))
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := doJSON(h, http.MethodGet, "/health", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	req := httptest.NewRequest(http.MethodOptions, "/api/favorites/abc", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestServer(t, &ratelimit.Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	w := doJSON(h, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doJSON(h, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.EqualValues(t, 1, resp["limit"])

	// health is never limited
	for i := 0; i < 3; i++ {
		w = doJSON(h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientID(req))

	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", clientID(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", clientID(req))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	event := pipeline.ProgressEvent{Step: pipeline.StepAnalyze, Category: pipeline.CategoryAnalysis, Message: "done", Count: 1}
	require.NoError(t, sse.WriteEvent(eventStep, event))
	sse.WriteComplete("completed", 12)

	body := w.Body.String()
	assert.Contains(t, body, "event: step\ndata: {")
	assert.Contains(t, body, `"step":"analyze_job"`)
	assert.Contains(t, body, `{"status":"completed","total":12}`)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}
