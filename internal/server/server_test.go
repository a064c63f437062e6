// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/contextstore"
	"github.com/pdiddy/answer-engine/internal/controller"
	"github.com/pdiddy/answer-engine/internal/feedback"
	"github.com/pdiddy/answer-engine/internal/generation"
	"github.com/pdiddy/answer-engine/internal/retrieval"
	"github.com/pdiddy/answer-engine/pkg/types"
)

type stubSearchProvider struct {
	hits []map[string]any
	err  error
}

func (p *stubSearchProvider) Name() string { return "stub" }

func (p *stubSearchProvider) Search(ctx context.Context, query, queryType string, size int) ([]map[string]any, error) {
	return p.hits, p.err
}

func testHits(n int) []map[string]any {
	hits := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		hits = append(hits, map[string]any{
			"title":    fmt.Sprintf("Study %d", i+1),
			"abstract": fmt.Sprintf("Finding %d about the mechanism.", i+1),
			"pmid":     fmt.Sprintf("4000%d", i+1),
			"score":    float64(n - i),
		})
	}
	return hits
}

func newTestServer(t *testing.T, search retrieval.Provider, llm generation.Provider) *Server {
	t.Helper()

	store := contextstore.New(types.ContextStoreConfig{})
	t.Cleanup(store.Close)

	ret := retrieval.NewService(search, store, types.SearchConfig{}, io.Discard)
	gen := generation.NewService(llm, store, types.GenerationConfig{}, io.Discard)
	ctrl := controller.New(ret, gen, io.Discard)

	fb, err := feedback.NewStore(types.FeedbackConfig{
		DBPath: filepath.Join(t.TempDir(), "feedback.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { fb.Close() })

	return New(types.ServerConfig{}, ctrl, store, fb, zap.NewNop())
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUnifiedSearchHappyPath(t *testing.T) {
	srv := newTestServer(t,
		&stubSearchProvider{hits: testHits(4)},
		&generation.MockProvider{Response: "The mechanism is well characterized [1][2]."},
	)

	rec := postJSON(t, srv.Handler(), "/api/unified-search", types.AskRequest{
		Query: "How does metformin affect AMPK signaling?",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res types.UnifiedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RequestID)
	assert.NotEmpty(t, res.Summary)
	assert.NotEmpty(t, res.Answer)
	assert.Len(t, res.Citations, 4)
}

func TestUnifiedSearchWantSummaryFalse(t *testing.T) {
	srv := newTestServer(t,
		&stubSearchProvider{hits: testHits(2)},
		&generation.MockProvider{Response: "Answer text [1]."},
	)

	no := false
	rec := postJSON(t, srv.Handler(), "/api/unified-search", types.AskRequest{
		Query:       "metformin",
		WantSummary: &no,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res types.UnifiedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Summary)
	assert.Zero(t, res.SummaryLatencyMs)
	assert.Zero(t, res.ChunksUsedSummary)
	assert.NotEmpty(t, res.Answer)
}

func TestUnifiedSearchEmptyQuery(t *testing.T) {
	srv := newTestServer(t,
		&stubSearchProvider{},
		&generation.MockProvider{Response: "unused"},
	)

	rec := postJSON(t, srv.Handler(), "/api/unified-search", types.AskRequest{Query: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")
}

func TestUnifiedSearchBadJSON(t *testing.T) {
	srv := newTestServer(t, &stubSearchProvider{}, &generation.MockProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/unified-search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedSearchRetrievalFailure(t *testing.T) {
	srv := newTestServer(t,
		&stubSearchProvider{err: fmt.Errorf("upstream unreachable")},
		&generation.MockProvider{Response: "unused"},
	)

	rec := postJSON(t, srv.Handler(), "/api/unified-search", types.AskRequest{Query: "metformin"})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var res types.UnifiedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestFeedbackSubmitAndList(t *testing.T) {
	srv := newTestServer(t, &stubSearchProvider{}, &generation.MockProvider{})

	rec := postJSON(t, srv.Handler(), "/api/feedback", types.Feedback{
		RequestID:  "req-9",
		UserQuery:  "q",
		AIResponse: "a",
		Metrics:    types.FeedbackMetrics{Clarity: 4},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created["feedback_id"])

	req := httptest.NewRequest(http.MethodGet, "/api/feedback?limit=5", nil)
	listRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(listRec, req)

	require.Equal(t, http.StatusOK, listRec.Code)
	var page struct {
		Feedback []types.Feedback `json:"feedback"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Feedback, 1)
	assert.Equal(t, "req-9", page.Feedback[0].RequestID)
}

func TestFeedbackSubmitInvalid(t *testing.T) {
	srv := newTestServer(t, &stubSearchProvider{}, &generation.MockProvider{})

	rec := postJSON(t, srv.Handler(), "/api/feedback", types.Feedback{UserQuery: "q"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackListBadLimit(t *testing.T) {
	srv := newTestServer(t, &stubSearchProvider{}, &generation.MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/feedback?limit=abc", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsReflectsActiveContexts(t *testing.T) {
	srv := newTestServer(t,
		&stubSearchProvider{hits: testHits(1)},
		&generation.MockProvider{Response: "text [1]."},
	)

	rec := postJSON(t, srv.Handler(), "/api/unified-search", types.AskRequest{Query: "metformin"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	statsRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(statsRec, req)

	require.Equal(t, http.StatusOK, statsRec.Code)
	var stats contextstore.Stats
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.ActiveContexts)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubSearchProvider{}, &generation.MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubSearchProvider{}, &generation.MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/unified-search", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
