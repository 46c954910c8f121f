package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/analysis"
	"github.com/vozlegal/intake/internal/config"
	"github.com/vozlegal/intake/internal/knowledge"
	"github.com/vozlegal/intake/internal/prompt"
	"github.com/vozlegal/intake/internal/routing"
	"github.com/vozlegal/intake/internal/service"
	"github.com/vozlegal/intake/internal/session"
)

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, http.Handler) {
	t.Helper()

	registry, err := agent.NewRegistry(agent.Builtin())
	require.NoError(t, err)

	evaluator := agent.NewEvaluator(registry, time.UTC)
	clock := func() time.Time { return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC) }
	engine := routing.NewEngine(registry, evaluator, clock)
	sessions := session.NewManager(registry, 50, nil)
	composer := prompt.NewComposer(registry, knowledge.Builtin())
	analyzer := analysis.NewAnalyzer(nil, "", 0)

	intake := service.New(engine, sessions, composer, analyzer, service.Options{})
	srv := NewServer(cfg, intake, nil)
	return srv, srv.routes()
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_ChatTurn(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	rec := postJSON(t, handler, "/v1/webhooks/chat", turnPayload{
		UserID: "user-1",
		Input:  "I was in a car accident",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, agent.TypeClassification, result.Agent)
	assert.Equal(t, session.ChannelChat, result.Session.Channel)
	assert.NotEmpty(t, result.Reply)
}

func TestWebhook_UnknownSession(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	rec := postJSON(t, handler, "/v1/webhooks/sms", turnPayload{
		SessionID: "no-such-session",
		UserID:    "user-1",
		Input:     "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhook_MalformedBody(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_EmptyInput(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	rec := postJSON(t, handler, "/v1/webhooks/voice", turnPayload{UserID: "user-1", Input: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndSessionAndStats(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	rec := postJSON(t, handler, "/v1/webhooks/chat", turnPayload{UserID: "user-1", Input: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	statsReq := httptest.NewRequest(http.MethodGet, "/v1/sessions/stats", nil)
	statsRec := httptest.NewRecorder()
	handler.ServeHTTP(statsRec, statsReq)
	require.Equal(t, http.StatusOK, statsRec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["active_sessions"])

	endReq := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+result.Session.ID, nil)
	endRec := httptest.NewRecorder()
	handler.ServeHTTP(endRec, endReq)
	assert.Equal(t, http.StatusNoContent, endRec.Code)
}

func TestAnalysisEndpoints(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	rec := postJSON(t, handler, "/v1/analysis/removal-defense", analysis.CaseFacts{IsDetained: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var out analysis.RemovalDefenseAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, analysis.UrgencyCritical, out.Urgency)

	bondRec := postJSON(t, handler, "/v1/analysis/bond-motion", analysis.BondFacts{DetentionFacility: "Port Isabel"})
	require.Equal(t, http.StatusOK, bondRec.Code)
}

func TestKnowledgeSearch_Disabled(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge/search?q=bond", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKnowledgeSearch_Enabled(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})

	embed := func(ctx context.Context, text string) ([]float32, error) {
		v := make([]float32, 8)
		for i := 0; i < len(text) && i < 8; i++ {
			v[i] = float32(text[i]) / 255
		}
		return v, nil
	}
	index, err := knowledge.NewIndex(context.Background(), knowledge.Builtin(), embed)
	require.NoError(t, err)
	srv.EnableKnowledgeSearch(index, 2)
	handler := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge/search?q=bond+hearing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Query   string            `json:"query"`
		Results []knowledge.Entry `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Results, 2)

	missing := httptest.NewRequest(http.MethodGet, "/v1/knowledge/search", nil)
	missingRec := httptest.NewRecorder()
	handler.ServeHTTP(missingRec, missing)
	assert.Equal(t, http.StatusBadRequest, missingRec.Code)
}

func TestHealth(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	_, handler := newTestServer(t, config.ServerConfig{RatePerSecond: 0.001, RateBurst: 1})

	first := httptest.NewRequest(http.MethodGet, "/health", nil)
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)
	require.Equal(t, http.StatusOK, firstRec.Code)

	second := httptest.NewRequest(http.MethodGet, "/health", nil)
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusTooManyRequests, secondRec.Code)
}
