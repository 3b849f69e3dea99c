package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/ai/providers/mock"
	"github.com/swapnilxi/grab-hack/internal/config"
	"github.com/swapnilxi/grab-hack/internal/decision"
	"github.com/swapnilxi/grab-hack/internal/embedding"
	"github.com/swapnilxi/grab-hack/internal/generation"
	"github.com/swapnilxi/grab-hack/internal/ingest"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/qa"
	"github.com/swapnilxi/grab-hack/internal/vector"
)

const dim = 8

type testServer struct {
	provider *mock.Provider
	store    *vector.MemoryStore
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	provider := mock.New(dim)
	store, err := vector.NewMemoryStore(dim)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.Embedding.Dimension = dim

	logger := zap.NewNop()
	emb := embedding.NewClient(provider, dim)
	gen := generation.NewClient(provider, generation.WithLogger(logger))
	srv := NewServer(
		qa.NewAnswerer(emb, store, gen, qa.WithLogger(logger)),
		ingest.NewIngestor(emb, store, ingest.WithLogger(logger)),
		decision.NewDecider(gen, decision.WithLogger(logger)),
		store,
		cfg,
		logger,
	)
	return &testServer{provider: provider, store: store, handler: srv.Handler()}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleIngestAndStatus(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/v1/documents",
		`{"documents":[{"id":"a.txt","text":"refund policy"},{"id":"b.txt","text":"  "},{"id":"a.txt","text":"again"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	got := decode[models.IngestResponse](t, w)
	if got.Seen != 3 || got.Ingested != 1 || got.Skipped != 1 || got.Duplicates != 1 {
		t.Errorf("ingest response = %+v", got)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	st := decode[models.StatusResponse](t, w)
	if st.Chunks != 1 || st.Backend != "memory" || st.Dimension != dim {
		t.Errorf("status response = %+v", st)
	}
}

func TestHandleIngest_badRequests(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(t, http.MethodPost, "/api/v1/documents", `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/v1/documents", `{"documents":[]}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty documents: got %d", w.Code)
	}
}

func TestHandleAsk(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/ask", `{"question":"how long do refunds take?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if got := decode[models.AskResponse](t, w); got.Response != qa.MsgNoResults || got.State != string(qa.StateNoResults) {
		t.Errorf("empty store answer = %+v", got)
	}

	ts.provider.WithReplies("Refunds take 5 days.")
	ctx := context.Background()
	vec, _ := ts.provider.Embed(ctx, "Refunds settle in 5 business days.")
	if _, err := ts.store.Upsert(ctx, &models.DocumentChunk{ID: "refunds.txt", Content: "Refunds settle in 5 business days.", Embedding: vec}); err != nil {
		t.Fatal(err)
	}
	w = ts.do(t, http.MethodPost, "/api/v1/ask", `{"question":"how long do refunds take?"}`)
	got := decode[models.AskResponse](t, w)
	if got.Response != "Refunds take 5 days." || got.State != string(qa.StateDone) {
		t.Errorf("answer = %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "refunds.txt" {
		t.Errorf("sources = %v", got.Sources)
	}

	if w := ts.do(t, http.MethodPost, "/api/v1/ask", `{"question":"   "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank question: got %d", w.Code)
	}
}

func TestHandleDecide(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.WithReplies(`{"fraud_result":"fraud","reason":"velocity","recommended_action":"block card"}`)

	w := ts.do(t, http.MethodPost, "/api/v1/decisions/fraud",
		`{"summary":"10 charges in 1 minute","payload":{"amount":900},"session":{"id":"s1"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", w.Code, w.Body.String())
	}
	got := decode[models.DecisionResponse](t, w)
	if got.Tag != decision.TagFraud || !got.Valid || got.RecommendedAction != "block card" {
		t.Errorf("decision = %+v", got)
	}
	if got.Gate != string(decision.GateBlocked) || got.Message != decision.MsgFraudBlocked {
		t.Errorf("gate = %q %q", got.Gate, got.Message)
	}
	if got.Session == nil || got.Session.ID != "s1" {
		t.Errorf("session = %+v", got.Session)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/decisions/fraud",
		`{"summary":"10 charges in 1 minute","session":{"id":"s1","fraud_override":true}}`)
	if got := decode[models.DecisionResponse](t, w); got.Gate != string(decision.GateOverridden) {
		t.Errorf("gate with override = %q", got.Gate)
	}
}

func TestHandleDecide_healing(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.WithReplies(`{"healing_needed":true,"reason":"timeout","recommended_action":"retry"}`)
	w := ts.do(t, http.MethodPost, "/api/v1/decisions/healing", `{"summary":"gateway timeout"}`)
	got := decode[models.DecisionResponse](t, w)
	if got.Tag != decision.TagHealingNeeded || got.Status != decision.StatusPendingReview {
		t.Errorf("decision = %+v", got)
	}
	if got.Gate != "" {
		t.Errorf("healing decisions are not gated, got %q", got.Gate)
	}
}

func TestHandleDecide_errors(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(t, http.MethodPost, "/api/v1/decisions/weather", `{"summary":"x"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown domain: got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/v1/decisions/fraud", `[`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/v1/decisions/fraud", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty request: got %d", w.Code)
	}
}

func TestHandleDecide_modelFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.FailComplete(context.DeadlineExceeded)
	w := ts.do(t, http.MethodPost, "/api/v1/decisions/triage", `{"summary":"declined"}`)
	got := decode[models.DecisionResponse](t, w)
	if got.Tag != decision.TagFailed || got.Valid || got.Reason != decision.ReasonModelFailed {
		t.Errorf("decision = %+v", got)
	}
}

func TestHandleValidate(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/v1/decisions/triage/validate",
		`{"raw":"{\"triage_decision\":\"needs review\",\"reason\":\"both healing and fraud apply\"}"}`)
	got := decode[models.DecisionResponse](t, w)
	if got.Tag != decision.TagHealingAndFraud || !got.Valid {
		t.Errorf("repaired decision = %+v", got)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/decisions/fraud/validate", `{"raw":"not json at all"}`)
	got = decode[models.DecisionResponse](t, w)
	if got.Tag != decision.TagUncertain || got.Valid || got.Reason != decision.ReasonParseFailed {
		t.Errorf("fallback decision = %+v", got)
	}
	if got.Raw != "not json at all" {
		t.Errorf("raw = %q", got.Raw)
	}
}

func TestHandleChat(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/chat", `{"message":" YES "}`)
	got := decode[models.ChatResponse](t, w)
	if got.Response != decision.MsgOverrideActivated || !got.Session.FraudOverride || got.Session.ID == "" {
		t.Errorf("chat = %+v", got)
	}

	body := `{"message":"card declined","session":{"id":"` + got.Session.ID + `","fraud_override":true}}`
	w = ts.do(t, http.MethodPost, "/api/v1/chat", body)
	next := decode[models.ChatResponse](t, w)
	if next.Session.FraudOverride || next.Session.ID != got.Session.ID {
		t.Errorf("session = %+v", next.Session)
	}
	if !strings.HasPrefix(next.Response, decision.MsgPaymentFailedFor) {
		t.Errorf("response = %q", next.Response)
	}
}
