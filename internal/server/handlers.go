package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/decision"
	"github.com/swapnilxi/grab-hack/internal/ingest"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := storage.Status(r.Context(), s.store, s.config)
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.Int("question_len", len(req.Question)))
	s.respondJSON(w, http.StatusOK, s.answerer.Answer(r.Context(), req.Question).Response())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	docs := make([]ingest.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = ingest.Document{ID: d.ID, Text: d.Text}
	}
	s.logger.Debug("ingest request", zap.Int("documents", len(docs)))
	stats := s.ingestor.Ingest(r.Context(), ingest.Slice(docs))
	s.respondJSON(w, http.StatusOK, stats.Response())
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	d, ok := s.domain(w, r)
	if !ok {
		return
	}
	var req models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	dec := s.decider.Decide(r.Context(), d, req.Summary, req.Payload)
	resp := dec.Response()
	if req.Session != nil && (d.Name == decision.Fraud.Name || d.Name == decision.Triage.Name) {
		sess := fromWire(req.Session)
		gate, msg := decision.Gate(sess, dec)
		resp.Gate = string(gate)
		resp.Message = msg
		resp.Session = toWire(sess)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.domain(w, r)
	if !ok {
		return
	}
	var req models.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, decision.Validate(req.Raw, d).Response())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := decision.NewSession()
	if req.Session != nil {
		sess = fromWire(req.Session)
	}
	next, reply := sess.Next(req.Message)
	s.logger.Debug("chat message", zap.String("session_id", next.ID), zap.Bool("fraud_override", next.FraudOverride))
	s.respondJSON(w, http.StatusOK, models.ChatResponse{Response: reply, Session: *toWire(next)})
}

func (s *Server) domain(w http.ResponseWriter, r *http.Request) (decision.Domain, bool) {
	name := chi.URLParam(r, "domain")
	d, ok := decision.Lookup(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown decision domain: "+name)
	}
	return d, ok
}

func fromWire(s *models.Session) decision.Session {
	return decision.Session{ID: s.ID, FraudOverride: s.FraudOverride}
}

func toWire(s decision.Session) *models.Session {
	return &models.Session{ID: s.ID, FraudOverride: s.FraudOverride}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}
