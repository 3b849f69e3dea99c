package models

import (
	"fmt"
	"strings"
)

// MaxQuestionLength bounds AskRequest.Question, in bytes.
const MaxQuestionLength = 4000

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Validate trims the question and rejects empty or oversized input.
func (r *AskRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if len(r.Question) > MaxQuestionLength {
		return fmt.Errorf("question exceeds %d bytes", MaxQuestionLength)
	}
	return nil
}

// DocumentInput is one (identifier, text) pair submitted for ingestion.
type DocumentInput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// IngestRequest is the body of POST /api/v1/documents.
type IngestRequest struct {
	Documents []DocumentInput `json:"documents"`
}

// Validate requires at least one document and an ID on each.
func (r *IngestRequest) Validate() error {
	if len(r.Documents) == 0 {
		return fmt.Errorf("documents cannot be empty")
	}
	for i, d := range r.Documents {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("documents[%d]: id cannot be empty", i)
		}
	}
	return nil
}

// Session is the wire form of a conversation session. Clients echo it back on
// the next request; the server keeps no session table.
type Session struct {
	ID            string `json:"id"`
	FraudOverride bool   `json:"fraud_override"`
}

// DecisionRequest is the body of POST /api/v1/decisions/{domain}.
type DecisionRequest struct {
	Summary string         `json:"summary"`
	Payload map[string]any `json:"payload"`
	Session *Session       `json:"session,omitempty"`
}

// Validate requires a summary or a payload to analyze.
func (r *DecisionRequest) Validate() error {
	r.Summary = strings.TrimSpace(r.Summary)
	if r.Summary == "" && len(r.Payload) == 0 {
		return fmt.Errorf("summary or payload is required")
	}
	return nil
}

// ValidateRequest is the body of POST /api/v1/decisions/{domain}/validate.
// Raw may be any text; malformed model output is a valid input.
type ValidateRequest struct {
	Raw string `json:"raw"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string   `json:"message"`
	Session *Session `json:"session,omitempty"`
}
