package models

// AskResponse is the reply to an AskRequest. Response is always a
// user-facing message, including when no answer could be produced.
type AskResponse struct {
	Response string   `json:"response"`
	State    string   `json:"state"`
	Sources  []string `json:"sources,omitempty"`
}

// IngestResponse reports the outcome of an IngestRequest.
type IngestResponse struct {
	Seen       int `json:"seen"`
	Ingested   int `json:"ingested"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// DecisionResponse carries a validated decision and, for fraud checks with a
// session, the outcome of the fraud gate.
type DecisionResponse struct {
	Domain            string   `json:"domain"`
	Tag               string   `json:"tag"`
	Reason            string   `json:"reason"`
	RecommendedAction string   `json:"recommended_action"`
	Raw               string   `json:"raw,omitempty"`
	Valid             bool     `json:"valid"`
	Status            string   `json:"status,omitempty"`
	Resolution        string   `json:"resolution,omitempty"`
	Gate              string   `json:"gate,omitempty"`
	Message           string   `json:"message,omitempty"`
	Session           *Session `json:"session,omitempty"`
}

// ChatResponse is the reply to a ChatRequest.
type ChatResponse struct {
	Response string  `json:"response"`
	Session  Session `json:"session"`
}

// StatusResponse is the reply to GET /api/v1/status.
type StatusResponse struct {
	Chunks          int64  `json:"chunks"`
	Backend         string `json:"backend"`
	TableName       string `json:"table_name"`
	Dimension       int    `json:"dimension"`
	EmbeddingModel  string `json:"embedding_model"`
	GenerationModel string `json:"generation_model"`
	DiskUsageBytes  int64  `json:"disk_usage_bytes,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
