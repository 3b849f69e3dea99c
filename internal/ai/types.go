// Package ai holds the request, response, and error types shared by the model
// provider adapters.
package ai

// CompletionRequest is a single-turn request to a generative model.
type CompletionRequest struct {
	// Prompt is the user message.
	Prompt string `json:"prompt"`

	// SystemPrompt provides system-level instructions
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens bounds the generated output
	MaxTokens int `json:"max_tokens"`

	// Temperature is sent as-is; zero means deterministic sampling.
	Temperature float64 `json:"temperature"`

	// TopP is omitted from the provider call when zero.
	TopP float64 `json:"top_p,omitempty"`

	// Model overrides the provider's configured model
	Model string `json:"model,omitempty"`

	// RequestID correlates logs across a request
	RequestID string `json:"request_id,omitempty"`
}

// CompletionResponse is the text produced for a CompletionRequest.
type CompletionResponse struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Model        string `json:"model,omitempty"`
	Usage        Usage  `json:"usage"`
	RequestID    string `json:"request_id,omitempty"`
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
