package generation

import (
	"strings"

	"github.com/yildizm/go-promptfmt"
)

const answerSystem = "You are a payments operations assistant. Answer using only the provided context. " +
	"If the context does not contain the answer, say so."

// AnswerRequest builds the question-answering prompt around the retrieved context.
func AnswerRequest(contextText, question string, opts Options) Request {
	prompt := promptfmt.New().
		System(answerSystem).
		User("Use the following context to answer:\n\n%s\n\nQuestion: %s", contextText, question).
		Build()
	return FromPrompt(prompt, opts)
}

// FromPrompt converts a built prompt into a Request. The system prompt is
// carried only in System; Prompt holds the user turns.
func FromPrompt(p *promptfmt.Prompt, opts Options) Request {
	var user []string
	for _, m := range p.Messages {
		if m.Role == "user" {
			user = append(user, m.Content)
		}
	}
	return Request{
		System:  p.SystemPrompt,
		Prompt:  strings.Join(user, "\n\n"),
		Options: opts,
	}
}
