package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/swapnilxi/grab-hack/internal/generation"
)

type promptTemplate struct {
	system       string
	instructions string
	example      string
	reply        any
}

type triageReply struct {
	TriageDecision      string `json:"triage_decision"`
	Reason              string `json:"reason"`
	SuggestedResolution string `json:"suggested_resolution"`
}

type fraudReply struct {
	FraudResult       string `json:"fraud_result"`
	Reason            string `json:"reason"`
	RecommendedAction string `json:"recommended_action"`
}

type healingReply struct {
	HealingNeeded     bool   `json:"healing_needed"`
	Reason            string `json:"reason"`
	RecommendedAction string `json:"recommended_action"`
}

var (
	triagePrompt = promptTemplate{
		system: "You are a payments triage AI. Assess transactions for risk, potential fraud, or operational errors.",
		instructions: "Summarize the key issue, flag any suspicious signals, and choose triage_decision as:\n" +
			"- fraud: the transaction shows fraudulent activity\n" +
			"- healing: the payment failed for an operational reason that can be retried or repaired\n" +
			"- healing_and_fraud: both apply\n" +
			"- approved: nothing needs attention\n" +
			"- failed: the data is insufficient to decide",
		example: `{ "triage_decision": "healing", "reason": "Gateway timeout on capture", "suggested_resolution": "Retry via secondary gateway" }`,
		reply:   &triageReply{},
	}

	fraudPrompt = promptTemplate{
		system: "You are a payment fraud detection AI.",
		instructions: "Choose fraud_result as:\n" +
			"- fraud: if you see clear suspicious or fraudulent activity\n" +
			"- not_fraud: if you see no indication of fraud\n" +
			"- uncertain: if you cannot tell from the data",
		example: `{ "fraud_result": "fraud", "reason": "Unusual amount and flagged metadata" }`,
		reply:   &fraudReply{},
	}

	healingPrompt = promptTemplate{
		system: "You are a payment infrastructure healing agent.",
		instructions: "Given the transaction summary and system data, decide whether healing " +
			"(retry, failover, self-healing, or manual intervention) is needed.",
		example: `{ "healing_needed": true, "reason": "Detected server outage", "recommended_action": "Restart payment service and notify ops" }`,
		reply:   &healingReply{},
	}
)

// BuildRequest returns the generation request for analyzing summary and
// payload in domain d. The model is asked to reply with JSON only.
func BuildRequest(d Domain, summary string, payload map[string]any) generation.Request {
	data := "{}"
	if len(payload) > 0 {
		if b, err := json.MarshalIndent(payload, "", "  "); err == nil {
			data = string(b)
		}
	}

	tmpl := d.prompt
	var vocab string
	if d.Boolean {
		vocab = fmt.Sprintf("%s is a boolean.", d.Field)
	} else {
		vocab = fmt.Sprintf("%s must be one of: %s.", d.Field, strings.Join(d.Vocabulary, ", "))
	}

	prompt := promptfmt.New().
		System("%s Reply ONLY with a JSON object and no other text.", tmpl.system).
		User("%s\n%s\nBe concise and objective. Example:\n%s\n\nSummary: %s\nData: %s",
			tmpl.instructions, vocab, tmpl.example, summary, data).
		ExpectJSON(tmpl.reply).
		Build()

	return generation.FromPrompt(prompt, generation.DecisionOptions(d.MaxTokens))
}
