// Package decision converts free-form model output into one of a closed set
// of typed decisions per domain, with deterministic fallback.
package decision

import "strings"

// Domain describes one decision taxonomy: the field the model must fill, the
// tags it may produce and the tag used when output cannot be validated.
type Domain struct {
	Name       string
	Field      string
	Vocabulary []string
	FailureTag string
	// MaxTokens is the generation budget for this domain's prompt.
	MaxTokens int
	// Boolean domains read Field as a JSON boolean mapped to TrueTag/FalseTag.
	Boolean  bool
	TrueTag  string
	FalseTag string

	// ActionField holds the recommended action in the model reply.
	ActionField string
	schema      string
	repair      RepairRule
	prompt      promptTemplate
}

// Valid reports whether tag is in the domain's vocabulary.
func (d Domain) Valid(tag string) bool {
	for _, v := range d.Vocabulary {
		if v == tag {
			return true
		}
	}
	return false
}

// Triage tags.
const (
	TagFraud           = "fraud"
	TagHealing         = "healing"
	TagHealingAndFraud = "healing_and_fraud"
	TagFailed          = "failed"
	TagApproved        = "approved"
)

// Fraud tags.
const (
	TagNotFraud  = "not_fraud"
	TagUncertain = "uncertain"
)

// Healing tags.
const (
	TagHealingNeeded = "healing_needed"
	TagNoAction      = "no_action"
)

var (
	// Triage routes a transaction to fraud and/or healing handling.
	Triage = Domain{
		Name:        "triage",
		Field:       "triage_decision",
		Vocabulary:  []string{TagFraud, TagHealing, TagHealingAndFraud, TagFailed, TagApproved},
		FailureTag:  TagFailed,
		MaxTokens:   512,
		ActionField: "suggested_resolution",
		schema:      `{"type": "object"}`,
		repair:      triageRepair,
		prompt:      triagePrompt,
	}

	// Fraud classifies a transaction as fraudulent or not.
	Fraud = Domain{
		Name:        "fraud",
		Field:       "fraud_result",
		Vocabulary:  []string{TagFraud, TagNotFraud, TagUncertain},
		FailureTag:  TagUncertain,
		MaxTokens:   128,
		ActionField: "recommended_action",
		schema:      `{"type": "object"}`,
		prompt:      fraudPrompt,
	}

	// Healing decides whether a failed payment needs intervention.
	Healing = Domain{
		Name:        "healing",
		Field:       "healing_needed",
		Vocabulary:  []string{TagHealingNeeded, TagNoAction, TagFailed},
		FailureTag:  TagFailed,
		MaxTokens:   256,
		Boolean:     true,
		TrueTag:     TagHealingNeeded,
		FalseTag:    TagNoAction,
		ActionField: "recommended_action",
		schema: `{
			"type": "object",
			"properties": {
				"healing_needed": {"type": ["boolean", "null"]}
			}
		}`,
		prompt: healingPrompt,
	}
)

// Domains returns every known domain.
func Domains() []Domain {
	return []Domain{Triage, Fraud, Healing}
}

// Lookup returns the domain with the given name, case-insensitively.
func Lookup(name string) (Domain, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range Domains() {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}
