package decision

import "github.com/swapnilxi/grab-hack/internal/models"

// Reasons attached to fallback decisions.
const (
	ReasonParseFailed = "LLM output parsing failed"
	ReasonModelFailed = "Model failed to respond"
)

// Healing status values.
const (
	StatusPendingReview = "PENDING_REVIEW"
	StatusNoAction      = "NO_ACTION"
	StatusError         = "ERROR"
)

// Decision is a validated model verdict. Tag is always in the domain's
// vocabulary; Raw keeps the model text whenever it was not taken as-is.
type Decision struct {
	Domain            string `json:"domain"`
	Tag               string `json:"tag"`
	Reason            string `json:"reason"`
	RecommendedAction string `json:"recommended_action"`
	Raw               string `json:"raw,omitempty"`
	Valid             bool   `json:"valid"`
	Repaired          bool   `json:"repaired,omitempty"`
}

func failure(d Domain, reason, raw string) Decision {
	return Decision{
		Domain: d.Name,
		Tag:    d.FailureTag,
		Reason: reason,
		Raw:    raw,
	}
}

// FraudDetected reports whether the decision flags fraud.
func (d Decision) FraudDetected() bool {
	switch d.Domain {
	case Fraud.Name:
		return d.Tag == TagFraud
	case Triage.Name:
		return d.Tag == TagFraud || d.Tag == TagHealingAndFraud
	}
	return false
}

// HealingNeeded reports whether the decision calls for healing.
func (d Decision) HealingNeeded() bool {
	switch d.Domain {
	case Healing.Name:
		return d.Tag == TagHealingNeeded
	case Triage.Name:
		return d.Tag == TagHealing || d.Tag == TagHealingAndFraud
	}
	return false
}

// Status is the payment status a healing decision moves to. Other domains
// report an empty status.
func (d Decision) Status() string {
	if d.Domain != Healing.Name {
		return ""
	}
	switch d.Tag {
	case TagHealingNeeded:
		return StatusPendingReview
	case TagNoAction:
		return StatusNoAction
	default:
		return StatusError
	}
}

// Resolution is the operator-facing summary of a healing decision.
func (d Decision) Resolution() string {
	if d.Domain != Healing.Name {
		return ""
	}
	if d.Tag == TagFailed {
		return "Healing failed"
	}
	return "Recommended action: " + d.RecommendedAction
}

// Response is the wire form of the decision.
func (d Decision) Response() models.DecisionResponse {
	return models.DecisionResponse{
		Domain:            d.Domain,
		Tag:               d.Tag,
		Reason:            d.Reason,
		RecommendedAction: d.RecommendedAction,
		Raw:               d.Raw,
		Valid:             d.Valid,
		Status:            d.Status(),
		Resolution:        d.Resolution(),
	}
}
