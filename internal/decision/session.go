package decision

import (
	"strings"

	"github.com/google/uuid"
)

// Chat replies and gate messages.
const (
	MsgOverrideActivated = "Fraud override activated. Please rerun fraud check."
	MsgPaymentFailedFor  = "Payment failed for: "
	MsgFraudBlocked      = "Fraud found. Do you still want to continue? Type 'yes'"
	MsgFraudOverridden   = "Fraud override accepted. Proceeding with payment."
)

// Session is per-conversation state carried by the client between requests.
type Session struct {
	ID            string
	FraudOverride bool
}

// NewSession returns a session with a fresh ID and no override.
func NewSession() Session {
	return Session{ID: uuid.NewString()}
}

// Next applies a chat message. A trimmed, case-insensitive "yes" sets the
// fraud override; anything else clears it.
func (s Session) Next(message string) (Session, string) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if strings.ToLower(strings.TrimSpace(message)) == "yes" {
		s.FraudOverride = true
		return s, MsgOverrideActivated
	}
	s.FraudOverride = false
	return s, MsgPaymentFailedFor + message
}

// GateState is the outcome of checking a decision against a session.
type GateState string

const (
	GateClear      GateState = "clear"
	GateBlocked    GateState = "blocked"
	GateOverridden GateState = "overridden"
)

// Gate decides whether a payment may continue after decision d.
func Gate(s Session, d Decision) (GateState, string) {
	if !d.FraudDetected() {
		return GateClear, ""
	}
	if s.FraudOverride {
		return GateOverridden, MsgFraudOverridden
	}
	return GateBlocked, MsgFraudBlocked
}
