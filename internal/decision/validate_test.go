package decision

import "testing"

func TestValidate_triage(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantTag    string
		wantReason string
		wantAction string
		wantValid  bool
		wantRaw    bool
	}{
		{
			name:       "valid decision",
			raw:        `{"triage_decision": "fraud", "reason": "r"}`,
			wantTag:    "fraud",
			wantReason: "r",
			wantValid:  true,
		},
		{
			name:       "case and whitespace normalized",
			raw:        `{"triage_decision": "  Healing ", "reason": "gateway down", "suggested_resolution": "retry"}`,
			wantTag:    "healing",
			wantReason: "gateway down",
			wantAction: "retry",
			wantValid:  true,
		},
		{
			name:       "not json",
			raw:        "not json",
			wantTag:    "failed",
			wantReason: ReasonParseFailed,
			wantRaw:    true,
		},
		{
			name:       "json array",
			raw:        `["fraud"]`,
			wantTag:    "failed",
			wantReason: ReasonParseFailed,
			wantRaw:    true,
		},
		{
			name:      "non-string reason reads as empty",
			raw:       `{"triage_decision": "fraud", "reason": 42}`,
			wantTag:   "fraud",
			wantValid: true,
		},
		{
			name:       "numeric decision is invalid",
			raw:        `{"triage_decision": 5}`,
			wantTag:    "failed",
			wantReason: "Invalid decision from 5",
			wantRaw:    true,
		},
		{
			name:       "numeric decision repaired",
			raw:        `{"triage_decision": 5, "reason": "healing after fraud block"}`,
			wantTag:    "healing_and_fraud",
			wantReason: "healing after fraud block",
			wantValid:  true,
			wantRaw:    true,
		},
		{
			name:       "null decision",
			raw:        `{"triage_decision": null, "reason": "unsure"}`,
			wantTag:    "failed",
			wantReason: "Invalid decision from ",
			wantRaw:    true,
		},
		{
			name:       "json inside prose",
			raw:        "Here is my answer: {\"triage_decision\": \"healing\", \"reason\": \"timeout\"} Thanks.",
			wantTag:    "healing",
			wantReason: "timeout",
			wantValid:  true,
		},
		{
			name:       "empty",
			raw:        "   ",
			wantTag:    "failed",
			wantReason: ReasonParseFailed,
			wantRaw:    true,
		},
		{
			name:       "repaired to compound tag",
			raw:        `{"triage_decision": "bogus", "reason": "healing needed due to fraud signal"}`,
			wantTag:    "healing_and_fraud",
			wantReason: "healing needed due to fraud signal",
			wantValid:  true,
			wantRaw:    true,
		},
		{
			name:       "repair reads suggested_resolution",
			raw:        `{"triage_decision": "escalate", "reason": "FRAUD ring suspected", "suggested_resolution": "Self-Healing retry"}`,
			wantTag:    "healing_and_fraud",
			wantReason: "FRAUD ring suspected",
			wantAction: "Self-Healing retry",
			wantValid:  true,
			wantRaw:    true,
		},
		{
			name:       "invalid decision without repair",
			raw:        `{"triage_decision": "Escalate", "reason": "fraud only"}`,
			wantTag:    "failed",
			wantReason: "Invalid decision from escalate",
			wantRaw:    true,
		},
		{
			name:       "missing decision field",
			raw:        `{"reason": "nothing"}`,
			wantTag:    "failed",
			wantReason: "Invalid decision from ",
			wantRaw:    true,
		},
		{
			name:       "fenced reply",
			raw:        "```json\n{\"triage_decision\": \"approved\", \"reason\": \"ok\"}\n```",
			wantTag:    "approved",
			wantReason: "ok",
			wantValid:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Validate(tt.raw, Triage)
			if d.Domain != "triage" {
				t.Errorf("Domain = %q", d.Domain)
			}
			if d.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", d.Tag, tt.wantTag)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
			if d.RecommendedAction != tt.wantAction {
				t.Errorf("RecommendedAction = %q, want %q", d.RecommendedAction, tt.wantAction)
			}
			if d.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", d.Valid, tt.wantValid)
			}
			if tt.wantRaw && d.Raw != tt.raw {
				t.Errorf("Raw = %q, want original text", d.Raw)
			}
			if !tt.wantRaw && d.Raw != "" {
				t.Errorf("Raw = %q, want empty", d.Raw)
			}
			if !Triage.Valid(d.Tag) {
				t.Errorf("tag %q outside vocabulary", d.Tag)
			}
		})
	}
}

func TestValidate_fraud(t *testing.T) {
	tests := []struct {
		raw     string
		wantTag string
		reason  string
	}{
		{`{"fraud_result": "not_fraud", "reason": "known merchant"}`, "not_fraud", "known merchant"},
		{`{"fraud_result": "FRAUD"}`, "fraud", ""},
		{`{"fraud_result": "maybe", "reason": "healing and fraud"}`, "uncertain", "Invalid decision from maybe"},
		{`{"fraud_result": "not_fraud", "recommended_action": null}`, "not_fraud", ""},
		{`{"fraud_result": "fraud", "reason": 123}`, "fraud", ""},
		{`{"fraud_result": true}`, "uncertain", "Invalid decision from true"},
		{"oops", "uncertain", ReasonParseFailed},
	}
	for _, tt := range tests {
		d := Validate(tt.raw, Fraud)
		if d.Tag != tt.wantTag || d.Reason != tt.reason {
			t.Errorf("Validate(%q) = %q/%q, want %q/%q", tt.raw, d.Tag, d.Reason, tt.wantTag, tt.reason)
		}
	}
}

func TestValidate_healing(t *testing.T) {
	tests := []struct {
		raw        string
		wantTag    string
		wantAction string
		wantValid  bool
	}{
		{`{"healing_needed": true, "reason": "outage", "recommended_action": "Restart payment service"}`, "healing_needed", "Restart payment service", true},
		{`{"healing_needed": false, "reason": "fine"}`, "no_action", "", true},
		{`{"reason": "no flag"}`, "no_action", "", true},
		{`{"healing_needed": null, "recommended_action": 7}`, "no_action", "", true},
		{`{"healing_needed": "yes"}`, "failed", "", false},
		{`garbage`, "failed", "", false},
	}
	for _, tt := range tests {
		d := Validate(tt.raw, Healing)
		if d.Tag != tt.wantTag || d.RecommendedAction != tt.wantAction || d.Valid != tt.wantValid {
			t.Errorf("Validate(%q) = %+v", tt.raw, d)
		}
	}
}

func TestValidate_neverPanics(t *testing.T) {
	inputs := []string{
		"", "{", "}", "null", "true", "0", `"str"`, "```", "``````", "```json```",
		`{"triage_decision": null}`, `{"triage_decision": ["fraud"]}`,
		"\x00\xff", `{"healing_needed": true, "reason": {"nested": 1}}`,
	}
	for _, d := range Domains() {
		for _, in := range inputs {
			got := Validate(in, d)
			if !d.Valid(got.Tag) {
				t.Errorf("%s: Validate(%q) tag %q outside vocabulary", d.Name, in, got.Tag)
			}
		}
	}
}
