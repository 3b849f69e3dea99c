package decision

import "strings"

// RepairRule maps a parsed reply whose decision value is outside the
// vocabulary to a tag, or reports false when it cannot.
type RepairRule func(fields map[string]any) (string, bool)

// triageRepair returns healing_and_fraud when the reason and suggested
// resolution mention both "healing" and "fraud". Matching is a
// case-insensitive substring test without word boundaries, so "self-healing"
// and "antifraud" both count. This approximates intent; it is not a classifier.
func triageRepair(fields map[string]any) (string, bool) {
	text := strings.ToLower(stringField(fields, "reason") + " " + stringField(fields, "suggested_resolution"))
	if strings.Contains(text, "healing") && strings.Contains(text, "fraud") {
		return TagHealingAndFraud, true
	}
	return "", false
}
