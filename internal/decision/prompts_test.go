package decision

import (
	"strings"
	"testing"
)

func TestBuildRequest(t *testing.T) {
	req := BuildRequest(Healing, "settlement stuck", map[string]any{"status": "PENDING"})
	if req.Options.MaxTokens != 256 || req.Options.Temperature != 0 {
		t.Errorf("options = %+v", req.Options)
	}
	for _, want := range []string{"Summary: settlement stuck", `"status": "PENDING"`, "healing_needed is a boolean"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(req.System, "JSON") {
		t.Errorf("system prompt = %q", req.System)
	}

	empty := BuildRequest(Triage, "s", nil)
	if !strings.Contains(empty.Prompt, "Data: {}") {
		t.Error("nil payload should render as {}")
	}
}

func TestBuildRequest_systemOnlyInSystemField(t *testing.T) {
	req := BuildRequest(Fraud, "refund of 100% on card", nil)
	if !strings.HasPrefix(req.System, fraudPrompt.system) ||
		!strings.HasSuffix(req.System, "Reply ONLY with a JSON object and no other text.") {
		t.Errorf("System = %q", req.System)
	}
	if strings.Contains(req.Prompt, "System:") || strings.Contains(req.Prompt, fraudPrompt.system) {
		t.Errorf("system text repeated in prompt:\n%s", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "Summary: refund of 100% on card") {
		t.Errorf("summary mangled:\n%s", req.Prompt)
	}
}
