// Package cli renders grabhack results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer and the fragments it was built from.
func WriteAnswer(w io.Writer, a models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, a)
	}
	fmt.Fprintln(w, a.Response)
	if len(a.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources:")
		for _, s := range a.Sources {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}

// WriteDecision writes a decision, its healing status and any gate outcome.
func WriteDecision(w io.Writer, d models.DecisionResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, d)
	}
	fmt.Fprintf(w, "domain:   %s\n", d.Domain)
	fmt.Fprintf(w, "decision: %s\n", d.Tag)
	fmt.Fprintf(w, "valid:    %t\n", d.Valid)
	if d.Reason != "" {
		fmt.Fprintf(w, "reason:   %s\n", d.Reason)
	}
	if d.RecommendedAction != "" {
		fmt.Fprintf(w, "action:   %s\n", d.RecommendedAction)
	}
	if d.Status != "" {
		fmt.Fprintf(w, "status:   %s\n", d.Status)
	}
	if d.Gate != "" {
		fmt.Fprintf(w, "gate:     %s\n", d.Gate)
	}
	if d.Message != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Message)
	}
	if !d.Valid && d.Raw != "" {
		fmt.Fprintf(w, "\nraw model output:\n%s\n", utils.Truncate(d.Raw, 200))
	}
	return nil
}

// WriteIngestStats writes the outcome of an ingestion run.
func WriteIngestStats(w io.Writer, s models.IngestResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "Ingested %d of %d document(s) (%d duplicate, %d skipped, %d failed)\n",
		s.Ingested, s.Seen, s.Duplicates, s.Skipped, s.Failed)
	return nil
}

// WriteStatus writes store and model status.
func WriteStatus(w io.Writer, s models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "chunks:            %d   # stored document chunks\n", s.Chunks)
	if s.DiskUsageBytes > 0 {
		fmt.Fprintf(w, "disk_usage_bytes:  %d   # local store files\n", s.DiskUsageBytes)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	fmt.Fprintf(w, "backend:           %s\n", s.Backend)
	fmt.Fprintf(w, "table_name:        %s\n", s.TableName)
	fmt.Fprintf(w, "dimension:         %d\n", s.Dimension)
	if s.EmbeddingModel != "" {
		fmt.Fprintf(w, "embedding_model:   %s\n", s.EmbeddingModel)
	}
	if s.GenerationModel != "" {
		fmt.Fprintf(w, "generation_model:  %s\n", s.GenerationModel)
	}
	return nil
}
