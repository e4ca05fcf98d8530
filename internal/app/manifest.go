package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// manifest is the JSON sidecar written next to every report. It records what
// produced the report so a reviewer can trace it back to a model and input.
type manifest struct {
	RunID        string    `json:"run_id"`
	ReportID     string    `json:"report_id"`
	Version      string    `json:"version"`
	Model        string    `json:"model"`
	LLMBaseURL   string    `json:"llm_base_url"`
	Temperature  float32   `json:"temperature"`
	MaxTokens    int       `json:"max_tokens"`
	PromptTokens int       `json:"prompt_tokens_estimate"` // estimated, not the provider count
	ReportCache  bool      `json:"report_cache"`
	Sections     []string  `json:"sections"`
	Missing      []string  `json:"missing_sections,omitempty"`
	Degraded     bool      `json:"degraded"`
	RawSHA256    string    `json:"raw_sha256"`
	RawChars     int       `json:"raw_chars"`
	Outputs      []string  `json:"outputs"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// missingLabels lists configured labels that were not found, in label order.
func missingLabels(labels, found []string) []string {
	have := make(map[string]bool, len(found))
	for _, f := range found {
		have[f] = true
	}
	var out []string
	for _, l := range labels {
		if l != "" && !have[l] {
			out = append(out, l)
			have[l] = true
		}
	}
	return out
}

func marshalManifestJSON(m manifest) ([]byte, error) {
	if m.Sections == nil {
		m.Sections = []string{}
	}
	return json.MarshalIndent(m, "", "  ")
}
