package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// cannedReport is returned for every chat request that carries a radiology
// prompt. It exercises the section labels, lettered findings, bullets and
// emphasis handled by the report formatter.
const cannedReport = `EXAMINATION: Chest X-ray, PA and lateral views

CLINICAL INFORMATION: %s

COMPARISON: No prior studies available for comparison.

TECHNIQUE: PA and lateral views of the chest. Adequate inspiration and penetration.

FINDINGS: a. Lungs and airways: The lungs are clear. No focal consolidation. b. Pleura: No pleural effusion or pneumothorax. c. Heart and mediastinum: Cardiomediastinal silhouette within normal limits. d. Bones and soft tissues: No acute osseous abnormality.

IMPRESSION: * **No acute cardiopulmonary process.** * *Clinical correlation recommended.*

RECOMMENDATIONS: No further imaging required.`

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

// promptText returns the text of a message whose content is either a string
// or an array of parts.
func promptText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &parts) == nil {
		var b strings.Builder
		for _, p := range parts {
			if p.Type == "text" {
				b.WriteString(p.Text)
			}
		}
		return b.String()
	}
	return ""
}

func indication(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if v, ok := strings.CutPrefix(line, "Clinical Indication:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return "Not provided"
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		prompt := promptText(req.Messages[len(req.Messages)-1].Content)
		if !strings.Contains(prompt, "radiology report") {
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		content := strings.Replace(cannedReport, "%s", indication(prompt), 1)
		log.Debug().Str("model", req.Model).Int("prompt_chars", len(prompt)).Msg("chat completion")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-stub",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   req.Model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
