package budget

import (
	"math"
	"strings"
)

// imageTokens is a flat per-image charge for vision models. Providers bill
// images by tile; a single chest film at "auto" detail stays under this.
const imageTokens = 1_100

// EstimateTokens converts text into an estimated token count using a
// conservative ~4 chars per token. Non-empty input is at least 1 token.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / 4.0))
}

// ModelContextTokens returns an estimated context window for a model name.
// Unknown models fall back to 8192.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	for _, h := range suffixHints {
		if strings.Contains(name, h.marker) {
			return h.tokens
		}
	}
	return 8192
}

var knownModelMax = map[string]int{
	"meta-llama/llama-4-maverick-17b-128e-instruct": 131_072,
	"meta-llama/llama-4-scout-17b-16e-instruct":     131_072,
	"llama-3.3-70b-versatile":                       131_072,
	"llama-3.1-8b-instant":                          131_072,
	"gpt-4o":                                        128_000,
	"gpt-4o-mini":                                   128_000,
}

var suffixHints = []struct {
	marker string
	tokens int
}{
	{"1m", 1_000_000},
	{"200k", 200_000},
	{"128k", 128_000},
	{"32k", 32_768},
	{"llama-4", 131_072},
	{"llama-3", 131_072},
}

// HeadroomTokens is the larger of 5% of the context window or 512 tokens,
// subtracted for message framing and tokenizer drift.
func HeadroomTokens(modelName string) int {
	dyn := int(math.Ceil(float64(ModelContextTokens(modelName)) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// Estimate is the token budget of one report request.
type Estimate struct {
	PromptTokens   int
	ImageTokens    int
	ReservedOutput int
	Headroom       int
	ModelContext   int
	Remaining      int
	Fits           bool
}

// ForRequest estimates the budget for a prompt, a number of attached images
// and the reply size reserved by max_tokens.
func ForRequest(model, prompt string, images, maxTokens int) Estimate {
	if maxTokens < 0 {
		maxTokens = 0
	}
	if images < 0 {
		images = 0
	}
	e := Estimate{
		PromptTokens:   EstimateTokens(prompt),
		ImageTokens:    images * imageTokens,
		ReservedOutput: maxTokens,
		Headroom:       HeadroomTokens(model),
		ModelContext:   ModelContextTokens(model),
	}
	used := e.PromptTokens + e.ImageTokens + e.ReservedOutput + e.Headroom
	e.Fits = used <= e.ModelContext
	if e.Fits {
		e.Remaining = e.ModelContext - used
	}
	return e
}
