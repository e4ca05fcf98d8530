package generate

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/xrayreport/internal/cache"
	"github.com/hyperifyio/xrayreport/internal/llm"
)

// ErrEmptyReport indicates the model returned no usable text.
var ErrEmptyReport = errors.New("empty report")

// Input is one report request.
type Input struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
	// Images are attached as data URLs when AttachImages is set on the
	// Generator. Paths are read at call time.
	Images []string
}

// Generator asks the chat model for a free-form radiology report.
type Generator struct {
	Client llm.Client
	Cache  *cache.ReportCache
	// AttachImages sends the study images alongside the prompt. Many
	// text-only models reject image parts, so it is off by default.
	AttachImages bool
	// CacheOnly returns from cache and fails fast on a miss.
	CacheOnly bool
	// RetryDelay is the pause before the single retry. Zero means 500ms.
	RetryDelay time.Duration
}

// Generate returns the raw model output for in.
func (g *Generator) Generate(ctx context.Context, in Input) (string, error) {
	if g.Client == nil || strings.TrimSpace(in.Model) == "" {
		return "", errors.New("generator not configured")
	}

	var imageParts []openai.ChatMessagePart
	var imageDigest string
	if g.AttachImages && len(in.Images) > 0 {
		parts, digest, err := loadImages(in.Images)
		if err != nil {
			return "", err
		}
		imageParts, imageDigest = parts, digest
	}

	key := cache.KeyFrom(in.Model, in.Prompt+"\n\n"+imageDigest)
	if g.Cache != nil {
		if e, ok, _ := g.Cache.Get(ctx, key); ok {
			log.Debug().Str("key", key[:12]).Msg("report cache hit")
			return e.Report, nil
		}
	}
	if g.CacheOnly {
		return "", fmt.Errorf("cache miss in cache-only mode: %w", ErrEmptyReport)
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(imageParts) > 0 {
		msg.MultiContent = append([]openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: in.Prompt}}, imageParts...)
	} else {
		msg.Content = in.Prompt
	}
	req := openai.ChatCompletionRequest{
		Model:       in.Model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
		N:           1,
	}

	resp, err := g.Client.CreateChatCompletion(ctx, req)
	if err != nil && retryable(err) {
		log.Warn().Err(err).Msg("report generation failed; retrying once")
		delay := g.RetryDelay
		if delay <= 0 {
			delay = 500 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		resp, err = g.Client.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReport
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyReport
	}
	if g.Cache != nil {
		if err := g.Cache.Save(ctx, key, cache.Entry{Model: in.Model, Report: out}); err != nil {
			log.Warn().Err(err).Msg("report cache save failed")
		}
	}
	return out, nil
}

// retryable reports whether a failed call is worth one more attempt. Client
// errors such as bad credentials or an unknown model are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, llm.ErrCircuitOpen) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

func loadImages(paths []string) ([]openai.ChatMessagePart, string, error) {
	h := sha256.New()
	parts := make([]openai.ChatMessagePart, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
		h.Write(b)
		mime := "image/png"
		switch strings.ToLower(filepath.Ext(p)) {
		case ".jpg", ".jpeg":
			mime = "image/jpeg"
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return parts, hex.EncodeToString(h.Sum(nil)), nil
}
