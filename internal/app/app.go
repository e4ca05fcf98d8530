package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/xrayreport/internal/budget"
	"github.com/hyperifyio/xrayreport/internal/cache"
	"github.com/hyperifyio/xrayreport/internal/generate"
	"github.com/hyperifyio/xrayreport/internal/llm"
	"github.com/hyperifyio/xrayreport/internal/prompt"
	"github.com/hyperifyio/xrayreport/internal/render"
	"github.com/hyperifyio/xrayreport/internal/report"
	"github.com/hyperifyio/xrayreport/internal/study"
)

type App struct {
	cfg Config
	gen *generate.Generator
	now func() time.Time
}

// Result describes what one Run produced.
type Result struct {
	RunID    string
	Files    []string
	Sections []string
	Degraded bool
}

func New(ctx context.Context, cfg Config) (*App, error) {
	baseURL := strings.TrimSpace(cfg.LLMBaseURL)
	if baseURL == "" {
		baseURL = llm.DefaultBaseURL
	}
	cfg.LLMBaseURL = baseURL
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	transportCfg.BaseURL = baseURL
	transportCfg.HTTPClient = newHTTPClient(cfg.SSLVerify)
	provider := &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}
	guarded := llm.NewGuarded(provider, llm.GuardOptions{RequestsPerSecond: cfg.RequestsPerSecond})

	a := &App{
		cfg: cfg,
		gen: &generate.Generator{Client: guarded, AttachImages: cfg.AttachImages, CacheOnly: cfg.CacheOnly},
		now: time.Now,
	}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err == nil && n > 0 {
			log.Info().Int("removed", n).Msg("purged expired report cache entries")
		}
		if n, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxEntries); err == nil && n > 0 {
			log.Info().Int("removed", n).Msg("evicted report cache entries")
		}
		a.gen.Cache = &cache.ReportCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	if cfg.DryRun || cfg.CacheOnly {
		return a, nil
	}
	// Preflight is best-effort: generation surfaces the real error.
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := guarded.ListModels(pctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
	case len(models.Models) == 0:
		log.Warn().Msg("LLM returned zero models")
	default:
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	}
	return a, nil
}

func (a *App) Close() {}

// Run reads the request, generates the report and writes every enabled
// output. Invalid requests fail with study.ErrInvalidRequest and an empty
// model reply with generate.ErrEmptyReport.
func (a *App) Run(ctx context.Context) (Result, error) {
	now := a.now()
	res := Result{RunID: uuid.NewString()}

	input, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return res, fmt.Errorf("read request: %w", err)
	}
	req := study.Parse(string(input)).WithDefaults(now)
	req.FrontalImage = resolveNear(a.cfg.InputPath, req.FrontalImage)
	req.LateralImage = resolveNear(a.cfg.InputPath, req.LateralImage)
	if err := req.Validate(); err != nil {
		return res, err
	}

	tmpl := prompt.Default()
	if a.cfg.PromptsPath != "" {
		if tmpl, err = prompt.Load(a.cfg.PromptsPath); err != nil {
			return res, err
		}
	}
	promptText := tmpl.Build(prompt.Context{
		Age:             req.Age,
		Sex:             req.Sex,
		Indication:      req.Indication,
		ClinicalHistory: req.ClinicalHistory,
		Comparison:      req.Comparison,
		Technique:       req.Technique,
	})

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(a.cfg.OutputDir, strings.TrimSuffix(render.FileName(req.PatientName, now, "txt"), ".txt"))

	images := 0
	if a.cfg.AttachImages {
		images = 2
	}
	est := budget.ForRequest(a.cfg.LLMModel, promptText, images, a.cfg.MaxTokens)
	ev := log.Debug()
	if !est.Fits {
		ev = log.Warn()
	}
	ev.Int("prompt_tokens", est.PromptTokens).Int("reserved", est.ReservedOutput).Int("context", est.ModelContext).Bool("fits", est.Fits).Msg("token budget")

	if a.cfg.DryRun {
		out := base + ".prompt.txt"
		if err := os.WriteFile(out, []byte(promptText), 0o644); err != nil {
			return res, fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("out", out).Msg("wrote dry-run prompt")
		res.Files = []string{out}
		return res, nil
	}

	raw, err := a.gen.Generate(ctx, generate.Input{
		Prompt:      promptText,
		Model:       a.cfg.LLMModel,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		Images:      []string{req.FrontalImage, req.LateralImage},
	})
	if err != nil {
		return res, err
	}
	raw = norm.NFC.String(raw)

	labels := a.labels(tmpl)
	sections := report.Segment(raw, labels)
	res.Sections = sections.Labels()
	res.Degraded = sections.Empty()
	if res.Degraded {
		log.Warn().Str("model", a.cfg.LLMModel).Msg("no section labels recognized; showing raw report")
	} else {
		log.Info().Int("sections", sections.Len()).Strs("missing", missingLabels(labels, res.Sections)).Msg("segmented report")
	}

	pairing := report.PairFirst
	if a.cfg.PairAll {
		pairing = report.PairAll
	}
	doc := render.Document{
		Header: render.Header{
			PatientName: req.PatientName,
			PatientID:   req.PatientID,
			Age:         req.Age,
			Sex:         req.Sex,
			ExamDate:    req.ExamDate,
			ReportDate:  now,
		},
		Raw:        raw,
		Sections:   sections,
		Order:      labels,
		Disclaimer: a.cfg.Disclaimer,
		ReportID:   render.ReportID(now),
		Pairing:    pairing,
	}

	if !a.cfg.DisableHTML {
		if err := a.write(&res, base+".html", []byte(render.HTML(doc))); err != nil {
			return res, err
		}
	}
	if !a.cfg.DisableText {
		text := render.Text(doc)
		if a.cfg.SectionedText {
			text = render.Sectioned(doc)
		}
		if err := a.write(&res, base+".txt", []byte(text)); err != nil {
			return res, err
		}
	}
	if a.cfg.Markdown {
		if err := a.write(&res, base+".md", []byte(render.Markdown(doc))); err != nil {
			return res, err
		}
	}
	if !a.cfg.DisablePDF {
		var buf bytes.Buffer
		if err := render.WritePDF(&buf, doc); err != nil {
			return res, fmt.Errorf("render pdf: %w", err)
		}
		if err := a.write(&res, base+".pdf", buf.Bytes()); err != nil {
			return res, err
		}
	}

	m := manifest{
		RunID:        res.RunID,
		ReportID:     doc.ReportID,
		Version:      BuildVersion,
		Model:        a.cfg.LLMModel,
		LLMBaseURL:   a.cfg.LLMBaseURL,
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
		PromptTokens: est.PromptTokens,
		ReportCache:  a.gen.Cache != nil,
		Sections:     res.Sections,
		Missing:      missingLabels(labels, res.Sections),
		Degraded:     res.Degraded,
		RawSHA256:    computeSHA256Hex(raw),
		RawChars:     len(raw),
		Outputs:      relativeNames(res.Files),
		GeneratedAt:  now.UTC(),
	}
	b, err := marshalManifestJSON(m)
	if err != nil {
		return res, fmt.Errorf("encode manifest: %w", err)
	}
	if err := a.write(&res, base+".manifest.json", b); err != nil {
		return res, err
	}
	return res, nil
}

// labels picks configured labels, then the template's, then the defaults.
func (a *App) labels(t prompt.Template) []string {
	if len(a.cfg.Labels) > 0 {
		return a.cfg.Labels
	}
	if l := t.Labels(); len(l) > 0 {
		return l
	}
	return report.DefaultLabels
}

func (a *App) write(res *Result, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	log.Info().Str("out", path).Msg("wrote report")
	res.Files = append(res.Files, path)
	return nil
}

// resolveNear makes a relative image path relative to the request file.
func resolveNear(requestPath, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(requestPath), p)
}

func relativeNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}
