package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/xrayreport/internal/app"
	"github.com/hyperifyio/xrayreport/internal/generate"
	"github.com/hyperifyio/xrayreport/internal/study"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(false, app.DefaultEnvFiles...); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed")
	}

	cfg, showVersion, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}
	if showVersion {
		fmt.Println("xrayreport " + app.Version())
		return
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps invalid input and empty model output to 2, anything else to 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, study.ErrInvalidRequest), errors.Is(err, generate.ErrEmptyReport):
		return 2
	}
	return 1
}

// float32Value adapts a float32 field to the flag package.
type float32Value struct{ p *float32 }

func (v float32Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatFloat(float64(*v.p), 'g', -1, 32)
}

func (v float32Value) Set(s string) error {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*v.p = float32(f)
	return nil
}

// parseConfig resolves configuration with precedence flags > env > config
// file > defaults.
func parseConfig(args []string, stderr io.Writer) (app.Config, bool, error) {
	cfg := app.Config{Temperature: app.DefaultTemperature}
	var (
		configPath  string
		labels      string
		showVersion bool
	)
	fs := flag.NewFlagSet("xrayreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", os.Getenv("XRAYREPORT_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&cfg.InputPath, "input", app.DefaultInputPath, "Path to the examination request (Markdown)")
	fs.StringVar(&cfg.OutputDir, "output", app.DefaultOutputDir, "Directory for the generated reports")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL (default Groq)")
	fs.StringVar(&cfg.LLMModel, "llm.model", app.DefaultModel, "Model name")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key (or LLM_API_KEY / GROQ_API_KEY)")
	fs.Var(float32Value{&cfg.Temperature}, "llm.temperature", "Sampling temperature")
	fs.IntVar(&cfg.MaxTokens, "llm.maxTokens", app.DefaultMaxTokens, "Maximum tokens in the reply")
	fs.Float64Var(&cfg.RequestsPerSecond, "llm.rps", 0, "Rate limit for chat calls; 0 disables")
	fs.BoolVar(&cfg.AttachImages, "llm.images", false, "Attach the study images to the request")
	fs.BoolVar(&cfg.SSLVerify, "ssl.verify", os.Getenv("SSL_VERIFY") != "false", "Verify TLS certificates of the LLM endpoint")
	fs.StringVar(&cfg.PromptsPath, "prompts", "", "Path to a prompt template JSON file")
	fs.StringVar(&labels, "labels", "", "Comma-separated section labels, e.g. 'FINDINGS:,IMPRESSION:'")
	fs.StringVar(&cfg.Disclaimer, "disclaimer", app.DefaultDisclaimer, "Disclaimer printed under the report")
	fs.BoolVar(&cfg.PairAll, "emphasis.all", false, "Convert every **bold** and *italic* pair, not only the first")
	fs.BoolVar(&cfg.DisableHTML, "no-html", false, "Skip the HTML export")
	fs.BoolVar(&cfg.DisableText, "no-txt", false, "Skip the plain-text export")
	fs.BoolVar(&cfg.DisablePDF, "no-pdf", false, "Skip the PDF export")
	fs.BoolVar(&cfg.Markdown, "markdown", false, "Also write a Markdown export")
	fs.BoolVar(&cfg.SectionedText, "txt.sections", false, "Lay out the plain-text export by section")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Write the prompt without calling the model")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	fs.StringVar(&cfg.CacheDir, "cache.dir", app.DefaultCacheDir, "Report cache directory; empty disables")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.IntVar(&cfg.CacheMaxEntries, "cache.maxEntries", 0, "Keep at most this many cached reports; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.CacheOnly, "cache.only", false, "Serve reports from cache only; fail on a miss")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}

	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, false, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	for name, v := range explicit {
		if err := fs.Set(name, v); err != nil {
			return cfg, false, err
		}
	}
	if _, ok := explicit["labels"]; ok || len(cfg.Labels) == 0 {
		cfg.Labels = splitList(labels)
	}

	if showVersion {
		return cfg, true, nil
	}
	return cfg, false, app.ValidateConfig(cfg)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	res, err := a.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("run", res.RunID).Int("files", len(res.Files)).Bool("degraded", res.Degraded).Msg("done")
	return nil
}
