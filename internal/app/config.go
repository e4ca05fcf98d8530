package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// InputPath is the examination request (Markdown or plain text).
	InputPath string
	// OutputDir receives the HTML, TXT, PDF and manifest files.
	OutputDir string

	// LLM
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	Temperature float32
	MaxTokens   int
	// RequestsPerSecond caps chat calls; zero disables limiting.
	RequestsPerSecond float64
	// AttachImages sends the study images to the model as data URLs.
	AttachImages bool
	SSLVerify    bool

	// Report
	PromptsPath string
	// Labels overrides the section labels; empty means the template's.
	Labels     []string
	Disclaimer string
	// PairAll converts every emphasis pair instead of only the first.
	PairAll bool

	// Outputs
	DisableHTML bool
	DisableText bool
	DisablePDF  bool
	Markdown    bool
	// SectionedText lays the TXT export out by section instead of raw.
	SectionedText bool

	// Behavior
	DryRun  bool
	Verbose bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	CacheClear       bool
	CacheStrictPerms bool
	CacheOnly        bool
}

// Defaults shared by flag parsing and file config overlay.
const (
	DefaultInputPath   = "request.md"
	DefaultOutputDir   = "reports"
	DefaultModel       = "meta-llama/llama-4-maverick-17b-128e-instruct"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 2000
	DefaultCacheDir    = ".xrayreport-cache"
	DefaultDisclaimer  = "This report is generated by AI and should be reviewed by a qualified radiologist. It is not a substitute for professional medical advice, diagnosis, or treatment."
)
