package app

// Build information populated via -ldflags at build time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// Version returns a one-line build description for -version and the manifest.
func Version() string {
	return BuildVersion + " (" + BuildCommit + ", " + BuildDate + ")"
}
