package study

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Defaults applied when the request leaves a field empty.
const (
	DefaultTechnique  = "PA and lateral views of the chest"
	DefaultComparison = "No prior studies available for comparison."
)

// AllowedImageExtensions lists accepted image file extensions, without dots.
var AllowedImageExtensions = []string{"png", "jpg", "jpeg"}

// Request is the examination request parsed from a single Markdown or
// plain-text input. It keeps only what the prompt and the report header need.
type Request struct {
	PatientName string
	PatientID   string
	// Age of zero means not provided.
	Age int
	// Sex is "Male", "Female" or "Other"; Other is reported as not specified.
	Sex             string
	Indication      string
	ClinicalHistory string
	Comparison      string
	Technique       string
	ExamDate        time.Time
	FrontalImage    string
	LateralImage    string
	// Raw is the original input for traceability.
	Raw string
}

// ErrInvalidRequest wraps every validation failure.
var ErrInvalidRequest = errors.New("invalid request")

var fieldRe = regexp.MustCompile(`^\s*(?:[-*]\s+)?([A-Za-z][A-Za-z ]*?)\s*[:\-]\s*(.*?)\s*$`)

// Parse reads "Key: value" lines. Keys are matched case-insensitively; unknown
// keys are ignored and the first occurrence of a key wins. A leading Markdown
// heading is ignored.
func Parse(input string) Request {
	r := Request{Raw: input}
	seen := map[string]bool{}
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := fieldRe.FindStringSubmatch(line)
		if len(m) != 3 {
			continue
		}
		key := normalizeKey(m[1])
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		r.set(key, m[2])
	}
	return r
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.Join(strings.Fields(k), " "))
	switch k {
	case "patient", "patient name", "name":
		return "name"
	case "patient id", "id", "mrn":
		return "id"
	case "age", "patient age":
		return "age"
	case "sex", "gender", "patient sex":
		return "sex"
	case "indication", "clinical indication", "reason":
		return "indication"
	case "history", "clinical history":
		return "history"
	case "comparison", "comparison studies", "prior studies":
		return "comparison"
	case "technique":
		return "technique"
	case "exam date", "examination date", "date":
		return "date"
	case "frontal", "frontal image", "pa":
		return "frontal"
	case "lateral", "lateral image":
		return "lateral"
	}
	return ""
}

func (r *Request) set(key, value string) {
	switch key {
	case "name":
		r.PatientName = value
	case "id":
		r.PatientID = value
	case "age":
		r.Age = parseAge(value)
	case "sex":
		r.Sex = normalizeSex(value)
	case "indication":
		r.Indication = value
	case "history":
		r.ClinicalHistory = value
	case "comparison":
		r.Comparison = value
	case "technique":
		r.Technique = value
	case "date":
		if t, err := time.Parse("2006-01-02", value); err == nil {
			r.ExamDate = t
		}
	case "frontal":
		r.FrontalImage = value
	case "lateral":
		r.LateralImage = value
	}
}

// parseAge reads the leading digits; anything outside 0..120 is not provided.
func parseAge(s string) int {
	n := 0
	for _, ch := range strings.TrimSpace(s) {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
		if n > 120 {
			return 0
		}
	}
	return n
}

func normalizeSex(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return "Male"
	case "f", "female":
		return "Female"
	}
	return "Other"
}

// WithDefaults fills technique, comparison and exam date when empty.
func (r Request) WithDefaults(now time.Time) Request {
	if strings.TrimSpace(r.Technique) == "" {
		r.Technique = DefaultTechnique
	}
	if strings.TrimSpace(r.Comparison) == "" {
		r.Comparison = DefaultComparison
	}
	if r.ExamDate.IsZero() {
		r.ExamDate = now
	}
	return r
}

// Validate requires both views with an allowed extension and a clinical
// indication.
func (r Request) Validate() error {
	if strings.TrimSpace(r.FrontalImage) == "" || strings.TrimSpace(r.LateralImage) == "" {
		return fmt.Errorf("%w: both frontal and lateral X-ray images are required", ErrInvalidRequest)
	}
	for _, p := range []string{r.FrontalImage, r.LateralImage} {
		if !allowedImage(p) {
			return fmt.Errorf("%w: unsupported image type %q (allowed: %s)", ErrInvalidRequest, filepath.Base(p), strings.Join(AllowedImageExtensions, ", "))
		}
	}
	if strings.TrimSpace(r.Indication) == "" {
		return fmt.Errorf("%w: clinical indication is required", ErrInvalidRequest)
	}
	return nil
}

func allowedImage(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, a := range AllowedImageExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
