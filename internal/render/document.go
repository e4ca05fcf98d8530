package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/xrayreport/internal/report"
)

// Marker sets for the supported output forms.
var (
	HTMLMarkers = report.DefaultMarkers
	TextMarkers = report.Markers{
		Bullet:    "•",
		LineBreak: "\n",
	}
	MarkdownMarkers = report.Markers{
		Bullet:      "-",
		BoldOpen:    "**",
		BoldClose:   "**",
		ItalicOpen:  "_",
		ItalicClose: "_",
		LineBreak:   "  \n",
	}
)

const notSpecified = "Not specified"

// Header carries the patient block printed above the report body.
type Header struct {
	PatientName string
	PatientID   string
	// Age of zero means not provided.
	Age        int
	Sex        string
	ExamDate   time.Time
	ReportDate time.Time
}

func (h Header) name() string { return orNotSpecified(h.PatientName) }
func (h Header) id() string   { return orNotSpecified(h.PatientID) }

func (h Header) age() string {
	if h.Age <= 0 {
		return notSpecified
	}
	return strconv.Itoa(h.Age)
}

func (h Header) sex() string {
	s := strings.TrimSpace(h.Sex)
	if s == "" || strings.EqualFold(s, "other") {
		return notSpecified
	}
	return s
}

func (h Header) examDate() string {
	if h.ExamDate.IsZero() {
		return h.reportDate()
	}
	return h.ExamDate.Format(dateLayout)
}

func (h Header) reportDate() string {
	d := h.ReportDate
	if d.IsZero() {
		d = time.Now()
	}
	return d.Format(dateLayout)
}

const dateLayout = "2006-01-02"

// Document is everything an exporter needs to lay out one report.
type Document struct {
	Header Header
	// Raw is the unsegmented model output, shown verbatim when no section
	// label was recognized.
	Raw      string
	Sections report.SectionMap
	// Order lists labels in display order. Labels missing from Sections are
	// skipped. When empty, sections are shown in occurrence order.
	Order      []string
	Disclaimer string
	// ReportID appears in the signature block.
	ReportID string
	Pairing  report.Pairing
}

// Degraded reports whether the document falls back to the raw text.
func (d Document) Degraded() bool { return d.Sections.Empty() }

// ordered returns the sections to display, in display order.
func (d Document) ordered() []report.Section {
	if len(d.Order) == 0 {
		return d.Sections.Sections()
	}
	out := make([]report.Section, 0, d.Sections.Len())
	for _, label := range d.Order {
		if body, ok := d.Sections.Get(label); ok {
			out = append(out, report.Section{Label: label, Body: body})
		}
	}
	return out
}

// spans returns the formatted spans for one section.
func (d Document) spans(s report.Section) []report.Span {
	if s.Label == report.FindingsLabel {
		return report.FindingsSpans(s.Body, d.Pairing)
	}
	return report.GenericSpans(s.Body, d.Pairing)
}

// ReportID builds the signature identifier AI-XR-<yyyymmddHHMMSS>.
func ReportID(t time.Time) string {
	return "AI-XR-" + t.Format("20060102150405")
}

// FileName returns the download name <patient>_xray_report_<date>.txt, with
// spaces in the patient name replaced by underscores.
func FileName(patientName string, date time.Time, ext string) string {
	base := strings.ReplaceAll(strings.TrimSpace(patientName), " ", "_")
	if base == "" {
		base = "Patient"
	}
	return base + "_xray_report_" + date.Format(dateLayout) + "." + strings.TrimPrefix(ext, ".")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}
