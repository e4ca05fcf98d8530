package render

import (
	"strings"

	"github.com/hyperifyio/xrayreport/internal/report"
)

const rule = "----------------------------"

// Text renders the plain-text download: a patient block, the raw model output
// and the disclaimer.
func Text(d Document) string {
	h := d.Header
	var b strings.Builder
	b.WriteString("\nCHEST X-RAY RADIOLOGY REPORT\n\n")
	b.WriteString("Patient: " + h.name() + "\n")
	b.WriteString("Patient ID: " + h.id() + "\n")
	b.WriteString("Age: " + h.age() + "\n")
	b.WriteString("Sex: " + h.sex() + "\n")
	b.WriteString("Exam Date: " + h.examDate() + "\n")
	b.WriteString("Report Date: " + h.reportDate() + "\n")
	b.WriteString(rule + "\n\n")
	b.WriteString(d.Raw)
	b.WriteString("\n\n" + rule + "\n")
	b.WriteString("DISCLAIMER: " + d.Disclaimer + "\n")
	return b.String()
}

// Sectioned renders the formatted sections as plain text, one heading per
// section, using TextMarkers. It falls back to the raw text when no section was
// recognized.
func Sectioned(d Document) string {
	if d.Degraded() {
		return strings.TrimSpace(d.Raw) + "\n"
	}
	f := report.Formatter{Markers: TextMarkers, Pairing: d.Pairing}
	var b strings.Builder
	for i, s := range d.ordered() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Label)
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(f.Render(d.spans(s))))
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the formatted sections as Markdown with bold headings.
func Markdown(d Document) string {
	if d.Degraded() {
		return strings.TrimSpace(d.Raw) + "\n"
	}
	f := report.Formatter{Markers: MarkdownMarkers, Pairing: d.Pairing}
	var b strings.Builder
	b.WriteString("# Radiology Report\n")
	for _, s := range d.ordered() {
		b.WriteString("\n## ")
		b.WriteString(strings.TrimSuffix(s.Label, ":"))
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(f.Render(d.spans(s))))
		b.WriteString("\n")
	}
	return b.String()
}
