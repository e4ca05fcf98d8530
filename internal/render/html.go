package render

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/xrayreport/internal/report"
)

// HTML renders the document as a standalone HTML page. Section bodies are
// escaped before markers are inserted, so model output cannot inject markup.
func HTML(d Document) string {
	f := report.Formatter{Markers: HTMLMarkers, Pairing: d.Pairing, Escape: html.EscapeString}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Radiology Report</title>\n</head>\n<body>\n")
	b.WriteString("<div class=\"report-section\">\n<h2 class=\"report-header\">Radiology Report</h2>\n")

	h := d.Header
	b.WriteString("<table class=\"patient\">\n")
	writeRow(&b, "Patient", h.name(), "Patient ID", h.id())
	writeRow(&b, "Age", h.age(), "Sex", h.sex())
	writeRow(&b, "Exam Date", h.examDate(), "Report Date", h.reportDate())
	b.WriteString("</table>\n<hr>\n")

	if d.Degraded() {
		b.WriteString("<pre class=\"raw\">")
		b.WriteString(html.EscapeString(d.Raw))
		b.WriteString("</pre>\n")
	}
	for _, s := range d.ordered() {
		b.WriteString("<div class=\"report-subheader\">")
		b.WriteString(html.EscapeString(s.Label))
		b.WriteString("</div>\n")
		if s.Label == report.FindingsLabel {
			b.WriteString("<div class=\"findings\">")
		} else {
			b.WriteString("<div>")
		}
		b.WriteString(f.Render(d.spans(s)))
		b.WriteString("</div>\n<br>\n")
	}

	if strings.TrimSpace(d.Disclaimer) != "" {
		b.WriteString("<hr>\n<div class=\"disclaimer\">")
		b.WriteString(html.EscapeString(d.Disclaimer))
		b.WriteString("</div>\n")
	}
	b.WriteString("<div class=\"signature\">\n<p><em>Electronically signed by</em></p>\n")
	b.WriteString("<p><strong>AI Assistant, MD</strong></p>\n<p>Board Certified Radiologist</p>\n")
	if d.ReportID != "" {
		b.WriteString("<p>Report ID: ")
		b.WriteString(html.EscapeString(d.ReportID))
		b.WriteString("</p>\n")
	}
	b.WriteString("</div>\n</div>\n</body>\n</html>\n")
	return b.String()
}

func writeRow(b *strings.Builder, k1, v1, k2, v2 string) {
	b.WriteString("<tr><td><strong>")
	b.WriteString(k1)
	b.WriteString(":</strong> ")
	b.WriteString(html.EscapeString(v1))
	b.WriteString("</td><td><strong>")
	b.WriteString(k2)
	b.WriteString(":</strong> ")
	b.WriteString(html.EscapeString(v2))
	b.WriteString("</td></tr>\n")
}
