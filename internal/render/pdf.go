package render

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/hyperifyio/xrayreport/internal/report"
)

const (
	pdfFont   = "Helvetica"
	pdfLineHt = 5.0
)

// WritePDF lays the document out on A4 pages. Bold and italic spans switch the
// font style, bullets and line breaks are honoured. The core fonts only cover
// Windows-1252, so text is transcoded and unmappable runes are replaced.
func WritePDF(w io.Writer, d Document) error {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	tr := func(s string) string {
		out, err := enc.String(s)
		if err != nil {
			return s
		}
		return out
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Radiology Report", true)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 8, "CHEST X-RAY RADIOLOGY REPORT", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	h := d.Header
	pdf.SetFont(pdfFont, "", 10)
	rows := [][2]string{
		{"Patient: " + h.name(), "Patient ID: " + h.id()},
		{"Age: " + h.age(), "Sex: " + h.sex()},
		{"Exam Date: " + h.examDate(), "Report Date: " + h.reportDate()},
	}
	for _, r := range rows {
		pdf.CellFormat(95, 6, tr(r[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, tr(r[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	if d.Degraded() {
		pdf.SetFont(pdfFont, "", 11)
		pdf.MultiCell(0, pdfLineHt, tr(d.Raw), "", "L", false)
	}
	for _, s := range d.ordered() {
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(0, 8, tr(s.Label), "", 1, "L", false, 0, "")
		writeSpans(pdf, d.spans(s), tr)
		pdf.Ln(pdfLineHt + 3)
	}

	if strings.TrimSpace(d.Disclaimer) != "" {
		pdf.Ln(2)
		pdf.SetFont(pdfFont, "I", 9)
		pdf.MultiCell(0, 4.5, tr("DISCLAIMER: "+d.Disclaimer), "", "L", false)
	}
	pdf.Ln(4)
	pdf.SetFont(pdfFont, "I", 10)
	pdf.CellFormat(0, 5, "Electronically signed by", "", 1, "R", false, 0, "")
	pdf.SetFont(pdfFont, "B", 10)
	pdf.CellFormat(0, 5, "AI Assistant, MD", "", 1, "R", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	pdf.CellFormat(0, 5, "Board Certified Radiologist", "", 1, "R", false, 0, "")
	if d.ReportID != "" {
		pdf.SetFont(pdfFont, "", 8)
		pdf.CellFormat(0, 5, tr("Report ID: "+d.ReportID), "", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func writeSpans(pdf *gofpdf.Fpdf, spans []report.Span, tr func(string) string) {
	bold, italic := false, false
	setStyle := func() {
		style := ""
		if bold {
			style += "B"
		}
		if italic {
			style += "I"
		}
		pdf.SetFont(pdfFont, style, 11)
	}
	setStyle()
	for _, s := range spans {
		switch s.Kind {
		case report.SpanText:
			pdf.Write(pdfLineHt, tr(s.Text))
		case report.SpanLineBreak:
			pdf.Ln(pdfLineHt)
		case report.SpanBullet:
			pdf.Write(pdfLineHt, tr(TextMarkers.Bullet))
		case report.SpanBoldOpen, report.SpanBoldClose:
			bold = s.Kind == report.SpanBoldOpen
			setStyle()
		case report.SpanItalicOpen, report.SpanItalicClose:
			italic = s.Kind == report.SpanItalicOpen
			setStyle()
		}
	}
}
