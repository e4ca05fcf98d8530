package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/xrayreport/internal/report"
)

const sample = `Here is your report.

EXAMINATION: Chest X-ray, PA and lateral.
FINDINGS:
a. Lungs: **Clear** bilaterally. b. Heart: normal size * no effusion
IMPRESSION: No acute *cardiopulmonary* process.
`

func sampleDoc() Document {
	raw := sample
	return Document{
		Header: Header{
			PatientName: "Jane Doe",
			PatientID:   "P-1",
			Age:         54,
			Sex:         "Female",
			ExamDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			ReportDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		Raw:        raw,
		Sections:   report.Segment(raw, report.DefaultLabels),
		Order:      report.DefaultLabels,
		Disclaimer: "For research use only.",
		ReportID:   "AI-XR-20260302101500",
	}
}

func TestHTML_SectionsAndMarkers(t *testing.T) {
	out := HTML(sampleDoc())

	assert.Contains(t, out, "<strong>Patient:</strong> Jane Doe")
	assert.Contains(t, out, "<strong>Age:</strong> 54")
	assert.Contains(t, out, "<strong>Exam Date:</strong> 2026-03-01")
	assert.Contains(t, out, `<div class="report-subheader">FINDINGS:</div>`)
	assert.Contains(t, out, "<br><br><strong>a.</strong> Lungs: <strong>Clear</strong> bilaterally.")
	assert.Contains(t, out, "<br><br><strong>b.</strong> Heart: normal size<br>• no effusion")
	assert.Contains(t, out, "No acute <em>cardiopulmonary</em> process.")
	assert.Contains(t, out, "For research use only.")
	assert.Contains(t, out, "Report ID: AI-XR-20260302101500")
	assert.NotContains(t, out, "Here is your report.")

	exam := strings.Index(out, "EXAMINATION:")
	findings := strings.Index(out, "FINDINGS:")
	impression := strings.Index(out, "IMPRESSION:")
	assert.True(t, exam < findings && findings < impression)
}

func TestHTML_EscapesModelOutput(t *testing.T) {
	raw := "IMPRESSION: <script>alert(1)</script> **ok**"
	d := Document{Raw: raw, Sections: report.Segment(raw, report.DefaultLabels)}
	out := HTML(d)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt; <strong>ok</strong>")
}

func TestHTML_DegradedShowsRaw(t *testing.T) {
	d := Document{Raw: "model said <nothing> useful"}
	require.True(t, d.Degraded())
	out := HTML(d)
	assert.Contains(t, out, `<pre class="raw">model said &lt;nothing&gt; useful</pre>`)
	assert.Contains(t, out, "<strong>Patient:</strong> Not specified")
}

func TestHTML_OrderFollowsDisplayOrder(t *testing.T) {
	raw := "FINDINGS: x IMPRESSION: y"
	d := Document{
		Raw:      raw,
		Sections: report.Segment(raw, []string{"FINDINGS:", "IMPRESSION:"}),
		Order:    []string{"IMPRESSION:", "FINDINGS:", "TECHNIQUE:"},
	}
	out := HTML(d)
	assert.Less(t, strings.Index(out, ">IMPRESSION:<"), strings.Index(out, ">FINDINGS:<"))
	assert.NotContains(t, out, "TECHNIQUE:")
}

func TestText_DownloadLayout(t *testing.T) {
	d := sampleDoc()
	d.Header.Sex = "Other"
	d.Header.Age = 0
	out := Text(d)
	assert.True(t, strings.HasPrefix(out, "\nCHEST X-RAY RADIOLOGY REPORT\n\nPatient: Jane Doe\n"))
	assert.Contains(t, out, "Age: Not specified\n")
	assert.Contains(t, out, "Sex: Not specified\n")
	assert.Contains(t, out, "Report Date: 2026-03-02\n")
	assert.Contains(t, out, sample)
	assert.True(t, strings.HasSuffix(out, "DISCLAIMER: For research use only.\n"))
}

func TestSectioned_PlainMarkers(t *testing.T) {
	out := Sectioned(sampleDoc())
	assert.Contains(t, out, "EXAMINATION:\nChest X-ray, PA and lateral.\n")
	assert.Contains(t, out, "FINDINGS:\na. Lungs: Clear bilaterally. \n\nb. Heart: normal size\n• no effusion\n")
	assert.Contains(t, out, "IMPRESSION:\nNo acute cardiopulmonary process.\n")
}

func TestMarkdown_Headings(t *testing.T) {
	out := Markdown(sampleDoc())
	assert.Contains(t, out, "## FINDINGS\n")
	assert.Contains(t, out, "**a.** Lungs: **Clear** bilaterally.")
	assert.Contains(t, out, "No acute _cardiopulmonary_ process.")

	assert.Equal(t, "just text\n", Markdown(Document{Raw: "  just text "}))
}

func TestWritePDF_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleDoc()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWritePDF_Degraded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Document{Raw: "unstructured — text with “quotes” and ✓"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestReportIDAndFileName(t *testing.T) {
	ts := time.Date(2026, 10, 15, 9, 8, 7, 0, time.UTC)
	assert.Equal(t, "AI-XR-20261015090807", ReportID(ts))
	assert.Equal(t, "Jane_Doe_xray_report_2026-10-15.txt", FileName(" Jane Doe ", ts, "txt"))
	assert.Equal(t, "Patient_xray_report_2026-10-15.pdf", FileName("", ts, ".pdf"))
}
