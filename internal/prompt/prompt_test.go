package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuild_ClinicalContextFallbacks(t *testing.T) {
	out := Default().Build(Context{
		Sex:        "Other",
		Indication: "Cough",
		Comparison: "None",
		Technique:  "PA and lateral",
	})
	for _, want := range []string{
		"- Patient Age: Not provided\n",
		"- Patient Sex: Not provided\n",
		"- Clinical Indication: Cough\n",
		"- Clinical History: Not provided\n",
		"- Comparison Studies: None\n",
		"- Technique: PA and lateral\n\n",
		"1. A frontal (PA) view\n2. A lateral view\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "thoroughly examined these specific X-ray images.") {
		t.Fatalf("missing closing instruction")
	}
}

func TestBuild_SectionsSubsectionsGuidelines(t *testing.T) {
	tpl := Template{
		SystemRole:             "ROLE",
		FormattingInstructions: []string{"one", "two"},
		ReportSections: []Section{
			{Index: "1. ", Name: "FINDINGS", Description: "desc", Subsections: []Subsection{{Name: "a. Lungs", Points: []string{"p1"}}}},
			{Index: "2. ", Name: "IMPRESSION", Description: "sum", Guidelines: []string{"g1", "g2"}},
		},
		ReportQualityGuidelines: []string{"q"},
	}
	out := tpl.Build(Context{Age: 40, Sex: "Male", ClinicalHistory: "asthma"})
	for _, want := range []string{
		"ROLE\nYou are creating",
		"IMPORTANT FORMATTING INSTRUCTIONS:\n- one\n- two\n\n",
		"- Patient Age: 40\n- Patient Sex: Male\n",
		"- Clinical History: asthma\n",
		"1. FINDINGS: desc\n\n   a. Lungs:\n      - p1\n\n",
		"2. IMPRESSION: sum\n   - g1\n   - g2\n",
		"Your report should:\n- q\n\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, out)
		}
	}
}

func TestLabels(t *testing.T) {
	got := Default().Labels()
	want := []string{"EXAMINATION:", "CLINICAL INFORMATION:", "COMPARISON:", "TECHNIQUE:", "FINDINGS:", "IMPRESSION:", "RECOMMENDATIONS:"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("labels: got %v", got)
	}
}

func TestLoad_WrappedAndBare(t *testing.T) {
	dir := t.TempDir()
	wrapped := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(wrapped, []byte(`{"xray_analysis":{"system_role":"R","report_sections":[{"name":"FINDINGS"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err := Load(wrapped)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl.SystemRole != "R" || len(tpl.ReportSections) != 1 {
		t.Fatalf("unexpected template: %+v", tpl)
	}

	bare := filepath.Join(dir, "bare.json")
	if err := os.WriteFile(bare, []byte(`{"system_role":"B"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err = Load(bare)
	if err != nil || tpl.SystemRole != "B" {
		t.Fatalf("bare load: %+v %v", tpl, err)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{`), 0o644)
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
