package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Subsection is a FINDINGS sub-heading with its review points.
type Subsection struct {
	Name   string   `json:"name"`
	Points []string `json:"points"`
}

// Section describes one report section the model must produce.
type Section struct {
	Index       string       `json:"index"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Subsections []Subsection `json:"subsections"`
	Guidelines  []string     `json:"guidelines"`
}

// Template is the X-ray analysis prompt template.
type Template struct {
	SystemRole              string    `json:"system_role"`
	FormattingInstructions  []string  `json:"formatting_instructions"`
	ReportSections          []Section `json:"report_sections"`
	ReportQualityGuidelines []string  `json:"report_quality_guidelines"`
}

// file mirrors the prompts file, which may hold several templates.
type file struct {
	XRayAnalysis *Template `json:"xray_analysis"`
}

// Load reads a prompts JSON file. Both a bare template and a file with an
// "xray_analysis" key are accepted.
func Load(path string) (Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return Template{}, fmt.Errorf("parse prompts: %w", err)
	}
	if f.XRayAnalysis != nil {
		return *f.XRayAnalysis, nil
	}
	var t Template
	if err := json.Unmarshal(b, &t); err != nil {
		return Template{}, fmt.Errorf("parse prompts: %w", err)
	}
	return t, nil
}

// Context is the clinical information placed in the prompt. Empty optional
// fields are reported as "Not provided".
type Context struct {
	Age             int
	Sex             string
	Indication      string
	ClinicalHistory string
	Comparison      string
	Technique       string
}

const notProvided = "Not provided"

// Build renders the prompt for one examination.
func (t Template) Build(c Context) string {
	var sb strings.Builder
	sb.WriteString(t.SystemRole)
	sb.WriteString("\nYou are creating a comprehensive radiology report for chest X-ray images that have been uploaded for your interpretation.\n\n")

	sb.WriteString("IMPORTANT FORMATTING INSTRUCTIONS:\n")
	sb.WriteString(dashList(t.FormattingInstructions))
	sb.WriteString("\n\n")

	age := notProvided
	if c.Age > 0 {
		age = strconv.Itoa(c.Age)
	}
	sex := c.Sex
	if strings.TrimSpace(sex) == "" || strings.EqualFold(sex, "other") {
		sex = notProvided
	}
	sb.WriteString("CLINICAL CONTEXT:\n")
	sb.WriteString("- Patient Age: " + age + "\n")
	sb.WriteString("- Patient Sex: " + sex + "\n")
	sb.WriteString("- Clinical Indication: " + c.Indication + "\n")
	sb.WriteString("- Clinical History: " + orNotProvided(c.ClinicalHistory) + "\n")
	sb.WriteString("- Comparison Studies: " + c.Comparison + "\n")
	sb.WriteString("- Technique: " + c.Technique + "\n\n")

	sb.WriteString("You have reviewed two high-quality chest X-ray images:\n")
	sb.WriteString("1. A frontal (PA) view\n")
	sb.WriteString("2. A lateral view\n\n")

	sb.WriteString("Based on your expertise and the clinical information provided, generate a comprehensive, professional-grade radiology report following the ACR (American College of Radiology) standard format:\n\n")
	for _, s := range t.ReportSections {
		sb.WriteString(s.Index + s.Name + ": " + s.Description + "\n")
		if s.Name == "FINDINGS" {
			sb.WriteString("\n")
			for _, sub := range s.Subsections {
				sb.WriteString("   " + sub.Name + ":\n")
				for _, p := range sub.Points {
					sb.WriteString("      - " + p + "\n")
				}
			}
		}
		if len(s.Guidelines) > 0 {
			sb.WriteString("   " + strings.ReplaceAll(dashList(s.Guidelines), "\n", "\n   "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Your report should:\n")
	sb.WriteString(dashList(t.ReportQualityGuidelines))
	sb.WriteString("\n\nWrite the report from the perspective of having thoroughly examined these specific X-ray images.")
	return sb.String()
}

// Labels returns the section labels the template asks for, with a trailing
// colon, in template order.
func (t Template) Labels() []string {
	out := make([]string, 0, len(t.ReportSections))
	for _, s := range t.ReportSections {
		if name := strings.TrimSpace(s.Name); name != "" {
			out = append(out, name+":")
		}
	}
	return out
}

func dashList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	return strings.Join(lines, "\n")
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}
