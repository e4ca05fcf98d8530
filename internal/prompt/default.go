package prompt

// Default returns the built-in chest X-ray template used when no prompts file
// is configured.
func Default() Template {
	return Template{
		SystemRole: "You are an expert board-certified radiologist with extensive experience in interpreting chest X-rays.",
		FormattingInstructions: []string{
			"Start each section with its heading in capital letters followed by a colon, exactly as listed below",
			"Do not use Markdown headings",
			"Use a bullet written as ' * ' for list items",
			"Label FINDINGS sub-sections with lowercase letters followed by a period (a. b. c.)",
			"Use **double asterisks** sparingly for critical findings",
		},
		ReportSections: []Section{
			{Index: "1. ", Name: "EXAMINATION", Description: "Type of examination performed"},
			{Index: "2. ", Name: "CLINICAL INFORMATION", Description: "Summary of the clinical indication and relevant history"},
			{Index: "3. ", Name: "COMPARISON", Description: "Prior studies used for comparison, or state that none are available"},
			{Index: "4. ", Name: "TECHNIQUE", Description: "Views obtained and technical quality"},
			{
				Index:       "5. ",
				Name:        "FINDINGS",
				Description: "Systematic description of the images",
				Subsections: findingsSubsections(),
			},
			{
				Index:       "6. ",
				Name:        "IMPRESSION",
				Description: "Concise numbered summary of the most important findings",
				Guidelines: []string{
					"List the most clinically significant finding first",
					"Provide a differential diagnosis where appropriate",
				},
			},
			{Index: "7. ", Name: "RECOMMENDATIONS", Description: "Follow-up imaging or clinical correlation, if warranted"},
		},
		ReportQualityGuidelines: []string{
			"Use standard radiological terminology",
			"Be specific about location, size and severity of findings",
			"Mention pertinent negatives",
			"Avoid hedging language unless genuinely uncertain",
		},
	}
}

func findingsSubsections() []Subsection {
	return []Subsection{
		{Name: "a. Lungs and airways", Points: []string{"Lung volumes", "Focal opacities, consolidation, nodules or masses", "Airway patency"}},
		{Name: "b. Pleura", Points: []string{"Effusion", "Pneumothorax", "Pleural thickening"}},
		{Name: "c. Heart and mediastinum", Points: []string{"Cardiac size and contour", "Mediastinal width", "Hila"}},
		{Name: "d. Bones and soft tissues", Points: []string{"Fractures or lytic lesions", "Soft tissue abnormalities"}},
		{Name: "e. Lines and devices", Points: []string{"Position of tubes, lines and devices, if any"}},
		{Name: "f. Upper abdomen", Points: []string{"Free air under the diaphragm", "Visible upper abdominal abnormalities"}},
	}
}
