package study

import (
	"errors"
	"testing"
	"time"
)

func TestParse_AllFields(t *testing.T) {
	input := `# Chest X-ray request

Patient: Jane Doe
Patient ID: P-0042
Age: 54 years
Sex: F
Indication: Shortness of breath, fever
Clinical history: Smoker, 30 pack-years
Comparison: Previous study from 2025-10-15
Technique: PA and lateral views
Exam date: 2026-03-01
Frontal: images/pa.png
Lateral: images/lat.jpeg
`
	r := Parse(input)
	if r.PatientName != "Jane Doe" {
		t.Fatalf("name: got %q", r.PatientName)
	}
	if r.PatientID != "P-0042" {
		t.Fatalf("id: got %q", r.PatientID)
	}
	if r.Age != 54 {
		t.Fatalf("age: got %d", r.Age)
	}
	if r.Sex != "Female" {
		t.Fatalf("sex: got %q", r.Sex)
	}
	if r.Indication != "Shortness of breath, fever" {
		t.Fatalf("indication: got %q", r.Indication)
	}
	if r.ClinicalHistory != "Smoker, 30 pack-years" {
		t.Fatalf("history: got %q", r.ClinicalHistory)
	}
	if r.Comparison != "Previous study from 2025-10-15" {
		t.Fatalf("comparison: got %q", r.Comparison)
	}
	if !r.ExamDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("exam date: got %v", r.ExamDate)
	}
	if r.FrontalImage != "images/pa.png" || r.LateralImage != "images/lat.jpeg" {
		t.Fatalf("images: got %q %q", r.FrontalImage, r.LateralImage)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParse_FirstValueWinsAndUnknownIgnored(t *testing.T) {
	r := Parse("- Indication: cough\n- Indication: fever\nColour: blue\nAge: 200")
	if r.Indication != "cough" {
		t.Fatalf("indication: got %q", r.Indication)
	}
	if r.Age != 0 {
		t.Fatalf("out of range age should be unset, got %d", r.Age)
	}
}

func TestWithDefaults(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	r := Request{}.WithDefaults(now)
	if r.Technique != DefaultTechnique || r.Comparison != DefaultComparison {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if !r.ExamDate.Equal(now) {
		t.Fatalf("exam date default: got %v", r.ExamDate)
	}
	kept := Request{Technique: "AP portable"}.WithDefaults(now)
	if kept.Technique != "AP portable" {
		t.Fatalf("explicit technique overwritten: %q", kept.Technique)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		r    Request
		ok   bool
	}{
		{"ok", Request{FrontalImage: "a.png", LateralImage: "b.JPG", Indication: "cough"}, true},
		{"missing lateral", Request{FrontalImage: "a.png", Indication: "cough"}, false},
		{"bad extension", Request{FrontalImage: "a.gif", LateralImage: "b.png", Indication: "cough"}, false},
		{"missing indication", Request{FrontalImage: "a.png", LateralImage: "b.png"}, false},
	}
	for _, tc := range cases {
		err := tc.r.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("%s: expected ErrInvalidRequest, got %v", tc.name, err)
			}
		}
	}
}
