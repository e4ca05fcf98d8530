package report

import "strings"

// DefaultLabels is the canonical ordered list of section headings a chest
// X-ray report is expected to contain.
var DefaultLabels = []string{
	"EXAMINATION:",
	"CLINICAL INFORMATION:",
	"COMPARISON:",
	"TECHNIQUE:",
	"FINDINGS:",
	"IMPRESSION:",
	"RECOMMENDATIONS:",
}

// FindingsLabel is the section whose body carries lettered sub-findings.
const FindingsLabel = "FINDINGS:"

// Section is a single label and its trimmed body.
type Section struct {
	Label string
	Body  string
}

// SectionMap is an ordered label -> body mapping. The zero value is an empty map.
type SectionMap struct {
	sections []Section
	index    map[string]int
}

// Get returns the body stored for label.
func (m SectionMap) Get(label string) (string, bool) {
	i, ok := m.index[label]
	if !ok {
		return "", false
	}
	return m.sections[i].Body, true
}

// Has reports whether label was found.
func (m SectionMap) Has(label string) bool {
	_, ok := m.index[label]
	return ok
}

// Len returns the number of sections found.
func (m SectionMap) Len() int { return len(m.sections) }

// Empty reports whether no label was recognized. Callers treat this as a
// degraded display case and fall back to the raw text.
func (m SectionMap) Empty() bool { return len(m.sections) == 0 }

// Labels returns the found labels in occurrence order.
func (m SectionMap) Labels() []string {
	out := make([]string, 0, len(m.sections))
	for _, s := range m.sections {
		out = append(out, s.Label)
	}
	return out
}

// Sections returns a copy of the sections in occurrence order.
func (m SectionMap) Sections() []Section {
	return append([]Section(nil), m.sections...)
}

func (m *SectionMap) add(label, body string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[label] = len(m.sections)
	m.sections = append(m.sections, Section{Label: label, Body: body})
}

// Segment splits raw into sections keyed by the labels it contains.
//
// Labels are checked in the order given, not in the order they appear in raw.
// For each label found in the remaining text, its body runs until the earliest
// occurrence of any later label (or the end of the text), and the remaining
// text is advanced to that point. Text before the first recognized label and
// labels that are not found are dropped. Matching is literal and
// case-sensitive; a label embedded in prose is treated as a heading.
func Segment(raw string, labels []string) SectionMap {
	var out SectionMap
	labels = uniqueLabels(labels)
	remaining := raw
	for i, label := range labels {
		start := strings.Index(remaining, label)
		if start < 0 {
			continue
		}
		bodyStart := start + len(label)
		end := len(remaining)
		after := remaining[bodyStart:]
		for _, next := range labels[i+1:] {
			if j := strings.Index(after, next); j >= 0 && bodyStart+j < end {
				end = bodyStart + j
			}
		}
		out.add(label, strings.TrimSpace(remaining[bodyStart:end]))
		remaining = remaining[end:]
	}
	return out
}

// uniqueLabels drops empty and repeated labels, keeping first occurrences.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
