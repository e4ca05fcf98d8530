package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Scenario(t *testing.T) {
	raw := "EXAMINATION:\nChest.\nFINDINGS:\nLungs clear.\nIMPRESSION:\nNormal."
	m := Segment(raw, []string{"EXAMINATION:", "FINDINGS:", "IMPRESSION:"})

	require.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"EXAMINATION:", "FINDINGS:", "IMPRESSION:"}, m.Labels())
	for label, want := range map[string]string{
		"EXAMINATION:": "Chest.",
		"FINDINGS:":    "Lungs clear.",
		"IMPRESSION:":  "Normal.",
	} {
		got, ok := m.Get(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}
}

func TestSegment_CoverageReconstructsText(t *testing.T) {
	orders := [][]string{
		DefaultLabels,
		{"IMPRESSION:", "FINDINGS:", "TECHNIQUE:"},
		{"B:", "A:"},
	}
	for _, labels := range orders {
		var raw strings.Builder
		var want strings.Builder
		for i, l := range labels {
			body := "body " + string(rune('a'+i)) + "\n  line two"
			raw.WriteString(l + "\n  " + body + "  \n\n")
			want.WriteString(l + body)
		}
		m := Segment(raw.String(), labels)
		require.Equal(t, labels, m.Labels())

		var got strings.Builder
		for _, s := range m.Sections() {
			got.WriteString(s.Label + s.Body)
		}
		assert.Equal(t, want.String(), got.String())
	}
}

func TestSegment_AbsentLabelsAndEmptyInput(t *testing.T) {
	m := Segment("", DefaultLabels)
	assert.True(t, m.Empty())
	assert.Equal(t, 0, m.Len())

	m = Segment("FINDINGS: ok\nIMPRESSION: fine", DefaultLabels)
	assert.False(t, m.Has("EXAMINATION:"))
	assert.False(t, m.Has("RECOMMENDATIONS:"))
	assert.Equal(t, []string{"FINDINGS:", "IMPRESSION:"}, m.Labels())

	m = Segment("no headings at all", DefaultLabels)
	assert.True(t, m.Empty())
}

func TestSegment_DropsPreambleAndTrims(t *testing.T) {
	m := Segment("Here is the report.\n\nFINDINGS:   \n\t Clear. \n", []string{"FINDINGS:"})
	body, ok := m.Get("FINDINGS:")
	require.True(t, ok)
	assert.Equal(t, "Clear.", body)
}

func TestSegment_TrimInvariant(t *testing.T) {
	raw := "EXAMINATION:  X \n COMPARISON:\n\n None \t FINDINGS: \n a. b. \n"
	for _, s := range Segment(raw, DefaultLabels).Sections() {
		assert.Equal(t, strings.TrimSpace(s.Body), s.Body, s.Label)
	}
}

func TestSegment_EmptyBodyKeepsKey(t *testing.T) {
	m := Segment("FINDINGS:\n\nIMPRESSION: Normal.", []string{"FINDINGS:", "IMPRESSION:"})
	body, ok := m.Get("FINDINGS:")
	require.True(t, ok)
	assert.Equal(t, "", body)
}

func TestSegment_CaseSensitiveLiteralMatch(t *testing.T) {
	m := Segment("findings: lower\nFINDINGS upper", []string{"FINDINGS:"})
	assert.True(t, m.Empty())
}

func TestSegment_LabelOrderDrivesScan(t *testing.T) {
	// IMPRESSION appears before FINDINGS in the text. FINDINGS is checked
	// first, so IMPRESSION is searched only in the text that follows it.
	raw := "IMPRESSION: Normal.\nFINDINGS: Lungs clear."
	m := Segment(raw, []string{"FINDINGS:", "IMPRESSION:"})
	assert.Equal(t, []string{"FINDINGS:"}, m.Labels())
	body, _ := m.Get("FINDINGS:")
	assert.Equal(t, "Lungs clear.", body)
}

func TestSegment_LabelInProseIsAHeading(t *testing.T) {
	raw := "FINDINGS: see IMPRESSION: below. IMPRESSION: Normal."
	m := Segment(raw, []string{"FINDINGS:", "IMPRESSION:"})
	f, _ := m.Get("FINDINGS:")
	i, _ := m.Get("IMPRESSION:")
	assert.Equal(t, "see", f)
	assert.Equal(t, "below. IMPRESSION: Normal.", i)
}

func TestSegment_EarliestLaterLabelWins(t *testing.T) {
	raw := "EXAMINATION: Chest. IMPRESSION: Normal. FINDINGS: Clear."
	m := Segment(raw, []string{"EXAMINATION:", "FINDINGS:", "IMPRESSION:"})
	e, _ := m.Get("EXAMINATION:")
	assert.Equal(t, "Chest.", e)
	// FINDINGS is searched from the IMPRESSION boundary and consumes the rest.
	f, ok := m.Get("FINDINGS:")
	require.True(t, ok)
	assert.Equal(t, "Clear.", f)
	assert.False(t, m.Has("IMPRESSION:"))
}

func TestSegment_IgnoresEmptyAndRepeatedLabels(t *testing.T) {
	m := Segment("A: one B: two", []string{"", "A:", "A:", "B:"})
	assert.Equal(t, []string{"A:", "B:"}, m.Labels())
	a, _ := m.Get("A:")
	assert.Equal(t, "one", a)
}

func TestSectionMap_ZeroValue(t *testing.T) {
	var m SectionMap
	_, ok := m.Get("FINDINGS:")
	assert.False(t, ok)
	assert.Empty(t, m.Labels())
	assert.True(t, m.Empty())
}
