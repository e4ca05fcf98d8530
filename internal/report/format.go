package report

import "strings"

// SpanKind classifies a piece of a formatted body.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanLineBreak
	SpanBullet
	SpanBoldOpen
	SpanBoldClose
	SpanItalicOpen
	SpanItalicClose
)

// Span is one piece of a formatted body: either literal text or a marker.
type Span struct {
	Kind SpanKind
	Text string
}

// Markers maps each marker kind to its output string.
type Markers struct {
	Bullet      string
	BoldOpen    string
	BoldClose   string
	ItalicOpen  string
	ItalicClose string
	LineBreak   string
}

// DefaultMarkers renders markers as inline HTML.
var DefaultMarkers = Markers{
	Bullet:      "•",
	BoldOpen:    "<strong>",
	BoldClose:   "</strong>",
	ItalicOpen:  "<em>",
	ItalicClose: "</em>",
	LineBreak:   "<br>",
}

func (m Markers) of(k SpanKind) string {
	switch k {
	case SpanLineBreak:
		return m.LineBreak
	case SpanBullet:
		return m.Bullet
	case SpanBoldOpen:
		return m.BoldOpen
	case SpanBoldClose:
		return m.BoldClose
	case SpanItalicOpen:
		return m.ItalicOpen
	case SpanItalicClose:
		return m.ItalicClose
	}
	return ""
}

// Pairing selects how emphasis delimiters are matched within one body.
type Pairing int

const (
	// PairFirst converts only the first complete delimiter pair; any later
	// delimiters stay literal.
	PairFirst Pairing = iota
	// PairAll converts every complete pair in order; an odd trailing
	// delimiter stays literal.
	PairAll
)

// SubsectionLetters are the lettered sub-finding tokens, in the order they are
// processed. Letters past h. are not recognized.
var SubsectionLetters = []string{"a.", "b.", "c.", "d.", "e.", "f.", "g.", "h."}

// Formatter rewrites inline markers of a section body. The zero value renders
// with empty markers; use DefaultMarkers for HTML output.
type Formatter struct {
	Markers Markers
	Pairing Pairing
	// Escape, when set, is applied to literal text when rendering.
	Escape func(string) string
}

// Format applies the findings rules to FindingsLabel and the generic rules to
// every other label.
func (f Formatter) Format(label, body string) string {
	if label == FindingsLabel {
		return f.Findings(body)
	}
	return f.Generic(body)
}

// Generic formats a regular section body.
func (f Formatter) Generic(body string) string {
	return f.Render(GenericSpans(body, f.Pairing))
}

// Findings formats a findings body with lettered sub-items.
func (f Formatter) Findings(body string) string {
	return f.Render(FindingsSpans(body, f.Pairing))
}

// Bullets applies only the bullet rules.
func (f Formatter) Bullets(body string) string {
	return f.Render(bullets(textSpans(body)))
}

// Render concatenates spans using the formatter's markers.
func (f Formatter) Render(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Kind == SpanText {
			if f.Escape != nil {
				b.WriteString(f.Escape(s.Text))
			} else {
				b.WriteString(s.Text)
			}
			continue
		}
		b.WriteString(f.Markers.of(s.Kind))
	}
	return b.String()
}

// GenericSpans applies, in order: inline bullets, leading bullets, bold
// pairing, italic pairing.
func GenericSpans(body string, p Pairing) []Span {
	spans := bullets(textSpans(body))
	return emphasis(spans, p)
}

// FindingsSpans applies the bullet rules, then wraps every lettered sub-item
// token a. through h. in a double line break and bold markers, then applies
// the emphasis rules.
func FindingsSpans(body string, p Pairing) []Span {
	spans := bullets(textSpans(body))
	for _, letter := range SubsectionLetters {
		spans = letterItems(spans, letter)
	}
	return emphasis(spans, p)
}

func textSpans(body string) []Span {
	if body == "" {
		return nil
	}
	return []Span{{Kind: SpanText, Text: body}}
}

var bulletSpans = []Span{{Kind: SpanLineBreak}, {Kind: SpanBullet}, {Kind: SpanText, Text: " "}}

func bullets(spans []Span) []Span {
	spans = mapText(spans, func(s string, _ bool) []Span {
		return splitJoin(s, " * ", bulletSpans)
	})
	return mapText(spans, leadingBullets)
}

// leadingBullets replaces "* " at the start of a line.
func leadingBullets(s string, lineStart bool) []Span {
	var out []Span
	last := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '*' || s[i+1] != ' ' {
			continue
		}
		atLine := (i == 0 && lineStart) || (i > 0 && s[i-1] == '\n')
		if !atLine {
			continue
		}
		out = appendText(out, s[last:i])
		out = append(out, bulletSpans...)
		last = i + 2
		i++
	}
	if out == nil {
		return []Span{{Kind: SpanText, Text: s}}
	}
	return appendText(out, s[last:])
}

func letterItems(spans []Span, letter string) []Span {
	wrapped := []Span{
		{Kind: SpanLineBreak},
		{Kind: SpanLineBreak},
		{Kind: SpanBoldOpen},
		{Kind: SpanText, Text: letter},
		{Kind: SpanBoldClose},
	}
	return mapText(spans, func(s string, _ bool) []Span {
		return splitJoin(s, letter, wrapped)
	})
}

func emphasis(spans []Span, p Pairing) []Span {
	spans = pairDelimiters(spans, boldDelims, 2, SpanBoldOpen, SpanBoldClose, p)
	return pairDelimiters(spans, italicDelims, 1, SpanItalicOpen, SpanItalicClose, p)
}

// boldDelims returns offsets of non-overlapping "**" scanning left to right.
func boldDelims(s string) []int {
	var out []int
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '*' && s[i+1] == '*' {
			out = append(out, i)
			i++
		}
	}
	return out
}

// italicDelims returns offsets of asterisks that are not part of a run.
func italicDelims(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] != '*' {
			continue
		}
		if (i > 0 && s[i-1] == '*') || (i+1 < len(s) && s[i+1] == '*') {
			continue
		}
		out = append(out, i)
	}
	return out
}

type delim struct {
	span, off int
}

// pairDelimiters replaces matched delimiter occurrences with open/close
// markers, alternating in document order.
func pairDelimiters(spans []Span, find func(string) []int, width int, openKind, closeKind SpanKind, p Pairing) []Span {
	var all []delim
	for i, s := range spans {
		if s.Kind != SpanText {
			continue
		}
		for _, off := range find(s.Text) {
			all = append(all, delim{span: i, off: off})
		}
	}
	n := len(all) - len(all)%2
	if p == PairFirst && n > 2 {
		n = 2
	}
	if n == 0 {
		return spans
	}
	all = all[:n]

	out := make([]Span, 0, len(spans)+n*2)
	k := 0
	for i, s := range spans {
		if s.Kind != SpanText || k >= n || all[k].span != i {
			out = append(out, s)
			continue
		}
		last := 0
		for k < n && all[k].span == i {
			off := all[k].off
			out = appendText(out, s.Text[last:off])
			kind := openKind
			if k%2 == 1 {
				kind = closeKind
			}
			out = append(out, Span{Kind: kind})
			last = off + width
			k++
		}
		out = appendText(out, s.Text[last:])
	}
	return out
}

// mapText rewrites each text span with fn. lineStart is true when the span
// opens the body or directly follows a line break.
func mapText(spans []Span, fn func(s string, lineStart bool) []Span) []Span {
	out := make([]Span, 0, len(spans))
	for i, s := range spans {
		if s.Kind != SpanText {
			out = append(out, s)
			continue
		}
		lineStart := i == 0 || spans[i-1].Kind == SpanLineBreak
		out = append(out, fn(s.Text, lineStart)...)
	}
	return out
}

func splitJoin(s, sep string, with []Span) []Span {
	parts := strings.Split(s, sep)
	if len(parts) == 1 {
		return []Span{{Kind: SpanText, Text: s}}
	}
	out := make([]Span, 0, len(parts)*(len(with)+1))
	for i, part := range parts {
		if i > 0 {
			out = append(out, with...)
		}
		out = appendText(out, part)
	}
	return out
}

func appendText(out []Span, s string) []Span {
	if s == "" {
		return out
	}
	return append(out, Span{Kind: SpanText, Text: s})
}
