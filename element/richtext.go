package element

import (
	"strings"
	"unicode/utf8"
)

// IconChar 是图标 run 在文本中的占位字符。
const IconChar = '￼'

// Style holds the attributes of a rich-text run. Zero value means plain text.
type Style struct {
	Strong        bool   `json:"strong,omitempty"`
	Emphasis      bool   `json:"emphasis,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Link          string `json:"link,omitempty"`         // web link URL
	InternalLink  string `json:"internalLink,omitempty"` // target document title
	Source        string `json:"source,omitempty"`       // source annotation
	Icon          string `json:"icon,omitempty"`         // run is rendered as an inline icon
}

// IsZero reports whether s carries no attribute.
func (s Style) IsZero() bool { return s == Style{} }

// Formatting keeps only the toggleable formatting attributes.
func (s Style) Formatting() Style {
	return Style{Strong: s.Strong, Emphasis: s.Emphasis, Strikethrough: s.Strikethrough}
}

// Run is a contiguous piece of text sharing one style.
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// RichText is an ordered sequence of runs. Indices used by its methods are rune indices.
// RichText values are immutable; every edit returns a new value.
type RichText []Run

// Plain returns a RichText holding s without attributes.
func Plain(s string) RichText {
	if s == "" {
		return nil
	}
	return RichText{{Text: s}}
}

// Len returns the number of runes.
func (t RichText) Len() int {
	n := 0
	for _, r := range t {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

func (t RichText) String() string {
	var b strings.Builder
	for _, r := range t {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Equal reports whether a and b have identical text and styling after normalization.
func (t RichText) Equal(o RichText) bool {
	a, b := t.Normalize(), o.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Normalize drops empty runs and merges adjacent runs with equal style.
// Icon runs are never merged so that each icon stays one rune.
func (t RichText) Normalize() RichText {
	var out RichText
	for _, r := range t {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == r.Style && r.Style.Icon == "" {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// Slice returns the runs covering [start, end).
func (t RichText) Slice(start, end int) RichText {
	start, end = clampRange(start, end, t.Len())
	if start == end {
		return nil
	}
	var out RichText
	pos := 0
	for _, r := range t {
		n := utf8.RuneCountInString(r.Text)
		rs, re := pos, pos+n
		pos = re
		if re <= start || rs >= end {
			continue
		}
		from := max(start, rs) - rs
		to := min(end, re) - rs
		out = append(out, Run{Text: runeSlice(r.Text, from, to), Style: r.Style})
	}
	return out.Normalize()
}

// Concat returns t followed by o.
func (t RichText) Concat(o RichText) RichText {
	out := make(RichText, 0, len(t)+len(o))
	out = append(out, t...)
	out = append(out, o...)
	return out.Normalize()
}

// Replace replaces [start, end) with s styled with style.
func (t RichText) Replace(start, end int, s string, style Style) RichText {
	start, end = clampRange(start, end, t.Len())
	out := t.Slice(0, start)
	if s != "" {
		out = append(out, Run{Text: s, Style: style})
	}
	return out.Concat(t.Slice(end, t.Len()))
}

// ReplaceRich replaces [start, end) with r.
func (t RichText) ReplaceRich(start, end int, r RichText) RichText {
	start, end = clampRange(start, end, t.Len())
	return t.Slice(0, start).Concat(r).Concat(t.Slice(end, t.Len()))
}

// ApplyStyle rewrites the style of every run in [start, end) with fn.
func (t RichText) ApplyStyle(start, end int, fn func(*Style)) RichText {
	start, end = clampRange(start, end, t.Len())
	if start == end {
		return t
	}
	mid := t.Slice(start, end)
	styled := make(RichText, len(mid))
	for i, r := range mid {
		fn(&r.Style)
		styled[i] = r
	}
	return t.Slice(0, start).Concat(styled).Concat(t.Slice(end, t.Len()))
}

// StyleAt returns the style of the run enclosing the caret position index: the run of the
// character before index, or of the first character when index is 0.
func (t RichText) StyleAt(index int) Style {
	if len(t) == 0 {
		return Style{}
	}
	target := index - 1
	if target < 0 {
		target = 0
	}
	pos := 0
	for _, r := range t {
		n := utf8.RuneCountInString(r.Text)
		if target < pos+n {
			return r.Style
		}
		pos += n
	}
	return t[len(t)-1].Style
}

// StyleOfChar returns the style of the character at index.
func (t RichText) StyleOfChar(index int) Style {
	pos := 0
	for _, r := range t {
		n := utf8.RuneCountInString(r.Text)
		if index >= pos && index < pos+n {
			return r.Style
		}
		pos += n
	}
	return Style{}
}

// AllHave reports whether every run in [start, end) satisfies pred.
func (t RichText) AllHave(start, end int, pred func(Style) bool) bool {
	mid := t.Slice(start, end)
	if len(mid) == 0 {
		return false
	}
	for _, r := range mid {
		if !pred(r.Style) {
			return false
		}
	}
	return true
}

// Runes returns the text as runes.
func (t RichText) Runes() []rune { return []rune(t.String()) }

func clampRange(start, end, n int) (int, int) {
	start = min(max(start, 0), n)
	end = min(max(end, 0), n)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func runeSlice(s string, from, to int) string {
	rs := []rune(s)
	return string(rs[from:to])
}
