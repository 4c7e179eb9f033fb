package text

import (
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/outliner/paint"
)

// ReplacementChar 在文本中占据一个下标，渲染时替换为图标。
const ReplacementChar = '￼'

// ParagraphStyle 控制行距与段前段后间距。
type ParagraphStyle struct {
	LineHeightMultiple float64 `json:"lineHeightMultiple"`
	SpacingBefore      float64 `json:"spacingBefore"`
	SpacingAfter       float64 `json:"spacingAfter"`
}

// multiple 返回有效的行高倍数，未设置时为 1。
func (p ParagraphStyle) multiple() float64 {
	if p.LineHeightMultiple <= 0 {
		return 1
	}
	return p.LineHeightMultiple
}

// Style 描述一段文本的渲染属性。
type Style struct {
	Font          paint.Font     `json:"font"`
	Color         paint.Color    `json:"color"`
	Background    *paint.Color   `json:"background,omitempty"`
	Strikethrough bool           `json:"strikethrough,omitempty"`
	Underline     bool           `json:"underline,omitempty"`
	Replacement   string         `json:"replacement,omitempty"` // 非空时该 run 的每个字符都绘制为此图标
	Tint          *paint.Color   `json:"tint,omitempty"`
	Paragraph     ParagraphStyle `json:"paragraph"`
}

// Run 是一段同样式的文本。
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// StyledString 是排版的输入：有序的 run 序列，Default 用于空文本的度量。
type StyledString struct {
	Runs    []Run `json:"runs"`
	Default Style `json:"default"`
}

// Len 返回字符（rune）数。
func (s StyledString) Len() int {
	n := 0
	for _, r := range s.Runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

func (s StyledString) String() string {
	var b strings.Builder
	for _, r := range s.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Paragraph 返回首个 run 的段落样式，空文本时取 Default。
func (s StyledString) Paragraph() ParagraphStyle {
	if len(s.Runs) > 0 {
		return s.Runs[0].Style.Paragraph
	}
	return s.Default.Paragraph
}

// glyph 是展开后的单个字符及其所属 run。
type glyph struct {
	r   rune
	run int
}

// glyphs 将 run 序列展开成按下标排列的字符表。
func (s StyledString) glyphs() []glyph {
	out := make([]glyph, 0, s.Len())
	for i, run := range s.Runs {
		for _, r := range run.Text {
			out = append(out, glyph{r: r, run: i})
		}
	}
	return out
}

// styleOf 返回字符所属 run 的样式。
func (s StyledString) styleOf(g glyph) Style {
	if g.run < 0 || g.run >= len(s.Runs) {
		return s.Default
	}
	return s.Runs[g.run].Style
}
