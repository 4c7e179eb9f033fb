package editor

import (
	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/text"
)

var codeBackground = paint.Color{R: 242, G: 242, B: 242}

// baseStyle 返回某种元素类型的默认排版样式。
func (o Options) baseStyle(kind element.Kind, title bool) text.Style {
	st := text.Style{
		Font:  paint.Font{Family: o.FontFamily, Size: o.FontSize},
		Color: paint.Black,
		Paragraph: text.ParagraphStyle{
			LineHeightMultiple: o.LineHeightMultiple,
			SpacingBefore:      o.SpacingBefore,
			SpacingAfter:       o.SpacingAfter,
		},
	}
	if title {
		st.Font.Size = o.FontSize * 2
		st.Font.Bold = true
		st.Paragraph.SpacingAfter = o.SpacingAfter + o.FontSize
		return st
	}
	switch kind {
	case element.KindHeading1:
		st.Font.Size = o.FontSize * 1.5
		st.Font.Bold = true
		st.Paragraph.SpacingBefore += o.FontSize / 2
	case element.KindHeading2:
		st.Font.Size = o.FontSize * 1.3
		st.Font.Bold = true
		st.Paragraph.SpacingBefore += o.FontSize / 3
	case element.KindHeading3:
		st.Font.Size = o.FontSize * 1.15
		st.Font.Bold = true
	case element.KindQuote:
		st.Font.Italic = true
		st.Color = paint.Secondary
	case element.KindCode:
		st.Font.Monospace = true
		bg := codeBackground
		st.Background = &bg
	}
	return st
}

// runStyle 将元素的富文本属性叠加到基础样式上。
func runStyle(base text.Style, s element.Style) text.Style {
	st := base
	if s.Strong {
		st.Font.Bold = true
	}
	if s.Emphasis {
		st.Font.Italic = true
	}
	if s.Strikethrough {
		st.Strikethrough = true
		st.Color = paint.Secondary
	}
	if s.Link != "" {
		st.Color = paint.LinkBlue
		st.Underline = true
	}
	if s.InternalLink != "" {
		st.Color = paint.LinkBlue
	}
	if s.Source != "" {
		st.Color = paint.Secondary
	}
	if s.Icon != "" {
		st.Replacement = s.Icon
		if s.InternalLink != "" || s.Link != "" {
			tint := paint.LinkBlue
			st.Tint = &tint
		}
	}
	return st
}

type span struct {
	r         Range
	underline bool
}

// styledString 从元素富文本构建排版输入；marked 非空时为输入法组字区间加下划线。
func styledString(rt element.RichText, base text.Style, marked Range) text.StyledString {
	out := text.StyledString{Default: base}
	n := rt.Len()
	marked = marked.clamp(n)
	spans := []span{{r: Range{0, n}}}
	if !marked.IsEmpty() {
		spans = []span{
			{r: Range{0, marked.Start}},
			{r: marked, underline: true},
			{r: Range{marked.End, n}},
		}
	}
	for _, sp := range spans {
		for _, run := range rt.Slice(sp.r.Start, sp.r.End) {
			st := runStyle(base, run.Style)
			if sp.underline {
				st.Underline = true
			}
			out.Runs = append(out.Runs, text.Run{Text: run.Text, Style: st})
		}
	}
	return out
}
