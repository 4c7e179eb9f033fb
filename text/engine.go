package text

import (
	"errors"
	"fmt"
	"sort"
	"unicode"

	"github.com/ByLCY/outliner/geom"
)

// ErrInvalidWidth 表示以非正宽度请求排版。
var ErrInvalidWidth = errors.New("text: layout width must be positive")

// Engine 在 Typesetter 之上补充光标映射、段落间距与多行几何。
type Engine struct {
	ts Typesetter
}

// NewEngine 创建排版引擎。
func NewEngine(ts Typesetter) *Engine {
	return &Engine{ts: ts}
}

// Typesetter 返回底层字体后端。
func (e *Engine) Typesetter() Typesetter { return e.ts }

// Layout 以给定宽度排版 s。宽度必须为正。
func (e *Engine) Layout(s StyledString, width float64) (*Frame, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	if e == nil || e.ts == nil {
		return nil, fmt.Errorf("text: 缺少排版后端 Typesetter")
	}
	boxes, err := e.ts.LayoutRuns(s, width)
	if err != nil {
		return nil, fmt.Errorf("text: 排版失败: %w", err)
	}
	if len(boxes) == 0 {
		boxes = Wrap(StyledString{Default: s.Default}, width, zeroMeasurer{})
	}
	return newFrame(s, width, boxes), nil
}

type zeroMeasurer struct{}

func (zeroMeasurer) Advance(rune, Style) float64 { return 0 }
func (zeroMeasurer) Metrics(Style) Metrics       { return Metrics{} }

// Frame 是一段带样式文本排版后的结果：有序的行以及整体尺寸。
type Frame struct {
	Lines []*Line   `json:"lines"`
	Size  geom.Size `json:"size"`
	Width float64   `json:"width"` // 排版时的宽度约束

	str    StyledString
	glyphs []glyph
}

func newFrame(s StyledString, width float64, boxes []LineBox) *Frame {
	f := &Frame{Width: width, str: s, glyphs: s.glyphs()}
	para := s.Paragraph()
	multiple := para.multiple()
	y := para.SpacingBefore
	maxWidth := 0.0
	for _, box := range boxes {
		line := &Line{
			LineBox:            box,
			LineHeightMultiple: multiple,
			Rect:               geom.R(0, y, box.Width, box.Height*multiple),
			frame:              f,
		}
		f.Lines = append(f.Lines, line)
		y += box.Height * multiple
		maxWidth = max(maxWidth, box.Width)
	}
	f.Size = geom.Size{Width: maxWidth, Height: y + para.SpacingAfter}
	return f
}

// Len 返回排版文本的字符数。
func (f *Frame) Len() int { return len(f.glyphs) }

// String 返回排版文本。
func (f *Frame) String() string { return f.str.String() }

// StyledString 返回排版输入。
func (f *Frame) StyledString() StyledString { return f.str }

// LineIndexFor 返回包含 index 的行号。行尾下标归属下一行，文本末尾归属最后一行。
func (f *Frame) LineIndexFor(index int) int {
	if f == nil || len(f.Lines) == 0 {
		return 0
	}
	for i, l := range f.Lines {
		if index < l.End() {
			return i
		}
	}
	return len(f.Lines) - 1
}

// LineFor 返回包含 index 的行。
func (f *Frame) LineFor(index int) *Line {
	if f == nil || len(f.Lines) == 0 {
		return nil
	}
	return f.Lines[f.LineIndexFor(index)]
}

// IndexAt 将 Frame 坐标中的点映射为字符下标。
func (f *Frame) IndexAt(p geom.Point) int {
	if f == nil || len(f.Lines) == 0 {
		return 0
	}
	for _, l := range f.Lines {
		if p.Y < l.Rect.MaxY() {
			return l.StringIndexFor(p)
		}
	}
	return f.Lines[len(f.Lines)-1].StringIndexFor(p)
}

// OffsetAt 返回 index 处光标的 x 坐标。
func (f *Frame) OffsetAt(index int) float64 {
	l := f.LineFor(index)
	if l == nil {
		return 0
	}
	return l.OffsetFor(index)
}

// RectAt 返回 index 处字符的矩形；位于文本末尾时宽度为 0。
func (f *Frame) RectAt(index int) geom.Rect {
	l := f.LineFor(index)
	if l == nil {
		return geom.Rect{}
	}
	x := l.OffsetFor(index)
	w := 0.0
	if i := index - l.Start; i >= 0 && i < l.Count {
		w = l.Offsets[i+1] - l.Offsets[i]
	}
	return geom.R(x, l.Rect.Y, w, l.Rect.Height)
}

// SelectionRects 返回覆盖 [start, end) 的逐行矩形。
func (f *Frame) SelectionRects(start, end int) []geom.Rect {
	if f == nil || start >= end {
		return nil
	}
	var rects []geom.Rect
	for _, l := range f.Lines {
		s := max(start, l.Start)
		e := min(end, l.End())
		if s >= e {
			continue
		}
		x0 := l.OffsetFor(s)
		x1 := l.OffsetFor(e)
		rects = append(rects, geom.R(x0, l.Rect.Y, x1-x0, l.Rect.Height))
	}
	return rects
}

// isReplacement 判断 index 处是否为替换字符（图标）。
func (f *Frame) isReplacement(index int) bool {
	if index < 0 || index >= len(f.glyphs) {
		return false
	}
	g := f.glyphs[index]
	return g.r == ReplacementChar || f.str.styleOf(g).Replacement != ""
}

// Line 是 Frame 中的一行。
type Line struct {
	LineBox
	Rect               geom.Rect `json:"rect"`
	LineHeightMultiple float64   `json:"lineHeightMultiple"`

	frame *Frame
	stops []caretStop
}

type caretStop struct {
	index int
	x     float64
}

// Baseline 返回基线在 Frame 坐标中的 y。
func (l *Line) Baseline() float64 { return l.Rect.Y + l.Ascent }

// MaxIndex 是点击本行时可以返回的最大下标：非末行以空白或换行结束时，光标停在该字符之前。
func (l *Line) MaxIndex() int {
	last := l.frame == nil || l.frame.Lines[len(l.frame.Lines)-1] == l
	if !last && l.Count > 0 {
		if r := l.frame.glyphs[l.End()-1].r; r == '\n' || unicode.IsSpace(r) {
			return l.End() - 1
		}
	}
	if last && l.Count > 0 && l.frame.glyphs[l.End()-1].r == '\n' {
		return l.End() - 1
	}
	return l.End()
}

// caretStops 延迟构建有序的光标停靠点，去掉图标的后缘（行尾除外）。
func (l *Line) caretStops() []caretStop {
	if l.stops != nil {
		return l.stops
	}
	limit := l.MaxIndex()
	stops := make([]caretStop, 0, l.Count+1)
	for i := 0; i <= l.Count; i++ {
		idx := l.Start + i
		if idx > limit {
			break
		}
		if l.frame != nil && idx != limit && l.frame.isReplacement(idx-1) && idx-1 >= l.Start {
			continue
		}
		stops = append(stops, caretStop{index: idx, x: l.Offsets[i]})
	}
	if len(stops) == 0 {
		stops = append(stops, caretStop{index: l.Start})
	}
	l.stops = stops
	return stops
}

// StringIndexFor 返回第一个光标中点超过 p.X 的下标，结果被限制在本行范围内。
func (l *Line) StringIndexFor(p geom.Point) int {
	stops := l.caretStops()
	x := p.X - l.Rect.X
	n := sort.Search(len(stops)-1, func(j int) bool {
		return x < (stops[j].x+stops[j+1].x)/2
	})
	return stops[n].index
}

// OffsetFor 返回 index 处光标相对 Frame 的 x；超出本行字符数时返回行的最大 x。
func (l *Line) OffsetFor(index int) float64 {
	i := index - l.Start
	switch {
	case i <= 0:
		return l.Rect.X
	case i > l.Count:
		return l.Rect.X + l.Offsets[l.Count]
	default:
		return l.Rect.X + l.Offsets[i]
	}
}
