package editor

import (
	"strconv"

	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/text"
	"github.com/ByLCY/outliner/widget"
	"go.uber.org/zap"
)

// Spacer 是固定高度的空白。底部间隔接受点击，把光标放到最后一个节点末尾。
type Spacer struct {
	root   *Root
	w      *widget.Widget
	height float64
	bottom bool
}

var (
	_ widget.Content      = (*Spacer)(nil)
	_ widget.MouseHandler = (*Spacer)(nil)
	_ widget.Describer    = (*Spacer)(nil)
)

func (s *Spacer) Widget() *widget.Widget { return s.w }
func (s *Spacer) Height() float64        { return s.height }

// SetHeight 修改高度并重新布局。
func (s *Spacer) SetHeight(h float64) {
	if h == s.height {
		return
	}
	s.height = h
	s.w.InvalidateLayout()
}

func (s *Spacer) ContentSize(_ *widget.Widget, width float64) geom.Size {
	return geom.Size{Width: width, Height: s.height}
}

func (s *Spacer) Describe(*widget.Widget) string {
	if s.bottom {
		return "bottom spacer"
	}
	return "spacer"
}

func (s *Spacer) MouseDown(_ *widget.Widget, ev widget.MouseEvent) bool {
	if !s.bottom {
		return false
	}
	last := s.root.lastVisibleTextNode()
	s.root.Focus(last, last.Len())
	return true
}

func (s *Spacer) MouseDragged(*widget.Widget, widget.MouseEvent) {}
func (s *Spacer) MouseUp(*widget.Widget, widget.MouseEvent)      {}

func (r *Root) addSpacer(bottom bool) *Spacer {
	s := &Spacer{root: r, height: r.opts.SpacerHeight, bottom: bottom}
	if bottom {
		s.height *= 2
	}
	s.w = r.tree.Add(r.node.w, -1, s)
	return s
}

// SectionKind 区分页面之后附加的区块。
type SectionKind int

const (
	SectionLinks SectionKind = iota
	SectionUnlinked
	SectionHistory
)

func (k SectionKind) String() string {
	switch k {
	case SectionLinks:
		return "links"
	case SectionUnlinked:
		return "unlinked references"
	case SectionHistory:
		return "history"
	}
	return "section(" + strconv.Itoa(int(k)) + ")"
}

// Section 是一个带标题的区块，子节点是其他页面中元素的投影。没有元素时整个区块隐藏。
// 点击标题折叠或展开。
type Section struct {
	root      *Root
	w         *widget.Widget
	kind      SectionKind
	els       []*element.Element
	collapsed bool

	header      *text.Frame
	headerWidth float64
}

var (
	_ widget.Content      = (*Section)(nil)
	_ widget.Container    = (*Section)(nil)
	_ widget.Drawer       = (*Section)(nil)
	_ widget.MouseHandler = (*Section)(nil)
	_ widget.Describer    = (*Section)(nil)
)

func (r *Root) addSection(kind SectionKind) *Section {
	s := &Section{root: r, kind: kind}
	s.w = r.tree.Add(r.node.w, -1, s)
	s.w.SetSelfVisible(false)
	return s
}

func (s *Section) Kind() SectionKind            { return s.kind }
func (s *Section) Widget() *widget.Widget       { return s.w }
func (s *Section) Elements() []*element.Element { return s.els }
func (s *Section) Collapsed() bool              { return s.collapsed }

// Title 返回区块标题，包含元素数量。
func (s *Section) Title() string {
	n := strconv.Itoa(len(s.els))
	switch s.kind {
	case SectionLinks:
		return n + " Linked References"
	case SectionUnlinked:
		return n + " Unlinked References"
	}
	return "Recently Visited"
}

// SetElements 使投影节点与 els 一致，仍在列表中的元素保留原有节点。元素列表未变化时什么也不做。
func (s *Section) SetElements(els []*element.Element) {
	if sameElements(s.els, els) {
		return
	}
	s.els = append(s.els[:0:0], els...)
	s.root.syncNodes(s.w, s.els, true)
	s.header = nil
	s.w.SetSelfVisible(len(s.els) > 0)
	s.w.InvalidateLayout()
	s.w.InvalidateRendering()
	s.root.log.Debug("section refreshed", zap.Stringer("section", s.kind), zap.Int("elements", len(s.els)))
}

func sameElements(a, b []*element.Element) bool {
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

// SetCollapsed 折叠或展开区块内容。
func (s *Section) SetCollapsed(c bool) {
	if s.collapsed == c {
		return
	}
	s.collapsed = c
	if c && s.root.focused != nil && s.root.focused.w.IsDescendantOf(s.w) {
		s.root.Focus(s.root.node, s.root.node.Len())
	}
	s.w.InvalidateLayout()
	s.w.InvalidateRendering()
}

func (s *Section) headerStyle() text.Style {
	o := s.root.opts
	return text.Style{
		Font:  paint.Font{Family: o.FontFamily, Size: o.FontSize, Bold: true},
		Color: paint.Secondary,
		Paragraph: text.ParagraphStyle{
			LineHeightMultiple: o.LineHeightMultiple,
			SpacingBefore:      o.SpacingBefore + o.FontSize,
			SpacingAfter:       o.SpacingAfter,
		},
	}
}

func (s *Section) headerFrame(width float64) *text.Frame {
	if width <= 0 {
		return nil
	}
	if s.header != nil && s.headerWidth == width {
		return s.header
	}
	str := text.StyledString{Runs: []text.Run{{Text: s.Title(), Style: s.headerStyle()}}}
	f, err := s.root.engine.Layout(str, width)
	if err != nil {
		s.root.log.Debug("section header layout failed", zap.Error(err))
		f = nil
	}
	s.header, s.headerWidth = f, width
	return f
}

func (s *Section) ContentSize(_ *widget.Widget, width float64) geom.Size {
	f := s.headerFrame(width)
	if f == nil {
		return geom.Size{Width: width}
	}
	return geom.Size{Width: width, Height: f.Size.Height}
}

func (s *Section) ChildrenShown(*widget.Widget) bool { return !s.collapsed }

func (s *Section) ChildInset(*widget.Widget) geom.Insets {
	return geom.Insets{Bottom: s.root.opts.SpacingAfter}
}

func (s *Section) Draw(w *widget.Widget, p paint.Painter, origin geom.Point) {
	f := s.headerFrame(w.AvailableWidth())
	if f == nil {
		return
	}
	f.Draw(p, origin)
	if len(f.Lines) > 0 {
		y := origin.Y + f.Size.Height
		p.StrokeLine(geom.Pt(origin.X, y), geom.Pt(origin.X+w.AvailableWidth(), y), 0.5, paint.Secondary)
	}
}

func (s *Section) Describe(*widget.Widget) string { return s.kind.String() }

func (s *Section) MouseDown(_ *widget.Widget, ev widget.MouseEvent) bool {
	s.SetCollapsed(!s.collapsed)
	s.root.tree.LayoutIfNeeded()
	return true
}

func (s *Section) MouseDragged(*widget.Widget, widget.MouseEvent) {}
func (s *Section) MouseUp(*widget.Widget, widget.MouseEvent)      {}
