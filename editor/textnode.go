package editor

import (
	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/text"
	"github.com/ByLCY/outliner/widget"
	"go.uber.org/zap"
)

// TextNode 把一个文档元素绑定到一个 widget。proxy 节点是同一元素在其他位置（例如反向链接区）的投影，
// 对它的文本修改直接写回原元素。
type TextNode struct {
	root  *Root
	w     *widget.Widget
	el    *element.Element
	proxy bool
	title bool

	cancel   func()
	detached bool

	// 缓存，在元素变化或焦点变化时失效
	stale      bool
	styled     text.StyledString
	frame      *text.Frame
	frameWidth float64
}

var (
	_ widget.Content      = (*TextNode)(nil)
	_ widget.Container    = (*TextNode)(nil)
	_ widget.Drawer       = (*TextNode)(nil)
	_ widget.MouseHandler = (*TextNode)(nil)
	_ widget.Detacher     = (*TextNode)(nil)
	_ widget.Describer    = (*TextNode)(nil)
)

func newTextNode(r *Root, el *element.Element, proxy bool) *TextNode {
	n := &TextNode{root: r, el: el, proxy: proxy, stale: true}
	n.cancel = el.Subscribe(n.elementChanged)
	return n
}

func (n *TextNode) Element() *element.Element { return n.el }
func (n *TextNode) Widget() *widget.Widget    { return n.w }
func (n *TextNode) IsProxy() bool             { return n.proxy }
func (n *TextNode) IsTitle() bool             { return n.title }

// Text 返回元素的富文本。
func (n *TextNode) Text() element.RichText { return n.el.Text() }

// Len 返回文本字符数。
func (n *TextNode) Len() int { return n.el.Text().Len() }

// SetText 替换文本。值未变化时什么也不做：不标记重绘，也不产生变更通知。
func (n *TextNode) SetText(t element.RichText) {
	n.el.SetText(t)
}

func (n *TextNode) elementChanged(ch element.Change) {
	if n.detached {
		return
	}
	switch ch.Kind {
	case element.TextChanged, element.KindChanged:
		n.invalidate()
	case element.OpenChanged:
		n.w.InvalidateLayout()
		n.w.InvalidateRendering()
		if ns := n.root.nodeSel; ns != nil {
			ns.refresh(n)
		}
	case element.ChildrenChanged:
		n.syncChildren()
		n.w.InvalidateRendering()
	}
}

// invalidate 丢弃缓存的排版并标记重新布局与重绘。
func (n *TextNode) invalidate() {
	n.stale = true
	if n.w != nil {
		n.w.InvalidateLayout()
		n.w.InvalidateRendering()
	}
}

// syncChildren 使子 widget 与元素的子元素一致。非文本子节点（间隔、区块）始终排在最后，不受影响。
func (n *TextNode) syncChildren() {
	n.root.syncNodes(n.w, n.el.Children(), n.proxy)
}

func (n *TextNode) gutter() float64 {
	if n.title {
		return 0
	}
	return n.root.opts.Gutter
}

func (n *TextNode) textOrigin() geom.Point { return geom.Pt(n.gutter(), 0) }

func (n *TextNode) styledString() text.StyledString {
	var marked Range
	if n.root.focused == n {
		marked = n.root.marked
	}
	base := n.root.opts.baseStyle(n.el.Kind(), n.title)
	return styledString(n.el.Text(), base, marked)
}

// layoutFrame 返回给定文本宽度下的排版，缓存有效时直接复用。宽度非正时返回 nil。
func (n *TextNode) layoutFrame(width float64) *text.Frame {
	if width <= 0 {
		return nil
	}
	if !n.stale && n.frame != nil && n.frameWidth == width {
		return n.frame
	}
	n.styled = n.styledString()
	f, err := n.root.engine.Layout(n.styled, width)
	if err != nil {
		n.root.log.Debug("layout failed", zap.String("element", n.el.ID()), zap.Error(err))
		f = nil
	}
	n.frame, n.frameWidth, n.stale = f, width, false
	return f
}

// Frame 返回当前宽度下的排版结果，尚未布局时为 nil。
func (n *TextNode) Frame() *text.Frame {
	if n.w == nil {
		return nil
	}
	return n.layoutFrame(n.w.AvailableWidth() - n.gutter())
}

// ContentSize 实现 widget.Content。
func (n *TextNode) ContentSize(w *widget.Widget, width float64) geom.Size {
	f := n.layoutFrame(width - n.gutter())
	if f == nil {
		return geom.Size{Width: width}
	}
	return geom.Size{Width: width, Height: f.Size.Height}
}

func (n *TextNode) ChildrenShown(*widget.Widget) bool { return n.title || n.el.Open() }

func (n *TextNode) ChildInset(*widget.Widget) geom.Insets {
	if n.title {
		return geom.Insets{}
	}
	return geom.Insets{Left: n.root.opts.Indent}
}

func (n *TextNode) Describe(*widget.Widget) string {
	if n.proxy {
		return "proxy: " + n.el.Title()
	}
	return n.el.Title()
}

// Detach 取消对元素的订阅。
func (n *TextNode) Detach(*widget.Widget) {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.detached = true
	if n.root.nodeSel != nil && n.root.nodeSel.Contains(n) {
		n.root.nodeSel.drop(n)
	}
}

// PositionAt 将 widget 坐标中的点映射为字符下标，尚未布局时返回 0。
func (n *TextNode) PositionAt(p geom.Point) int {
	f := n.Frame()
	if f == nil {
		return 0
	}
	return f.IndexAt(p.Sub(n.textOrigin()))
}

// RectAt 返回 index 处字符在 widget 坐标中的矩形，尚未布局时返回零矩形。
func (n *TextNode) RectAt(index int) geom.Rect {
	f := n.Frame()
	if f == nil {
		return geom.Rect{}
	}
	return f.RectAt(index).Offset(n.textOrigin())
}

// OffsetAt 返回 index 处光标在 widget 坐标中的 x。
func (n *TextNode) OffsetAt(index int) float64 {
	f := n.Frame()
	if f == nil {
		return 0
	}
	return f.OffsetAt(index) + n.gutter()
}

// charAt 返回点下方的字符下标，不在任何字符上时返回 -1。
func (n *TextNode) charAt(p geom.Point) int {
	f := n.Frame()
	if f == nil {
		return -1
	}
	i := n.PositionAt(p)
	for _, c := range []int{i, i - 1} {
		if c >= 0 && c < f.Len() && n.RectAt(c).Contains(p) {
			return c
		}
	}
	return -1
}

// LinkAt 返回点下方的网页链接。
func (n *TextNode) LinkAt(p geom.Point) (string, bool) {
	i := n.charAt(p)
	if i < 0 {
		return "", false
	}
	link := n.el.Text().StyleOfChar(i).Link
	return link, link != ""
}

// InternalLinkAt 返回点下方的内部链接目标。
func (n *TextNode) InternalLinkAt(p geom.Point) (string, bool) {
	i := n.charAt(p)
	if i < 0 {
		return "", false
	}
	target := n.el.Text().StyleOfChar(i).InternalLink
	return target, target != ""
}

// parentNode 返回父 TextNode，父节点不是文本节点时返回 nil。
func (n *TextNode) parentNode() *TextNode {
	p := n.w.Parent()
	if p == nil {
		return nil
	}
	tn, _ := p.Content().(*TextNode)
	return tn
}

// Fold 折叠节点。没有子节点时改为折叠父节点并把焦点移到父节点，逐级向上。
func (n *TextNode) Fold() {
	if n.el.ChildCount() > 0 {
		if n.el.Open() {
			n.el.SetOpen(false)
			return
		}
	}
	p := n.parentNode()
	if p == nil || p.title {
		return
	}
	n.root.Focus(p, p.Len())
	p.Fold()
}

// Unfold 展开节点。
func (n *TextNode) Unfold() {
	if n.el.ChildCount() > 0 {
		n.el.SetOpen(true)
	}
}

// Draw 实现 widget.Drawer：节点选区高亮、项目符号、文本选区、文本与光标。
func (n *TextNode) Draw(w *widget.Widget, p paint.Painter, origin geom.Point) {
	r := n.root
	content := w.ContentsFrame().Offset(origin)
	if r.nodeSel != nil && r.nodeSel.Contains(n) {
		p.FillRect(content, paint.Selection)
	}
	f := n.Frame()
	textOrigin := origin.Add(n.textOrigin())
	if !n.title {
		n.drawBullet(p, origin, f)
	}
	if r.focused == n && !r.selected.IsEmpty() && f != nil {
		for _, rect := range f.SelectionRects(r.selected.Start, r.selected.End) {
			p.FillRect(rect.Offset(textOrigin), paint.Selection)
		}
	}
	f.Draw(p, textOrigin)
	if r.focused == n && r.selected.IsEmpty() && r.caretOn && r.nodeSel == nil && f != nil {
		rect := f.RectAt(r.cursor).Offset(textOrigin)
		p.StrokeLine(geom.Pt(rect.X, rect.Y), geom.Pt(rect.X, rect.MaxY()), 1, paint.Black)
	}
}

func (n *TextNode) drawBullet(p paint.Painter, origin geom.Point, f *text.Frame) {
	size := n.root.opts.FontSize * 0.5
	y := origin.Y
	if f != nil && len(f.Lines) > 0 {
		l := f.Lines[0]
		y += l.Rect.Y + l.Rect.Height/2
	}
	rect := geom.R(origin.X+(n.gutter()-size)/2, y-size/2, size, size)
	switch {
	case n.el.Kind() == element.KindQuote:
		x := origin.X + n.gutter()/2
		p.StrokeLine(geom.Pt(x, origin.Y), geom.Pt(x, origin.Y+n.w.ContentsFrame().Height), 2, paint.Secondary)
	case n.el.ChildCount() > 0 && !n.el.Open():
		p.DrawIcon("bullet-closed", rect, nil)
	default:
		p.DrawIcon("bullet", rect, nil)
	}
}
