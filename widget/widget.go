package widget

import (
	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
)

// ID 是 widget 在 Tree 中的稳定编号，0 表示不存在。
type ID int

// Content 描述 widget 自身（不含子节点）的内容。
type Content interface {
	// ContentSize 返回在给定可用宽度下自身内容的理想尺寸。
	ContentSize(w *Widget, width float64) geom.Size
}

// Container 由需要控制子节点排布的内容实现。未实现时子节点总是显示、没有缩进。
type Container interface {
	ChildrenShown(w *Widget) bool
	ChildInset(w *Widget) geom.Insets
}

// Drawer 由需要绘制自身的内容实现。origin 是 widget 的绝对坐标。
type Drawer interface {
	Draw(w *Widget, p paint.Painter, origin geom.Point)
}

// MouseHandler 接收指针事件。MouseDown 返回 true 表示接受该事件。
type MouseHandler interface {
	MouseDown(w *Widget, ev MouseEvent) bool
	MouseDragged(w *Widget, ev MouseEvent)
	MouseUp(w *Widget, ev MouseEvent)
}

// Detacher 在 widget 从树上移除时被调用，用于取消订阅。
type Detacher interface {
	Detach(w *Widget)
}

// Widget 是视图树中的节点。子节点由父节点独占，parent 只是反向引用。
type Widget struct {
	tree     *Tree
	id       ID
	parent   ID
	children []ID
	index    int
	content  Content

	frame          geom.Rect // 父坐标系
	contentsFrame  geom.Rect // 自身坐标系，不含子节点
	availableWidth float64
	idealSize      geom.Size
	selfVisible    bool

	needsLayout    bool
	needsRendering bool
}

func (w *Widget) ID() ID                   { return w.id }
func (w *Widget) Tree() *Tree              { return w.tree }
func (w *Widget) Content() Content         { return w.content }
func (w *Widget) Frame() geom.Rect         { return w.frame }
func (w *Widget) ContentsFrame() geom.Rect { return w.contentsFrame }
func (w *Widget) AvailableWidth() float64  { return w.availableWidth }
func (w *Widget) IdealSize() geom.Size     { return w.idealSize }
func (w *Widget) NeedsLayout() bool        { return w.needsLayout }
func (w *Widget) NeedsRendering() bool     { return w.needsRendering }
func (w *Widget) SelfVisible() bool        { return w.selfVisible }

// Parent 返回父节点，根节点返回 nil。
func (w *Widget) Parent() *Widget { return w.tree.Get(w.parent) }

// IndexInParent 返回在父节点中的位置，根节点返回 -1。
func (w *Widget) IndexInParent() int {
	if w.parent == 0 {
		return -1
	}
	return w.index
}

// ChildCount 返回子节点数量。
func (w *Widget) ChildCount() int { return len(w.children) }

// Child 返回第 i 个子节点，越界时返回 nil。
func (w *Widget) Child(i int) *Widget {
	if i < 0 || i >= len(w.children) {
		return nil
	}
	return w.tree.Get(w.children[i])
}

// Children 返回全部子节点。
func (w *Widget) Children() []*Widget {
	out := make([]*Widget, 0, len(w.children))
	for _, id := range w.children {
		out = append(out, w.tree.nodes[id])
	}
	return out
}

// IsDescendantOf 判断 w 是否位于 o 的子树中（不含 o 本身）。
func (w *Widget) IsDescendantOf(o *Widget) bool {
	for p := w.Parent(); p != nil; p = p.Parent() {
		if p == o {
			return true
		}
	}
	return false
}

// ChildrenShown 报告子节点是否参与布局与绘制。
func (w *Widget) ChildrenShown() bool {
	if c, ok := w.content.(Container); ok {
		return c.ChildrenShown(w)
	}
	return true
}

func (w *Widget) childInset() geom.Insets {
	if c, ok := w.content.(Container); ok {
		return c.ChildInset(w)
	}
	return geom.Insets{}
}

// SetSelfVisible 显示或隐藏 widget 本身。
func (w *Widget) SetSelfVisible(v bool) {
	if w.selfVisible == v {
		return
	}
	w.selfVisible = v
	if p := w.Parent(); p != nil {
		p.InvalidateLayout()
	}
	w.InvalidateLayout()
}

// Visible 报告 widget 是否可见：自身可见，且每个祖先都可见并展示子节点。
func (w *Widget) Visible() bool {
	if !w.selfVisible {
		return false
	}
	for p := w.Parent(); p != nil; p = p.Parent() {
		if !p.selfVisible || !p.ChildrenShown() {
			return false
		}
	}
	return true
}

// Origin 返回 widget 左上角的绝对坐标。
func (w *Widget) Origin() geom.Point {
	var o geom.Point
	for x := w; x != nil; x = x.Parent() {
		o = o.Add(x.frame.Origin())
	}
	return o
}

// ToLocal 将绝对坐标转换为 widget 自身坐标。
func (w *Widget) ToLocal(p geom.Point) geom.Point { return p.Sub(w.Origin()) }

// Bounds 返回 widget 的绝对矩形。
func (w *Widget) Bounds() geom.Rect {
	o := w.Origin()
	return geom.R(o.X, o.Y, w.frame.Width, w.frame.Height)
}

// InvalidateLayout 标记需要重新布局并向上传播；已标记时直接返回。
func (w *Widget) InvalidateLayout() {
	for x := w; x != nil && !x.needsLayout; x = x.Parent() {
		x.needsLayout = true
	}
}

// InvalidateRendering 标记需要重绘，不向上传播。
func (w *Widget) InvalidateRendering() {
	w.needsRendering = true
}

// SetLayout 设置 frame 并对子树执行一次完整的布局：先向下推送宽度，再向上汇总理想尺寸，最后放置子节点。
// frame 变化时标记重绘。
func (w *Widget) SetLayout(frame geom.Rect) {
	w.needsLayout = true
	w.tree.pushWidth(w, frame.Width)
	w.tree.pullSize(w)
	w.tree.place(w, frame)
}

// NodeAt 返回包含点 p 的最深可见 widget。p 位于 w 的父坐标系。
// 子节点按逆序检查；落在自身范围但不在任何子节点内时返回 w；否则返回 nil。
func (w *Widget) NodeAt(p geom.Point) *Widget {
	if !w.selfVisible || !w.frame.Contains(p) {
		return nil
	}
	local := p.Sub(w.frame.Origin())
	if w.ChildrenShown() {
		for i := len(w.children) - 1; i >= 0; i-- {
			if hit := w.tree.nodes[w.children[i]].NodeAt(local); hit != nil {
				return hit
			}
		}
	}
	return w
}

// NextVisible 按先序遍历返回下一个可见 widget，到达末尾时返回 nil。
func (w *Widget) NextVisible() *Widget {
	if w.selfVisible && w.ChildrenShown() {
		for _, id := range w.children {
			if c := w.tree.nodes[id]; c.selfVisible {
				return c
			}
		}
	}
	for x := w; x != nil; x = x.Parent() {
		p := x.Parent()
		if p == nil {
			return nil
		}
		for i := x.index + 1; i < len(p.children); i++ {
			if s := w.tree.nodes[p.children[i]]; s.selfVisible {
				return s
			}
		}
	}
	return nil
}

// PreviousVisible 返回先序遍历中的上一个可见 widget：前一个兄弟的最深最后可见后代，否则父节点。
func (w *Widget) PreviousVisible() *Widget {
	p := w.Parent()
	if p == nil {
		return nil
	}
	for i := w.index - 1; i >= 0; i-- {
		if s := w.tree.nodes[p.children[i]]; s.selfVisible {
			return s.lastVisibleDescendant()
		}
	}
	return p
}

func (w *Widget) lastVisibleDescendant() *Widget {
	x := w
	for x.ChildrenShown() {
		var last *Widget
		for i := len(x.children) - 1; i >= 0; i-- {
			if c := w.tree.nodes[x.children[i]]; c.selfVisible {
				last = c
				break
			}
		}
		if last == nil {
			break
		}
		x = last
	}
	return x
}
