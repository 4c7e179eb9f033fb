package widget

import (
	"fmt"

	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
	"go.uber.org/zap"
)

// Tree 是 widget 的 arena：节点以稳定 ID 存放，父子关系只记录 ID。
type Tree struct {
	nodes  map[ID]*Widget
	root   ID
	nextID ID

	focused  ID
	tracking bool
	log      *zap.Logger
}

// New 以 root 内容创建一棵树。
func New(root Content, log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tree{nodes: map[ID]*Widget{}, log: log}
	t.root = t.alloc(root).id
	return t
}

func (t *Tree) alloc(c Content) *Widget {
	t.nextID++
	w := &Widget{
		tree:           t,
		id:             t.nextID,
		content:        c,
		selfVisible:    true,
		needsLayout:    true,
		needsRendering: true,
	}
	t.nodes[w.id] = w
	return w
}

// Root 返回根节点。
func (t *Tree) Root() *Widget { return t.nodes[t.root] }

// Get 按 ID 查找节点，不存在时返回 nil。
func (t *Tree) Get(id ID) *Widget {
	if id == 0 {
		return nil
	}
	return t.nodes[id]
}

// Len 返回节点数量。
func (t *Tree) Len() int { return len(t.nodes) }

// Logger 返回树使用的日志。
func (t *Tree) Logger() *zap.Logger { return t.log }

// Add 在 parent 的位置 index 插入一个新节点；index 越界（包括负数）时追加到末尾。
func (t *Tree) Add(parent *Widget, index int, c Content) *Widget {
	w := t.alloc(c)
	t.attach(parent, index, w)
	return w
}

func (t *Tree) attach(parent *Widget, index int, w *Widget) {
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = append(parent.children, 0)
	copy(parent.children[index+1:], parent.children[index:])
	parent.children[index] = w.id
	w.parent = parent.id
	parent.reindex()
	parent.InvalidateLayout()
	w.InvalidateLayout()
}

func (w *Widget) reindex() {
	for i, id := range w.children {
		w.tree.nodes[id].index = i
	}
}

// Move 把 w 移动到 parent 的位置 index，index 以移除 w 之后的子节点序列为准。
func (t *Tree) Move(w, parent *Widget, index int) error {
	if w == nil || parent == nil {
		return fmt.Errorf("widget: 移动的节点为空")
	}
	if w == parent || parent.IsDescendantOf(w) {
		return fmt.Errorf("widget: 不能把节点 %d 移动到自身的子树中", w.id)
	}
	if w.id == t.root {
		return fmt.Errorf("widget: 不能移动根节点")
	}
	t.unlink(w)
	t.attach(parent, index, w)
	return nil
}

func (t *Tree) unlink(w *Widget) {
	p := w.Parent()
	if p == nil {
		return
	}
	i := w.index
	p.children = append(p.children[:i:i], p.children[i+1:]...)
	p.reindex()
	p.InvalidateLayout()
	w.parent = 0
}

// Remove 从树上移除 w 的整棵子树，并通知实现了 Detacher 的内容。
func (t *Tree) Remove(w *Widget) {
	if w == nil || w.id == t.root || t.nodes[w.id] != w {
		return
	}
	t.unlink(w)
	t.release(w)
}

func (t *Tree) release(w *Widget) {
	for _, id := range w.children {
		t.release(t.nodes[id])
	}
	if d, ok := w.content.(Detacher); ok {
		d.Detach(w)
	}
	if t.focused == w.id {
		t.focused = 0
		t.tracking = false
	}
	delete(t.nodes, w.id)
	w.children = nil
}

// Walk 先序遍历 w 的子树（包含隐藏节点），fn 返回 false 时停止。
func (t *Tree) Walk(w *Widget, fn func(*Widget) bool) bool {
	if !fn(w) {
		return false
	}
	for _, id := range w.children {
		if !t.Walk(t.nodes[id], fn) {
			return false
		}
	}
	return true
}

// Focused 返回当前焦点节点。
func (t *Tree) Focused() *Widget { return t.Get(t.focused) }

// SetFocused 设置焦点节点，nil 表示清除。
func (t *Tree) SetFocused(w *Widget) {
	if w == nil {
		t.focused = 0
		return
	}
	t.focused = w.id
}

// Layout 以 width 对整棵树布局，返回根节点尺寸。只有被标记的路径会被重新计算。
func (t *Tree) Layout(width float64) geom.Size {
	root := t.Root()
	t.pushWidth(root, width)
	size := t.pullSize(root)
	t.place(root, geom.R(0, 0, width, size.Height))
	return size
}

// LayoutIfNeeded 仅在根节点被标记时重新布局。
func (t *Tree) LayoutIfNeeded() bool {
	root := t.Root()
	if !root.needsLayout {
		return false
	}
	t.Layout(root.availableWidth)
	return true
}

// pushWidth 自上而下推送可用宽度。宽度未变且未被标记的子树会被跳过。
func (t *Tree) pushWidth(w *Widget, width float64) {
	if width != w.availableWidth {
		w.availableWidth = width
		w.needsLayout = true
		w.InvalidateRendering()
	}
	if !w.needsLayout || !w.ChildrenShown() {
		return
	}
	in := w.childInset()
	cw := max(width-in.Left-in.Right, 0)
	for _, id := range w.children {
		if c := t.nodes[id]; c.selfVisible {
			t.pushWidth(c, cw)
		}
	}
}

// pullSize 自下而上汇总理想尺寸：自身内容加上展开的可见子节点。
func (t *Tree) pullSize(w *Widget) geom.Size {
	if !w.needsLayout {
		return w.idealSize
	}
	var content geom.Size
	if w.content != nil && w.availableWidth > 0 {
		content = w.content.ContentSize(w, w.availableWidth)
	}
	w.contentsFrame = geom.R(0, 0, w.availableWidth, content.Height)
	h := content.Height
	if w.ChildrenShown() {
		in := w.childInset()
		shown := false
		for _, id := range w.children {
			if c := t.nodes[id]; c.selfVisible {
				h += t.pullSize(c).Height
				shown = true
			}
		}
		if shown {
			h += in.Top + in.Bottom
		}
	}
	w.idealSize = geom.Size{Width: w.availableWidth, Height: h}
	return w.idealSize
}

// place 设置 frame 并放置子节点。
func (t *Tree) place(w *Widget, frame geom.Rect) {
	if frame != w.frame {
		w.frame = frame
		w.InvalidateRendering()
	}
	if !w.needsLayout {
		return
	}
	w.needsLayout = false
	if !w.ChildrenShown() {
		return
	}
	in := w.childInset()
	y := w.contentsFrame.Height + in.Top
	for _, id := range w.children {
		c := t.nodes[id]
		if !c.selfVisible {
			continue
		}
		t.place(c, geom.R(in.Left, y, c.availableWidth, c.idealSize.Height))
		y += c.idealSize.Height
	}
}

// NeedsDisplay 报告是否有可见节点需要重绘。
func (t *Tree) NeedsDisplay() bool {
	dirty := false
	t.walkVisible(t.Root(), geom.Point{}, func(w *Widget, _ geom.Point) bool {
		dirty = w.needsRendering
		return !dirty
	})
	return dirty
}

// Draw 按树序绘制所有可见节点，并清除重绘标记。
func (t *Tree) Draw(p paint.Painter) {
	t.walkVisible(t.Root(), geom.Point{}, func(w *Widget, origin geom.Point) bool {
		if d, ok := w.content.(Drawer); ok {
			d.Draw(w, p, origin)
		}
		w.needsRendering = false
		return true
	})
}

func (t *Tree) walkVisible(w *Widget, parentOrigin geom.Point, fn func(*Widget, geom.Point) bool) bool {
	if !w.selfVisible {
		return true
	}
	origin := parentOrigin.Add(w.frame.Origin())
	if !fn(w, origin) {
		return false
	}
	if !w.ChildrenShown() {
		return true
	}
	for _, id := range w.children {
		if !t.walkVisible(t.nodes[id], origin, fn) {
			return false
		}
	}
	return true
}

// NodeAt 返回绝对坐标 p 处最深的可见节点。
func (t *Tree) NodeAt(p geom.Point) *Widget {
	if root := t.Root(); root != nil {
		return root.NodeAt(p)
	}
	return nil
}
