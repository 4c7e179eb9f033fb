package editor

import (
	"time"

	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/text"
	"github.com/ByLCY/outliner/undo"
	"github.com/ByLCY/outliner/widget"
	"go.uber.org/zap"
)

// Root 是一个页面的编辑器根：页面元素作为标题节点，其子元素构成大纲，
// 之后附加间隔与反向链接区块。它持有光标、选区、组字区间、待应用格式、节点选区以及撤销管线。
type Root struct {
	opts   Options
	log    *zap.Logger
	doc    *element.Document
	page   *element.Element
	tree   *widget.Tree
	engine *text.Engine
	node   *TextNode
	undo   undo.Manager
	clock  func() time.Time

	focused  *TextNode
	cursor   int
	anchor   int
	selected Range
	marked   Range
	active   element.Style
	nodeSel  *NodeSelection
	goalX    float64
	hasGoalX bool

	lastCommand Command

	journal      bool
	middleSpacer *Spacer
	bottomSpacer *Spacer
	links        *Section
	unlinked     *Section
	history      *Section
	visited      []*element.Element

	caretOn   bool
	lastBlink time.Time

	cancelSettled func()

	// OnOpenLink 在 ⌘ 点击网页链接时调用。
	OnOpenLink func(url string)
	// OnOpenInternalLink 在 ⌘ 点击内部链接时调用。
	OnOpenInternalLink func(title string)
}

// RootOption 配置 Root。
type RootOption func(*Root)

// WithOptions 设置排版与交互参数。
func WithOptions(o Options) RootOption { return func(r *Root) { r.opts = o } }

// WithUndoManager 使用宿主提供的撤销管理器。
func WithUndoManager(m undo.Manager) RootOption { return func(r *Root) { r.undo = m } }

// WithLogger 注入日志。
func WithLogger(log *zap.Logger) RootOption {
	return func(r *Root) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock 替换时钟，用于光标闪烁。
func WithClock(clock func() time.Time) RootOption { return func(r *Root) { r.clock = clock } }

// AsJournal 标记为日记类页面：不附加间隔与反向链接区块。
func AsJournal() RootOption { return func(r *Root) { r.journal = true } }

// NewRoot 为 doc 中的 page 创建编辑器；page 为 nil 时使用文档根元素。
func NewRoot(doc *element.Document, page *element.Element, ts text.Typesetter, opts ...RootOption) *Root {
	if page == nil {
		page = doc.Root()
	}
	r := &Root{
		opts:   DefaultOptions(),
		log:    zap.NewNop(),
		doc:    doc,
		page:   page,
		engine: text.NewEngine(ts),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.undo == nil {
		r.undo = undo.NewStack(0)
	}
	r.node = newTextNode(r, page, false)
	r.node.title = true
	r.tree = widget.New(r.node, r.log)
	r.node.w = r.tree.Root()
	for i, c := range page.Children() {
		r.build(r.node.w, i, c, false)
	}
	if !r.journal {
		r.middleSpacer = r.addSpacer(false)
		r.links = r.addSection(SectionLinks)
		r.unlinked = r.addSection(SectionUnlinked)
		r.history = r.addSection(SectionHistory)
		r.bottomSpacer = r.addSpacer(true)
		r.cancelSettled = doc.OnSettled(r.RefreshSections)
		r.RefreshSections()
	}
	first := r.node
	if c := r.node.w.Child(0); c != nil {
		if tn, ok := c.Content().(*TextNode); ok {
			first = tn
		}
	}
	r.lastBlink = r.clock()
	r.Focus(first, 0)
	return r
}

// build 为 el 及其子树创建 TextNode 并插入到 parent 的位置 index。
func (r *Root) build(parent *widget.Widget, index int, el *element.Element, proxy bool) *TextNode {
	n := newTextNode(r, el, proxy)
	n.w = r.tree.Add(parent, index, n)
	for i, c := range el.Children() {
		r.build(n.w, i, c, proxy)
	}
	return n
}

// syncNodes 使 parent 的子节点依次显示 desired，已有的节点原样保留并移动到位，
// 多余的移除，缺少的新建。
func (r *Root) syncNodes(parent *widget.Widget, desired []*element.Element, proxy bool) {
	tree := r.tree
	want := make(map[*element.Element]bool, len(desired))
	for _, el := range desired {
		want[el] = true
	}
	existing := map[*element.Element]*widget.Widget{}
	for _, c := range parent.Children() {
		tn, ok := c.Content().(*TextNode)
		if !ok {
			continue
		}
		if !want[tn.el] || existing[tn.el] != nil {
			tree.Remove(c)
			continue
		}
		existing[tn.el] = c
	}
	for i, el := range desired {
		if w, ok := existing[el]; ok {
			if w.IndexInParent() != i {
				if err := tree.Move(w, parent, i); err != nil {
					r.log.Error("sync children failed", zap.Error(err))
				}
			}
			continue
		}
		r.build(parent, i, el, proxy)
	}
	parent.InvalidateLayout()
}

func (r *Root) Tree() *widget.Tree              { return r.tree }
func (r *Root) Document() *element.Document     { return r.doc }
func (r *Root) Page() *element.Element          { return r.page }
func (r *Root) TitleNode() *TextNode            { return r.node }
func (r *Root) Focused() *TextNode              { return r.focused }
func (r *Root) CursorPosition() int             { return r.cursor }
func (r *Root) SelectedTextRange() Range        { return r.selected }
func (r *Root) MarkedTextRange() Range          { return r.marked }
func (r *Root) ActiveAttributes() element.Style { return r.active }
func (r *Root) NodeSelection() *NodeSelection   { return r.nodeSel }
func (r *Root) UndoManager() undo.Manager       { return r.undo }
func (r *Root) Options() Options                { return r.opts }

// Sections 返回附加的区块，日记页面返回 nil。
func (r *Root) Sections() []*Section {
	if r.journal {
		return nil
	}
	return []*Section{r.links, r.unlinked, r.history}
}

// NodeFor 返回显示 el 的非投影 TextNode。
func (r *Root) NodeFor(el *element.Element) *TextNode {
	var found *TextNode
	r.tree.Walk(r.tree.Root(), func(w *widget.Widget) bool {
		if tn, ok := w.Content().(*TextNode); ok && tn.el == el && !tn.proxy {
			found = tn
			return false
		}
		return true
	})
	return found
}

// TextNodes 返回先序排列的全部非投影 TextNode（包括标题）。
func (r *Root) TextNodes() []*TextNode {
	var out []*TextNode
	r.tree.Walk(r.tree.Root(), func(w *widget.Widget) bool {
		if tn, ok := w.Content().(*TextNode); ok && !tn.proxy {
			out = append(out, tn)
		}
		return true
	})
	return out
}

// Layout 以 width 布局整棵树。
func (r *Root) Layout(width float64) geom.Size { return r.tree.Layout(width) }

// Draw 布局（如有需要）并绘制整棵树。
func (r *Root) Draw(p paint.Painter) {
	r.tree.LayoutIfNeeded()
	r.tree.Draw(p)
}

// SetCursorPosition 设置光标位置，限制在 [0, 文本长度]。没有范围选区时选区折叠到光标处；
// 总是根据光标所在 run 重新推导待应用格式。
func (r *Root) SetCursorPosition(i int) {
	if r.focused == nil {
		return
	}
	n := r.focused.Len()
	assertf(r.log, i >= 0 && i <= n, "cursor %d out of range [0,%d]", i, n)
	i = min(max(i, 0), n)
	r.cursor = i
	if r.selected.IsEmpty() {
		r.selected = Range{i, i}
		r.anchor = i
	}
	r.active = r.focused.Text().StyleAt(i).Formatting()
	r.restartBlink()
}

// setSelection 设置文本选区，光标位于 head。
func (r *Root) setSelection(anchor, head int) {
	if r.focused == nil {
		return
	}
	n := r.focused.Len()
	anchor = min(max(anchor, 0), n)
	head = min(max(head, 0), n)
	r.anchor = anchor
	r.selected = Rng(anchor, head)
	r.cursor = head
	r.active = r.focused.Text().StyleAt(head).Formatting()
	r.focused.w.InvalidateRendering()
	r.restartBlink()
}

// collapse 取消范围选区并把光标放在 i。
func (r *Root) collapse(i int) {
	r.selected = Range{}
	r.SetCursorPosition(i)
}

// Focus 切换编辑目标。焦点变化时旧节点与新节点都会重新渲染以去掉临时高亮，节点选区被取消。
func (r *Root) Focus(n *TextNode, cursor int) {
	if n == nil {
		return
	}
	r.CancelNodeSelection()
	if n != r.focused {
		if old := r.focused; old != nil && !old.detached {
			old.invalidate()
		}
		r.focused = n
		r.marked = Range{}
		r.lastCommand = CommandNone
		r.hasGoalX = false
		n.invalidate()
		r.tree.SetFocused(n.w)
	}
	r.collapse(cursor)
	n.w.InvalidateRendering()
}

// CancelNodeSelection 取消节点选区。
func (r *Root) CancelNodeSelection() bool {
	if r.nodeSel == nil {
		return false
	}
	for _, n := range r.nodeSel.Nodes() {
		n.w.InvalidateRendering()
	}
	r.nodeSel = nil
	return true
}

// SelectNodes 以 start 到 end 的节点区间建立节点选区。
func (r *Root) SelectNodes(start, end *TextNode) *NodeSelection {
	r.CancelNodeSelection()
	ns := &NodeSelection{root: r, set: map[*TextNode]bool{}}
	ns.SelectRange(start, end)
	r.nodeSel = ns
	r.selected = Range{r.cursor, r.cursor}
	if r.focused != nil {
		r.focused.w.InvalidateRendering()
	}
	return ns
}

// settleFocus 在结构变化之后，把被移除的焦点节点换成仍显示同一元素的节点。
func (r *Root) settleFocus() {
	if r.focused == nil || !r.focused.detached {
		return
	}
	cursor, sel, marked := r.cursor, r.selected, r.marked
	var n *TextNode
	if r.focused.proxy {
		n = r.proxyFor(r.focused.el)
	}
	if n == nil {
		n = r.NodeFor(r.focused.el)
	}
	if n == nil {
		n = r.node
		cursor, sel, marked = 0, Range{}, Range{}
	}
	r.focused = n
	r.tree.SetFocused(n.w)
	r.selected, r.marked = sel.clamp(n.Len()), marked.clamp(n.Len())
	r.SetCursorPosition(min(cursor, n.Len()))
	n.invalidate()
}

// proxyFor 返回显示 el 的第一个投影节点。
func (r *Root) proxyFor(el *element.Element) *TextNode {
	var found *TextNode
	r.tree.Walk(r.tree.Root(), func(w *widget.Widget) bool {
		if tn, ok := w.Content().(*TextNode); ok && tn.proxy && tn.el == el {
			found = tn
			return false
		}
		return true
	})
	return found
}

// Tick 推进光标闪烁并轮询文档的变更合并，返回是否需要重绘。
func (r *Root) Tick(now time.Time) bool {
	redraw := false
	if r.opts.BlinkInterval > 0 && now.Sub(r.lastBlink) >= r.opts.BlinkInterval {
		r.caretOn = !r.caretOn
		r.lastBlink = now
		if r.focused != nil {
			r.focused.w.InvalidateRendering()
		}
		redraw = true
	}
	if r.doc.Debouncer().Poll(now) {
		redraw = true
	}
	return redraw || r.tree.NeedsDisplay()
}

// CaretVisible 报告光标当前是否处于显示状态。
func (r *Root) CaretVisible() bool { return r.caretOn }

func (r *Root) restartBlink() {
	r.caretOn = true
	r.lastBlink = r.clock()
	if r.focused != nil && r.focused.w != nil {
		r.focused.w.InvalidateRendering()
	}
}

// Visit 记录一次页面访问，显示在浏览历史区块中。
func (r *Root) Visit(page *element.Element) {
	for i, v := range r.visited {
		if v == page {
			r.visited = append(r.visited[:i:i], r.visited[i+1:]...)
			break
		}
	}
	r.visited = append([]*element.Element{page}, r.visited...)
	if len(r.visited) > historyLimit {
		r.visited = r.visited[:historyLimit]
	}
	if r.history != nil {
		r.history.SetElements(r.visitedPages())
	}
}

const historyLimit = 10

func (r *Root) visitedPages() []*element.Element {
	var out []*element.Element
	for _, v := range r.visited {
		if v != r.page && v.Document() == r.doc {
			out = append(out, v)
		}
	}
	return out
}

// RefreshSections 根据文档当前的链接关系刷新反向链接区块。
func (r *Root) RefreshSections() {
	if r.journal {
		return
	}
	title := r.page.Title()
	r.links.SetElements(r.doc.Backlinks(title, r.page))
	r.unlinked.SetElements(r.doc.UnlinkedReferences(title, r.page))
	r.history.SetElements(r.visitedPages())
	r.settleFocus()
}

// Close 取消全部订阅。
func (r *Root) Close() {
	if r.cancelSettled != nil {
		r.cancelSettled()
		r.cancelSettled = nil
	}
	r.tree.Walk(r.tree.Root(), func(w *widget.Widget) bool {
		if d, ok := w.Content().(widget.Detacher); ok {
			d.Detach(w)
		}
		return true
	})
	if s, ok := r.undo.(*undo.Stack); ok {
		s.RemoveAllWithTarget(r)
	}
}
