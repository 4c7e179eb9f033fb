package editor

import (
	"math"
	"testing"
	"time"

	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/text/texttest"
	"github.com/ByLCY/outliner/undo"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fixture:
//
//	Page
//	  a "hello world"
//	  b "foo"
//	  c "bar"
//	    c1 "child"
//	Other
//	  o1 "see [[Page]]"
//	  o2 "page without link"
type fixture struct {
	doc  *element.Document
	root *Root
	els  map[string]*element.Element
	now  time.Time
}

func newFixture(t *testing.T, opts ...RootOption) *fixture {
	t.Helper()
	f := &fixture{els: map[string]*element.Element{}, now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mk := func(name, s string, parent *element.Element) *element.Element {
		el := element.New(element.Plain(s))
		if parent != nil {
			if err := parent.AppendChild(el); err != nil {
				t.Fatalf("构建元素 %s 失败: %v", name, err)
			}
		}
		f.els[name] = el
		return el
	}
	docRoot := mk("root", "", nil)
	page := mk("page", "Page", docRoot)
	mk("a", "hello world", page)
	mk("b", "foo", page)
	c := mk("c", "bar", page)
	mk("c1", "child", c)
	other := mk("other", "Other", docRoot)
	o1 := mk("o1", "see ", other)
	o1.SetText(element.RichText{{Text: "see "}, {Text: "Page", Style: element.Style{InternalLink: "Page"}}})
	mk("o2", "page without link", other)

	clock := func() time.Time { return f.now }
	f.doc = element.NewDocument(docRoot, element.WithClock(clock))
	opts = append([]RootOption{WithClock(clock)}, opts...)
	f.root = NewRoot(f.doc, page, texttest.New(), opts...)
	f.root.Layout(400)
	return f
}

func (f *fixture) node(t *testing.T, name string) *TextNode {
	t.Helper()
	n := f.root.NodeFor(f.els[name])
	if n == nil {
		t.Fatalf("元素 %s 没有对应的节点", name)
	}
	return n
}

func (f *fixture) stack(t *testing.T) *undo.Stack {
	t.Helper()
	s, ok := f.root.UndoManager().(*undo.Stack)
	if !ok {
		t.Fatalf("默认撤销管理器应为 *undo.Stack")
	}
	return s
}

func titles(els []*element.Element) []string {
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.Title())
	}
	return out
}

func TestNewRootFocusesFirstChild(t *testing.T) {
	f := newFixture(t)
	if f.root.Focused() != f.node(t, "a") {
		t.Fatalf("初始焦点应在第一个子节点")
	}
	if f.root.CursorPosition() != 0 {
		t.Fatalf("初始光标应为 0，实际 %d", f.root.CursorPosition())
	}
	if got := len(f.root.TextNodes()); got != 5 {
		t.Fatalf("期望 5 个文本节点（含标题），实际 %d", got)
	}
}

func TestSetTextSameValueIsNoop(t *testing.T) {
	f := newFixture(t)
	n := f.node(t, "b")
	f.root.Draw(paint.Nop{})
	if n.Widget().NeedsRendering() {
		t.Fatalf("绘制后不应再需要渲染")
	}
	notified := 0
	cancel := n.Element().Subscribe(func(element.Change) { notified++ })
	defer cancel()
	n.SetText(element.Plain("foo"))
	if notified != 0 {
		t.Fatalf("相同文本不应产生通知，实际 %d 次", notified)
	}
	if n.Widget().NeedsRendering() {
		t.Fatalf("相同文本不应标记重绘")
	}
	n.SetText(element.Plain("foo!"))
	if notified != 1 || !n.Widget().NeedsRendering() {
		t.Fatalf("文本变化应通知一次并标记重绘")
	}
}

func TestSetCursorPositionClamps(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.SetCursorPosition(100)
	if r.CursorPosition() != len("hello world") {
		t.Fatalf("光标应限制在文本末尾，实际 %d", r.CursorPosition())
	}
	r.SetCursorPosition(-3)
	if r.CursorPosition() != 0 {
		t.Fatalf("光标应限制在 0，实际 %d", r.CursorPosition())
	}
	if !r.SelectedTextRange().IsEmpty() {
		t.Fatalf("没有选区时应折叠")
	}
}

func TestCursorDerivesActiveAttributes(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	a.SetText(element.RichText{{Text: "hello "}, {Text: "world", Style: element.Style{Strong: true}}})
	f.root.SetCursorPosition(8)
	if !f.root.ActiveAttributes().Strong {
		t.Fatalf("粗体中间的光标应继承粗体")
	}
	f.root.SetCursorPosition(2)
	if f.root.ActiveAttributes().Strong {
		t.Fatalf("普通文本中的光标不应带粗体")
	}
}

func TestNodeSelectionInterval(t *testing.T) {
	f := newFixture(t)
	r := f.root
	a, b, c, c1 := f.node(t, "a"), f.node(t, "b"), f.node(t, "c"), f.node(t, "c1")

	ns := r.SelectNodes(a, c1)
	if ns.Len() != 4 {
		t.Fatalf("a 到 c1 应选中 4 个节点，实际 %d", ns.Len())
	}
	reversed := r.SelectNodes(c1, a)
	if diff := cmp.Diff(titles(nodeElements(ns.Nodes())), titles(nodeElements(reversed.Nodes()))); diff != "" {
		t.Fatalf("反向选择结果不同 (-want +got):\n%s", diff)
	}

	f.els["c"].SetOpen(false)
	r.Layout(400)
	ns = r.SelectNodes(a, b)
	if ns.Contains(c) || ns.Len() != 2 {
		t.Fatalf("a 到 b 不应包含 c")
	}
	if !ns.ExtendDown() {
		t.Fatalf("应能向下扩展")
	}
	if !ns.Contains(c) || !ns.Contains(c1) {
		t.Fatalf("扩展到折叠节点时应包含其整棵子树")
	}
	if ns.End() != c {
		t.Fatalf("扩展后 end 应为 c")
	}
	if ns.ExtendDown() {
		t.Fatalf("已经是最后一个节点，不应继续扩展")
	}
	ns.ExtendUp()
	if ns.Contains(c) || ns.Contains(c1) || ns.Len() != 2 {
		t.Fatalf("向上收缩后应移除 c 的子树，实际 %d 个", ns.Len())
	}
	if diff := cmp.Diff([]string{"hello world", "foo"}, titles(nodeElements(ns.Roots()))); diff != "" {
		t.Fatalf("Roots 不符 (-want +got):\n%s", diff)
	}
}

func nodeElements(ns []*TextNode) []*element.Element {
	out := make([]*element.Element, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Element())
	}
	return out
}

func TestNodeSelectionRootsSkipsSelectedDescendants(t *testing.T) {
	f := newFixture(t)
	ns := f.root.SelectNodes(f.node(t, "b"), f.node(t, "c1"))
	if diff := cmp.Diff([]string{"foo", "bar"}, titles(nodeElements(ns.Roots()))); diff != "" {
		t.Fatalf("Roots 不符 (-want +got):\n%s", diff)
	}
}

func TestNodeSelectionUnreachableEndIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFixture(t, WithLogger(zap.New(core)))
	links := f.root.Sections()[0]
	if links.Widget().ChildCount() != 1 {
		t.Fatalf("反向链接区块应有 1 个投影节点")
	}
	proxy := links.Widget().Child(0).Content().(*TextNode)
	ns := f.root.SelectNodes(f.node(t, "a"), proxy)
	if logs.FilterMessage("node selection: end node is unreachable").Len() != 1 {
		t.Fatalf("无法到达 end 时应记录一次错误")
	}
	if ns.Contains(proxy) {
		t.Fatalf("投影节点不应被选中")
	}
	if !ns.Contains(f.node(t, "c1")) {
		t.Fatalf("应保留已经收集的成员")
	}
}

func TestSplitNode(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "a"), 5)
	if !r.Do(InsertNewline) {
		t.Fatalf("拆分应成功")
	}
	page := f.els["page"]
	if diff := cmp.Diff([]string{"hello", " world", "foo", "bar"}, titles(page.Children())); diff != "" {
		t.Fatalf("拆分结果不符 (-want +got):\n%s", diff)
	}
	if r.Focused().Element() != page.Child(1) || r.CursorPosition() != 0 {
		t.Fatalf("焦点应在新节点开头")
	}
	if !r.Undo() {
		t.Fatalf("应能撤销拆分")
	}
	if diff := cmp.Diff([]string{"hello world", "foo", "bar"}, titles(page.Children())); diff != "" {
		t.Fatalf("撤销后结构不符 (-want +got):\n%s", diff)
	}
	if r.Focused().Element() != f.els["a"] || r.CursorPosition() != 5 {
		t.Fatalf("撤销后焦点应回到 a 的位置 5")
	}
}

func TestSplitMovesChildrenToNewSibling(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "c"), 1)
	r.Do(InsertNewline)
	c := f.els["c"]
	if c.Title() != "b" || c.ChildCount() != 0 {
		t.Fatalf("原节点应保留光标前的文本且没有子元素")
	}
	next := f.els["page"].Child(3)
	if next.Title() != "ar" || next.Child(0) != f.els["c1"] {
		t.Fatalf("新节点应得到光标后的文本与原节点的子元素")
	}
}

func TestDeleteBackwardMerges(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "c"), 0)
	if !r.Do(DeleteBackward) {
		t.Fatalf("合并应成功")
	}
	b := f.els["b"]
	if b.Title() != "foobar" {
		t.Fatalf("合并后文本应为 foobar，实际 %q", b.Title())
	}
	if r.Focused().Element() != b || r.CursorPosition() != 3 {
		t.Fatalf("光标应在合并点 3，实际 %d", r.CursorPosition())
	}
	if b.Child(0) != f.els["c1"] {
		t.Fatalf("被合并节点的子元素应移到 b 下")
	}
	if f.els["page"].ChildCount() != 2 {
		t.Fatalf("被合并节点应被删除")
	}

	r.Undo()
	if b.Title() != "foo" || f.els["c"].Parent() != f.els["page"] || f.els["c1"].Parent() != f.els["c"] {
		t.Fatalf("撤销后应恢复原结构")
	}
	if r.Focused().Element() != f.els["c"] || r.CursorPosition() != 0 {
		t.Fatalf("撤销后焦点应回到 c 开头")
	}
	r.Redo()
	if b.Title() != "foobar" || f.els["page"].ChildCount() != 2 {
		t.Fatalf("重做后应再次合并")
	}
}

func TestDeleteBackwardAtTitleStartIsNoop(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(r.TitleNode(), 0)
	if r.Do(DeleteBackward) {
		t.Fatalf("标题开头删除不应产生变化")
	}
	if f.els["page"].Title() != "Page" {
		t.Fatalf("标题不应变化")
	}
}

func TestIndentOutdent(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "b"), 2)
	r.Do(IndentNode)
	a, b := f.els["a"], f.els["b"]
	if b.Parent() != a || !a.Open() {
		t.Fatalf("缩进后 b 应成为 a 的子元素且 a 展开")
	}
	if r.Focused().Element() != b || r.CursorPosition() != 2 {
		t.Fatalf("缩进后焦点与光标应保持")
	}
	bw, aw := f.node(t, "b").Widget(), f.node(t, "a").Widget()
	if bw.Parent() != aw {
		t.Fatalf("缩进后 b 的部件应挂在 a 的部件下")
	}
	indent := r.Options().Indent
	if got, want := bw.AvailableWidth(), aw.AvailableWidth()-indent; got != want {
		t.Fatalf("缩进后 b 的可用宽度应为 %v，实际 %v", want, got)
	}
	if bw.Frame().X != indent {
		t.Fatalf("缩进后 b 应向右偏移 %v，实际 %v", indent, bw.Frame().X)
	}
	r.Do(OutdentNode)
	if b.Parent() != f.els["page"] || b.IndexInParent() != 1 {
		t.Fatalf("反缩进后 b 应回到页面第 2 个位置")
	}
	r.Do(OutdentNode)
	if b.Parent() != f.els["page"] {
		t.Fatalf("顶层节点反缩进不应做任何事")
	}
	r.Focus(f.node(t, "a"), 0)
	undos := f.stack(t).UndoCount()
	if r.Do(IndentNode) {
		t.Fatalf("第一个子节点不能缩进")
	}
	if f.stack(t).UndoCount() != undos {
		t.Fatalf("没有效果的缩进不应记录撤销项")
	}
}

func TestNoopCommandsKeepUndoHistory(t *testing.T) {
	f := newFixture(t)
	r := f.root
	s := f.stack(t)
	r.SetCursorPosition(5)
	r.InsertText(",")
	r.Undo()
	if s.UndoCount() != 0 || s.RedoCount() != 1 {
		t.Fatalf("撤销后应有 1 个重做项，实际 undo=%d redo=%d", s.UndoCount(), s.RedoCount())
	}
	r.Focus(f.node(t, "a"), 0)
	if r.Do(IndentNode) {
		t.Fatalf("第一个子节点不能缩进")
	}
	r.Focus(r.TitleNode(), 0)
	if r.Do(DeleteBackward) {
		t.Fatalf("标题开头删除不应产生变化")
	}
	if s.UndoCount() != 0 || s.RedoCount() != 1 {
		t.Fatalf("无效命令不应改变撤销历史，实际 undo=%d redo=%d", s.UndoCount(), s.RedoCount())
	}
	if !r.Redo() || f.els["a"].Title() != "hello, world" {
		t.Fatalf("无效命令之后仍应可以重做，实际 %q", f.els["a"].Title())
	}
}

func TestMoveNode(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "b"), 0)
	r.Do(MoveNodeUp)
	if diff := cmp.Diff([]string{"foo", "hello world", "bar"}, titles(f.els["page"].Children())); diff != "" {
		t.Fatalf("上移结果不符 (-want +got):\n%s", diff)
	}
	r.Do(MoveNodeDown)
	r.Do(MoveNodeDown)
	if diff := cmp.Diff([]string{"hello world", "bar", "foo"}, titles(f.els["page"].Children())); diff != "" {
		t.Fatalf("下移结果不符 (-want +got):\n%s", diff)
	}
	if r.Focused().Element() != f.els["b"] {
		t.Fatalf("移动后焦点应保持在 b")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	f := newFixture(t)
	r := f.root
	a := f.els["a"]
	r.SetCursorPosition(5)
	r.InsertText(",")
	if a.Title() != "hello, world" {
		t.Fatalf("插入后文本不符: %q", a.Title())
	}
	r.Undo()
	if a.Title() != "hello world" || r.CursorPosition() != 5 {
		t.Fatalf("撤销后应恢复文本与光标，实际 %q %d", a.Title(), r.CursorPosition())
	}
	r.Redo()
	if a.Title() != "hello, world" || r.CursorPosition() != 6 {
		t.Fatalf("重做后应恢复插入，实际 %q %d", a.Title(), r.CursorPosition())
	}
}

func TestInsertTextCoalesces(t *testing.T) {
	f := newFixture(t)
	r := f.root
	s := f.stack(t)
	r.InsertText("x")
	r.InsertText("y")
	if s.UndoCount() != 1 {
		t.Fatalf("连续输入应合并为 1 个撤销项，实际 %d", s.UndoCount())
	}
	r.Do(MoveLeft)
	r.InsertText("z")
	if s.UndoCount() != 2 {
		t.Fatalf("中间有移动时应产生新的撤销项，实际 %d", s.UndoCount())
	}
	r.Undo()
	if f.els["a"].Title() != "xyhello world" {
		t.Fatalf("撤销应只去掉最后一段输入，实际 %q", f.els["a"].Title())
	}
	r.Undo()
	if f.els["a"].Title() != "hello world" {
		t.Fatalf("再次撤销应恢复原文本，实际 %q", f.els["a"].Title())
	}
}

func TestMoveCommandsDoNotRecordUndo(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Do(MoveRight)
	r.Do(MoveDown)
	r.Do(SelectAll)
	if f.stack(t).UndoCount() != 0 {
		t.Fatalf("移动与选择命令不应记录撤销")
	}
}

func TestToggleStrong(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Do(MoveWordRightAndModifySelection)
	if r.SelectedTextRange() != (Range{0, 5}) {
		t.Fatalf("应选中第一个词，实际 %+v", r.SelectedTextRange())
	}
	r.Do(ToggleStrong)
	a := f.els["a"].Text()
	if !a.AllHave(0, 5, func(s element.Style) bool { return s.Strong }) || a.StyleOfChar(6).Strong {
		t.Fatalf("只有选区应变为粗体")
	}
	r.Do(ToggleStrong)
	if f.els["a"].Text().StyleOfChar(0).Strong {
		t.Fatalf("再次切换应去掉粗体")
	}

	r.Do(MoveToEndOfLine)
	r.Do(ToggleEmphasis)
	r.InsertText("!")
	if !f.els["a"].Text().StyleOfChar(11).Emphasis {
		t.Fatalf("没有选区时切换格式应作用于之后输入的文本")
	}
}

func TestMoveAcrossNodes(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.SetCursorPosition(11)
	r.Do(MoveRight)
	if r.Focused() != f.node(t, "b") || r.CursorPosition() != 0 {
		t.Fatalf("末尾右移应进入下一个节点开头")
	}
	r.Do(MoveLeft)
	if r.Focused() != f.node(t, "a") || r.CursorPosition() != 11 {
		t.Fatalf("开头左移应回到上一个节点末尾")
	}
	r.Do(MoveToEndOfDocument)
	if r.Focused() != f.node(t, "c1") {
		t.Fatalf("文档末尾应是最后一个可见节点")
	}
	r.Do(MoveToBeginningOfDocument)
	if r.Focused() != r.TitleNode() {
		t.Fatalf("文档开头应是标题")
	}
}

func TestMoveDownKeepsGoalColumn(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.SetCursorPosition(2)
	r.Do(MoveDown)
	if r.Focused() != f.node(t, "b") || r.CursorPosition() != 2 {
		t.Fatalf("下移应保持列，实际 %d", r.CursorPosition())
	}
	r.Do(MoveDown)
	r.Do(MoveDown)
	if r.Focused() != f.node(t, "c1") {
		t.Fatalf("应移动到 c1")
	}
}

func TestSelectAllEscalates(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Do(SelectAll)
	if r.SelectedTextRange() != (Range{0, 11}) || r.NodeSelection() != nil {
		t.Fatalf("第一次全选应选中节点文本")
	}
	r.Do(SelectAll)
	ns := r.NodeSelection()
	if ns == nil || ns.Len() != 4 {
		t.Fatalf("第二次全选应选中全部节点")
	}
	r.Do(DeleteBackward)
	if f.els["page"].ChildCount() != 0 {
		t.Fatalf("删除节点选区应删除全部子元素")
	}
	if r.Focused() != r.TitleNode() {
		t.Fatalf("删除全部节点后焦点应回到标题")
	}
	r.Undo()
	if f.els["page"].ChildCount() != 3 {
		t.Fatalf("撤销应恢复全部节点，实际 %d", f.els["page"].ChildCount())
	}
}

func TestNodeSelectionFollowsFolding(t *testing.T) {
	f := newFixture(t)
	r := f.root
	c1 := f.node(t, "c1")
	ns := r.SelectNodes(f.node(t, "a"), f.node(t, "c"))
	if ns.Len() != 3 || ns.Contains(c1) {
		t.Fatalf("展开的 c 不应带上子节点，实际 %d 个", ns.Len())
	}
	f.els["c"].SetOpen(false)
	if ns := r.NodeSelection(); ns == nil || ns.Len() != 4 || !ns.Contains(c1) {
		t.Fatalf("折叠后 c 的整棵子树应被选中")
	}
	f.els["c"].SetOpen(true)
	if ns := r.NodeSelection(); ns == nil || ns.Len() != 3 || ns.Contains(c1) {
		t.Fatalf("重新展开后 c1 应离开选区")
	}
}

func TestToggleFoldUpdatesNodeSelection(t *testing.T) {
	f := newFixture(t)
	r := f.root
	c, c1 := f.node(t, "c"), f.node(t, "c1")
	r.Focus(c, 0)
	r.SelectNodes(f.node(t, "a"), c)
	r.Do(ToggleFold)
	if ns := r.NodeSelection(); f.els["c"].Open() || ns == nil || ns.Len() != 4 || !ns.Contains(c1) {
		t.Fatalf("⌘. 折叠后 c 的子树应被选中")
	}
	r.Do(ToggleFold)
	if ns := r.NodeSelection(); !f.els["c"].Open() || ns == nil || ns.Len() != 3 || ns.Contains(c1) {
		t.Fatalf("⌘. 展开后 c1 应离开选区")
	}
}

func TestFoldingHidesSelectionEnd(t *testing.T) {
	f := newFixture(t)
	r := f.root
	c := f.node(t, "c")
	r.SelectNodes(f.node(t, "b"), f.node(t, "c1"))
	f.els["c"].SetOpen(false)
	ns := r.NodeSelection()
	if ns == nil || ns.End() != c || ns.Len() != 3 {
		t.Fatalf("被折叠隐藏的端点应改为 c")
	}
}

func TestShiftDownStartsNodeSelection(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "b"), 0)
	r.Do(MoveDownAndModifySelection)
	if r.SelectedTextRange() != (Range{0, 3}) {
		t.Fatalf("单行节点内第一次应选到末尾")
	}
	r.Do(MoveDownAndModifySelection)
	ns := r.NodeSelection()
	if ns == nil || !ns.Contains(f.node(t, "b")) || !ns.Contains(f.node(t, "c")) {
		t.Fatalf("在末尾继续扩展应转为节点选区")
	}
	r.Do(MoveLeft)
	if r.NodeSelection() != nil {
		t.Fatalf("非扩展移动应取消节点选区")
	}
}

func TestToggleFoldBubblesToParent(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Focus(f.node(t, "c1"), 0)
	r.Do(ToggleFold)
	if f.els["c"].Open() {
		t.Fatalf("叶子节点折叠应折叠父节点")
	}
	if r.Focused() != f.node(t, "c") {
		t.Fatalf("焦点应移到父节点")
	}
	if f.node(t, "c1").Widget().Visible() {
		t.Fatalf("折叠后子节点不可见")
	}
	r.Do(ToggleFold)
	if !f.els["c"].Open() {
		t.Fatalf("再次切换应展开")
	}
}

func TestLayoutIsMonotonic(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Layout(120)
	a, b := f.node(t, "a"), f.node(t, "b")
	h0, y0 := a.Widget().Frame().Height, b.Widget().Frame().Y
	r.SetCursorPosition(11)
	r.InsertText(" and a much longer tail")
	h1, y1 := a.Widget().Frame().Height, b.Widget().Frame().Y
	if h1 <= h0 {
		t.Fatalf("文本变长后高度应增加: %v -> %v", h0, h1)
	}
	if math.Abs((y1-y0)-(h1-h0)) > 1e-9 {
		t.Fatalf("之后的节点应整体下移 %v，实际 %v", h1-h0, y1-y0)
	}
	prev := -1.0
	for _, n := range r.TextNodes() {
		if n.IsTitle() {
			continue
		}
		y := n.Widget().Origin().Y
		if y <= prev {
			t.Fatalf("节点纵坐标应按文档顺序递增")
		}
		prev = y
	}
}

func TestGeometryQueries(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	gutter := f.root.Options().Gutter
	if got := a.OffsetAt(3); got != gutter+30 {
		t.Fatalf("OffsetAt(3) 应为 %v，实际 %v", gutter+30, got)
	}
	r := a.RectAt(4)
	if r.X != gutter+40 || r.Width != 10 {
		t.Fatalf("RectAt(4) 不符: %+v", r)
	}
	if got := a.PositionAt(geom.Pt(gutter+52, r.Y+1)); got != 5 {
		t.Fatalf("PositionAt 应为 5，实际 %d", got)
	}
	unlaid := newTextNode(f.root, element.New(element.Plain("x")), false)
	if unlaid.PositionAt(geom.Pt(5, 5)) != 0 || unlaid.RectAt(0) != (geom.Rect{}) {
		t.Fatalf("尚未布局时应返回零值")
	}
}

func TestCaretBlinksOnTick(t *testing.T) {
	f := newFixture(t)
	r := f.root
	if !r.CaretVisible() {
		t.Fatalf("编辑后光标应可见")
	}
	f.now = f.now.Add(r.Options().BlinkInterval)
	if !r.Tick(f.now) || r.CaretVisible() {
		t.Fatalf("闪烁间隔后光标应隐藏")
	}
	r.InsertText("a")
	if !r.CaretVisible() {
		t.Fatalf("输入后光标应重新显示")
	}
}

func TestMarkedText(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.SetMarkedText("ni", Range{2, 2})
	if r.MarkedTextRange() != (Range{0, 2}) || r.CursorPosition() != 2 {
		t.Fatalf("组字区间不符: %+v", r.MarkedTextRange())
	}
	r.SetMarkedText("你", Range{1, 1})
	if f.els["a"].Title() != "你hello world" || r.MarkedTextRange() != (Range{0, 1}) {
		t.Fatalf("替换组字文本不符: %q", f.els["a"].Title())
	}
	if f.stack(t).UndoCount() != 1 {
		t.Fatalf("连续组字应合并为一个撤销项")
	}
	r.UnmarkText()
	if !r.MarkedTextRange().IsEmpty() || f.els["a"].Title() != "你hello world" {
		t.Fatalf("确认组字应保留文本")
	}
}

func TestProxyStructuralCommandsAreIgnored(t *testing.T) {
	f := newFixture(t)
	r := f.root
	links := r.Sections()[0]
	if diff := cmp.Diff([]string{"see Page"}, titles(links.Elements())); diff != "" {
		t.Fatalf("反向链接不符 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"page without link"}, titles(r.Sections()[1].Elements())); diff != "" {
		t.Fatalf("未链接引用不符 (-want +got):\n%s", diff)
	}
	proxy := links.Widget().Child(0).Content().(*TextNode)
	if !proxy.IsProxy() {
		t.Fatalf("区块内应是投影节点")
	}
	r.Focus(proxy, 0)
	if r.Do(IndentNode) || r.Do(InsertNewline) {
		t.Fatalf("投影节点上的结构命令应被忽略")
	}
	if f.els["other"].ChildCount() != 2 {
		t.Fatalf("结构不应变化")
	}
	r.InsertText("I ")
	if f.els["o1"].Title() != "I see Page" {
		t.Fatalf("投影节点的文本修改应写回原元素，实际 %q", f.els["o1"].Title())
	}
}

func TestUndoInProxyNode(t *testing.T) {
	f := newFixture(t)
	r := f.root
	o1 := f.els["o1"]
	proxy := r.Sections()[0].Widget().Child(0).Content().(*TextNode)
	r.Focus(proxy, 0)
	r.InsertText("I ")
	if o1.Title() != "I see Page" {
		t.Fatalf("投影节点内输入后文本不符: %q", o1.Title())
	}
	if !r.Undo() || o1.Title() != "see Page" {
		t.Fatalf("撤销应恢复投影元素的文本，实际 %q", o1.Title())
	}
	if r.Focused() != proxy || r.CursorPosition() != 0 {
		t.Fatalf("撤销后焦点应留在投影节点")
	}
	if !r.Redo() || o1.Title() != "I see Page" || r.CursorPosition() != 2 {
		t.Fatalf("重做应恢复输入，实际 %q %d", o1.Title(), r.CursorPosition())
	}
}

func TestUndoAfterProxyIsGone(t *testing.T) {
	f := newFixture(t)
	r := f.root
	o1 := f.els["o1"]
	r.Focus(r.Sections()[0].Widget().Child(0).Content().(*TextNode), 0)
	r.InsertText("I ")
	o1.SetText(element.Plain("gone"))
	f.now = f.now.Add(element.DefaultDebounce)
	r.Tick(f.now)
	if len(r.Sections()[0].Elements()) != 0 {
		t.Fatalf("o1 不再链接后应离开反向链接区")
	}
	if !r.Undo() || o1.Title() != "see Page" {
		t.Fatalf("元素不再显示时撤销仍应恢复文本，实际 %q", o1.Title())
	}
	if r.Focused() != r.TitleNode() {
		t.Fatalf("焦点应留在标题")
	}
}

func TestSectionRefreshKeepsProxyFocus(t *testing.T) {
	f := newFixture(t)
	r := f.root
	proxy := r.Sections()[0].Widget().Child(0).Content().(*TextNode)
	r.Focus(proxy, 3)
	f.els["o2"].SetText(element.RichText{{Text: "now "}, {Text: "Page", Style: element.Style{InternalLink: "Page"}}})
	f.now = f.now.Add(element.DefaultDebounce)
	r.Tick(f.now)
	if len(r.Sections()[0].Elements()) != 2 {
		t.Fatalf("落定后应有 2 条反向链接")
	}
	if r.Focused() != proxy || r.CursorPosition() != 3 {
		t.Fatalf("刷新区块后焦点应留在原投影节点，实际光标 %d", r.CursorPosition())
	}
}

func TestProxyFocusFollowsElementAcrossSections(t *testing.T) {
	f := newFixture(t)
	r := f.root
	o1 := f.els["o1"]
	r.Focus(r.Sections()[0].Widget().Child(0).Content().(*TextNode), 3)
	o1.SetText(element.Plain("see Page"))
	f.now = f.now.Add(element.DefaultDebounce)
	r.Tick(f.now)
	if diff := cmp.Diff([]string{"see Page", "page without link"}, titles(r.Sections()[1].Elements())); diff != "" {
		t.Fatalf("未链接引用不符 (-want +got):\n%s", diff)
	}
	n := r.Focused()
	if !n.IsProxy() || n.Element() != o1 || r.CursorPosition() != 3 {
		t.Fatalf("焦点应移到未链接引用区中 o1 的投影，光标保持 3")
	}
}

func TestSectionsRefreshAfterDebounce(t *testing.T) {
	f := newFixture(t)
	r := f.root
	o2 := f.els["o2"]
	o2.SetText(element.RichText{{Text: "now "}, {Text: "Page", Style: element.Style{InternalLink: "Page"}}})
	if len(r.Sections()[0].Elements()) != 1 {
		t.Fatalf("落定之前区块不应刷新")
	}
	f.now = f.now.Add(element.DefaultDebounce)
	r.Tick(f.now)
	if diff := cmp.Diff([]string{"see Page", "now Page"}, titles(r.Sections()[0].Elements())); diff != "" {
		t.Fatalf("落定后反向链接不符 (-want +got):\n%s", diff)
	}
	if r.Sections()[1].Widget().SelfVisible() {
		t.Fatalf("没有元素的区块应隐藏")
	}
}

func TestJournalHasNoSections(t *testing.T) {
	f := newFixture(t, AsJournal())
	if f.root.Sections() != nil {
		t.Fatalf("日记页面不应附加区块")
	}
	if f.root.Tree().Root().ChildCount() != 3 {
		t.Fatalf("日记页面只有元素节点")
	}
}

func TestCloseCancelsSubscriptions(t *testing.T) {
	f := newFixture(t)
	a := f.els["a"]
	if a.SubscriberCount() != 1 {
		t.Fatalf("每个显示的元素应有一个订阅，实际 %d", a.SubscriberCount())
	}
	f.root.Close()
	if a.SubscriberCount() != 0 {
		t.Fatalf("关闭后应取消订阅")
	}
}

func TestVisitHistory(t *testing.T) {
	f := newFixture(t)
	r := f.root
	r.Visit(f.els["other"])
	r.Visit(f.els["page"])
	hist := r.Sections()[2]
	if diff := cmp.Diff([]string{"Other"}, titles(hist.Elements())); diff != "" {
		t.Fatalf("浏览历史不符 (-want +got):\n%s", diff)
	}
	if !hist.Widget().SelfVisible() {
		t.Fatalf("有历史时区块应显示")
	}
}
