package widget

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
	"github.com/google/go-cmp/cmp"
)

// box 是测试用内容：固定高度，可折叠，子节点缩进 20pt。
type box struct {
	name    string
	height  float64
	closed  bool
	accept  bool
	sized   int
	events  *[]string
	drawn   *[]string
	removed *[]string
}

func (b *box) ContentSize(w *Widget, width float64) geom.Size {
	b.sized++
	return geom.Size{Width: width, Height: b.height}
}

func (b *box) ChildrenShown(*Widget) bool     { return !b.closed }
func (b *box) ChildInset(*Widget) geom.Insets { return geom.Insets{Left: 20} }

func (b *box) record(s string) {
	if b.events != nil {
		*b.events = append(*b.events, s)
	}
}

func (b *box) MouseDown(w *Widget, ev MouseEvent) bool {
	b.record("down:" + b.name)
	return b.accept
}
func (b *box) MouseDragged(w *Widget, ev MouseEvent) { b.record("drag:" + b.name) }
func (b *box) MouseUp(w *Widget, ev MouseEvent)      { b.record("up:" + b.name) }

func (b *box) Draw(w *Widget, p paint.Painter, origin geom.Point) {
	if b.drawn != nil {
		*b.drawn = append(*b.drawn, b.name)
	}
}

func (b *box) Detach(*Widget) {
	if b.removed != nil {
		*b.removed = append(*b.removed, b.name)
	}
}

func (b *box) Describe(*Widget) string { return b.name }

// fixture:
//
//	root(10)
//	  a(12)
//	    a1(12)
//	  b(12)
func fixture(t *testing.T) (*Tree, map[string]*Widget, map[string]*box) {
	t.Helper()
	boxes := map[string]*box{}
	mk := func(name string, h float64) *box {
		b := &box{name: name, height: h, accept: true}
		boxes[name] = b
		return b
	}
	tr := New(mk("root", 10), nil)
	ws := map[string]*Widget{"root": tr.Root()}
	ws["a"] = tr.Add(tr.Root(), -1, mk("a", 12))
	ws["a1"] = tr.Add(ws["a"], -1, mk("a1", 12))
	ws["b"] = tr.Add(tr.Root(), -1, mk("b", 12))
	return tr, ws, boxes
}

func TestLayoutPushesWidthAndPullsHeight(t *testing.T) {
	tr, ws, _ := fixture(t)
	size := tr.Layout(200)
	if size.Height != 46 {
		t.Fatalf("根节点高度应为 46，实际 %v", size.Height)
	}
	want := map[string]geom.Rect{
		"root": geom.R(0, 0, 200, 46),
		"a":    geom.R(20, 10, 180, 24),
		"a1":   geom.R(20, 12, 160, 12),
		"b":    geom.R(20, 34, 180, 12),
	}
	for name, r := range want {
		if diff := cmp.Diff(r, ws[name].Frame()); diff != "" {
			t.Fatalf("%s frame 不符 (-want +got):\n%s", name, diff)
		}
	}
	if got := ws["a1"].Origin(); got != geom.Pt(40, 22) {
		t.Fatalf("a1 绝对坐标错误: %+v", got)
	}
}

func TestClosedNodeOmitsChildren(t *testing.T) {
	tr, ws, boxes := fixture(t)
	tr.Layout(200)
	boxes["a"].closed = true
	ws["a"].InvalidateLayout()
	tr.LayoutIfNeeded()
	if h := ws["a"].Frame().Height; h != 12 {
		t.Fatalf("折叠后 a 高度应为 12，实际 %v", h)
	}
	if ws["b"].Frame().Y != 22 {
		t.Fatalf("b 应上移到 22，实际 %v", ws["b"].Frame().Y)
	}
	if ws["a1"].Visible() {
		t.Fatalf("折叠节点的子节点不应可见")
	}
}

func TestInvalidateLayoutPropagatesAndRelayoutIsTargeted(t *testing.T) {
	tr, ws, boxes := fixture(t)
	tr.Layout(200)
	if tr.LayoutIfNeeded() {
		t.Fatalf("布局完成后不应再次布局")
	}
	ws["a1"].InvalidateLayout()
	for _, name := range []string{"a1", "a", "root"} {
		if !ws[name].NeedsLayout() {
			t.Fatalf("%s 应被标记为需要布局", name)
		}
	}
	if ws["b"].NeedsLayout() {
		t.Fatalf("兄弟节点不应被标记")
	}
	before := boxes["b"].sized
	tr.LayoutIfNeeded()
	if boxes["b"].sized != before {
		t.Fatalf("未标记的节点不应重新测量")
	}
	if ws["root"].NeedsLayout() {
		t.Fatalf("布局后标记应被清除")
	}
}

func TestInvalidateRenderingIsLocal(t *testing.T) {
	tr, ws, _ := fixture(t)
	tr.Layout(200)
	tr.Draw(paint.Nop{})
	if tr.NeedsDisplay() {
		t.Fatalf("绘制后不应需要重绘")
	}
	ws["a1"].InvalidateRendering()
	if ws["a"].NeedsRendering() || ws["root"].NeedsRendering() {
		t.Fatalf("重绘标记不应向上传播")
	}
	if !tr.NeedsDisplay() {
		t.Fatalf("应需要重绘")
	}
}

func TestWidthChangeRelayoutsChildren(t *testing.T) {
	tr, ws, _ := fixture(t)
	tr.Layout(200)
	tr.Layout(100)
	if w := ws["a1"].AvailableWidth(); w != 60 {
		t.Fatalf("a1 可用宽度应为 60，实际 %v", w)
	}
}

func TestNodeAt(t *testing.T) {
	tr, ws, _ := fixture(t)
	tr.Layout(200)
	cases := []struct {
		p    geom.Point
		want *Widget
	}{
		{geom.Pt(50, 25), ws["a1"]},
		{geom.Pt(50, 15), ws["a"]},
		{geom.Pt(5, 25), ws["root"]},
		{geom.Pt(50, 40), ws["b"]},
		{geom.Pt(-1, 5), nil},
		{geom.Pt(50, 100), nil},
	}
	for _, c := range cases {
		if got := tr.NodeAt(c.p); got != c.want {
			t.Fatalf("NodeAt(%v) 错误", c.p)
		}
	}
	empty := New(nil, nil)
	if empty.NodeAt(geom.Pt(1, 1)) != nil {
		t.Fatalf("空树命中测试应返回 nil")
	}
}

func TestVisibleTraversal(t *testing.T) {
	tr, ws, boxes := fixture(t)
	var order []*Widget
	for w := tr.Root(); w != nil; w = w.NextVisible() {
		order = append(order, w)
	}
	want := []*Widget{ws["root"], ws["a"], ws["a1"], ws["b"]}
	if len(order) != len(want) {
		t.Fatalf("先序遍历数量错误: %d", len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("第 %d 个节点错误", i)
		}
	}
	if ws["b"].PreviousVisible() != ws["a1"] {
		t.Fatalf("b 的上一个可见节点应为 a1")
	}
	if ws["a1"].PreviousVisible() != ws["a"] {
		t.Fatalf("a1 的上一个可见节点应为 a")
	}
	if tr.Root().PreviousVisible() != nil {
		t.Fatalf("根节点之前没有节点")
	}

	boxes["a"].closed = true
	if ws["a"].NextVisible() != ws["b"] {
		t.Fatalf("折叠的分支应被跳过")
	}
	if ws["b"].PreviousVisible() != ws["a"] {
		t.Fatalf("向后遍历也应跳过折叠分支")
	}
	ws["b"].SetSelfVisible(false)
	if ws["a"].NextVisible() != nil {
		t.Fatalf("隐藏节点应被跳过")
	}
}

func TestMouseDispatch(t *testing.T) {
	tr, ws, boxes := fixture(t)
	var events []string
	for _, b := range boxes {
		b.events = &events
	}
	tr.Layout(200)
	boxes["a1"].accept = false

	hit := tr.DispatchMouseDown(MouseEvent{Position: geom.Pt(50, 25)})
	if hit != ws["a"] {
		t.Fatalf("a1 拒绝后应由 a 接受")
	}
	if diff := cmp.Diff([]string{"down:a1", "down:a"}, events); diff != "" {
		t.Fatalf("按下事件顺序错误 (-want +got):\n%s", diff)
	}

	// 拖动与抬起发送给焦点节点，而不是命中的节点
	events = nil
	tr.SetFocused(ws["b"])
	tr.DispatchMouseDragged(MouseEvent{Position: geom.Pt(50, 25)})
	tr.DispatchMouseUp(MouseEvent{Position: geom.Pt(50, 25)})
	tr.DispatchMouseDragged(MouseEvent{Position: geom.Pt(50, 25)})
	if diff := cmp.Diff([]string{"drag:b", "up:b"}, events); diff != "" {
		t.Fatalf("拖动事件错误 (-want +got):\n%s", diff)
	}

	events = nil
	tr.DispatchMouseDown(MouseEvent{Position: geom.Pt(50, 40)})
	tr.CancelTracking()
	tr.DispatchMouseDragged(MouseEvent{Position: geom.Pt(50, 40)})
	if diff := cmp.Diff([]string{"down:b"}, events); diff != "" {
		t.Fatalf("取消跟踪后不应再收到拖动 (-want +got):\n%s", diff)
	}
}

func TestMoveAndRemove(t *testing.T) {
	tr, ws, boxes := fixture(t)
	var removed []string
	for _, b := range boxes {
		b.removed = &removed
	}
	if err := tr.Move(ws["b"], ws["a"], -1); err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	if ws["b"].Parent() != ws["a"] || ws["b"].IndexInParent() != 1 {
		t.Fatalf("b 应成为 a 的最后一个子节点")
	}
	if err := tr.Move(ws["a"], ws["a1"], 0); err == nil {
		t.Fatalf("移动到自身子树应失败")
	}
	tr.SetFocused(ws["a1"])
	tr.Remove(ws["a"])
	if diff := cmp.Diff([]string{"a1", "b", "a"}, removed); diff != "" {
		t.Fatalf("Detach 顺序错误 (-want +got):\n%s", diff)
	}
	if tr.Len() != 1 || tr.Focused() != nil {
		t.Fatalf("移除后应只剩根节点且焦点被清除")
	}
}

func TestDrawOrderAndDebugJSON(t *testing.T) {
	tr, _, boxes := fixture(t)
	var drawn []string
	for _, b := range boxes {
		b.drawn = &drawn
	}
	tr.Layout(200)
	tr.Draw(paint.Nop{})
	if diff := cmp.Diff([]string{"root", "a", "a1", "b"}, drawn); diff != "" {
		t.Fatalf("绘制顺序错误 (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := tr.EncodeDebugJSON(&buf); err != nil {
		t.Fatalf("输出调试 JSON 失败: %v", err)
	}
	var node debugNode
	if err := json.Unmarshal(buf.Bytes(), &node); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	if node.Label != "root" || len(node.Children) != 2 || node.Children[0].Label != "a" {
		t.Fatalf("调试 JSON 结构错误: %+v", node)
	}
	if node.Type != "widget.box" {
		t.Fatalf("类型名错误: %s", node.Type)
	}
}
