package editor

import (
	"sort"

	"github.com/ByLCY/outliner/widget"
	"go.uber.org/zap"
)

// NodeSelection 是以整个节点为单位的选区。成员集合总是等于 start 与 end 之间（含两端）按文档顺序的闭区间，
// 区间内折叠节点的整棵子树也包含在内。
type NodeSelection struct {
	root       *Root
	start, end *TextNode
	set        map[*TextNode]bool
}

func (s *NodeSelection) Start() *TextNode { return s.start }
func (s *NodeSelection) End() *TextNode   { return s.end }
func (s *NodeSelection) Len() int         { return len(s.set) }

// Contains 报告 n 是否被选中。
func (s *NodeSelection) Contains(n *TextNode) bool {
	return s != nil && s.set[n]
}

// Nodes 按文档顺序返回全部成员。
func (s *NodeSelection) Nodes() []*TextNode {
	out := make([]*TextNode, 0, len(s.set))
	for n := range s.set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return isAbove(out[i].w, out[j].w) })
	return out
}

// Roots 返回没有被选中祖先的成员，即每棵被选中子树的顶端。
func (s *NodeSelection) Roots() []*TextNode {
	var out []*TextNode
	for _, n := range s.Nodes() {
		top := true
		for p := n.w.Parent(); p != nil; p = p.Parent() {
			if tn, ok := p.Content().(*TextNode); ok && s.set[tn] {
				top = false
				break
			}
		}
		if top {
			out = append(out, n)
		}
	}
	return out
}

// indexPath 返回从树根到 w 的子节点下标链。
func indexPath(w *widget.Widget) []int {
	var path []int
	for x := w; x.Parent() != nil; x = x.Parent() {
		path = append(path, x.IndexInParent())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// isAbove 报告 a 在文档顺序上是否位于 b 之前。祖先位于后代之前。
func isAbove(a, b *widget.Widget) bool {
	pa, pb := indexPath(a), indexPath(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}

// SelectRange 选中 start 与 end 之间的全部可见文本节点。若从较前的节点无法走到较后的节点，
// 记录错误并保留已经收集的成员。
func (s *NodeSelection) SelectRange(start, end *TextNode) {
	for n := range s.set {
		n.w.InvalidateRendering()
	}
	s.set = map[*TextNode]bool{}
	s.start, s.end = start, end
	if start == nil || end == nil {
		return
	}
	from, to := start, end
	if isAbove(to.w, from.w) {
		from, to = to, from
	}
	for x := from; ; x = s.root.nextVisibleTextNode(x) {
		if x == nil {
			s.root.log.Error("node selection: end node is unreachable",
				zap.String("start", from.el.ID()), zap.String("end", to.el.ID()))
			return
		}
		s.add(x)
		if x == to {
			return
		}
	}
}

// ExtendDown 把 end 向下移动一个可见文本节点。若 end 原本在 start 之上，被越过的节点移出选区。
func (s *NodeSelection) ExtendDown() bool {
	next := s.root.nextVisibleTextNode(s.end)
	if next == nil {
		return false
	}
	if isAbove(s.end.w, s.start.w) {
		s.remove(s.end)
	} else {
		s.add(next)
	}
	s.end = next
	return true
}

// ExtendUp 把 end 向上移动一个可见文本节点。
func (s *NodeSelection) ExtendUp() bool {
	prev := s.root.previousVisibleTextNode(s.end)
	if prev == nil {
		return false
	}
	if isAbove(s.start.w, s.end.w) {
		s.remove(s.end)
	} else {
		s.add(prev)
	}
	s.end = prev
	return true
}

// refresh 在 n 折叠或展开后按可见性重新计算成员。被折叠隐藏的端点改由 n 充当。
func (s *NodeSelection) refresh(n *TextNode) {
	start, end := s.start, s.end
	if !n.el.Open() {
		if start.w.IsDescendantOf(n.w) {
			start = n
		}
		if end.w.IsDescendantOf(n.w) {
			end = n
		}
	}
	s.SelectRange(start, end)
}

// add 加入 n；n 折叠时连同整棵子树。展开节点的子节点由遍历单独加入。
func (s *NodeSelection) add(n *TextNode) {
	s.eachMember(n, func(tn *TextNode) {
		s.set[tn] = true
		tn.w.InvalidateRendering()
	})
}

func (s *NodeSelection) remove(n *TextNode) {
	s.eachMember(n, func(tn *TextNode) {
		delete(s.set, tn)
		tn.w.InvalidateRendering()
	})
}

func (s *NodeSelection) eachMember(n *TextNode, fn func(*TextNode)) {
	if n.el.Open() {
		fn(n)
		return
	}
	s.root.tree.Walk(n.w, func(w *widget.Widget) bool {
		if tn, ok := w.Content().(*TextNode); ok {
			fn(tn)
		}
		return true
	})
}

// drop 在节点被移除时把它从选区中去掉。
func (s *NodeSelection) drop(n *TextNode) {
	delete(s.set, n)
	if s.start == n || s.end == n {
		s.root.nodeSel = nil
	}
}

// nextVisibleTextNode 返回下一个可见文本节点，跳过间隔与区块标题；不会跨越投影与非投影的边界。
func (r *Root) nextVisibleTextNode(n *TextNode) *TextNode {
	return r.adjacentTextNode(n, true, false)
}

// previousVisibleTextNode 返回上一个可见文本节点，不会回到标题节点。
func (r *Root) previousVisibleTextNode(n *TextNode) *TextNode {
	return r.adjacentTextNode(n, false, false)
}

func (r *Root) adjacentTextNode(n *TextNode, forward, allowTitle bool) *TextNode {
	step := (*widget.Widget).PreviousVisible
	if forward {
		step = (*widget.Widget).NextVisible
	}
	for w := step(n.w); w != nil; w = step(w) {
		tn, ok := w.Content().(*TextNode)
		if !ok {
			continue
		}
		if tn.proxy != n.proxy || (tn.title && !allowTitle) {
			return nil
		}
		return tn
	}
	return nil
}
