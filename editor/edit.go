package editor

import (
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/geom"
)

// leaveNodeSelection 在非扩展移动时取消节点选区，把光标放到选区末端节点。
func (r *Root) leaveNodeSelection(atEnd bool) bool {
	if r.nodeSel == nil {
		return false
	}
	end := r.nodeSel.end
	r.CancelNodeSelection()
	if end == nil || end.detached {
		return true
	}
	cursor := 0
	if atEnd {
		cursor = end.Len()
	}
	r.Focus(end, cursor)
	return true
}

func (r *Root) moveHorizontal(dir int, word, extend bool) bool {
	if r.leaveNodeSelection(dir > 0) {
		return true
	}
	n := r.focused
	runes := n.Text().Runes()
	head := r.cursor
	if !extend && !r.selected.IsEmpty() {
		head = r.selected.Start
		if dir > 0 {
			head = r.selected.End
		}
		if !word {
			r.collapse(head)
			return true
		}
	}
	target := head + dir
	if word {
		target = wordBoundary(runes, head, dir)
	}
	if target >= 0 && target <= len(runes) {
		if extend {
			r.setSelection(r.anchor, target)
		} else {
			r.collapse(target)
		}
		return true
	}
	if extend {
		return false
	}
	other := r.adjacentTextNode(n, dir > 0, true)
	if other == nil {
		r.collapse(head)
		return false
	}
	if dir < 0 {
		r.Focus(other, other.Len())
	} else {
		r.Focus(other, 0)
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// wordBoundary 返回从 i 出发沿 dir 方向的下一个词边界；已在文本边界时返回越界值。
func wordBoundary(rs []rune, i, dir int) int {
	if dir < 0 {
		if i == 0 {
			return -1
		}
		for i > 0 && !isWordRune(rs[i-1]) {
			i--
		}
		for i > 0 && isWordRune(rs[i-1]) {
			i--
		}
		return i
	}
	if i >= len(rs) {
		return len(rs) + 1
	}
	for i < len(rs) && !isWordRune(rs[i]) {
		i++
	}
	for i < len(rs) && isWordRune(rs[i]) {
		i++
	}
	return i
}

// WordRange 返回包含 i 的词的区间。
func WordRange(rs []rune, i int) Range {
	i = min(max(i, 0), len(rs))
	start, end := i, i
	for start > 0 && isWordRune(rs[start-1]) {
		start--
	}
	for end < len(rs) && isWordRune(rs[end]) {
		end++
	}
	return Range{start, end}
}

// goal 返回垂直移动的目标 x（绝对坐标），连续垂直移动时保持不变。
func (r *Root) goal(n *TextNode, head int) float64 {
	if !r.hasGoalX {
		r.goalX = n.w.Origin().X + n.OffsetAt(head)
		r.hasGoalX = true
	}
	return r.goalX
}

func (r *Root) moveVertical(dir int, extend bool) bool {
	if extend && r.nodeSel != nil {
		if dir < 0 {
			return r.nodeSel.ExtendUp()
		}
		return r.nodeSel.ExtendDown()
	}
	if r.leaveNodeSelection(dir > 0) {
		return true
	}
	n := r.focused
	head := r.cursor
	if !extend && !r.selected.IsEmpty() {
		head = r.selected.Start
		if dir > 0 {
			head = r.selected.End
		}
	}
	x := r.goal(n, head)
	if f := n.Frame(); f != nil {
		if li := f.LineIndexFor(head) + dir; li >= 0 && li < len(f.Lines) {
			local := x - n.w.Origin().X - n.gutter()
			idx := f.Lines[li].StringIndexFor(geom.Pt(local, 0))
			if extend {
				r.setSelection(r.anchor, idx)
			} else {
				r.collapse(idx)
			}
			return true
		}
	}
	edge := 0
	if dir > 0 {
		edge = n.Len()
	}
	if extend {
		if head != edge || n.title || n.proxy {
			r.setSelection(r.anchor, edge)
			return head != edge
		}
		ns := r.SelectNodes(n, n)
		if dir < 0 {
			ns.ExtendUp()
		} else {
			ns.ExtendDown()
		}
		return true
	}
	other := r.adjacentTextNode(n, dir > 0, true)
	if other == nil {
		r.collapse(edge)
		return head != edge
	}
	idx := 0
	if dir < 0 {
		idx = other.Len()
	}
	if f := other.Frame(); f != nil && len(f.Lines) > 0 {
		l := f.Lines[0]
		if dir < 0 {
			l = f.Lines[len(f.Lines)-1]
		}
		idx = l.StringIndexFor(geom.Pt(x-other.w.Origin().X-other.gutter(), 0))
	}
	r.Focus(other, idx)
	r.goalX, r.hasGoalX = x, true
	return true
}

func (r *Root) moveLineBoundary(end, extend bool) bool {
	if r.leaveNodeSelection(end) {
		return true
	}
	n := r.focused
	target := 0
	if end {
		target = n.Len()
	}
	if f := n.Frame(); f != nil {
		l := f.LineFor(r.cursor)
		if end {
			target = l.MaxIndex()
		} else {
			target = l.Start
		}
	}
	if extend {
		r.setSelection(r.anchor, target)
	} else {
		r.collapse(target)
	}
	return true
}

// lastVisibleTextNode 返回页面中最后一个可见的非投影文本节点。
func (r *Root) lastVisibleTextNode() *TextNode {
	last := r.node
	for n := r.nextVisibleTextNode(r.node); n != nil; n = r.nextVisibleTextNode(n) {
		last = n
	}
	return last
}

func (r *Root) moveDocumentBoundary(end bool) bool {
	r.CancelNodeSelection()
	if end {
		last := r.lastVisibleTextNode()
		r.Focus(last, last.Len())
		return true
	}
	r.Focus(r.node, 0)
	return true
}

// replaceSelection 用 s 替换组字区间、选区或在光标处插入，新文本使用待应用格式。
func (r *Root) replaceSelection(s string) bool {
	if r.nodeSel != nil {
		r.leaveNodeSelection(true)
	}
	n := r.focused
	rng := r.selected
	if !r.marked.IsEmpty() {
		rng = r.marked
	}
	if rng.IsEmpty() {
		rng = Range{r.cursor, r.cursor}
	}
	if s == "" && rng.IsEmpty() {
		return false
	}
	active := r.active
	hadMarked := !r.marked.IsEmpty()
	r.marked = Range{}
	n.SetText(n.Text().Replace(rng.Start, rng.End, s, active))
	if hadMarked {
		n.invalidate()
	}
	r.collapse(rng.Start + utf8.RuneCountInString(s))
	if s != "" {
		r.active = active
	}
	return true
}

func (r *Root) setMarkedText(s string, sel Range) bool {
	n := r.focused
	rng := r.marked
	if rng.IsEmpty() {
		rng = r.selected
	}
	if rng.IsEmpty() {
		rng = Range{r.cursor, r.cursor}
	}
	active := r.active
	n.SetText(n.Text().Replace(rng.Start, rng.End, s, active))
	l := utf8.RuneCountInString(s)
	if l == 0 {
		r.marked = Range{}
	} else {
		r.marked = Range{rng.Start, rng.Start + l}
	}
	n.invalidate()
	r.selected = Range{}
	sel = sel.clamp(l)
	if sel.IsEmpty() {
		r.collapse(rng.Start + sel.End)
	} else {
		r.setSelection(rng.Start+sel.Start, rng.Start+sel.End)
	}
	r.active = active
	return true
}

func (r *Root) deleteRange(rng Range) bool {
	n := r.focused
	rng = rng.clamp(n.Len())
	if rng.IsEmpty() {
		return false
	}
	r.marked = Range{}
	n.SetText(n.Text().Replace(rng.Start, rng.End, "", element.Style{}))
	r.collapse(rng.Start)
	return true
}

func (r *Root) deleteBackward() bool {
	if r.nodeSel != nil {
		return r.deleteNodes()
	}
	switch {
	case !r.marked.IsEmpty():
		return r.deleteRange(r.marked)
	case !r.selected.IsEmpty():
		return r.deleteRange(r.selected)
	case r.cursor > 0:
		return r.deleteRange(Range{r.cursor - 1, r.cursor})
	}
	return r.mergeBackward()
}

func (r *Root) deleteForward() bool {
	if r.nodeSel != nil {
		return r.deleteNodes()
	}
	switch {
	case !r.marked.IsEmpty():
		return r.deleteRange(r.marked)
	case !r.selected.IsEmpty():
		return r.deleteRange(r.selected)
	case r.cursor < r.focused.Len():
		return r.deleteRange(Range{r.cursor, r.cursor + 1})
	}
	return r.mergeForward()
}

// selectAll 第一次选中节点内全部文本，再次执行时选中页面内全部节点。
func (r *Root) selectAll() bool {
	n := r.focused
	if r.nodeSel == nil && !n.proxy {
		l := n.Len()
		if l > 0 && r.selected != (Range{0, l}) {
			r.setSelection(0, l)
			return true
		}
	}
	first := r.nextVisibleTextNode(r.node)
	if first == nil {
		return false
	}
	r.SelectNodes(first, r.lastVisibleTextNode())
	return true
}

func (r *Root) toggleFormat(field func(*element.Style) *bool) bool {
	get := func(s element.Style) bool { return *field(&s) }
	if r.nodeSel != nil {
		nodes := r.nodeSel.Nodes()
		all := true
		for _, n := range nodes {
			if n.Len() > 0 && !n.Text().AllHave(0, n.Len(), get) {
				all = false
			}
		}
		for _, n := range nodes {
			n.SetText(n.Text().ApplyStyle(0, n.Len(), func(s *element.Style) { *field(s) = !all }))
		}
		return len(nodes) > 0
	}
	rng := r.selected
	if rng.IsEmpty() {
		p := field(&r.active)
		*p = !*p
		return true
	}
	n := r.focused
	all := n.Text().AllHave(rng.Start, rng.End, get)
	n.SetText(n.Text().ApplyStyle(rng.Start, rng.End, func(s *element.Style) { *field(s) = !all }))
	return true
}

func (r *Root) toggleFold() bool {
	n := r.focused
	if n.title {
		return false
	}
	if n.el.ChildCount() > 0 && !n.el.Open() {
		n.Unfold()
		return true
	}
	n.Fold()
	return true
}
