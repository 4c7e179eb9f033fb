package editor

import (
	"github.com/ByLCY/outliner/element"
	"go.uber.org/zap"
)

// 结构编辑都只修改元素树；widget 通过元素的变更通知同步，之后由 settleFocus 找回焦点。

// mergeInto 把 victim 的文本追加到 target，子元素交给 target，再删除 victim。
// target 是 victim 的父元素时子元素插在 victim 原来的位置，否则追加到末尾。
func (r *Root) mergeInto(target, victim *TextNode) bool {
	if target == nil || victim == nil || target == victim || victim.title {
		return false
	}
	tEl, vEl := target.el, victim.el
	parent := vEl.Parent()
	if parent == nil {
		return false
	}
	cursor := target.Len()
	target.SetText(target.Text().Concat(vEl.Text()))
	at := tEl.ChildCount()
	if parent == tEl {
		at = vEl.IndexInParent()
	}
	parent.RemoveChild(vEl)
	if at > tEl.ChildCount() {
		at = tEl.ChildCount()
	}
	if err := tEl.MoveChildren(vEl, at); err != nil {
		r.log.Error("merge: move children failed", zap.Error(err))
	}
	if tEl.ChildCount() > 0 && target != r.node {
		tEl.SetOpen(true)
	}
	r.focusElement(tEl, cursor)
	return true
}

// focusElement 把焦点放到显示 el 的节点上。
func (r *Root) focusElement(el *element.Element, cursor int) *TextNode {
	n := r.NodeFor(el)
	if n == nil {
		r.log.Debug("focus: element is not shown", zap.String("element", el.ID()))
		return nil
	}
	r.Focus(n, cursor)
	return n
}

// mergeBackward 在节点开头删除：文本并入上一个可见节点，子元素交给它。
func (r *Root) mergeBackward() bool {
	n := r.focused
	if n.proxy || n.title {
		return false
	}
	prev := r.adjacentTextNode(n, false, false)
	if prev == nil {
		return false
	}
	return r.mergeInto(prev, n)
}

// mergeForward 在节点末尾删除：下一个可见节点的文本并入当前节点。
func (r *Root) mergeForward() bool {
	n := r.focused
	if n.proxy {
		return false
	}
	next := r.nextVisibleTextNode(n)
	if next == nil {
		return false
	}
	return r.mergeInto(n, next)
}

// splitNode 在光标处拆分节点：原节点保留光标之前的文本，光标之后的文本成为紧随其后的新兄弟，
// 原节点的子元素移到新节点下，光标移到新节点开头。
func (r *Root) splitNode() bool {
	n := r.focused
	switch {
	case !r.marked.IsEmpty():
		r.deleteRange(r.marked)
	case !r.selected.IsEmpty():
		r.deleteRange(r.selected)
	}
	t := n.Text()
	c := r.cursor
	before, after := t.Slice(0, c), t.Slice(c, t.Len())
	el := element.New(after)
	if n.title {
		n.SetText(before)
		if err := r.page.InsertChild(0, el); err != nil {
			r.log.Error("split: insert failed", zap.Error(err))
			return false
		}
		r.focusElement(el, 0)
		return true
	}
	switch k := n.el.Kind(); k {
	case element.KindQuote, element.KindCode:
		el.SetKind(k)
	}
	parent := n.el.Parent()
	if parent == nil {
		return false
	}
	n.SetText(before)
	if err := parent.InsertChild(n.el.IndexInParent()+1, el); err != nil {
		r.log.Error("split: insert failed", zap.Error(err))
		return false
	}
	if n.el.ChildCount() > 0 {
		el.SetOpen(n.el.Open())
		if err := el.MoveChildren(n.el, 0); err != nil {
			r.log.Error("split: move children failed", zap.Error(err))
		}
	}
	r.focusElement(el, 0)
	return true
}

// targets 返回结构命令作用的元素：节点选区的各个顶端，否则为焦点节点。
func (r *Root) targets() []*element.Element {
	if r.nodeSel != nil {
		var out []*element.Element
		for _, n := range r.nodeSel.Roots() {
			if !n.proxy && !n.title {
				out = append(out, n.el)
			}
		}
		return out
	}
	if r.focused.title || r.focused.proxy {
		return nil
	}
	return []*element.Element{r.focused.el}
}

// restructure 执行结构修改并在之后恢复焦点状态或节点选区。
func (r *Root) restructure(fn func(els []*element.Element) bool) bool {
	els := r.targets()
	if len(els) == 0 {
		return false
	}
	var startEl, endEl *element.Element
	if r.nodeSel != nil {
		startEl, endEl = r.nodeSel.start.el, r.nodeSel.end.el
	}
	focusEl := r.focused.el
	cursor, sel := r.cursor, r.selected
	if !fn(els) {
		return false
	}
	if startEl != nil {
		start, end := r.NodeFor(startEl), r.NodeFor(endEl)
		if start != nil && end != nil {
			r.SelectNodes(start, end)
			return true
		}
		r.CancelNodeSelection()
	}
	if n := r.focusElement(focusEl, cursor); n != nil && !sel.IsEmpty() {
		r.setSelection(sel.Start, sel.End)
		r.cursor = cursor
	}
	return true
}

// indent 使节点成为前一个兄弟的最后一个子元素，并展开前一个兄弟。
func (r *Root) indent() bool {
	return r.restructure(func(els []*element.Element) bool {
		changed := false
		for _, el := range els {
			idx := el.IndexInParent()
			if idx <= 0 {
				continue
			}
			prev := el.Parent().Child(idx - 1)
			if err := prev.AppendChild(el); err != nil {
				r.log.Error("indent failed", zap.Error(err))
				continue
			}
			prev.SetOpen(true)
			changed = true
		}
		return changed
	})
}

// outdent 使节点成为父元素的下一个兄弟；父元素是页面本身时不做任何事。
func (r *Root) outdent() bool {
	return r.restructure(func(els []*element.Element) bool {
		changed := false
		for i := len(els) - 1; i >= 0; i-- {
			el := els[i]
			parent := el.Parent()
			if parent == nil || parent == r.page || parent.Parent() == nil {
				continue
			}
			gp := parent.Parent()
			if err := gp.InsertChild(parent.IndexInParent()+1, el); err != nil {
				r.log.Error("outdent failed", zap.Error(err))
				continue
			}
			changed = true
		}
		return changed
	})
}

// moveNode 与相邻兄弟交换位置。
func (r *Root) moveNode(dir int) bool {
	return r.restructure(func(els []*element.Element) bool {
		first, last := els[0], els[len(els)-1]
		parent := first.Parent()
		if parent == nil {
			return false
		}
		for _, el := range els {
			if el.Parent() != parent {
				return false
			}
		}
		if dir < 0 {
			idx := first.IndexInParent()
			if idx == 0 {
				return false
			}
			// 把前一个兄弟移到选中块之后
			prev := parent.Child(idx - 1)
			return parent.InsertChild(last.IndexInParent()+1, prev) == nil
		}
		idx := last.IndexInParent()
		if idx >= parent.ChildCount()-1 {
			return false
		}
		next := parent.Child(idx + 1)
		return parent.InsertChild(first.IndexInParent(), next) == nil
	})
}

// deleteNodes 删除节点选区中的全部节点，焦点移到选区之前的节点。
func (r *Root) deleteNodes() bool {
	roots := r.nodeSel.Roots()
	if len(roots) == 0 {
		return false
	}
	focus := r.adjacentTextNode(roots[0], false, true)
	if focus == nil {
		focus = r.node
	}
	focusEl := focus.el
	r.CancelNodeSelection()
	for _, n := range roots {
		if n.proxy || n.title {
			continue
		}
		n.el.RemoveFromParent()
	}
	if r.focusElement(focusEl, 0) != nil {
		r.SetCursorPosition(r.focused.Len())
	}
	return true
}
