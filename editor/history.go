package editor

import (
	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/widget"
	"go.uber.org/zap"
)

// undoState 是撤销快照：焦点节点的文本、选区、组字区间与光标；结构命令额外保存页面子树。
// proxy 记录编辑发生在投影节点还是页面节点上。
type undoState struct {
	el       *element.Element
	proxy    bool
	text     element.RichText
	selected Range
	marked   Range
	cursor   int
	tree     *element.Snapshot
}

func (r *Root) captureState(withTree bool) undoState {
	s := undoState{
		el:       r.focused.el,
		proxy:    r.focused.proxy,
		text:     r.focused.Text(),
		selected: r.selected,
		marked:   r.marked,
		cursor:   r.cursor,
	}
	if withTree {
		s.tree = element.Capture(r.page)
	}
	return s
}

// pushUndoState 在命令执行前取快照，返回的函数在命令执行后调用：有变化时才注册撤销项。
// 连续执行的可合并命令只保留第一个快照，此时返回 nil。
func (r *Root) pushUndoState(cmd Command) func(changed bool) {
	def := definitions[cmd]
	if !def.undo {
		return nil
	}
	if def.coalesce && r.lastCommand == cmd {
		return nil
	}
	s := r.captureState(def.tree || r.nodeSel != nil)
	return func(changed bool) {
		if changed {
			r.registerState(s, def.redo)
			return
		}
		// 没有变化的命令不留撤销项，也不作为合并的起点
		r.lastCommand = CommandNone
	}
}

// registerState 向撤销管理器注册恢复闭包。闭包先把 s 所指元素的当前状态注册为新的撤销项（即重做项），再恢复快照。
func (r *Root) registerState(s undoState, redo bool) {
	r.undo.RegisterUndo(r, func(target any) {
		root := target.(*Root)
		if redo {
			root.registerState(root.currentState(s), redo)
		}
		root.restoreState(s)
	})
}

// currentState 返回重做时要恢复的状态。结构快照取焦点节点的状态；
// 文本快照取 s.el 的当前文本，焦点仍在该元素上时取实际的光标与选区，否则沿用 s 的。
func (r *Root) currentState(s undoState) undoState {
	if s.tree != nil && r.focused != nil {
		return r.captureState(true)
	}
	cur := s
	cur.text = s.el.Text()
	if f := r.focused; f != nil && f.el == s.el {
		cur.proxy = f.proxy
		cur.selected, cur.marked, cur.cursor = r.selected, r.marked, r.cursor
	}
	return cur
}

// nodeShowing 返回显示 el 的节点，优先选择投影标记与 proxy 相同的节点。
func (r *Root) nodeShowing(el *element.Element, proxy bool) *TextNode {
	var found *TextNode
	r.tree.Walk(r.tree.Root(), func(w *widget.Widget) bool {
		tn, ok := w.Content().(*TextNode)
		if !ok || tn.el != el || tn.title && proxy {
			return true
		}
		if tn.proxy == proxy {
			found = tn
			return false
		}
		if found == nil {
			found = tn
		}
		return true
	})
	return found
}

func (r *Root) restoreState(s undoState) {
	if s.tree != nil {
		s.tree.Restore()
	}
	r.settleFocus()
	n := r.nodeShowing(s.el, s.proxy)
	if n == nil {
		// 元素已不在视图中，只恢复文本
		r.log.Debug("undo: element is no longer shown", zap.String("element", s.el.ID()))
		s.el.SetText(s.text)
		r.lastCommand = CommandNone
		return
	}
	r.Focus(n, 0)
	n.SetText(s.text)
	l := n.Len()
	r.selected = s.selected.clamp(l)
	r.marked = s.marked.clamp(l)
	r.cursor = min(max(s.cursor, 0), l)
	r.anchor = r.cursor
	if !r.selected.IsEmpty() && r.selected.End == r.cursor {
		r.anchor = r.selected.Start
	} else if !r.selected.IsEmpty() {
		r.anchor = r.selected.End
	}
	r.active = n.Text().StyleAt(r.cursor).Formatting()
	r.lastCommand = CommandNone
	n.invalidate()
	r.tree.LayoutIfNeeded()
}

type undoer interface {
	Undo() bool
	Redo() bool
}

// Undo 通过撤销管理器撤销；管理器不支持主动撤销时返回 false。
func (r *Root) Undo() bool {
	if u, ok := r.undo.(undoer); ok {
		return u.Undo()
	}
	return false
}

// Redo 通过撤销管理器重做。
func (r *Root) Redo() bool {
	if u, ok := r.undo.(undoer); ok {
		return u.Redo()
	}
	return false
}
