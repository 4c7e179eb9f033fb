package editor

import (
	"github.com/ByLCY/outliner/widget"
)

// MouseDown 实现 widget.MouseHandler：点击放置光标，⇧ 点击扩展选区，双击选词，三击选中整个节点文本，
// 点击项目符号折叠或展开，⌘ 点击链接时打开链接。
func (n *TextNode) MouseDown(w *widget.Widget, ev widget.MouseEvent) bool {
	r := n.root
	if !n.title && ev.Local.X < n.gutter() && n.el.ChildCount() > 0 {
		if n.el.Open() {
			n.el.SetOpen(false)
		} else {
			n.el.SetOpen(true)
		}
		r.tree.LayoutIfNeeded()
		return true
	}
	if ev.Modifiers.Has(widget.Command) {
		if url, ok := n.LinkAt(ev.Local); ok {
			if r.OnOpenLink != nil {
				r.OnOpenLink(url)
			}
			return true
		}
		if target, ok := n.InternalLinkAt(ev.Local); ok {
			if r.OnOpenInternalLink != nil {
				r.OnOpenInternalLink(target)
			}
			return true
		}
	}
	idx := n.PositionAt(ev.Local)
	if ev.Modifiers.Has(widget.Shift) && r.focused != nil {
		if r.focused == n {
			r.setSelection(r.anchor, idx)
		} else if !n.title && !r.focused.title && n.proxy == r.focused.proxy {
			r.SelectNodes(r.focused, n)
		}
		r.lastCommand = CommandNone
		return true
	}
	switch {
	case ev.ClickCount == 2:
		r.Focus(n, idx)
		wr := WordRange(n.Text().Runes(), idx)
		r.setSelection(wr.Start, wr.End)
	case ev.ClickCount >= 3:
		r.Focus(n, 0)
		r.setSelection(0, n.Len())
	default:
		r.Focus(n, idx)
	}
	r.lastCommand = CommandNone
	return true
}

// MouseDragged 在节点内拖动时扩展文本选区，拖到其他节点上时改为节点选区。
func (n *TextNode) MouseDragged(w *widget.Widget, ev widget.MouseEvent) {
	r := n.root
	hit := r.tree.NodeAt(ev.Position)
	if hit != nil && hit != w {
		if other, ok := hit.Content().(*TextNode); ok && !other.title && !n.title && other.proxy == n.proxy {
			if r.nodeSel == nil || r.nodeSel.end != other {
				r.SelectNodes(n, other)
			}
			return
		}
	}
	if r.nodeSel != nil {
		r.CancelNodeSelection()
	}
	r.setSelection(r.anchor, n.PositionAt(ev.Local))
}

func (n *TextNode) MouseUp(w *widget.Widget, ev widget.MouseEvent) {
	n.root.restartBlink()
}
