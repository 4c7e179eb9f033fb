package widget

import (
	"strings"

	"github.com/ByLCY/outliner/geom"
	"go.uber.org/zap"
)

// Modifiers 是键盘修饰键的位集合。
type Modifiers uint8

const (
	Shift Modifiers = 1 << iota
	Control
	Option
	Command
)

// Has 报告是否包含 m 中的全部修饰键。
func (mods Modifiers) Has(m Modifiers) bool { return mods&m == m }

func (mods Modifiers) String() string {
	var parts []string
	for _, x := range []struct {
		m    Modifiers
		name string
	}{{Control, "ctrl"}, {Option, "alt"}, {Shift, "shift"}, {Command, "cmd"}} {
		if mods.Has(x.m) {
			parts = append(parts, x.name)
		}
	}
	return strings.Join(parts, "+")
}

// MouseEvent 是一次指针事件。Position 为绝对坐标，Local 在分发时填入目标 widget 的自身坐标。
type MouseEvent struct {
	Position   geom.Point
	Local      geom.Point
	ClickCount int
	Modifiers  Modifiers
}

func (ev MouseEvent) localTo(w *Widget) MouseEvent {
	ev.Local = w.ToLocal(ev.Position)
	return ev
}

// DispatchMouseDown 按逆 z 序（子节点先于自身）寻找第一个接受事件的 widget 并返回它。
// 之后的拖动与抬起事件会发送给焦点节点，直到 CancelTracking 或下一次按下。
func (t *Tree) DispatchMouseDown(ev MouseEvent) *Widget {
	root := t.Root()
	if root == nil {
		return nil
	}
	hit := t.dispatchDown(root, geom.Point{}, ev)
	t.tracking = hit != nil
	if hit != nil {
		t.log.Debug("mouse down accepted", zap.Int("widget", int(hit.id)))
	}
	return hit
}

func (t *Tree) dispatchDown(w *Widget, parentOrigin geom.Point, ev MouseEvent) *Widget {
	if !w.selfVisible {
		return nil
	}
	bounds := w.frame.Offset(parentOrigin)
	if !bounds.Contains(ev.Position) {
		return nil
	}
	origin := bounds.Origin()
	if w.ChildrenShown() {
		for i := len(w.children) - 1; i >= 0; i-- {
			if hit := t.dispatchDown(t.nodes[w.children[i]], origin, ev); hit != nil {
				return hit
			}
		}
	}
	if h, ok := w.content.(MouseHandler); ok {
		ev.Local = ev.Position.Sub(origin)
		if h.MouseDown(w, ev) {
			return w
		}
	}
	return nil
}

// DispatchMouseDragged 直接发送给焦点节点，不做命中测试。
func (t *Tree) DispatchMouseDragged(ev MouseEvent) {
	if !t.tracking {
		return
	}
	if w := t.Focused(); w != nil {
		if h, ok := w.content.(MouseHandler); ok {
			h.MouseDragged(w, ev.localTo(w))
		}
	}
}

// DispatchMouseUp 直接发送给焦点节点并结束跟踪。
func (t *Tree) DispatchMouseUp(ev MouseEvent) {
	if !t.tracking {
		return
	}
	t.tracking = false
	if w := t.Focused(); w != nil {
		if h, ok := w.content.(MouseHandler); ok {
			h.MouseUp(w, ev.localTo(w))
		}
	}
}

// Tracking 报告是否处于拖动跟踪中。
func (t *Tree) Tracking() bool { return t.tracking }

// CancelTracking 结束拖动跟踪，例如宿主窗口失去焦点时。
func (t *Tree) CancelTracking() {
	if t.tracking {
		t.log.Debug("mouse tracking cancelled")
	}
	t.tracking = false
}
