// Package undo 提供宿主撤销管理器的接口以及一个基于栈的实现。
// 编辑核心只注册恢复闭包，不自己维护撤销栈。
package undo

// Handler 是撤销时执行的恢复闭包，target 为注册时传入的对象。
type Handler func(target any)

// Manager 是宿主提供的撤销管理器。
type Manager interface {
	// RegisterUndo 注册一个撤销动作。撤销过程中注册的动作进入重做栈。
	RegisterUndo(target any, handler Handler)
	IsUndoing() bool
	IsRedoing() bool
}

type entry struct {
	target  any
	handler Handler
}

// Stack 是 Manager 的简单实现：普通注册进入撤销栈并清空重做栈，
// Undo 执行期间的注册进入重做栈，Redo 执行期间的注册重新进入撤销栈。
type Stack struct {
	undo    []entry
	redo    []entry
	undoing bool
	redoing bool
	limit   int
}

// NewStack 创建撤销栈，limit 为 0 表示不限制深度。
func NewStack(limit int) *Stack {
	return &Stack{limit: limit}
}

var _ Manager = (*Stack)(nil)

func (s *Stack) RegisterUndo(target any, handler Handler) {
	e := entry{target: target, handler: handler}
	switch {
	case s.undoing:
		s.redo = append(s.redo, e)
	case s.redoing:
		s.undo = append(s.undo, e)
	default:
		s.undo = append(s.undo, e)
		s.redo = s.redo[:0]
	}
	if s.limit > 0 && len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
}

func (s *Stack) IsUndoing() bool { return s.undoing }
func (s *Stack) IsRedoing() bool { return s.redoing }

// CanUndo 报告撤销栈是否非空。
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo 报告重做栈是否非空。
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// UndoCount 返回撤销栈深度。
func (s *Stack) UndoCount() int { return len(s.undo) }

// RedoCount 返回重做栈深度。
func (s *Stack) RedoCount() int { return len(s.redo) }

// Undo 执行最近一次撤销动作，栈为空时返回 false。
func (s *Stack) Undo() bool {
	if len(s.undo) == 0 || s.undoing || s.redoing {
		return false
	}
	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.undoing = true
	defer func() { s.undoing = false }()
	e.handler(e.target)
	return true
}

// Redo 执行最近一次重做动作，栈为空时返回 false。
func (s *Stack) Redo() bool {
	if len(s.redo) == 0 || s.undoing || s.redoing {
		return false
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.redoing = true
	defer func() { s.redoing = false }()
	e.handler(e.target)
	return true
}

// RemoveAll 清空两个栈。
func (s *Stack) RemoveAll() {
	s.undo = nil
	s.redo = nil
}

// RemoveAllWithTarget 移除目标为 target 的全部动作，用于编辑器销毁时。
func (s *Stack) RemoveAllWithTarget(target any) {
	s.undo = filter(s.undo, target)
	s.redo = filter(s.redo, target)
}

func filter(es []entry, target any) []entry {
	out := es[:0]
	for _, e := range es {
		if e.target != target {
			out = append(out, e)
		}
	}
	return out
}
