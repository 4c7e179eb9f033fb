package editor

import (
	"fmt"

	"github.com/ByLCY/outliner/element"
	"go.uber.org/zap"
)

// Command 是编辑器命令的封闭集合。
type Command int

const (
	CommandNone Command = iota
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	MoveLeftAndModifySelection
	MoveRightAndModifySelection
	MoveUpAndModifySelection
	MoveDownAndModifySelection
	MoveWordLeft
	MoveWordRight
	MoveWordLeftAndModifySelection
	MoveWordRightAndModifySelection
	MoveToBeginningOfLine
	MoveToEndOfLine
	MoveToBeginningOfLineAndModifySelection
	MoveToEndOfLineAndModifySelection
	MoveToBeginningOfDocument
	MoveToEndOfDocument
	IndentNode
	OutdentNode
	SelectAll
	DeleteForward
	DeleteBackward
	InsertNewline
	InsertLineBreak
	InsertText
	SetMarkedText
	ToggleStrong
	ToggleEmphasis
	ToggleStrikethrough
	ToggleFold
	MoveNodeUp
	MoveNodeDown
	commandCount
)

// definition 是命令的静态撤销策略。
type definition struct {
	name     string
	undo     bool // 执行前记录撤销快照
	redo     bool // 撤销后可以重做
	coalesce bool // 与紧邻的同一命令合并为一个撤销项
	tree     bool // 快照包含页面的元素子树
	// structural 命令会改变树结构，在投影节点上不执行
	structural bool
}

var definitions = [commandCount]definition{
	CommandNone:                             {name: "none"},
	MoveLeft:                                {name: "moveLeft"},
	MoveRight:                               {name: "moveRight"},
	MoveUp:                                  {name: "moveUp"},
	MoveDown:                                {name: "moveDown"},
	MoveLeftAndModifySelection:              {name: "moveLeftAndModifySelection"},
	MoveRightAndModifySelection:             {name: "moveRightAndModifySelection"},
	MoveUpAndModifySelection:                {name: "moveUpAndModifySelection"},
	MoveDownAndModifySelection:              {name: "moveDownAndModifySelection"},
	MoveWordLeft:                            {name: "moveWordLeft"},
	MoveWordRight:                           {name: "moveWordRight"},
	MoveWordLeftAndModifySelection:          {name: "moveWordLeftAndModifySelection"},
	MoveWordRightAndModifySelection:         {name: "moveWordRightAndModifySelection"},
	MoveToBeginningOfLine:                   {name: "moveToBeginningOfLine"},
	MoveToEndOfLine:                         {name: "moveToEndOfLine"},
	MoveToBeginningOfLineAndModifySelection: {name: "moveToBeginningOfLineAndModifySelection"},
	MoveToEndOfLineAndModifySelection:       {name: "moveToEndOfLineAndModifySelection"},
	MoveToBeginningOfDocument:               {name: "moveToBeginningOfDocument"},
	MoveToEndOfDocument:                     {name: "moveToEndOfDocument"},
	IndentNode:                              {name: "indentNode", undo: true, redo: true, tree: true, structural: true},
	OutdentNode:                             {name: "outdentNode", undo: true, redo: true, tree: true, structural: true},
	SelectAll:                               {name: "selectAll"},
	DeleteForward:                           {name: "deleteForward", undo: true, redo: true, tree: true},
	DeleteBackward:                          {name: "deleteBackward", undo: true, redo: true, tree: true},
	InsertNewline:                           {name: "insertNewline", undo: true, redo: true, tree: true, structural: true},
	InsertLineBreak:                         {name: "insertLineBreak", undo: true, redo: true},
	InsertText:                              {name: "insertText", undo: true, redo: true, coalesce: true},
	SetMarkedText:                           {name: "setMarkedText", undo: true, redo: true, coalesce: true},
	ToggleStrong:                            {name: "toggleStrong", undo: true, redo: true},
	ToggleEmphasis:                          {name: "toggleEmphasis", undo: true, redo: true},
	ToggleStrikethrough:                     {name: "toggleStrikethrough", undo: true, redo: true},
	ToggleFold:                              {name: "toggleFold"},
	MoveNodeUp:                              {name: "moveNodeUp", undo: true, redo: true, tree: true, structural: true},
	MoveNodeDown:                            {name: "moveNodeDown", undo: true, redo: true, tree: true, structural: true},
}

func (c Command) String() string {
	if c < 0 || c >= commandCount {
		return fmt.Sprintf("command(%d)", int(c))
	}
	return definitions[c].name
}

// CommandByName 按名称查找命令。
func CommandByName(name string) (Command, bool) {
	for c := CommandNone + 1; c < commandCount; c++ {
		if definitions[c].name == name {
			return c, true
		}
	}
	return CommandNone, false
}

// IsUndoable 报告命令执行前是否记录撤销快照。
func (c Command) IsUndoable() bool { return c > 0 && c < commandCount && definitions[c].undo }

// Coalesces 报告连续执行时是否合并为一个撤销项。
func (c Command) Coalesces() bool { return c > 0 && c < commandCount && definitions[c].coalesce }

// Do 执行一个不带参数的命令，返回是否产生了变化。
func (r *Root) Do(cmd Command) bool {
	switch cmd {
	case InsertText, SetMarkedText:
		return false
	}
	return r.perform(cmd, func() bool { return r.run(cmd) })
}

// perform 是命令管线：检查、记录撤销快照、执行、整理焦点并只重新布局受影响的路径。
func (r *Root) perform(cmd Command, fn func() bool) bool {
	if cmd <= CommandNone || cmd >= commandCount || r.focused == nil {
		return false
	}
	def := definitions[cmd]
	if def.structural && r.nodeSel == nil && r.focused.proxy {
		r.log.Debug("structural command ignored", zap.Stringer("command", cmd))
		r.lastCommand = cmd
		return false
	}
	commit := r.pushUndoState(cmd)
	changed := fn()
	r.lastCommand = cmd
	if commit != nil {
		commit(changed)
	}
	if !isVertical(cmd) {
		r.hasGoalX = false
	}
	r.settleFocus()
	r.restartBlink()
	r.tree.LayoutIfNeeded()
	return changed
}

func isVertical(cmd Command) bool {
	switch cmd {
	case MoveUp, MoveDown, MoveUpAndModifySelection, MoveDownAndModifySelection:
		return true
	}
	return false
}

func (r *Root) run(cmd Command) bool {
	switch cmd {
	case MoveLeft:
		return r.moveHorizontal(-1, false, false)
	case MoveRight:
		return r.moveHorizontal(1, false, false)
	case MoveLeftAndModifySelection:
		return r.moveHorizontal(-1, false, true)
	case MoveRightAndModifySelection:
		return r.moveHorizontal(1, false, true)
	case MoveWordLeft:
		return r.moveHorizontal(-1, true, false)
	case MoveWordRight:
		return r.moveHorizontal(1, true, false)
	case MoveWordLeftAndModifySelection:
		return r.moveHorizontal(-1, true, true)
	case MoveWordRightAndModifySelection:
		return r.moveHorizontal(1, true, true)
	case MoveUp:
		return r.moveVertical(-1, false)
	case MoveDown:
		return r.moveVertical(1, false)
	case MoveUpAndModifySelection:
		return r.moveVertical(-1, true)
	case MoveDownAndModifySelection:
		return r.moveVertical(1, true)
	case MoveToBeginningOfLine:
		return r.moveLineBoundary(false, false)
	case MoveToEndOfLine:
		return r.moveLineBoundary(true, false)
	case MoveToBeginningOfLineAndModifySelection:
		return r.moveLineBoundary(false, true)
	case MoveToEndOfLineAndModifySelection:
		return r.moveLineBoundary(true, true)
	case MoveToBeginningOfDocument:
		return r.moveDocumentBoundary(false)
	case MoveToEndOfDocument:
		return r.moveDocumentBoundary(true)
	case IndentNode:
		return r.indent()
	case OutdentNode:
		return r.outdent()
	case SelectAll:
		return r.selectAll()
	case DeleteForward:
		return r.deleteForward()
	case DeleteBackward:
		return r.deleteBackward()
	case InsertNewline:
		return r.splitNode()
	case InsertLineBreak:
		return r.replaceSelection("\n")
	case ToggleStrong:
		return r.toggleFormat(func(s *element.Style) *bool { return &s.Strong })
	case ToggleEmphasis:
		return r.toggleFormat(func(s *element.Style) *bool { return &s.Emphasis })
	case ToggleStrikethrough:
		return r.toggleFormat(func(s *element.Style) *bool { return &s.Strikethrough })
	case ToggleFold:
		return r.toggleFold()
	case MoveNodeUp:
		return r.moveNode(-1)
	case MoveNodeDown:
		return r.moveNode(1)
	}
	return false
}

// InsertText 在光标处插入文本；有选区或组字区间时替换它们。
func (r *Root) InsertText(s string) bool {
	return r.perform(InsertText, func() bool { return r.replaceSelection(s) })
}

// SetMarkedText 设置输入法组字文本，selected 是组字文本内部的选区。
func (r *Root) SetMarkedText(s string, selected Range) bool {
	return r.perform(SetMarkedText, func() bool { return r.setMarkedText(s, selected) })
}

// UnmarkText 确认组字：保留文本，清除组字区间。
func (r *Root) UnmarkText() {
	if r.marked.IsEmpty() || r.focused == nil {
		return
	}
	r.marked = Range{}
	r.lastCommand = CommandNone
	r.focused.invalidate()
	r.tree.LayoutIfNeeded()
}
