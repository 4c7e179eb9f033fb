package editor

import (
	"strings"
	"unicode"

	"github.com/ByLCY/outliner/widget"
)

// Key 是编辑器识别的特殊按键。
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyBackspace
	KeyDelete
	KeyTab
	KeyBackTab
	KeyEnter
	KeyEscape
	KeyHome
	KeyEnd
)

var keyNames = map[string]Key{
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"tab":       KeyTab,
	"backtab":   KeyBackTab,
	"enter":     KeyEnter,
	"escape":    KeyEscape,
	"home":      KeyHome,
	"end":       KeyEnd,
}

// KeyByName 按名称查找按键（不区分大小写）。
func KeyByName(name string) (Key, bool) {
	k, ok := keyNames[strings.ToLower(name)]
	return k, ok
}

// ModifierByName 解析修饰键名称。
func ModifierByName(name string) (widget.Modifiers, bool) {
	switch strings.ToLower(name) {
	case "shift":
		return widget.Shift, true
	case "ctrl", "control":
		return widget.Control, true
	case "alt", "option", "opt":
		return widget.Option, true
	case "cmd", "command", "meta":
		return widget.Command, true
	}
	return 0, false
}

// KeyEvent 是一次按键。Key 为 KeyNone 时 Text 为输入的字符。
type KeyEvent struct {
	Key       Key
	Text      string
	Modifiers widget.Modifiers
}

// KeyDown 把按键映射为命令并执行。无法识别的按键原样放行并返回 false。
func (r *Root) KeyDown(ev KeyEvent) bool {
	if cmd := commandForKey(ev); cmd != CommandNone {
		r.Do(cmd)
		return true
	}
	mods := ev.Modifiers
	switch ev.Key {
	case KeyEscape:
		return r.CancelNodeSelection()
	case KeyNone:
	default:
		return false
	}
	if mods.Has(widget.Command) {
		switch strings.ToLower(ev.Text) {
		case "z":
			if mods.Has(widget.Shift) {
				return r.Redo()
			}
			return r.Undo()
		}
		return false
	}
	if mods.Has(widget.Control) || ev.Text == "" {
		return false
	}
	for _, c := range ev.Text {
		if unicode.IsControl(c) && c != '\t' {
			return false
		}
	}
	return r.InsertText(ev.Text)
}

func commandForKey(ev KeyEvent) Command {
	mods := ev.Modifiers
	shift := mods.Has(widget.Shift)
	alt := mods.Has(widget.Option)
	cmd := mods.Has(widget.Command)
	pick := func(plain, extend Command) Command {
		if shift {
			return extend
		}
		return plain
	}
	switch ev.Key {
	case KeyLeft:
		switch {
		case cmd:
			return pick(MoveToBeginningOfLine, MoveToBeginningOfLineAndModifySelection)
		case alt:
			return pick(MoveWordLeft, MoveWordLeftAndModifySelection)
		}
		return pick(MoveLeft, MoveLeftAndModifySelection)
	case KeyRight:
		switch {
		case cmd:
			return pick(MoveToEndOfLine, MoveToEndOfLineAndModifySelection)
		case alt:
			return pick(MoveWordRight, MoveWordRightAndModifySelection)
		}
		return pick(MoveRight, MoveRightAndModifySelection)
	case KeyUp:
		switch {
		case cmd && alt:
			return MoveNodeUp
		case cmd:
			return MoveToBeginningOfDocument
		}
		return pick(MoveUp, MoveUpAndModifySelection)
	case KeyDown:
		switch {
		case cmd && alt:
			return MoveNodeDown
		case cmd:
			return MoveToEndOfDocument
		}
		return pick(MoveDown, MoveDownAndModifySelection)
	case KeyHome:
		return pick(MoveToBeginningOfLine, MoveToBeginningOfLineAndModifySelection)
	case KeyEnd:
		return pick(MoveToEndOfLine, MoveToEndOfLineAndModifySelection)
	case KeyBackspace:
		return DeleteBackward
	case KeyDelete:
		return DeleteForward
	case KeyTab:
		return pick(IndentNode, OutdentNode)
	case KeyBackTab:
		return OutdentNode
	case KeyEnter:
		return pick(InsertNewline, InsertLineBreak)
	case KeyNone:
		if !cmd {
			return CommandNone
		}
		switch strings.ToLower(ev.Text) {
		case "a":
			return SelectAll
		case "b":
			return ToggleStrong
		case "i":
			return ToggleEmphasis
		case "x":
			if shift {
				return ToggleStrikethrough
			}
		case ".":
			return ToggleFold
		}
	}
	return CommandNone
}
