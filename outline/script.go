package outline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ByLCY/outliner/editor"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var scriptParser = participle.MustBuild[Script](
	participle.Lexer(outlineLexer),
	participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
)

// Script 是一段按键脚本，用于在没有窗口的情况下驱动编辑器：
//
//	focus "hello world" 5
//	type "abc"
//	key shift+down
//	key cmd+"."
//	do indentNode
type Script struct {
	Steps []*Step `parser:"Newline* ( @@ ( ';' | Newline )* )*"`
}

// Step 是脚本中的一步。
type Step struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Type   *StringLiteral `parser:"  'type' @String"`
	Keys   []string       `parser:"| 'key' @(Ident | String) ( '+' @(Ident | String) )*"`
	Do     string         `parser:"| 'do' @Ident"`
	Focus  *StringLiteral `parser:"| 'focus' @String"`
	Cursor *int           `parser:"  @Number?"`
	Undo   bool           `parser:"| @'undo'"`
	Redo   bool           `parser:"| @'redo'"`
}

// ParseScript 解析按键脚本。
func ParseScript(r io.Reader) (*Script, error) {
	return scriptParser.Parse("", r)
}

// ParseScriptString 解析字符串形式的按键脚本。
func ParseScriptString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}

// KeyEvent 把 "cmd+shift+z" 这样的组合解析为按键事件。最后一项是按键名或字符。
func KeyEvent(parts []string) (editor.KeyEvent, error) {
	var ev editor.KeyEvent
	if len(parts) == 0 {
		return ev, fmt.Errorf("按键为空")
	}
	for _, p := range parts[:len(parts)-1] {
		m, ok := editor.ModifierByName(p)
		if !ok {
			return ev, fmt.Errorf("未知的修饰键 %q", p)
		}
		ev.Modifiers |= m
	}
	last := parts[len(parts)-1]
	if k, ok := editor.KeyByName(last); ok {
		ev.Key = k
		return ev, nil
	}
	if uq, err := strconv.Unquote(last); err == nil {
		last = uq
	}
	if len([]rune(last)) != 1 {
		return ev, fmt.Errorf("未知的按键 %q", last)
	}
	ev.Text = last
	return ev, nil
}

// Replay 依次执行脚本的每一步。focus 按文本查找第一个匹配的节点。
func Replay(r *editor.Root, s *Script) error {
	for _, step := range s.Steps {
		if err := replayStep(r, step); err != nil {
			return fmt.Errorf("%s: %w", step.Pos, err)
		}
	}
	return nil
}

func replayStep(r *editor.Root, step *Step) error {
	switch {
	case step.Type != nil:
		text := string(*step.Type)
		if text == "" {
			return nil
		}
		if !r.InsertText(text) {
			return fmt.Errorf("无法插入 %q", text)
		}
	case len(step.Keys) > 0:
		ev, err := KeyEvent(step.Keys)
		if err != nil {
			return err
		}
		r.KeyDown(ev)
	case step.Do != "":
		cmd, ok := editor.CommandByName(step.Do)
		if !ok {
			return fmt.Errorf("未知的命令 %q", step.Do)
		}
		r.Do(cmd)
	case step.Focus != nil:
		want := string(*step.Focus)
		for _, n := range r.TextNodes() {
			if n.Element().Title() == want {
				cursor := n.Len()
				if step.Cursor != nil {
					cursor = *step.Cursor
				}
				r.Focus(n, cursor)
				return nil
			}
		}
		return fmt.Errorf("没有文本为 %q 的节点", want)
	case step.Undo:
		r.Undo()
	case step.Redo:
		r.Redo()
	}
	return nil
}
