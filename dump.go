package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ByLCY/outliner/editor"
	"github.com/ByLCY/outliner/widget"
)

var (
	focusColor   = color.New(color.FgGreen, color.Bold)
	proxyColor   = color.New(color.FgCyan)
	sectionColor = color.New(color.FgYellow)
	hiddenColor  = color.New(color.FgHiBlack)
	frameColor   = color.New(color.Faint)
)

// dumpTree 以缩进形式打印部件树：聚焦节点为绿色，代理节点为青色，区块为黄色，隐藏节点为灰色。
func dumpTree(out io.Writer, root *editor.Root) {
	tree := root.Tree()
	var focused *widget.Widget
	if n := root.Focused(); n != nil {
		focused = n.Widget()
	}
	var walk func(w *widget.Widget, depth int)
	walk = func(w *widget.Widget, depth int) {
		label := fmt.Sprintf("%T", w.Content())
		if d, ok := w.Content().(widget.Describer); ok {
			label = d.Describe(w)
		}
		c := color.New(color.Reset)
		switch content := w.Content().(type) {
		case *editor.TextNode:
			if content.IsProxy() {
				c = proxyColor
			}
		case *editor.Section:
			c = sectionColor
		}
		if w == focused {
			c = focusColor
			label += fmt.Sprintf(" [%d]", root.CursorPosition())
		}
		if !w.Visible() {
			c = hiddenColor
		}
		f := w.Frame()
		fmt.Fprint(out, strings.Repeat("  ", depth))
		c.Fprint(out, label)
		frameColor.Fprintf(out, " (%.1f,%.1f %.1f×%.1f)\n", f.X, f.Y, f.Width, f.Height)
		for _, child := range w.Children() {
			walk(child, depth+1)
		}
	}
	walk(tree.Root(), 0)
}
