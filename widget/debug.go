package widget

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ByLCY/outliner/geom"
)

// Describer 由希望在调试输出中显示摘要的内容实现。
type Describer interface {
	Describe(w *Widget) string
}

type debugNode struct {
	ID       ID           `json:"id"`
	Type     string       `json:"type"`
	Label    string       `json:"label,omitempty"`
	Frame    geom.Rect    `json:"frame"`
	Contents geom.Rect    `json:"contents"`
	Visible  bool         `json:"visible"`
	Children []*debugNode `json:"children,omitempty"`
}

func (t *Tree) debugTree(w *Widget) *debugNode {
	n := &debugNode{
		ID:       w.id,
		Type:     strings.TrimPrefix(fmt.Sprintf("%T", w.content), "*"),
		Frame:    w.frame,
		Contents: w.contentsFrame,
		Visible:  w.Visible(),
	}
	if d, ok := w.content.(Describer); ok {
		n.Label = d.Describe(w)
	}
	for _, id := range w.children {
		n.Children = append(n.Children, t.debugTree(t.nodes[id]))
	}
	return n
}

// EncodeDebugJSON 将布局结果以 JSON 写入 out，便于调试或可视化。
func (t *Tree) EncodeDebugJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(t.debugTree(t.Root()))
}

// WriteDebugJSON 将布局结果输出到文件。
func (t *Tree) WriteDebugJSON(path string) error {
	data, err := json.MarshalIndent(t.debugTree(t.Root()), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
