// Package render 定义把部件树输出为最终文件的渲染器接口。
package render

import "github.com/ByLCY/outliner/widget"

// Renderer 将已布局的部件树输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(tree *widget.Tree) ([]byte, error)
}
