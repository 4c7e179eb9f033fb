package text

// Typesetter 负责根据宽度约束将带样式的文本拆成行盒。由字体后端实现，对排版引擎而言是黑盒。
type Typesetter interface {
	LayoutRuns(s StyledString, width float64) ([]LineBox, error)
}

// LineBox 是字体后端返回的一行排版结果，所有 x 坐标相对行首。
type LineBox struct {
	Start              int       `json:"start"`  // 行首字符下标
	Count              int       `json:"count"`  // 本行字符数（包含行尾空白与换行符）
	Width              float64   `json:"width"`  // 不含行尾空白的宽度
	Height             float64   `json:"height"` // ascent + descent
	Ascent             float64   `json:"ascent"`
	Offsets            []float64 `json:"offsets"` // 长度 Count+1，Offsets[i] 为第 i 个字符前的光标 x
	TrailingWhitespace float64   `json:"trailingWhitespace"`
}

// End 返回本行之后的首个下标。
func (b LineBox) End() int { return b.Start + b.Count }

// Metrics 描述字体在竖直方向的度量（pt）。
type Metrics struct {
	Ascent  float64
	Descent float64
}

// Measurer 提供逐字符测量能力，供 Wrap 使用。
type Measurer interface {
	Advance(r rune, s Style) float64
	Metrics(s Style) Metrics
}
