package paint

import (
	"image"

	"github.com/ByLCY/outliner/geom"
)

// Color 采用 0-255 的 RGBA 数值，A 为 0 时按不透明处理。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	A int `json:"a,omitempty"`
}

// Alpha 返回实际使用的不透明度（0-255）。
func (c Color) Alpha() int {
	if c.A <= 0 {
		return 255
	}
	return c.A
}

var (
	Black     = Color{R: 30, G: 30, B: 30}
	Secondary = Color{R: 120, G: 120, B: 120}
	LinkBlue  = Color{R: 15, G: 98, B: 254}
	Selection = Color{R: 180, G: 210, B: 255, A: 160}
	Highlight = Color{R: 255, G: 236, B: 179, A: 200}
)

// Font 描述一个字体面：family 与字号（pt）以及粗斜体。
type Font struct {
	Family    string  `json:"family"`
	Size      float64 `json:"size"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Monospace bool    `json:"monospace,omitempty"`
}

// Painter 是宿主渲染器需要实现的绘制接口。核心只通过它输出图形，坐标均为绝对坐标（pt）。
type Painter interface {
	// FillRect 用颜色填充矩形。
	FillRect(r geom.Rect, c Color)
	// StrokeLine 绘制一条线段。
	StrokeLine(from, to geom.Point, width float64, c Color)
	// DrawText 以 baseline 为基线在 x 处绘制一段同样式文本。
	DrawText(s string, x, baseline float64, font Font, c Color)
	// DrawIcon 在矩形内绘制名为 name 的图标，tint 为 nil 时使用原色。
	DrawIcon(name string, r geom.Rect, tint *Color)
	// DrawImage 直接绘制位图。
	DrawImage(img image.Image, r geom.Rect)
}

// Nop 是什么也不做的 Painter，适合无界面测试。
type Nop struct{}

func (Nop) FillRect(geom.Rect, Color)                         {}
func (Nop) StrokeLine(geom.Point, geom.Point, float64, Color) {}
func (Nop) DrawText(string, float64, float64, Font, Color)    {}
func (Nop) DrawIcon(string, geom.Rect, *Color)                {}
func (Nop) DrawImage(image.Image, geom.Rect)                  {}

var _ Painter = Nop{}
