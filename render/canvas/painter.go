package canvasrenderer

import (
	"image"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	"go.uber.org/zap"

	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
)

// iconScale 是图标光栅化的像素密度（像素/pt）。
const iconScale = 4

// painter 把 paint.Painter 的调用转换为 canvas 绘制。坐标为 pt，加上页边距后换算为 mm。
type painter struct {
	r      *Renderer
	ctx    *canvas.Context
	dx, dy float64
	err    error
}

var _ paint.Painter = (*painter)(nil)

func (p *painter) x(v float64) float64 { return toMm(v + p.dx) }
func (p *painter) y(v float64) float64 { return toMm(v + p.dy) }

func (p *painter) FillRect(r geom.Rect, c paint.Color) {
	if r.IsEmpty() {
		return
	}
	p.ctx.SetFillColor(colorFromPaint(c))
	p.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	p.ctx.DrawPath(p.x(r.X), p.y(r.Y), canvas.Rectangle(toMm(r.Width), toMm(r.Height)))
}

func (p *painter) StrokeLine(from, to geom.Point, width float64, c paint.Color) {
	if width <= 0 {
		width = 1
	}
	p.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	p.ctx.SetStrokeColor(colorFromPaint(c))
	p.ctx.SetStrokeWidth(toMm(width))
	path := &canvas.Path{}
	path.MoveTo(0, 0)
	path.LineTo(toMm(to.X-from.X), toMm(to.Y-from.Y))
	p.ctx.DrawPath(p.x(from.X), p.y(from.Y), path)
}

func (p *painter) DrawText(s string, x, baseline float64, font paint.Font, c paint.Color) {
	if s == "" {
		return
	}
	face, err := p.r.face(font, c)
	if err != nil {
		p.fail(err)
		return
	}
	p.ctx.DrawText(p.x(x), p.y(baseline), canvas.NewTextLine(face, s, canvas.Left))
}

func (p *painter) DrawIcon(name string, r geom.Rect, tint *paint.Color) {
	if r.IsEmpty() {
		return
	}
	w := int(math.Ceil(r.Width * iconScale))
	h := int(math.Ceil(r.Height * iconScale))
	img, ok := p.r.icons.Image(name, w, h, tint)
	if !ok {
		p.r.log.Debug("未知图标，使用占位图", zap.String("icon", name))
		img, _ = p.r.icons.Image(IconMissing, w, h, tint)
	}
	p.drawImage(img, r)
}

func (p *painter) DrawImage(img image.Image, r geom.Rect) {
	if img == nil || r.IsEmpty() {
		return
	}
	p.drawImage(img, r)
}

func (p *painter) drawImage(img image.Image, r geom.Rect) {
	dpmm := float64(img.Bounds().Dx()) / toMm(r.Width)
	if dpmm <= 0 {
		dpmm = 1
	}
	p.ctx.DrawImage(p.x(r.X), p.y(r.Y), img, canvas.DPMM(dpmm))
}

// fail 记录第一个错误，Render 结束时返回。
func (p *painter) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
