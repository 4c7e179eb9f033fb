package text

import (
	"strings"

	"github.com/ByLCY/outliner/geom"
	"github.com/ByLCY/outliner/paint"
)

// Draw 将 Frame 绘制到 p，origin 为 Frame 左上角的绝对坐标。
// 先按 run 绘制背景与字形，再叠加删除线、下划线，替换字符绘制为图标。
func (f *Frame) Draw(p paint.Painter, origin geom.Point) {
	if f == nil || p == nil {
		return
	}
	for _, l := range f.Lines {
		f.drawLine(p, l, origin)
	}
}

// segment 是一行中属于同一个 run 的连续字符。
type segment struct {
	start, end int
	style      Style
}

func (f *Frame) segments(l *Line) []segment {
	var segs []segment
	for i := l.Start; i < l.End(); i++ {
		g := f.glyphs[i]
		if g.r == '\n' {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].end == i && f.glyphs[i-1].run == g.run {
			segs[n-1].end = i + 1
			continue
		}
		segs = append(segs, segment{start: i, end: i + 1, style: f.str.styleOf(g)})
	}
	return segs
}

func (f *Frame) drawLine(p paint.Painter, l *Line, origin geom.Point) {
	top := origin.Y + l.Rect.Y
	baseline := origin.Y + l.Baseline()
	for _, seg := range f.segments(l) {
		x0 := origin.X + l.OffsetFor(seg.start)
		x1 := origin.X + l.OffsetFor(seg.end)
		st := seg.style
		if st.Background != nil {
			p.FillRect(geom.R(x0, top, x1-x0, l.Rect.Height), *st.Background)
		}
		if st.Replacement != "" || f.isReplacement(seg.start) {
			name := st.Replacement
			if name == "" {
				name = "object"
			}
			for i := seg.start; i < seg.end; i++ {
				gx := origin.X + l.OffsetFor(i)
				w := l.OffsetFor(i+1) - l.OffsetFor(i)
				p.DrawIcon(name, geom.R(gx, top, w, l.Height), st.Tint)
			}
			continue
		}
		var b strings.Builder
		for i := seg.start; i < seg.end; i++ {
			b.WriteRune(f.glyphs[i].r)
		}
		p.DrawText(b.String(), x0, baseline, st.Font, st.Color)

		weight := max(st.Font.Size/14, 0.5)
		if st.Strikethrough {
			y := baseline - l.Ascent*0.3
			p.StrokeLine(geom.Pt(x0, y), geom.Pt(x1, y), weight, st.Color)
		}
		if st.Underline {
			y := baseline + weight*1.5
			p.StrokeLine(geom.Pt(x0, y), geom.Pt(x1, y), weight, st.Color)
		}
	}
}
