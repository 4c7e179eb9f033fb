// Package texttest 提供确定性的排版后端，供无字体环境下的测试使用。
package texttest

import (
	"github.com/ByLCY/outliner/text"
)

// Monospace 为每个字符返回固定的前进宽度，行高固定，与字号无关。
type Monospace struct {
	CharWidth float64
	Ascent    float64
	Descent   float64
}

// New 返回字符宽 10pt、行高 12pt 的等宽排版后端。
func New() *Monospace {
	return &Monospace{CharWidth: 10, Ascent: 9, Descent: 3}
}

var (
	_ text.Typesetter = (*Monospace)(nil)
	_ text.Measurer   = (*Monospace)(nil)
)

// LayoutRuns 实现 text.Typesetter，使用共享的贪心换行算法。
func (m *Monospace) LayoutRuns(s text.StyledString, width float64) ([]text.LineBox, error) {
	return text.Wrap(s, width, m), nil
}

func (m *Monospace) Advance(r rune, _ text.Style) float64 {
	if r == '\n' {
		return 0
	}
	return m.CharWidth
}

func (m *Monospace) Metrics(text.Style) text.Metrics {
	return text.Metrics{Ascent: m.Ascent, Descent: m.Descent}
}
