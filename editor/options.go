package editor

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Debug 为 true 时，状态断言失败会直接 panic；否则修正为合法值并记录日志。
var Debug = false

// Options 是编辑器的排版与交互参数，单位均为 pt。
type Options struct {
	FontFamily         string
	FontSize           float64
	LineHeightMultiple float64
	SpacingBefore      float64
	SpacingAfter       float64
	Indent             float64 // 子节点缩进
	Gutter             float64 // 文本左侧留给项目符号的宽度
	SpacerHeight       float64
	BlinkInterval      time.Duration
}

// DefaultOptions 返回默认参数。
func DefaultOptions() Options {
	return Options{
		FontFamily:         "Go",
		FontSize:           12,
		LineHeightMultiple: 1.2,
		SpacingBefore:      2,
		SpacingAfter:       2,
		Indent:             20,
		Gutter:             16,
		SpacerHeight:       24,
		BlinkInterval:      530 * time.Millisecond,
	}
}

func assertf(log *zap.Logger, ok bool, format string, args ...any) bool {
	if ok {
		return true
	}
	msg := fmt.Sprintf(format, args...)
	if Debug {
		panic("editor: " + msg)
	}
	log.Debug("assertion failed", zap.String("detail", msg))
	return false
}

// Range 是半开区间 [Start, End)，下标为字符（rune）下标。
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Rng 构造一个区间，自动调整端点顺序。
func Rng(a, b int) Range {
	if b < a {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Len 返回区间长度。
func (r Range) Len() int { return r.End - r.Start }

// IsEmpty 报告区间是否为空。
func (r Range) IsEmpty() bool { return r.End <= r.Start }

func (r Range) clamp(n int) Range {
	return Range{Start: min(max(r.Start, 0), n), End: min(max(r.End, 0), n)}
}
