package element

import "time"

// Debouncer 合并短时间内的多次触发，只在最后一次触发后静默 delay 才执行 fn。
// 它不启动 goroutine：由宿主的动画 tick 调用 Poll 推进，因此 fn 总在 UI 线程执行。
type Debouncer struct {
	delay    time.Duration
	deadline time.Time
	pending  bool
	fn       func()
}

// NewDebouncer 创建 Debouncer。
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger 重新计时；已有的等待会被新的截止时间取代。
func (d *Debouncer) Trigger(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.pending = true
}

// Cancel 取消尚未执行的调用。
func (d *Debouncer) Cancel() { d.pending = false }

// Pending 报告是否有等待执行的调用。
func (d *Debouncer) Pending() bool { return d.pending }

// Deadline 返回当前截止时间。
func (d *Debouncer) Deadline() time.Time { return d.deadline }

// Poll 在截止时间已到时执行 fn 并返回 true。
func (d *Debouncer) Poll(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	return d.Flush()
}

// Flush 立即执行等待中的调用。
func (d *Debouncer) Flush() bool {
	if !d.pending {
		return false
	}
	d.pending = false
	if d.fn != nil {
		d.fn()
	}
	return true
}
