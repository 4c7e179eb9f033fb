package element

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce 是结构变更通知合并的默认延迟。
const DefaultDebounce = 500 * time.Millisecond

// Document 拥有元素树，维护 id 索引，并在变更静默后重新推导反向链接、触发持久化回调。
type Document struct {
	root      *Element
	byID      map[string]*Element
	debouncer *Debouncer
	clock     func() time.Time
	log       *zap.Logger

	backlinks map[string][]*Element
	derived   bool
	listeners []listener
	nextID    int
	changes   int

	// OnPersist 在合并后的变更落定时调用，由持久化层实现。
	OnPersist func(*Document)
}

type listener struct {
	id int
	fn func()
}

// Option 配置 Document。
type Option func(*Document)

// WithClock 替换时钟，便于测试。
func WithClock(clock func() time.Time) Option {
	return func(d *Document) { d.clock = clock }
}

// WithDebounce 设置合并延迟。
func WithDebounce(delay time.Duration) Option {
	return func(d *Document) { d.debouncer.delay = delay }
}

// WithLogger 注入日志。
func WithLogger(log *zap.Logger) Option {
	return func(d *Document) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDocument 以 root 为根创建文档。
func NewDocument(root *Element, opts ...Option) *Document {
	d := &Document{
		byID:  map[string]*Element{},
		clock: time.Now,
		log:   zap.NewNop(),
	}
	d.debouncer = NewDebouncer(DefaultDebounce, d.settle)
	for _, opt := range opts {
		opt(d)
	}
	if root == nil {
		root = New(nil)
	}
	d.root = root
	root.adopt(d)
	return d
}

// Root 返回根元素。
func (d *Document) Root() *Element { return d.root }

// Lookup 按 id 查找元素。
func (d *Document) Lookup(id string) *Element { return d.byID[id] }

// Len 返回文档中的元素数量（含根）。
func (d *Document) Len() int { return len(d.byID) }

// Debouncer 返回变更合并器，宿主 tick 通过 Poll 推进。
func (d *Document) Debouncer() *Debouncer { return d.debouncer }

// PendingChanges 返回自上次落定以来收到的变更次数。
func (d *Document) PendingChanges() int { return d.changes }

// Find 返回第一个纯文本等于 title 的元素。
func (d *Document) Find(title string) *Element {
	var found *Element
	d.root.Walk(func(e *Element) bool {
		if e.Title() == title {
			found = e
			return false
		}
		return true
	})
	return found
}

func (d *Document) index(e *Element)   { d.byID[e.id] = e }
func (d *Document) unindex(e *Element) { delete(d.byID, e.id) }

// elementDidChange 由元素在每次变更后调用。
func (d *Document) elementDidChange(ch Change) {
	d.changes++
	d.debouncer.Trigger(d.clock())
}

// Flush 立即执行等待中的落定。
func (d *Document) Flush() bool { return d.debouncer.Flush() }

// settle 重新推导反向链接并通知持久化层与监听者。
func (d *Document) settle() {
	d.log.Debug("document settled", zap.Int("changes", d.changes))
	d.changes = 0
	d.deriveLinks()
	if d.OnPersist != nil {
		d.OnPersist(d)
	}
	for _, l := range append([]listener(nil), d.listeners...) {
		l.fn()
	}
}

// OnSettled 注册落定后的回调，返回取消函数。
func (d *Document) OnSettled(fn func()) (cancel func()) {
	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range d.listeners {
			if l.id == id {
				d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) deriveLinks() {
	links := map[string][]*Element{}
	d.root.Walk(func(e *Element) bool {
		seen := map[string]bool{}
		for _, r := range e.text {
			if r.Style.InternalLink == "" || seen[r.Style.InternalLink] {
				continue
			}
			seen[r.Style.InternalLink] = true
			links[r.Style.InternalLink] = append(links[r.Style.InternalLink], e)
		}
		return true
	})
	d.backlinks = links
	d.derived = true
}

// Backlinks 返回链接到 title 的元素，排除 page 子树内部的元素。page 可以为 nil。
func (d *Document) Backlinks(title string, page *Element) []*Element {
	if !d.derived {
		d.deriveLinks()
	}
	var out []*Element
	for _, e := range d.backlinks[title] {
		if page != nil && (e == page || page.IsAncestorOf(e)) {
			continue
		}
		if e.doc != d {
			continue
		}
		out = append(out, e)
	}
	return out
}

// UnlinkedReferences 返回纯文本提到 title 但没有链接到它的元素（忽略大小写）。
func (d *Document) UnlinkedReferences(title string, page *Element) []*Element {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	var out []*Element
	d.root.Walk(func(e *Element) bool {
		if e == d.root || (page != nil && (e == page || page.IsAncestorOf(e))) {
			return true
		}
		if !strings.Contains(strings.ToLower(e.Title()), needle) {
			return true
		}
		for _, r := range e.text {
			if r.Style.InternalLink == title {
				return true
			}
		}
		out = append(out, e)
		return true
	})
	return out
}
