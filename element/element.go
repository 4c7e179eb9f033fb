package element

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind 决定元素的呈现方式。
type Kind int

const (
	KindBullet Kind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindQuote
	KindCode
)

var kindNames = map[Kind]string{
	KindBullet:   "bullet",
	KindHeading1: "h1",
	KindHeading2: "h2",
	KindHeading3: "h3",
	KindQuote:    "quote",
	KindCode:     "code",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind 将名称解析为 Kind，"-" 与 "bullet" 均表示普通条目。
func ParseKind(s string) (Kind, bool) {
	if s == "-" {
		return KindBullet, true
	}
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindBullet, false
}

// ChangeKind 区分元素变更通知的类型。
type ChangeKind int

const (
	TextChanged ChangeKind = iota
	KindChanged
	ChildrenChanged
	OpenChanged
)

func (c ChangeKind) String() string {
	switch c {
	case TextChanged:
		return "text"
	case KindChanged:
		return "kind"
	case ChildrenChanged:
		return "children"
	case OpenChanged:
		return "open"
	default:
		return "unknown"
	}
}

// Change 是一次变更通知。
type Change struct {
	Kind    ChangeKind
	Element *Element
}

// Element 是持久化文档树中的一个节点。父指针只用于遍历，不表示所有权。
type Element struct {
	id       string
	text     RichText
	kind     Kind
	open     bool
	children []*Element
	parent   *Element
	doc      *Document

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Change)
}

// New 创建一个展开状态的普通条目。
func New(text RichText) *Element {
	return &Element{id: uuid.NewString(), text: text.Normalize(), open: true}
}

// NewWithID 使用给定 id 创建元素，id 为空时自动生成。
func NewWithID(id string, text RichText) *Element {
	e := New(text)
	if id != "" {
		e.id = id
	}
	return e
}

func (e *Element) ID() string          { return e.id }
func (e *Element) Text() RichText      { return e.text }
func (e *Element) Kind() Kind          { return e.kind }
func (e *Element) Open() bool          { return e.open }
func (e *Element) Parent() *Element    { return e.parent }
func (e *Element) Document() *Document { return e.doc }

// Title 返回纯文本内容。
func (e *Element) Title() string { return e.text.String() }

// Children 返回子元素的副本。
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount 返回子元素数量。
func (e *Element) ChildCount() int { return len(e.children) }

// Child 返回第 i 个子元素，越界时返回 nil。
func (e *Element) Child(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// IndexInParent 返回元素在父元素中的位置，没有父元素时返回 -1。
func (e *Element) IndexInParent() int {
	if e.parent == nil {
		return -1
	}
	for i, c := range e.parent.children {
		if c == e {
			return i
		}
	}
	return -1
}

// IsAncestorOf 判断 e 是否为 o 的祖先。
func (e *Element) IsAncestorOf(o *Element) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

// Walk 先序遍历 e 及其全部后代，fn 返回 false 时停止。
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Subscribe 注册变更回调，返回取消订阅函数。取消后再收到的通知会被丢弃。
func (e *Element) Subscribe(fn func(Change)) (cancel func()) {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount 返回当前订阅者数量。
func (e *Element) SubscriberCount() int { return len(e.subs) }

func (e *Element) notify(kind ChangeKind) {
	ch := Change{Kind: kind, Element: e}
	// 回调中可能取消订阅，先复制一份
	subs := append([]subscriber(nil), e.subs...)
	for _, s := range subs {
		s.fn(ch)
	}
	if e.doc != nil {
		e.doc.elementDidChange(ch)
	}
}

// SetText 替换文本；内容未变化时不做任何事并返回 false。
func (e *Element) SetText(t RichText) bool {
	if e.text.Equal(t) {
		return false
	}
	e.text = t.Normalize()
	e.notify(TextChanged)
	return true
}

// SetKind 修改元素类型。
func (e *Element) SetKind(k Kind) {
	if e.kind == k {
		return
	}
	e.kind = k
	e.notify(KindChanged)
}

// SetOpen 展开或折叠元素。
func (e *Element) SetOpen(open bool) {
	if e.open == open {
		return
	}
	e.open = open
	e.notify(OpenChanged)
}

// InsertChild 在位置 i 插入子元素；c 若已有父元素会先被移除。
func (e *Element) InsertChild(i int, c *Element) error {
	if c == nil {
		return fmt.Errorf("element: 子元素为空")
	}
	if c == e || c.IsAncestorOf(e) {
		return fmt.Errorf("element: 不能把 %s 插入到自身的子树中", c.id)
	}
	if old := c.parent; old != nil {
		if old == e && c.IndexInParent() < i {
			i--
		}
		old.detach(c)
		old.notify(ChildrenChanged)
	}
	i = min(max(i, 0), len(e.children))
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = c
	c.parent = e
	c.adopt(e.doc)
	e.notify(ChildrenChanged)
	return nil
}

// AppendChild 将 c 追加为最后一个子元素。
func (e *Element) AppendChild(c *Element) error {
	return e.InsertChild(len(e.children), c)
}

// RemoveChild 移除子元素 c。
func (e *Element) RemoveChild(c *Element) {
	if c == nil || c.parent != e {
		return
	}
	e.detach(c)
	c.adopt(nil)
	e.notify(ChildrenChanged)
}

// RemoveFromParent 将 e 从父元素中移除。
func (e *Element) RemoveFromParent() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// MoveChildren 把 from 的全部子元素按顺序移动到 e 的位置 at。
func (e *Element) MoveChildren(from *Element, at int) error {
	if from == nil || from == e || len(from.children) == 0 {
		return nil
	}
	if from.IsAncestorOf(e) {
		return fmt.Errorf("element: 不能把 %s 的子元素移动到其后代中", from.id)
	}
	moved := from.children
	from.children = nil
	at = min(max(at, 0), len(e.children))
	rest := append([]*Element(nil), e.children[at:]...)
	e.children = append(append(e.children[:at:at], moved...), rest...)
	for _, c := range moved {
		c.parent = e
		c.adopt(e.doc)
	}
	from.notify(ChildrenChanged)
	e.notify(ChildrenChanged)
	return nil
}

func (e *Element) detach(c *Element) {
	for i, x := range e.children {
		if x == c {
			e.children = append(e.children[:i:i], e.children[i+1:]...)
			break
		}
	}
	c.parent = nil
}

// adopt 更新子树所属的文档并维护 id 索引。
func (e *Element) adopt(doc *Document) {
	e.Walk(func(x *Element) bool {
		if x.doc != nil && x.doc != doc {
			x.doc.unindex(x)
		}
		x.doc = doc
		if doc != nil {
			doc.index(x)
		}
		return true
	})
}
