package element

// Snapshot 记录一棵子树在某一时刻的文本、类型、展开状态与子元素顺序，用于结构性撤销。
type Snapshot struct {
	root    *Element
	entries []snapshotEntry
}

type snapshotEntry struct {
	el       *Element
	text     RichText
	kind     Kind
	open     bool
	children []*Element
}

// Capture 记录 root 子树的当前状态。
func Capture(root *Element) *Snapshot {
	s := &Snapshot{root: root}
	root.Walk(func(e *Element) bool {
		s.entries = append(s.entries, snapshotEntry{
			el:       e,
			text:     e.text,
			kind:     e.kind,
			open:     e.open,
			children: e.Children(),
		})
		return true
	})
	return s
}

// Root 返回快照的根元素。
func (s *Snapshot) Root() *Element { return s.root }

// Restore 将子树恢复到快照状态。先静默改写全部字段，再统一发出通知，
// 保证订阅者看到的是恢复后的完整状态。
func (s *Snapshot) Restore() {
	if s == nil {
		return
	}
	doc := s.root.doc
	type fired struct {
		el   *Element
		kind ChangeKind
	}
	var changes []fired
	before := map[*Element]bool{}
	s.root.Walk(func(e *Element) bool {
		before[e] = true
		return true
	})
	// 快照之后新建或移入的元素先断开
	for _, ent := range s.entries {
		for _, c := range ent.el.children {
			c.parent = nil
		}
	}
	for _, ent := range s.entries {
		e := ent.el
		if !e.text.Equal(ent.text) {
			e.text = ent.text
			changes = append(changes, fired{e, TextChanged})
		}
		if e.kind != ent.kind {
			e.kind = ent.kind
			changes = append(changes, fired{e, KindChanged})
		}
		if e.open != ent.open {
			e.open = ent.open
			changes = append(changes, fired{e, OpenChanged})
		}
		e.children = append([]*Element(nil), ent.children...)
		for _, c := range e.children {
			if old := c.parent; old != nil && old != e {
				old.detach(c)
				changes = append(changes, fired{old, ChildrenChanged})
			}
			c.parent = e
		}
		changes = append(changes, fired{e, ChildrenChanged})
	}
	s.root.adopt(doc)
	after := map[*Element]bool{}
	s.root.Walk(func(e *Element) bool {
		after[e] = true
		return true
	})
	for e := range before {
		if after[e] {
			continue
		}
		kept := e.children[:0]
		for _, c := range e.children {
			if !after[c] {
				kept = append(kept, c)
			}
		}
		e.children = kept
		if e.parent != nil && after[e.parent] {
			e.parent = nil
		}
		if e.doc != nil {
			e.doc.unindex(e)
			e.doc = nil
		}
	}
	for _, ch := range changes {
		ch.el.notify(ch.kind)
	}
}
