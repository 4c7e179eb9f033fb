package outline

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ByLCY/outliner/element"
)

// ErrEmptyOutline 表示文件中没有任何页面。
var ErrEmptyOutline = errors.New("outline: 文件中没有页面")

// Build 根据大纲创建文档：文档根元素的每个子元素是一个页面。
func Build(f *File, opts ...element.Option) (*element.Document, error) {
	if f == nil || len(f.Outlines) == 0 {
		return nil, ErrEmptyOutline
	}
	root := element.New(nil)
	for _, o := range f.Outlines {
		for _, flag := range o.Flags {
			if flag != "journal" {
				return nil, fmt.Errorf("%s: 未知的页面标志 %q", o.Pos, flag)
			}
		}
		page := element.New(ParseMarkup(string(o.Title)))
		if err := buildItems(page, o.Items); err != nil {
			return nil, err
		}
		if err := root.AppendChild(page); err != nil {
			return nil, fmt.Errorf("%s: %w", o.Pos, err)
		}
	}
	return element.NewDocument(root, opts...), nil
}

func buildItems(parent *element.Element, items []*Item) error {
	for _, it := range items {
		kind, ok := element.ParseKind(it.Kind)
		if !ok {
			return fmt.Errorf("%s: 未知的条目类型 %q", it.Pos, it.Kind)
		}
		el := element.New(ParseMarkup(string(it.Text)))
		el.SetKind(kind)
		for _, flag := range it.Flags {
			if flag != "closed" {
				return fmt.Errorf("%s: 未知的条目标志 %q", it.Pos, flag)
			}
		}
		if err := buildItems(el, it.Children); err != nil {
			return err
		}
		if it.Closed() && el.ChildCount() > 0 {
			el.SetOpen(false)
		}
		if err := parent.AppendChild(el); err != nil {
			return fmt.Errorf("%s: %w", it.Pos, err)
		}
	}
	return nil
}

// Load 解析并构建文档，同时返回解析结果以便查询页面标志。
func Load(r io.Reader, opts ...element.Option) (*element.Document, *File, error) {
	f, err := Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("解析大纲失败: %w", err)
	}
	doc, err := Build(f, opts...)
	if err != nil {
		return nil, nil, err
	}
	return doc, f, nil
}

// Find 返回标题为 title 的页面定义。
func (f *File) Find(title string) *Outline {
	for _, o := range f.Outlines {
		if string(o.Title) == title {
			return o
		}
	}
	return nil
}

// Format 把文档写回大纲记法。journal 中列出的页面带 journal 标志。
func Format(w io.Writer, doc *element.Document, journal ...string) error {
	var b strings.Builder
	for i, page := range doc.Root().Children() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("outline " + strconv.Quote(FormatMarkup(page.Text())))
		for _, j := range journal {
			if j == page.Title() {
				b.WriteString(" journal")
				break
			}
		}
		b.WriteString(" {\n")
		formatItems(&b, page.Children(), 1)
		b.WriteString("}\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatItems(b *strings.Builder, els []*element.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, el := range els {
		kind := "-"
		if el.Kind() != element.KindBullet {
			kind = el.Kind().String()
		}
		b.WriteString(indent + kind + " " + strconv.Quote(FormatMarkup(el.Text())))
		if el.ChildCount() == 0 {
			b.WriteString("\n")
			continue
		}
		if !el.Open() {
			b.WriteString(" closed")
		}
		b.WriteString(" {\n")
		formatItems(b, el.Children(), depth+1)
		b.WriteString(indent + "}\n")
	}
}
