package outline

import (
	"regexp"
	"strings"

	"github.com/ByLCY/outliner/element"
)

// 行内标记：**粗体**、_斜体_、~~删除线~~、[[内部链接]]、[文字](网址)、![图标]。
// 粗体、斜体与删除线可以嵌套。
var markupPattern = regexp.MustCompile(
	`\*\*(.+?)\*\*` +
		`|_(.+?)_` +
		`|~~(.+?)~~` +
		`|\[\[([^\]]+)\]\]` +
		`|\[([^\]]+)\]\(([^)\s]+)\)` +
		`|!\[([A-Za-z0-9_-]+)\]`)

// ParseMarkup 将行内标记转换为富文本。
func ParseMarkup(s string) element.RichText {
	return parseMarkup(s, element.Style{}).Normalize()
}

func parseMarkup(s string, base element.Style) element.RichText {
	var out element.RichText
	plain := func(t string) {
		if t != "" {
			out = append(out, element.Run{Text: t, Style: base})
		}
	}
	rest := s
	for rest != "" {
		loc := markupPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			plain(rest)
			break
		}
		plain(rest[:loc[0]])
		group := func(i int) string {
			if loc[2*i] < 0 {
				return ""
			}
			return rest[loc[2*i]:loc[2*i+1]]
		}
		st := base
		switch {
		case loc[2] >= 0:
			st.Strong = true
			out = append(out, parseMarkup(group(1), st)...)
		case loc[4] >= 0:
			st.Emphasis = true
			out = append(out, parseMarkup(group(2), st)...)
		case loc[6] >= 0:
			st.Strikethrough = true
			out = append(out, parseMarkup(group(3), st)...)
		case loc[8] >= 0:
			st.InternalLink = group(4)
			out = append(out, element.Run{Text: group(4), Style: st})
		case loc[10] >= 0:
			st.Link = group(6)
			out = append(out, element.Run{Text: group(5), Style: st})
		case loc[14] >= 0:
			st.Icon = group(7)
			out = append(out, element.Run{Text: string(element.IconChar), Style: st})
		}
		rest = rest[loc[1]:]
	}
	return out
}

// FormatMarkup 是 ParseMarkup 的逆操作。来源注释没有对应的标记，会被丢弃。
func FormatMarkup(t element.RichText) string {
	var b strings.Builder
	for _, r := range t.Normalize() {
		s := r.Style
		var text string
		switch {
		case s.Icon != "":
			text = strings.Repeat("!["+s.Icon+"]", len([]rune(r.Text)))
		case s.InternalLink != "" && s.InternalLink == r.Text:
			text = "[[" + r.Text + "]]"
		case s.Link != "":
			text = "[" + r.Text + "](" + s.Link + ")"
		default:
			text = r.Text
		}
		if s.Strikethrough {
			text = "~~" + text + "~~"
		}
		if s.Emphasis {
			text = "_" + text + "_"
		}
		if s.Strong {
			text = "**" + text + "**"
		}
		b.WriteString(text)
	}
	return b.String()
}
