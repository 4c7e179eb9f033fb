// Package fonts 提供内置字体：Go 与 Go Mono 两个字族，各含常规、粗体、斜体与粗斜体。
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字族名。
const (
	Go     = "Go"
	GoMono = "Go Mono"
)

// Style 是字族中的一个字形。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf 根据粗斜体组合返回字形。
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

func (s Style) String() string {
	switch s {
	case Bold:
		return "Bold"
	case Italic:
		return "Italic"
	case BoldItalic:
		return "BoldItalic"
	default:
		return "Regular"
	}
}

var builtin = map[string][4][]byte{
	Go:     {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	GoMono: {gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF},
}

// Has 报告 family 是否为内置字族，可带 "embed:" 前缀，大小写不敏感。
func Has(family string) bool {
	_, ok := lookup(family)
	return ok
}

// Load 返回内置字族中某个字形的 TTF 数据。
func Load(family string, style Style) ([]byte, error) {
	faces, ok := lookup(family)
	if !ok {
		return nil, fmt.Errorf("没有内置字体 %q", family)
	}
	if style < Regular || style > BoldItalic {
		return nil, fmt.Errorf("字体 %s 没有字形 %d", family, style)
	}
	return faces[style], nil
}

// Families 返回所有内置字族名。
func Families() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(family string) ([4][]byte, bool) {
	family = strings.TrimSpace(strings.TrimPrefix(family, "embed:"))
	for name, faces := range builtin {
		if strings.EqualFold(name, family) {
			return faces, true
		}
	}
	return [4][]byte{}, false
}
