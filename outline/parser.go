package outline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	outlineLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `\d+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Symbol", Pattern: `[-+.,;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(outlineLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File 是一个大纲文件：若干页面。
type File struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Outlines []*Outline     `parser:"Newline* ( @@ Newline* )*"`
}

// Outline 是一个页面：标题、标志与条目。
type Outline struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Title StringLiteral  `parser:"'outline' @String"`
	Flags []string       `parser:"@Ident*"`
	Items []*Item        `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Journal 报告页面是否带 journal 标志。
func (o *Outline) Journal() bool { return hasFlag(o.Flags, "journal") }

// Item 是一个条目。Kind 为 "-"、h1、h2、h3、quote 或 code。
type Item struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Kind     string         `parser:"@( '-' | 'h1' | 'h2' | 'h3' | 'quote' | 'code' )"`
	Text     StringLiteral  `parser:"@String"`
	Flags    []string       `parser:"@Ident*"`
	Children []*Item        `parser:"( '{' Newline* ( @@ ( ';' | Newline )* )* '}' )?"`
}

// Closed 报告条目是否折叠。
func (it *Item) Closed() bool { return hasFlag(it.Flags, "closed") }

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

// StringLiteral 在捕获时去掉 Go 风格的引号。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 从 r 读取大纲。
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString 解析字符串形式的大纲。
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}
