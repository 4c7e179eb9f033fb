package text

import (
	"math"
	"unicode"
)

// Wrap 使用贪心换行算法把 s 拆成行盒：优先在空白处断行，单词超过限制时按字符拆分，
// 并尊重显式换行符。空白总是挂在行尾，不参与是否换行的判断。
// width <= 0 时不做宽度限制。
func Wrap(s StyledString, width float64, m Measurer) []LineBox {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	glyphs := s.glyphs()
	advances := make([]float64, len(glyphs))
	for i, g := range glyphs {
		if g.r == '\n' {
			continue
		}
		advances[i] = m.Advance(g.r, s.styleOf(g))
	}

	var lines []LineBox
	start := 0
	current := 0.0

	emit := func(end int) {
		lines = append(lines, makeLineBox(s, glyphs, advances, start, end, m))
		start = end
		current = 0
	}

	for _, tok := range tokenize(glyphs) {
		switch tok.kind {
		case tokenNewline:
			emit(tok.end)
			continue
		case tokenSpace:
			for i := tok.start; i < tok.end; i++ {
				current += advances[i]
			}
			continue
		}

		tokenWidth := 0.0
		for i := tok.start; i < tok.end; i++ {
			tokenWidth += advances[i]
		}
		if current > 0 && current+tokenWidth > limit {
			emit(tok.start)
		}
		if tokenWidth <= limit {
			current += tokenWidth
			continue
		}
		// 单词本身超出限制时按字符拆分
		for i := tok.start; i < tok.end; i++ {
			if current > 0 && current+advances[i] > limit {
				emit(i)
			}
			current += advances[i]
		}
	}
	emit(len(glyphs))
	return lines
}

func makeLineBox(s StyledString, glyphs []glyph, advances []float64, start, end int, m Measurer) LineBox {
	box := LineBox{
		Start:   start,
		Count:   end - start,
		Offsets: make([]float64, end-start+1),
	}
	x := 0.0
	for i := start; i < end; i++ {
		box.Offsets[i-start] = x
		x += advances[i]
	}
	box.Offsets[end-start] = x

	trailing := 0.0
	for i := end - 1; i >= start; i-- {
		if !unicode.IsSpace(glyphs[i].r) {
			break
		}
		trailing += advances[i]
	}
	box.Width = x - trailing
	box.TrailingWhitespace = trailing

	var ascent, descent float64
	if start == end {
		met := m.Metrics(s.Default)
		if start > 0 && start <= len(glyphs) {
			met = m.Metrics(s.styleOf(glyphs[start-1]))
		}
		ascent, descent = met.Ascent, met.Descent
	}
	for i := start; i < end; i++ {
		met := m.Metrics(s.styleOf(glyphs[i]))
		ascent = math.Max(ascent, met.Ascent)
		descent = math.Max(descent, met.Descent)
	}
	box.Ascent = ascent
	box.Height = ascent + descent
	return box
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenNewline
)

type token struct {
	kind       tokenKind
	start, end int
}

// tokenize 把字符表切分为单词、空白与换行三类片段。替换字符（图标）视为单独的单词。
func tokenize(glyphs []glyph) []token {
	var tokens []token
	i := 0
	for i < len(glyphs) {
		r := glyphs[i].r
		switch {
		case r == '\n':
			tokens = append(tokens, token{kind: tokenNewline, start: i, end: i + 1})
			i++
		case r == ReplacementChar:
			tokens = append(tokens, token{kind: tokenWord, start: i, end: i + 1})
			i++
		case unicode.IsSpace(r):
			j := i + 1
			for j < len(glyphs) && glyphs[j].r != '\n' && unicode.IsSpace(glyphs[j].r) {
				j++
			}
			tokens = append(tokens, token{kind: tokenSpace, start: i, end: j})
			i = j
		default:
			j := i + 1
			for j < len(glyphs) && !unicode.IsSpace(glyphs[j].r) && glyphs[j].r != ReplacementChar {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, start: i, end: j})
			i = j
		}
	}
	return tokens
}
