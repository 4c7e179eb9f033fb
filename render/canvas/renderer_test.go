package canvasrenderer

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/outliner/editor"
	"github.com/ByLCY/outliner/fonts"
	"github.com/ByLCY/outliner/outline"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/text"
)

func bodyStyle(size float64) text.Style {
	return text.Style{Font: paint.Font{Family: fonts.Go, Size: size}, Color: paint.Black}
}

func styled(s string, st text.Style) text.StyledString {
	return text.StyledString{Runs: []text.Run{{Text: s, Style: st}}, Default: st}
}

func TestLayoutRunsGreedyWrapsText(t *testing.T) {
	r := NewRenderer(".")
	lines, err := r.LayoutRuns(styled("hello world again", bodyStyle(12)), 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, l := range lines {
		if l.Width > 60 {
			t.Fatalf("第 %d 行宽度 %g 超出限制", i, l.Width)
		}
	}
}

func TestLayoutRunsHonorsNewlines(t *testing.T) {
	r := NewRenderer(".")
	lines, err := r.LayoutRuns(styled("foo\n\nbar", bodyStyle(12)), 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer(".")
	first := "SAMPLE-A"
	measured, err := r.LayoutRuns(styled(first, bodyStyle(12)), 1e6)
	if err != nil || len(measured) != 1 {
		t.Fatalf("measure failed: %v %d", err, len(measured))
	}
	limit := measured[0].Width
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}
	lines, err := r.LayoutRuns(styled(first+"\nSAMPLE-B", bodyStyle(12)), limit)
	if err != nil {
		t.Fatalf("LayoutRuns error: %v", err)
	}
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d", got)
	}
}

func TestMonospaceAdvancesAreEqual(t *testing.T) {
	r := NewRenderer(".")
	mono := text.Style{Font: paint.Font{Size: 12, Monospace: true}}
	if a, b := r.Advance('i', mono), r.Advance('m', mono); math.Abs(a-b) > 1e-9 || a <= 0 {
		t.Fatalf("等宽字体前进宽度不一致: i=%g m=%g", a, b)
	}
	body := bodyStyle(12)
	if r.Advance('i', body) >= r.Advance('m', body) {
		t.Fatalf("比例字体中 i 应窄于 m")
	}
	if r.Advance('\n', body) != 0 {
		t.Fatalf("换行符不占宽度")
	}
}

func TestAdvanceIsCached(t *testing.T) {
	r := NewRenderer(".")
	before := r.advances.ItemCount()
	w := r.Advance('x', bodyStyle(12))
	if r.advances.ItemCount() != before+1 {
		t.Fatalf("测量结果未缓存")
	}
	if again := r.Advance('x', bodyStyle(12)); again != w {
		t.Fatalf("缓存结果不一致: %g != %g", again, w)
	}
}

func TestMetricsScaleWithSize(t *testing.T) {
	r := NewRenderer(".")
	small := r.Metrics(bodyStyle(12))
	large := r.Metrics(bodyStyle(24))
	if small.Ascent <= 0 {
		t.Fatalf("invalid metrics: %+v", small)
	}
	if math.Abs(large.Ascent-2*small.Ascent) > 1e-6 {
		t.Fatalf("ascent should scale with size: %g vs %g", large.Ascent, small.Ascent)
	}
}

func TestUnknownFamilyFallsBack(t *testing.T) {
	r := NewRenderer("")
	st := text.Style{Font: paint.Font{Family: "Nonexistent", Size: 12}}
	if _, err := r.LayoutRuns(styled("abc", st), 100); err != nil {
		t.Fatalf("unknown family should fall back, got %v", err)
	}
	if r.Advance('a', st) != r.Advance('a', bodyStyle(12)) {
		t.Fatalf("fallback should measure like Go Regular")
	}
}

func TestInjectedFontMissingFileFallsBack(t *testing.T) {
	r := NewRendererWithOptions(Options{
		BaseDir: t.TempDir(),
		Fonts:   map[string]FontResource{"Custom": {Regular: Resource{Path: "missing.ttf"}}},
	})
	if _, err := r.LayoutRuns(styled("abc", text.Style{Font: paint.Font{Family: "custom", Size: 12}}), 100); err != nil {
		t.Fatalf("missing font file should fall back, got %v", err)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	doc, _, err := outline.Load(strings.NewReader(`outline "Page" {
  - "first **bold** item" closed {
    - "hidden"
  }
  code "x := 1"
  - "icon ![star] and [[Page]]"
}`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	r := NewRendererWithOptions(Options{Margin: 10, Title: "Page"})
	root := editor.NewRoot(doc, doc.Find("Page"), r)
	size := root.Layout(300)
	if size.Height <= 0 {
		t.Fatalf("layout produced empty size")
	}
	data, err := r.Render(root.Tree())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestRenderRejectsNilTree(t *testing.T) {
	if _, err := NewRenderer(".").Render(nil); err == nil {
		t.Fatalf("expected error for nil tree")
	}
}
