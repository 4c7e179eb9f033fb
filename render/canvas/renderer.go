package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/ByLCY/outliner/fonts"
	"github.com/ByLCY/outliner/paint"
	"github.com/ByLCY/outliner/render"
	"github.com/ByLCY/outliner/text"
	"github.com/ByLCY/outliner/widget"
)

// Renderer 基于 github.com/tdewolff/canvas 实现排版后端与 PDF 输出。
// 编辑器内部以 pt 计量，canvas 以 mm 计量，在本包边界换算。
type Renderer struct {
	baseDir    string
	monoFamily string
	margin     float64
	title      string
	background paint.Color
	log        *zap.Logger

	fontRes map[string]FontResource

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily

	advances *cache.Cache
	icons    *IconSet
}

var (
	_ render.Renderer = (*Renderer)(nil)
	_ text.Typesetter = (*Renderer)(nil)
	_ text.Measurer   = (*Renderer)(nil)
)

// Options 配置 canvas 渲染器。
type Options struct {
	BaseDir    string
	Fonts      map[string]FontResource // 按字族名注入的字体
	Icons      map[string]Resource     // 按图标名注入的位图
	MonoFamily string                  // 代码块使用的字族，默认 Go Mono
	Margin     float64                 // 页边距（pt）
	Title      string                  // PDF 标题
	Background *paint.Color
	Logger     *zap.Logger
}

// Resource 可以直接给出字节，也可以给出路径（相对 BaseDir）。
type Resource struct {
	Bytes []byte
	Path  string
}

// FontResource 是一个字族的四个字形，缺少的字形使用 Regular。
type FontResource struct {
	Regular    Resource
	Bold       Resource
	Italic     Resource
	BoldItalic Resource
}

func (f FontResource) style(s fonts.Style) Resource {
	switch s {
	case fonts.Bold:
		return f.Bold
	case fonts.Italic:
		return f.Italic
	case fonts.BoldItalic:
		return f.BoldItalic
	default:
		return f.Regular
	}
}

// NewRenderer 创建以 baseDir 解析资源路径的渲染器。
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions 创建带注入资源的渲染器。图标加载失败只记录日志。
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		baseDir:      opts.BaseDir,
		monoFamily:   opts.MonoFamily,
		margin:       opts.Margin,
		title:        opts.Title,
		background:   paint.Color{R: 255, G: 255, B: 255},
		log:          log,
		fontRes:      map[string]FontResource{},
		fontFamilies: map[string]*canvas.FontFamily{},
		advances:     cache.New(cache.NoExpiration, 0),
		icons:        NewIconSet(),
	}
	if r.monoFamily == "" {
		r.monoFamily = fonts.GoMono
	}
	if opts.Background != nil {
		r.background = *opts.Background
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		r.fontRes[strings.ToLower(name)] = res
	}
	for name, res := range opts.Icons {
		if name == "" {
			continue
		}
		data, err := r.readResource(res)
		if err == nil {
			err = r.icons.Decode(name, bytes.NewReader(data))
		}
		if err != nil {
			r.log.Warn("加载图标失败", zap.String("icon", name), zap.Error(err))
		}
	}
	return r
}

// Icons 返回渲染器使用的图标集。
func (r *Renderer) Icons() *IconSet { return r.icons }

// Render 将部件树输出为单页 PDF，页面大小为根部件的尺寸加页边距。
func (r *Renderer) Render(tree *widget.Tree) ([]byte, error) {
	if tree == nil || tree.Root() == nil {
		return nil, fmt.Errorf("部件树为空")
	}
	tree.LayoutIfNeeded()
	frame := tree.Root().Frame()
	if frame.Width <= 0 {
		return nil, fmt.Errorf("部件树尚未布局")
	}

	width := toMm(frame.Width + 2*r.margin)
	height := toMm(frame.Height + 2*r.margin)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(r.title, "", "", "", "outliner")

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与部件树保持左上角为原点
	ctx.SetFillColor(colorFromPaint(r.background))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	p := &painter{r: r, ctx: ctx, dx: r.margin, dy: r.margin}
	tree.Draw(p)
	if p.err != nil {
		return nil, p.err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutRuns 实现 text.Typesetter，使用共享的贪心换行算法。
func (r *Renderer) LayoutRuns(s text.StyledString, width float64) ([]text.LineBox, error) {
	if _, err := r.family(s.Default.Font); err != nil {
		return nil, err
	}
	for _, run := range s.Runs {
		if _, err := r.family(run.Style.Font); err != nil {
			return nil, err
		}
	}
	return text.Wrap(s, width, r), nil
}

// Advance 实现 text.Measurer，结果按字体与字符缓存。
func (r *Renderer) Advance(ch rune, s text.Style) float64 {
	if ch == '\n' {
		return 0
	}
	key := fmt.Sprintf("%s|%t|%t|%t|%g|%d", s.Font.Family, s.Font.Bold, s.Font.Italic, s.Font.Monospace, s.Font.Size, ch)
	if v, ok := r.advances.Get(key); ok {
		return v.(float64)
	}
	face, err := r.face(s.Font, paint.Black)
	if err != nil {
		return 0
	}
	w := toPt(face.TextWidth(string(ch)))
	r.advances.Set(key, w, cache.NoExpiration)
	return w
}

// Metrics 实现 text.Measurer。
func (r *Renderer) Metrics(s text.Style) text.Metrics {
	face, err := r.face(s.Font, paint.Black)
	if err != nil {
		return text.Metrics{}
	}
	m := face.Metrics()
	return text.Metrics{Ascent: toPt(m.Ascent), Descent: toPt(m.Descent)}
}

func (r *Renderer) face(font paint.Font, col paint.Color) (*canvas.FontFace, error) {
	family, err := r.family(font)
	if err != nil {
		return nil, err
	}
	size := font.Size
	if size <= 0 {
		size = 12
	}
	return family.Face(size, colorFromPaint(col), canvasStyle(font), canvas.FontNormal), nil
}

func (r *Renderer) familyName(font paint.Font) string {
	if font.Monospace {
		return r.monoFamily
	}
	if font.Family == "" {
		return fonts.Go
	}
	return font.Family
}

// family 返回字族，首次使用时加载全部四个字形。找不到时退回内置 Go 字族。
func (r *Renderer) family(font paint.Font) (*canvas.FontFamily, error) {
	name := r.familyName(font)
	key := strings.ToLower(name)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily(name)
	err := r.loadFamily(family, name)
	if err != nil {
		r.log.Debug("字体加载失败，使用内置字体", zap.String("family", name), zap.Error(err))
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
		}
		family = fallback
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFamily(family *canvas.FontFamily, name string) error {
	for style := fonts.Regular; style <= fonts.BoldItalic; style++ {
		data, err := r.loadFontBytes(name, style)
		if err != nil {
			return err
		}
		if err := family.LoadFont(data, 0, toCanvasStyle(style)); err != nil {
			return fmt.Errorf("解析字体 %s %s 失败: %w", name, style, err)
		}
	}
	return nil
}

func (r *Renderer) loadFontBytes(name string, style fonts.Style) ([]byte, error) {
	if res, ok := r.fontRes[strings.ToLower(name)]; ok {
		src := res.style(style)
		if len(src.Bytes) == 0 && src.Path == "" {
			src = res.Regular
		}
		return r.readResource(src)
	}
	return fonts.Load(name, style)
}

func (r *Renderer) readResource(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path == "" {
		return nil, fmt.Errorf("资源缺少数据与路径")
	}
	path := res.Path
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许使用相对路径：%s", path)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	family := canvas.NewFontFamily("outliner-fallback")
	for style := fonts.Regular; style <= fonts.BoldItalic; style++ {
		data, err := fonts.Load(fonts.Go, style)
		if err != nil {
			return nil, err
		}
		if err := family.LoadFont(data, 0, toCanvasStyle(style)); err != nil {
			return nil, err
		}
	}
	r.fallbackFamily = family
	return family, nil
}

func canvasStyle(font paint.Font) canvas.FontStyle {
	return toCanvasStyle(fonts.StyleOf(font.Bold, font.Italic))
}

func toCanvasStyle(s fonts.Style) canvas.FontStyle {
	switch s {
	case fonts.Bold:
		return canvas.FontBold
	case fonts.Italic:
		return canvas.FontRegular | canvas.FontItalic
	case fonts.BoldItalic:
		return canvas.FontBold | canvas.FontItalic
	default:
		return canvas.FontRegular
	}
}

func colorFromPaint(c paint.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.Alpha())/255.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * text.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * text.PtToMm }
