package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/patrickmn/go-cache"

	"github.com/ByLCY/outliner/paint"
)

// 内置图标名。
const (
	IconBullet       = "bullet"
	IconBulletClosed = "bullet-closed"
	IconMissing      = "missing"
)

// iconSourceSize 是内置图标的原始边长（像素）。
const iconSourceSize = 64

// IconSet 保存图标原图，并按尺寸与着色缓存缩放结果。
type IconSet struct {
	mu      sync.RWMutex
	sources map[string]image.Image
	scaled  *cache.Cache
}

// NewIconSet 返回包含内置项目符号图标的图标集。
func NewIconSet() *IconSet {
	s := &IconSet{
		sources: map[string]image.Image{},
		scaled:  cache.New(cache.NoExpiration, 0),
	}
	bullet := color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	s.sources[IconBullet] = drawDisc(0.2, 0, bullet)
	s.sources[IconBulletClosed] = drawDisc(0.2, 0.42, bullet)
	s.sources[IconMissing] = drawFrame(color.NRGBA{R: 200, G: 60, B: 60, A: 255})
	return s
}

// Add 注册或替换名为 name 的图标。
func (s *IconSet) Add(name string, img image.Image) {
	s.mu.Lock()
	s.sources[name] = img
	s.mu.Unlock()
	s.scaled.Flush()
}

// Decode 从 r 解码位图并注册为图标。
func (s *IconSet) Decode(name string, r io.Reader) error {
	img, err := imaging.Decode(r)
	if err != nil {
		return fmt.Errorf("解码图标 %s 失败: %w", name, err)
	}
	s.Add(name, img)
	return nil
}

// Open 从文件加载图标。
func (s *IconSet) Open(name, path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("读取图标 %s 失败: %w", path, err)
	}
	s.Add(name, img)
	return nil
}

// Has 报告图标是否存在。
func (s *IconSet) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[name]
	return ok
}

// Image 返回缩放到 w×h 像素的图标，tint 非 nil 时替换颜色并保留透明度。
func (s *IconSet) Image(name string, w, h int, tint *paint.Color) (image.Image, bool) {
	s.mu.RLock()
	src, ok := s.sources[name]
	s.mu.RUnlock()
	if !ok || w <= 0 || h <= 0 {
		return nil, false
	}
	key := fmt.Sprintf("%s|%d|%d", name, w, h)
	if tint != nil {
		key += fmt.Sprintf("|%d,%d,%d,%d", tint.R, tint.G, tint.B, tint.Alpha())
	}
	if img, ok := s.scaled.Get(key); ok {
		return img.(image.Image), true
	}
	img := imaging.Resize(src, w, h, imaging.Lanczos)
	if tint != nil {
		t := *tint
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: uint8(t.R),
				G: uint8(t.G),
				B: uint8(t.B),
				A: uint8(int(c.A) * t.Alpha() / 255),
			}
		})
	}
	s.scaled.Set(key, image.Image(img), cache.NoExpiration)
	return img, true
}

// drawDisc 绘制实心圆点，halo > 0 时在外圈加一层半透明光晕，表示折叠。
// 半径按边长比例给出，每个像素 4×4 采样抗锯齿。
func drawDisc(radius, halo float64, c color.NRGBA) *image.NRGBA {
	img := imaging.New(iconSourceSize, iconSourceSize, color.NRGBA{})
	center := float64(iconSourceSize) / 2
	coverage := func(px, py int, r float64) float64 {
		hit := 0
		for sy := 0; sy < 4; sy++ {
			for sx := 0; sx < 4; sx++ {
				dx := float64(px) + (float64(sx)+0.5)/4 - center
				dy := float64(py) + (float64(sy)+0.5)/4 - center
				if dx*dx+dy*dy <= r*r {
					hit++
				}
			}
		}
		return float64(hit) / 16
	}
	for py := 0; py < iconSourceSize; py++ {
		for px := 0; px < iconSourceSize; px++ {
			a := coverage(px, py, radius*iconSourceSize)
			if halo > 0 {
				a = max(a, 0.25*coverage(px, py, halo*iconSourceSize))
			}
			if a > 0 {
				img.SetNRGBA(px, py, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a * float64(c.A))})
			}
		}
	}
	return img
}

// drawFrame 绘制带对角线的方框，用作未知图标的占位图。
func drawFrame(c color.NRGBA) *image.NRGBA {
	img := imaging.New(iconSourceSize, iconSourceSize, color.NRGBA{})
	const border = 4
	for y := 0; y < iconSourceSize; y++ {
		for x := 0; x < iconSourceSize; x++ {
			edge := x < border || y < border || x >= iconSourceSize-border || y >= iconSourceSize-border
			diagonal := x-y < border/2 && y-x < border/2
			if edge || diagonal {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}
