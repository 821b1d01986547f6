package canvasrenderer

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/gemdoc/config"
	"github.com/ByLCY/gemdoc/fonts"
	"github.com/ByLCY/gemdoc/layout"
)

// Typesetter 用 tdewolff/canvas 的字体度量实现 layout.Typesetter。
// canvas 以毫米为单位，这里按 dpmm 换算成布局使用的像素。
type Typesetter struct {
	dpmm  float64
	specs [layout.NumFonts]*fonts.Spec

	mu       sync.Mutex
	families map[string]*canvas.FontFamily // 按字体文件路径
	faces    map[faceKey]*canvas.FontFace
}

type faceKey struct {
	font  layout.FontID
	color layout.ColorID
}

var _ layout.Typesetter = (*Typesetter)(nil)

// NewTypesetter 按配置从 store 取得各文档字体。
func NewTypesetter(store *fonts.Store, cfg config.Config) (*Typesetter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Typesetter{
		dpmm:     cfg.DPMM,
		families: map[string]*canvas.FontFamily{},
		faces:    map[faceKey]*canvas.FontFace{},
	}
	for id := layout.FontID(0); id < layout.NumFonts; id++ {
		spec, err := store.Spec(id.String(), cfg.Fonts[id.String()].Src, cfg.FontSize(id))
		if err != nil {
			t.Close()
			return nil, err
		}
		t.specs[id] = spec
		if _, err := t.family(spec.File); err != nil {
			t.Close()
			return nil, err
		}
	}
	return t, nil
}

// Close 归还全部字体引用。
func (t *Typesetter) Close() {
	for i, spec := range t.specs {
		spec.Release()
		t.specs[i] = nil
	}
}

// DPMM 返回每毫米的像素数。
func (t *Typesetter) DPMM() float64 { return t.dpmm }

func (t *Typesetter) family(f *fonts.File) (*canvas.FontFamily, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fam, ok := t.families[f.Path]; ok {
		return fam, nil
	}
	fam := canvas.NewFontFamily(f.Path)
	if err := fam.LoadFont(f.Data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", f.Path, err)
	}
	t.families[f.Path] = fam
	return fam, nil
}

// face 返回指定字体与颜色的字体面；未知字体按 regular 处理。
func (t *Typesetter) face(font layout.FontID, col layout.ColorID) *canvas.FontFace {
	if font < 0 || font >= layout.NumFonts {
		font = layout.FontRegular
	}
	key := faceKey{font, col}
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.faces[key]; ok {
		return f
	}
	spec := t.specs[font]
	f := t.families[spec.File.Path].Face(spec.Size, colorFromPalette(col), canvas.FontRegular, canvas.FontNormal)
	t.faces[key] = f
	return f
}

func (t *Typesetter) toPx(mm float64) int { return int(math.Ceil(mm * t.dpmm)) }

func (t *Typesetter) toMm(px int) float64 { return float64(px) / t.dpmm }

// LineHeight 返回字体行高（像素）。
func (t *Typesetter) LineHeight(font layout.FontID) int {
	return t.toPx(t.face(font, layout.ColorWhite).Metrics().LineHeight)
}

// Advance 返回不折行时的宽度与行高。
func (t *Typesetter) Advance(font layout.FontID, text string) image.Point {
	w := t.face(font, layout.ColorWhite).TextWidth(text)
	return image.Pt(t.toPx(w), t.LineHeight(font))
}

// TryAdvance 在 width 内排下尽可能多的整词；第一个词就放不下时在词内按字符拆分。
func (t *Typesetter) TryAdvance(font layout.FontID, text string, width int) (image.Point, int) {
	full := t.Advance(font, text)
	if width <= 0 || full.X <= width {
		return full, len(text)
	}
	face := t.face(font, layout.ColorWhite)
	limit := t.toMm(width)
	cut := 0
	for _, tok := range tokenizeContent(text) {
		if tok.space {
			continue
		}
		if face.TextWidth(text[:tok.end]) > limit {
			break
		}
		cut = tok.end
	}
	if cut == 0 {
		cut = splitByWidth(text, limit, face)
	}
	return t.Advance(font, text[:cut]), cut
}

// TryAdvanceNoWrap 返回水平偏移 x 处字符的字节偏移。
func (t *Typesetter) TryAdvanceNoWrap(font layout.FontID, text string, x int) int {
	if x <= 0 {
		return 0
	}
	face := t.face(font, layout.ColorWhite)
	for i := range text {
		_, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		if t.toPx(face.TextWidth(text[:end])) > x {
			return i
		}
	}
	return len(text)
}

// MeasureRange 测量多行文本：宽度取最宽一行，高度为行数乘以行高。
func (t *Typesetter) MeasureRange(font layout.FontID, text string) image.Point {
	var size image.Point
	if text == "" {
		return size
	}
	lh := t.LineHeight(font)
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		size.X = max(size.X, t.Advance(font, line).X)
		size.Y += lh
	}
	return size
}

// token 是文本中连续的空白或非空白片段 [start, end)。
type token struct {
	start, end int
	space      bool
}

func tokenizeContent(s string) []token {
	var tokens []token
	start := 0
	lastWasSpace := false
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			lastWasSpace = isSpace
			continue
		}
		if isSpace != lastWasSpace {
			tokens = append(tokens, token{start, i, lastWasSpace})
			start = i
			lastWasSpace = isSpace
		}
	}
	if start < len(s) {
		tokens = append(tokens, token{start, len(s), lastWasSpace})
	}
	return tokens
}

// splitByWidth 返回宽度不超过 limit（mm）的最长前缀的字节长度，至少包含一个字符。
func splitByWidth(s string, limit float64, face *canvas.FontFace) int {
	cut := 0
	for i := range s {
		_, size := utf8.DecodeRuneInString(s[i:])
		end := i + size
		if cut > 0 && face.TextWidth(s[:end]) > limit {
			break
		}
		cut = end
	}
	return cut
}
