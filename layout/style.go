package layout

import (
	"image/color"

	"github.com/ByLCY/gemdoc/gemtext"
	"github.com/ByLCY/gemdoc/links"
)

// ColorID 是调色板中的颜色编号。
// 有深浅两档的颜色相邻排列，深色在前。
type ColorID int

const (
	ColorBlack ColorID = iota
	ColorGray25
	ColorGray50
	ColorGray75
	ColorGray88
	ColorWhite
	ColorBrown
	ColorOrange
	ColorTeal
	ColorCyan
	ColorMaroon
	ColorRed
	ColorIndigo
	ColorBlue
	NumColors
)

// Palette 给出每个颜色编号的 RGB 值。
var Palette = [NumColors]color.RGBA{
	ColorBlack:  {0, 0, 0, 255},
	ColorGray25: {64, 64, 64, 255},
	ColorGray50: {128, 128, 128, 255},
	ColorGray75: {191, 191, 191, 255},
	ColorGray88: {224, 224, 224, 255},
	ColorWhite:  {255, 255, 255, 255},
	ColorBrown:  {128, 80, 0, 255},
	ColorOrange: {255, 160, 0, 255},
	ColorTeal:   {0, 128, 128, 255},
	ColorCyan:   {0, 192, 192, 255},
	ColorMaroon: {128, 0, 0, 255},
	ColorRed:    {255, 64, 64, 255},
	ColorIndigo: {0, 0, 128, 255},
	ColorBlue:   {64, 96, 255, 255},
}

// RGBA 返回颜色的 RGB 值，未知编号按白色处理。
func (c ColorID) RGBA() color.RGBA {
	if c < 0 || c >= NumColors {
		return Palette[ColorWhite]
	}
	return Palette[c]
}

// Darker 返回同色系的深色一档；没有深色档的颜色原样返回。
func (c ColorID) Darker() ColorID {
	switch c {
	case ColorOrange, ColorCyan, ColorRed, ColorBlue:
		return c - 1
	}
	return c
}

// lineStyle 是一种行类型的固定排版参数。
type lineStyle struct {
	Font   FontID
	Color  ColorID
	Indent int     // 以 gap 为单位
	Top    float64 // 以段落行高为单位
	Bottom float64
}

var lineStyles = [gemtext.NumLineTypes]lineStyle{
	gemtext.Text:         {FontParagraph, ColorGray75, 5, 0.0, 0.0},
	gemtext.Bullet:       {FontParagraph, ColorGray75, 10, 0.5, 0.5},
	gemtext.Preformatted: {FontPreformatted, ColorCyan, 5, 1.0, 1.0},
	gemtext.Quote:        {FontQuote, ColorGray75, 10, 0.5, 0.5},
	gemtext.Header1:      {FontHeader1, ColorWhite, 0, 2.0, 1.0},
	gemtext.Header2:      {FontHeader2, ColorWhite, 0, 2.0, 1.0},
	gemtext.Header3:      {FontHeader3, ColorWhite, 0, 1.5, 1.0},
	gemtext.Link:         {FontRegular, ColorWhite, 5, 1.0, 1.0},
}

// linkColor 按协议给链接着色：不支持的协议为红色，http 橙色，gopher 蓝色，其余青色。
func linkColor(f links.Flags) ColorID {
	switch {
	case f&links.SupportedProtocol == 0:
		return ColorRed
	case f&links.HTTP != 0:
		return ColorOrange
	case f&links.Gopher != 0:
		return ColorBlue
	}
	return ColorCyan
}
