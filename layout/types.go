package layout

// 该文件定义布局结果中的基本类型：字体/颜色编号、区间、Run 与图片。

import (
	"image"

	"github.com/ByLCY/gemdoc/links"
)

// Format 是文档的源格式。
type Format int

const (
	Gemini Format = iota
	PlainText
)

func (f Format) String() string {
	if f == PlainText {
		return "plain-text"
	}
	return "gemini"
}

// FontID 标识一种文档字体，具体字形由 Typesetter 决定。
type FontID int

const (
	FontRegular FontID = iota
	FontParagraph
	FontFirstParagraph
	FontPreformatted
	FontPreformattedSmall
	FontQuote
	FontHeader1
	FontHeader2
	FontHeader3
	NumFonts
)

var fontNames = [NumFonts]string{
	"regular", "paragraph", "first-paragraph", "preformatted", "preformatted-small",
	"quote", "header1", "header2", "header3",
}

func (f FontID) String() string {
	if f < 0 || f >= NumFonts {
		return "unknown"
	}
	return fontNames[f]
}

// FontByName 按名称查找字体编号（用于配置文件）。
func FontByName(name string) (FontID, bool) {
	for i, n := range fontNames {
		if n == name {
			return FontID(i), true
		}
	}
	return 0, false
}

// MarshalText 让调试 JSON 输出字体名称。
func (f FontID) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// RunFlags 标记 Run 在所属源行中的位置。
type RunFlags uint8

const (
	StartOfLine RunFlags = 1 << iota
	EndOfLine
)

// Range 是源文本中的半开字节区间 [Start, End)，也用于表示纵向范围。
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NoRange 表示不对应任何源文本的区间。
var NoRange = Range{Start: -1, End: -1}

// IsNull 表示区间是否为 NoRange。
func (r Range) IsNull() bool { return r.Start < 0 }

// Len 返回区间长度。
func (r Range) Len() int {
	if r.IsNull() {
		return 0
	}
	return r.End - r.Start
}

// Contains 判断 pos 是否位于区间内。
func (r Range) Contains(pos int) bool {
	return !r.IsNull() && pos >= r.Start && pos < r.End
}

// ImageID 是图片表中的 1-based 编号，0 表示没有图片。
type ImageID int

// Run 是布局的最小单元：一段换行后的文字、列表符号、链接图标或内嵌图片。
type Run struct {
	Text      string          `json:"text,omitempty"`
	Loc       Range           `json:"loc"`              // 源文本区间；符号与图片为 NoRange
	Bounds    image.Rectangle `json:"bounds"`           // 选择/命中区域，延伸到右边距
	VisBounds image.Rectangle `json:"visBounds"`        // 实际绘制区域
	Font      FontID          `json:"font"`
	Color     ColorID         `json:"color"`
	Flags     RunFlags        `json:"flags,omitempty"`
	LinkID    links.ID        `json:"linkId,omitempty"`
	ImageID   ImageID         `json:"imageId,omitempty"`
	AltText   Range           `json:"altText"` // 所在预格式化块的 alt 文本
}

// IsGlyph 表示该 Run 只是视觉符号（列表符号或链接图标）。
func (r *Run) IsGlyph() bool {
	return r.ImageID == 0 && r.Loc.IsNull() && r.Text != ""
}

// Texture 是调用方提供的不透明图片句柄（例如已解码的 image.Image）。
type Texture any

// ImageData 是外部解码后的图片：像素尺寸、句柄与原始字节数。
type ImageData struct {
	Size     image.Point
	Texture  Texture
	NumBytes int
}

// Image 是图片表中的一项，通过 LinkID 归属于某个链接。
type Image struct {
	Size     image.Point
	NumBytes int
	MIME     string
	LinkID   links.ID
	Texture  Texture
}

// ImageInfo 是 ImageInfo 查询返回的元数据。
type ImageInfo struct {
	Size     image.Point
	NumBytes int
	MIME     string
}
