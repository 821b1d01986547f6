// Package layout 将 Gemtext（或纯文本）源文档按给定宽度排版为一系列带位置与样式的 Run，
// 并提供渲染遍历、命中测试与文本查找。
package layout

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/text/cases"

	"github.com/ByLCY/gemdoc/gemtext"
	"github.com/ByLCY/gemdoc/links"
)

// Document 保存源文本、排版结果、链接表与图片表。
// Document 不是并发安全的：所有修改与查询都应在同一个 goroutine 中进行。
type Document struct {
	format    Format
	source    string
	url       string
	localHost string
	size      image.Point
	runs      []Run
	links     links.Table
	images    imageTable
	title     string

	typesetter Typesetter
	history    History
	metrics    Metrics
	folder     *cases.Caser
}

// New 创建一个空文档。opts.Typesetter 不能为空。
func New(opts Options) (*Document, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	m := opts.Metrics
	if m.PixelRatio <= 0 {
		m.PixelRatio = 1
	}
	return &Document{
		format:     Gemini,
		typesetter: opts.Typesetter,
		history:    opts.History,
		metrics:    m,
	}, nil
}

// SetFormat 设置源格式。规范化发生在 SetSource，因此应先设置格式再设置源文本。
func (d *Document) SetFormat(f Format) {
	d.format = f
}

// Format 返回源格式。
func (d *Document) Format() Format { return d.format }

// SetURL 设置用于解析相对链接的基准 URL，并缓存其主机名。
func (d *Document) SetURL(url string) {
	d.url = url
	d.localHost = links.Host(url)
}

// URL 返回基准 URL。
func (d *Document) URL() string { return d.url }

// SetSource 规范化并保存源文本，然后按 width 重新排版。
func (d *Document) SetSource(source string, width int) {
	d.source = gemtext.Normalize(source, d.format == PlainText)
	d.SetWidth(width)
}

// Source 返回规范化后的源文本；查询结果中的区间都相对于它。
func (d *Document) Source() string { return d.source }

// SetWidth 设置排版宽度并重新排版。
func (d *Document) SetWidth(width int) {
	d.size.X = width
	d.layout()
}

// SetImage 为链接注册内嵌图片并重新排版；mime 为空或 data 为 nil 时删除该链接的图片。
// 链接编号不在链接表内、没有纹理或尺寸无效的图片会被拒绝，此时不会重新排版并返回 false。
func (d *Document) SetImage(link links.ID, mime string, data *ImageData) bool {
	if link < 1 || int(link) > d.links.Len() {
		Logger().Warn("rejected image for unknown link", slog.Int("link", int(link)), slog.Int("links", d.links.Len()))
		return false
	}
	if mime == "" || data == nil {
		d.images.remove(link)
		d.layout()
		return true
	}
	if data.Texture == nil || data.Size.X <= 0 || data.Size.Y <= 0 {
		Logger().Warn("rejected image", slog.Int("link", int(link)), slog.String("mime", mime))
		return false
	}
	d.images.put(&Image{
		Size:     data.Size,
		NumBytes: data.NumBytes,
		MIME:     mime,
		LinkID:   link,
		Texture:  data.Texture,
	})
	d.layout()
	return true
}

// Reset 清除排版结果、链接、基准 URL 与全部图片。源文本与宽度保留。
func (d *Document) Reset() {
	d.images.clear()
	d.links.Clear()
	d.runs = nil
	d.title = ""
	d.size.Y = 0
	d.url = ""
	d.localHost = ""
}

// Size 返回排版后的宽度与总高度。
func (d *Document) Size() image.Point { return d.size }

// Title 返回第一个一级标题，没有则为空。
func (d *Document) Title() string { return d.title }

// Runs 返回全部 Run，调用方不得修改。
func (d *Document) Runs() []Run { return d.runs }

// NumLinks 返回当前链接表的大小。
func (d *Document) NumLinks() int { return d.links.Len() }

// LinkURL 返回链接的绝对 URL，编号无效时为空。
func (d *Document) LinkURL(id links.ID) string {
	if l := d.links.Get(id); l != nil {
		return l.URL
	}
	return ""
}

// LinkFlags 返回链接标志，编号无效时为 0。
func (d *Document) LinkFlags(id links.ID) links.Flags {
	if l := d.links.Get(id); l != nil {
		return l.Flags
	}
	return 0
}

// LinkTime 返回链接最近一次访问时间，未访问或编号无效时为零值。
func (d *Document) LinkTime(id links.ID) time.Time {
	if l := d.links.Get(id); l != nil {
		return l.When
	}
	return time.Time{}
}

// LinkImage 返回链接所附图片的编号，没有时为 0。
func (d *Document) LinkImage(id links.ID) ImageID {
	if i := d.images.find(id); i >= 0 {
		return ImageID(i + 1)
	}
	return 0
}

// LinkColor 返回链接的协议颜色，编号无效时为白色。
func (d *Document) LinkColor(id links.ID) ColorID {
	if l := d.links.Get(id); l != nil {
		return linkColor(l.Flags)
	}
	return ColorWhite
}

// IsMediaLink 表示链接是否指向图片或音频文件。
func (d *Document) IsMediaLink(id links.ID) bool {
	return d.LinkFlags(id).IsMedia()
}

// ImageTexture 返回图片句柄，编号无效时为 nil。
func (d *Document) ImageTexture(id ImageID) Texture {
	if img := d.images.get(id); img != nil {
		return img.Texture
	}
	return nil
}

// ImageInfo 返回图片元数据，编号无效时为零值。
func (d *Document) ImageInfo(id ImageID) ImageInfo {
	if img := d.images.get(id); img != nil {
		return ImageInfo{Size: img.Size, NumBytes: img.NumBytes, MIME: img.MIME}
	}
	return ImageInfo{}
}

// caseFolder 返回文档复用的大小写折叠器。Caser 带状态，不能跨 goroutine 共享。
func (d *Document) caseFolder() *cases.Caser {
	if d.folder == nil {
		c := cases.Fold()
		d.folder = &c
	}
	return d.folder
}
