package layout

import (
	"image"
	"time"
)

// Options 配置文档所依赖的外部服务。
type Options struct {
	Typesetter Typesetter
	History    History
	Metrics    Metrics
}

// Metrics 是界面度量：gap 为界面基本间距（像素），PixelRatio 为屏幕像素比。
type Metrics struct {
	Gap        int
	PixelRatio float64
}

// DefaultMetrics 返回 gap=4、像素比 1 的度量。
func DefaultMetrics() Metrics {
	return Metrics{Gap: 4, PixelRatio: 1}
}

// Typesetter 负责字体度量与单行折行，所有尺寸均为像素。
type Typesetter interface {
	// Advance 返回文本不折行时的宽度与高度。
	Advance(font FontID, text string) image.Point
	// TryAdvance 在 width 内尽量排下 text，返回已排部分的尺寸，以及下一行在 text 中的起始字节偏移。
	// width 为 0 表示不折行；全部排下时偏移为 len(text)。
	TryAdvance(font FontID, text string, width int) (image.Point, int)
	// TryAdvanceNoWrap 返回水平偏移 x 处字符在 text 中的字节偏移。
	TryAdvanceNoWrap(font FontID, text string, x int) int
	// LineHeight 返回字体的行高。
	LineHeight(font FontID) int
	// MeasureRange 测量多行文本：宽度取最宽的一行，高度为总行高。
	MeasureRange(font FontID, text string) image.Point
}

// History 提供已访问 URL 的查询。
type History interface {
	VisitTime(url string) (time.Time, bool)
}
