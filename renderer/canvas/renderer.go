package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/gemdoc/layout"
	"github.com/ByLCY/gemdoc/renderer"
)

// Renderer draws a laid-out document onto a single PDF page via github.com/tdewolff/canvas.
type Renderer struct {
	ts         *Typesetter
	background layout.ColorID
}

var _ renderer.Renderer = (*Renderer)(nil)

// 内置 Go 字体没有 emoji，图标改用可显示的字符。
var iconFallback = map[string]string{
	"\U0001f4c1": "/",
	"\U0001f310": "@",
}

// NewRenderer creates a renderer that measures and draws text with ts.
func NewRenderer(ts *Typesetter) *Renderer {
	return &Renderer{ts: ts, background: layout.ColorBlack}
}

// SetBackground sets the page fill color.
func (r *Renderer) SetBackground(c layout.ColorID) { r.background = c }

// Render renders the document into a PDF byte slice. The page is as large as the layout.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染文档为空")
	}
	size := doc.Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("文档没有可渲染的内容")
	}
	width, height := r.ts.toMm(size.X), r.ts.toMm(size.Y)

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(doc.Title(), "", "", "", "gemdoc")

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	ctx.SetFillColor(colorFromPalette(r.background))
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	drawn := 0
	doc.Render(layout.Range{Start: 0, End: size.Y}, func(run *layout.Run) {
		if run.ImageID != 0 {
			if r.drawImage(ctx, doc, run) {
				drawn++
			}
			return
		}
		r.drawText(ctx, run)
		drawn++
	})
	layout.Logger().Debug("rendered runs", slog.Int("runs", drawn), slog.Float64("widthMM", width), slog.Float64("heightMM", height))

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawText(ctx *canvas.Context, run *layout.Run) {
	text := run.Text
	if alt, ok := iconFallback[text]; ok {
		text = alt
	}
	if text == "" {
		return
	}
	face := r.ts.face(run.Font, run.Color)
	// 基线位置：行顶部加上字体上升部（mm）
	baseline := r.ts.toMm(run.VisBounds.Min.Y) + face.Metrics().Ascent
	ctx.DrawText(r.ts.toMm(run.VisBounds.Min.X), baseline, canvas.NewTextLine(face, text, canvas.Left))
}

func (r *Renderer) drawImage(ctx *canvas.Context, doc *layout.Document, run *layout.Run) bool {
	img, ok := doc.ImageTexture(run.ImageID).(image.Image)
	if !ok {
		layout.Logger().Warn("image texture is not an image.Image", slog.Int("image", int(run.ImageID)))
		return false
	}
	vis := run.VisBounds
	if vis.Dx() <= 0 || img.Bounds().Dx() <= 0 {
		return false
	}
	dpmm := float64(img.Bounds().Dx()) / r.ts.toMm(vis.Dx())
	ctx.DrawImage(r.ts.toMm(vis.Min.X), r.ts.toMm(vis.Min.Y), img, canvas.DPMM(dpmm))
	return true
}

func colorFromPalette(c layout.ColorID) color.Color {
	rgba := c.RGBA()
	return canvas.RGBA(float64(rgba.R)/255, float64(rgba.G)/255, float64(rgba.B)/255, 1)
}
