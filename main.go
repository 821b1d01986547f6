package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ByLCY/gemdoc/config"
	"github.com/ByLCY/gemdoc/fonts"
	"github.com/ByLCY/gemdoc/history"
	"github.com/ByLCY/gemdoc/layout"
	"github.com/ByLCY/gemdoc/links"
	"github.com/ByLCY/gemdoc/media"
	"github.com/ByLCY/gemdoc/renderer"
	canvasrenderer "github.com/ByLCY/gemdoc/renderer/canvas"
)

// imageFlags 收集可重复的 -image <链接编号>=<图片路径>。
type imageFlags map[links.ID]string

func (f imageFlags) String() string {
	parts := make([]string, 0, len(f))
	for id, path := range f {
		parts = append(parts, fmt.Sprintf("%d=%s", id, path))
	}
	return strings.Join(parts, ",")
}

func (f imageFlags) Set(v string) error {
	id, path, ok := strings.Cut(v, "=")
	if !ok || path == "" {
		return fmt.Errorf("格式应为 <链接编号>=<路径>: %q", v)
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return fmt.Errorf("链接编号无效: %q", id)
	}
	f[links.ID(n)] = path
	return nil
}

type options struct {
	input, output, debug string
	url, format          string
	historyPath          string
	configPath           string
	width                int
	images               imageFlags
}

func main() {
	opts := options{images: imageFlags{}}
	flag.StringVar(&opts.input, "in", "examples/index.gmi", "Gemtext 或纯文本文件路径")
	flag.StringVar(&opts.output, "out", "output/index.pdf", "PDF 输出路径，为空时不渲染")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&opts.url, "url", "", "文档 URL，用于解析相对链接")
	flag.StringVar(&opts.format, "format", "", "源格式 gemini 或 plain（默认按扩展名判断）")
	flag.StringVar(&opts.historyPath, "history", "", "访问记录文件（每行 `<unix 秒> <url>`）")
	flag.StringVar(&opts.configPath, "config", "", "TOML 配置文件")
	flag.IntVar(&opts.width, "width", 0, "排版宽度（像素），0 表示使用配置值")
	flag.Var(opts.images, "image", "为链接附加内嵌图片，格式 <链接编号>=<路径>，可重复")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	layout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(opts); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	if opts.output != "" {
		fmt.Printf("已生成 PDF：%s\n", opts.output)
	}
}

// run 串联配置、排版与渲染。
func run(opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}

	src, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("无法打开源文件 %s: %w", opts.input, err)
	}

	hist := history.New()
	if opts.historyPath != "" {
		if err := loadHistory(hist, opts.historyPath); err != nil {
			return err
		}
	}

	store := fonts.NewStore()
	ts, err := canvasrenderer.NewTypesetter(store, cfg)
	if err != nil {
		return fmt.Errorf("初始化字体失败: %w", err)
	}
	defer ts.Close()

	doc, err := layout.New(layout.Options{Typesetter: ts, History: hist, Metrics: cfg.Metrics()})
	if err != nil {
		return err
	}
	format, err := sourceFormat(opts.format, opts.input)
	if err != nil {
		return err
	}
	doc.SetFormat(format)
	doc.SetURL(opts.url)
	doc.SetSource(string(src), cfg.Width)

	if err := attachImages(doc, opts.images, opts.input); err != nil {
		return err
	}

	if opts.debug != "" {
		if err := writeDebug(doc, opts.debug); err != nil {
			return err
		}
	}
	if opts.output == "" {
		return nil
	}

	var r renderer.Renderer = canvasrenderer.NewRenderer(ts)
	pdfBytes, err := r.Render(doc)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(opts.output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func sourceFormat(name, path string) (layout.Format, error) {
	switch strings.ToLower(name) {
	case "gemini", "gmi":
		return layout.Gemini, nil
	case "plain", "text", "plain-text":
		return layout.PlainText, nil
	case "":
		if strings.EqualFold(filepath.Ext(path), ".txt") {
			return layout.PlainText, nil
		}
		return layout.Gemini, nil
	}
	return layout.Gemini, fmt.Errorf("未知源格式 %q", name)
}

// attachImages 按链接编号顺序附加图片，使图片编号在多次运行之间保持稳定。
func attachImages(doc *layout.Document, images imageFlags, input string) error {
	for _, id := range slices.Sorted(maps.Keys(images)) {
		if id > links.ID(doc.NumLinks()) {
			return fmt.Errorf("链接 %d 不存在（文档共 %d 个链接）", id, doc.NumLinks())
		}
		data, mimeType, err := media.DecodeFile(imagePath(images[id], input))
		if err != nil {
			return err
		}
		if !doc.SetImage(id, mimeType, data) {
			return fmt.Errorf("链接 %d 的图片被拒绝", id)
		}
	}
	return nil
}

// imagePath 把相对图片路径解释为相对于源文件所在目录。
func imagePath(path, input string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(input), path)
}

func loadHistory(h *history.History, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("无法打开访问记录 %s: %w", path, err)
	}
	defer f.Close()
	if err := h.Load(f); err != nil {
		return fmt.Errorf("读取访问记录 %s 失败: %w", path, err)
	}
	return nil
}

func writeDebug(doc *layout.Document, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(doc, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
