// Package config 读取 TOML 配置：界面度量、输出分辨率与各文档字体。
package config

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/gemdoc/layout"
)

// Font 指定一种文档字体的来源与字号。
type Font struct {
	Src  string `toml:"src"`
	Size string `toml:"size"` // 长度字符串，例如 "14pt"；裸数字按 pt 处理
}

// Config 是完整配置。
type Config struct {
	Gap        int             `toml:"gap"`
	PixelRatio float64         `toml:"pixel_ratio"`
	DPMM       float64         `toml:"dpmm"`
	Width      int             `toml:"width"`
	Fonts      map[string]Font `toml:"fonts"`
}

// Default 返回内置字体与 96dpi 下的默认配置。
func Default() Config {
	return Config{
		Gap:        4,
		PixelRatio: 1,
		DPMM:       layout.DefaultDPMM,
		Width:      800,
		Fonts: map[string]Font{
			"regular":            {Src: "builtin:go-regular", Size: "12pt"},
			"paragraph":          {Src: "builtin:go-regular", Size: "12pt"},
			"first-paragraph":    {Src: "builtin:go-italic", Size: "13pt"},
			"preformatted":       {Src: "builtin:go-mono", Size: "10pt"},
			"preformatted-small": {Src: "builtin:go-mono", Size: "7pt"},
			"quote":              {Src: "builtin:go-italic", Size: "12pt"},
			"header1":            {Src: "builtin:go-bold", Size: "22pt"},
			"header2":            {Src: "builtin:go-bold", Size: "17pt"},
			"header3":            {Src: "builtin:go-bold", Size: "14pt"},
		},
	}
}

// file 是配置文件的原始形式；缺省的字段保留默认值。
type file struct {
	Gap        *int            `toml:"gap"`
	PixelRatio *float64        `toml:"pixel_ratio"`
	DPMM       *float64        `toml:"dpmm"`
	Width      *int            `toml:"width"`
	Fonts      map[string]Font `toml:"fonts"`
}

// Load 读取 path 并覆盖默认配置。未知键与无效值都会报错。
func Load(path string) (Config, error) {
	var raw file
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("配置 %s 含未知键: %v", path, undec)
	}
	cfg := Default()
	if raw.Gap != nil {
		cfg.Gap = *raw.Gap
	}
	if raw.PixelRatio != nil {
		cfg.PixelRatio = *raw.PixelRatio
	}
	if raw.DPMM != nil {
		cfg.DPMM = *raw.DPMM
	}
	if raw.Width != nil {
		cfg.Width = *raw.Width
	}
	for name, f := range raw.Fonts {
		cur := cfg.Fonts[name]
		if f.Src != "" {
			cur.Src = f.Src
		}
		if f.Size != "" {
			cur.Size = f.Size
		}
		cfg.Fonts[name] = cur
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("配置 %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 检查度量与字体表。
func (c Config) Validate() error {
	if c.Gap <= 0 {
		return fmt.Errorf("gap 必须为正数，实际 %d", c.Gap)
	}
	if c.PixelRatio <= 0 || c.DPMM <= 0 {
		return fmt.Errorf("pixel_ratio 与 dpmm 必须为正数")
	}
	names := make([]string, 0, len(c.Fonts))
	for name := range c.Fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := layout.FontByName(name); !ok {
			return fmt.Errorf("未知字体用途 %q", name)
		}
		f := c.Fonts[name]
		if f.Src == "" {
			return fmt.Errorf("字体 %s 缺少 src", name)
		}
		l, err := layout.ParseLength(f.Size)
		if err != nil {
			return fmt.Errorf("字体 %s 字号无效: %w", name, err)
		}
		if l.Value <= 0 {
			return fmt.Errorf("字体 %s 字号必须为正数", name)
		}
	}
	for id := layout.FontID(0); id < layout.NumFonts; id++ {
		if _, ok := c.Fonts[id.String()]; !ok {
			return fmt.Errorf("缺少字体 %s", id)
		}
	}
	return nil
}

// Metrics 返回排版度量。
func (c Config) Metrics() layout.Metrics {
	return layout.Metrics{Gap: c.Gap, PixelRatio: c.PixelRatio}
}

// FontSize 返回字体用途的字号（pt）。配置未经 Validate 时无效字号返回 0。
func (c Config) FontSize(id layout.FontID) float64 {
	l, err := layout.ParseLength(c.Fonts[id.String()].Size)
	if err != nil {
		return 0
	}
	return l.ToPT(c.DPMM)
}
