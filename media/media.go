// Package media 把下载到的图片字节解码为排版引擎使用的 ImageData。
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/gemdoc/layout"
)

// ErrUnsupported 表示 MIME 类型不是可解码的图片。
var ErrUnsupported = errors.New("unsupported media type")

var extTypes = map[string]string{
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// TypeByPath 根据扩展名推断 MIME 类型；无法推断时使用内容嗅探。
func TypeByPath(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

// Decode 解码 data，返回以 image.Image 作为纹理的 ImageData。
func Decode(mimeType string, data []byte) (*layout.ImageData, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return nil, fmt.Errorf("解析 MIME 类型 %q 失败: %w", mimeType, err)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%s: %w", mediaType, ErrUnsupported)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 (%s) 失败: %w", mediaType, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("图片 (%s) 尺寸无效: %v", format, b.Size())
	}
	return &layout.ImageData{Size: b.Size(), Texture: img, NumBytes: len(data)}, nil
}

// DecodeFile 读取并解码图片文件，同时返回推断的 MIME 类型。
func DecodeFile(path string) (*layout.ImageData, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	mimeType := TypeByPath(path, data)
	img, err := Decode(mimeType, data)
	if err != nil {
		return nil, "", err
	}
	return img, mimeType, nil
}
