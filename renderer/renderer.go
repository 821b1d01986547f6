// Package renderer 定义把排版后的文档输出为最终文件的接口。
package renderer

import "github.com/ByLCY/gemdoc/layout"

// Renderer 将排版后的文档输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(doc *layout.Document) ([]byte, error)
}
