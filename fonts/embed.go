// Package fonts 提供内置字体字节与按路径去重的字体文件仓库。
package fonts

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinPrefix 是内置字体来源的前缀，例如 "builtin:go-regular"。
const BuiltinPrefix = "builtin:"

// ErrUnknownFont 表示内置字体名不存在。
var ErrUnknownFont = errors.New("unknown builtin font")

var builtins = map[string][]byte{
	"go-regular":   goregular.TTF,
	"go-bold":      gobold.TTF,
	"go-italic":    goitalic.TTF,
	"go-mono":      gomono.TTF,
	"go-mono-bold": gomonobold.TTF,
}

// Builtins 返回全部内置字体名（已排序）。
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin 表示 src 是否指向内置字体（接受 "builtin:" 与 "built-in:" 两种写法）。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, BuiltinPrefix) || strings.HasPrefix(src, "built-in:")
}

// Load 返回字体文件的字节数据。src 为 "builtin:<name>" 时读取内置字体，否则按文件路径读取。
func Load(src string) ([]byte, error) {
	if IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), BuiltinPrefix)
		data, ok := builtins[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("读取内置字体 %s 失败: %w", name, ErrUnknownFont)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", src, err)
	}
	return data, nil
}
