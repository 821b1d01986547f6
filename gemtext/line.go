// Package gemtext 实现 Gemtext 行级语法：行类型判定、源文本规范化与链接行解析。
package gemtext

import "strings"

// LineType 是 Gemtext 中由行首字符决定的行类型。
type LineType int

const (
	Text LineType = iota
	Bullet
	Preformatted
	Quote
	Header1
	Header2
	Header3
	Link
	NumLineTypes
)

// Fence 是预格式化块的起止标记。
const Fence = "```"

var lineTypeNames = [NumLineTypes]string{
	"text", "bullet", "preformatted", "quote", "header1", "header2", "header3", "link",
}

func (t LineType) String() string {
	if t < 0 || t >= NumLineTypes {
		return "unknown"
	}
	return lineTypeNames[t]
}

// skip 为各类型在 Trim 时需要跳过的前缀长度。
// 链接行的前缀已在 ParseLink 中去掉，因此为 0。
var skip = [NumLineTypes]int{0, 2, 3, 1, 1, 2, 3, 0}

// Classify 按前缀判断一行的类型，较长的前缀优先匹配。
func Classify(line string) LineType {
	switch {
	case line == "":
		return Text
	case strings.HasPrefix(line, "=>"):
		return Link
	case strings.HasPrefix(line, "###"):
		return Header3
	case strings.HasPrefix(line, "##"):
		return Header2
	case strings.HasPrefix(line, "#"):
		return Header1
	case strings.HasPrefix(line, Fence):
		return Preformatted
	case line[0] == '>':
		return Quote
	case len(line) >= 2 && line[0] == '*' && isSpace(line[1]):
		return Bullet
	}
	return Text
}

// Trim 去掉行类型前缀并裁剪两端空白，返回裁剪结果及其在原行中的起始偏移。
func Trim(line string, t LineType) (string, int) {
	n := 0
	if t >= 0 && t < NumLineTypes {
		n = skip[t]
	}
	if n > len(line) {
		n = len(line)
	}
	rest := line[n:]
	trimmed := strings.TrimLeftFunc(rest, isSpaceRune)
	start := n + len(rest) - len(trimmed)
	return strings.TrimRightFunc(trimmed, isSpaceRune), start
}

// IsFence 判断该行是否为预格式化块的开关行（大小写敏感）。
func IsFence(line string) bool {
	return strings.HasPrefix(line, Fence)
}

// isSpace 与 C 的 isspace 一致，只认 ASCII 空白。
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isSpaceRune(r rune) bool {
	return r < 0x80 && isSpace(byte(r))
}

// Lines 将文本按 '\n' 拆分；末尾换行不会产生额外的空行。
// 每一行同时给出其在 src 中的字节偏移。
func Lines(src string) []Span {
	var out []Span
	start := 0
	for start < len(src) {
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			out = append(out, Span{Start: start, End: len(src)})
			break
		}
		out = append(out, Span{Start: start, End: start + end})
		start += end + 1
	}
	return out
}

// Span 是源文本中的一个半开字节区间 [Start, End)。
type Span struct {
	Start int
	End   int
}

// Of 返回区间在 src 中对应的子串。
func (s Span) Of(src string) string {
	return src[s.Start:s.End]
}
