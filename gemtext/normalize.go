package gemtext

import "strings"

// TabWidth 是预格式化文本中制表位的列宽。
const TabWidth = 8

// Normalize 规范化源文本：
// 普通行将连续的空格/制表符折叠为一个空格并去掉 '\r'；
// 预格式化块内把制表符展开到下一个 8 列边界，去掉 '\r'，其余原样保留。
// fence 行本身原样保留并切换预格式化状态。plain 为 true 时整个文档视为一个预格式化块。
// 结果中每一行都以 '\n' 结尾。
func Normalize(src string, plain bool) string {
	var b strings.Builder
	b.Grow(len(src) + 1)
	pre := plain
	for _, sp := range Lines(src) {
		line := sp.Of(src)
		if pre {
			expandTabs(&b, line)
			b.WriteByte('\n')
			if !plain && Classify(line) == Preformatted {
				pre = false
			}
			continue
		}
		if Classify(line) == Preformatted {
			pre = true
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}
		collapseSpaces(&b, line)
		b.WriteByte('\n')
	}
	return b.String()
}

func expandTabs(b *strings.Builder, line string) {
	col := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '\t':
			n := (col/TabWidth+1)*TabWidth - col
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\r':
		default:
			b.WriteByte(c)
			col++
		}
	}
}

func collapseSpaces(b *strings.Builder, line string) {
	prevSpace := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\r' {
			continue
		}
		if c == ' ' || c == '\t' {
			if prevSpace {
				continue
			}
			c = ' '
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteByte(c)
	}
}
