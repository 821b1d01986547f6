package gemtext

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// 链接行的词法：Arrow 必须排在 Word 之前，这样行首的 "=>" 总是独立成词。
	linkLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Arrow", Pattern: `=>`},
		{Name: "Space", Pattern: `\s+`},
		{Name: "Word", Pattern: `\S+`},
	})

	linkParser = participle.MustBuild[LinkLine](
		participle.Lexer(linkLexer),
	)
)

// LinkLine 对应 `=>\s*(\S+)(\s.*)?`。
type LinkLine struct {
	Lead string    `parser:"Arrow @Space?"`
	URL  string    `parser:"@(Arrow | Word)+"`
	Tail *LinkTail `parser:"@@?"`
}

// LinkTail 是 URL 之后以空白开头的剩余部分。
type LinkTail struct {
	Gap  string `parser:"@Space"`
	Rest string `parser:"@(Arrow | Word | Space)*"`
}

// ParsedLink 是链接行解析结果，区间均相对于输入行。
type ParsedLink struct {
	URL  Span // 原始（未解析的）URL
	Desc Span // 描述文本，已裁剪；没有描述时为空区间
}

// HasDesc 表示链接行是否带有非空描述。
func (p ParsedLink) HasDesc() bool {
	return p.Desc.End > p.Desc.Start
}

// ParseLink 解析一行 "=>" 链接。格式不合法时返回 false，调用方应把该行当作普通文本。
func ParseLink(line string) (ParsedLink, bool) {
	if !strings.HasPrefix(line, "=>") {
		return ParsedLink{}, false
	}
	ll, err := linkParser.ParseString("", line)
	if err != nil || ll.URL == "" {
		return ParsedLink{}, false
	}
	urlStart := len("=>") + len(ll.Lead)
	out := ParsedLink{
		URL: Span{Start: urlStart, End: urlStart + len(ll.URL)},
	}
	out.Desc = Span{Start: out.URL.End, End: out.URL.End}
	if ll.Tail != nil {
		restStart := out.URL.End + len(ll.Tail.Gap)
		desc, off := Trim(ll.Tail.Rest, Text)
		if desc != "" {
			out.Desc = Span{Start: restStart + off, End: restStart + off + len(desc)}
		}
	}
	return out, true
}
