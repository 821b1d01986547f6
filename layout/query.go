package layout

import (
	"image"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Render 按文档顺序对纵向范围 vis 内（含端点）的每个 Run 调用 fn。
// fn 不得修改文档。
func (d *Document) Render(vis Range, fn func(run *Run)) {
	for i := range d.runs {
		run := &d.runs[i]
		if run.VisBounds.Min.Y > vis.End {
			break
		}
		if run.VisBounds.Max.Y >= vis.Start {
			fn(run)
		}
	}
}

// RunAt 返回 Bounds 包含 p 的第一个 Run。
func (d *Document) RunAt(p image.Point) (*Run, bool) {
	for i := range d.runs {
		if p.In(d.runs[i].Bounds) {
			return &d.runs[i], true
		}
	}
	return nil, false
}

// LocAt 返回点 p 处字符在源文本中的字节偏移。
// 显示文本不取自源文本的 Run（绝对化后的链接 URL）返回其源区间的起点。
// 这种 URL 折成多段时，每一段的 Loc 都是整个原始 URL 区间，因此 RunAtLoc 总是返回第一段。
func (d *Document) LocAt(p image.Point) (int, bool) {
	run, ok := d.RunAt(p)
	if !ok || run.Loc.IsNull() {
		return 0, false
	}
	if run.Text != d.source[run.Loc.Start:run.Loc.End] {
		return run.Loc.Start, true
	}
	off := d.typesetter.TryAdvanceNoWrap(run.Font, run.Text, p.X-run.Bounds.Min.X)
	off = min(max(off, 0), run.Loc.Len())
	return run.Loc.Start + off, true
}

// RunAtLoc 返回源区间包含 pos 的第一个 Run；没有时返回第一个起点在 pos 之后的 Run。
func (d *Document) RunAtLoc(pos int) (*Run, bool) {
	for i := range d.runs {
		run := &d.runs[i]
		if run.Loc.IsNull() {
			continue
		}
		if run.Loc.Contains(pos) || run.Loc.Start > pos {
			return run, true
		}
	}
	return nil, false
}

// FindText 从源文本偏移 from 开始查找 needle（按 Unicode 大小写折叠比较），返回匹配区间。
// 匹配区间总是源文本中连续的一段字符，折叠后与 needle 折叠后的结果完全相同。
func (d *Document) FindText(needle string, from int) (Range, bool) {
	if needle == "" || from < 0 || from > len(d.source) {
		return NoRange, false
	}
	fold := d.caseFolder()
	want := fold.String(needle)
	src := d.source
	for i := from; i < len(src); {
		if n, ok := matchFolded(fold, src[i:], want); ok {
			return Range{Start: i, End: i + n}, true
		}
		_, size := utf8.DecodeRuneInString(src[i:])
		i += size
	}
	return NoRange, false
}

// matchFolded 逐字符折叠 s 的前缀，折叠结果恰好等于 want 时返回该前缀的字节长度。
func matchFolded(fold *cases.Caser, s, want string) (int, bool) {
	got := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		f := fold.String(s[i : i+size])
		if f == "" || !strings.HasPrefix(want[got:], f) {
			return 0, false
		}
		got += len(f)
		i += size
		if got == len(want) {
			return i, true
		}
	}
	return 0, false
}

// FindTextBefore 返回起点严格位于 before 之前的最后一个匹配；before < 0 表示文末。
func (d *Document) FindTextBefore(needle string, before int) (Range, bool) {
	if before < 0 || before > len(d.source) {
		before = len(d.source)
	}
	found := NoRange
	from := 0
	for {
		r, ok := d.FindText(needle, from)
		if !ok || r.Start >= before {
			break
		}
		found = r
		from = r.Start + 1
	}
	return found, !found.IsNull()
}
