package layout

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/gemdoc/links"
)

func TestLinkWithDescription(t *testing.T) {
	d := layoutText(t, "gemini://host/", "=> gemini://example.org/ Hello", 800)
	runs := d.Runs()
	if len(runs) != 2 {
		t.Fatalf("期望 2 个 Run（图标 + 文字），实际 %d: %+v", len(runs), runs)
	}
	icon, text := runs[0], runs[1]
	if !icon.IsGlyph() || icon.Text != globeIcon {
		t.Fatalf("远程链接图标应为地球: %+v", icon)
	}
	if want := image.Rect(-2, 0, 18, 20); icon.VisBounds != want {
		t.Fatalf("图标 VisBounds = %v, want %v", icon.VisBounds, want)
	}
	if text.Text != "Hello" || text.LinkID != 1 {
		t.Fatalf("链接文字 = %+v", text)
	}
	if text.Flags != StartOfLine|EndOfLine {
		t.Fatalf("链接文字应同时带 StartOfLine 与 EndOfLine: %b", text.Flags)
	}
	if got := d.Source()[text.Loc.Start:text.Loc.End]; got != "Hello" {
		t.Fatalf("Loc 对应源文本 %q", got)
	}
	want := links.Gemini | links.Remote | links.SupportedProtocol | links.UserFriendly
	if got := d.LinkFlags(1); got != want {
		t.Fatalf("LinkFlags = %v, want %v", got, want)
	}
	if text.Color != ColorCyan || icon.Color != ColorCyan {
		t.Fatalf("gemini 链接应为青色: icon=%v text=%v", icon.Color, text.Color)
	}
	if text.Bounds != image.Rect(20, 0, 800, 20) || text.VisBounds != image.Rect(20, 0, 70, 20) {
		t.Fatalf("Bounds=%v VisBounds=%v", text.Bounds, text.VisBounds)
	}
}

func TestBareLinkShowsResolvedURL(t *testing.T) {
	d := layoutText(t, "gemini://host/dir/", "=> /a.png", 800)
	if got := d.LinkURL(1); got != "gemini://host/a.png" {
		t.Fatalf("LinkURL = %q", got)
	}
	f := d.LinkFlags(1)
	if !f.Has(links.Gemini|links.ImageExt|links.SupportedProtocol) || f.Has(links.Remote) || f.Has(links.UserFriendly) {
		t.Fatalf("LinkFlags = %v", f)
	}
	if !d.IsMediaLink(1) {
		t.Fatalf("图片扩展名应视为媒体链接")
	}
	runs := d.Runs()
	if len(runs) != 2 || runs[0].Text != arrowIcon {
		t.Fatalf("本地链接应以箭头开头: %+v", runs)
	}
	text := runs[1]
	if text.Text != "gemini://host/a.png" {
		t.Fatalf("显示文本 = %q", text.Text)
	}
	if got := d.Source()[text.Loc.Start:text.Loc.End]; got != "/a.png" {
		t.Fatalf("Loc 应指向原始 URL，实际 %q", got)
	}
	// 显示文本与源文本不同，命中任意位置都返回源区间起点。
	loc, ok := d.LocAt(image.Pt(100, 5))
	if !ok || loc != text.Loc.Start {
		t.Fatalf("LocAt = (%d, %v), want %d", loc, ok, text.Loc.Start)
	}
}

func TestPreformattedDownsize(t *testing.T) {
	wide := "0123456789012345678901" // 220px > 200 - 5*gap
	d := layoutText(t, "", "```alt text\n"+wide+"\nshort\n```\nafter", 200)
	runs := d.Runs()
	if len(runs) != 3 {
		t.Fatalf("期望 3 个 Run，实际 %d: %+v", len(runs), runs)
	}
	for i, want := range []string{wide, "short"} {
		r := runs[i]
		if r.Text != want || r.Font != FontPreformattedSmall || r.Color != ColorCyan {
			t.Fatalf("run[%d] = %+v", i, r)
		}
		if r.Flags != StartOfLine|EndOfLine {
			t.Fatalf("预格式化行不应折行: run[%d].Flags=%b", i, r.Flags)
		}
		if got := d.Source()[r.AltText.Start:r.AltText.End]; got != "alt text" {
			t.Fatalf("AltText = %q", got)
		}
	}
	if runs[1].Bounds.Min.Y != 20 {
		t.Fatalf("连续预格式化行之间不应有间距: y=%d", runs[1].Bounds.Min.Y)
	}
	// 预格式化行同样消耗首段样式。
	if runs[2].Text != "after" || !runs[2].AltText.IsNull() || runs[2].Font != FontParagraph {
		t.Fatalf("闭合 fence 后应恢复正文: %+v", runs[2])
	}
}

func TestPreformattedKeepsFontWhenFits(t *testing.T) {
	d := layoutText(t, "", "```\na\tb\n```", 200)
	runs := d.Runs()
	if len(runs) != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Font != FontPreformatted || runs[0].Text != "a       b" {
		t.Fatalf("run = %+v", runs[0])
	}
	if runs[0].AltText.Len() != 0 {
		t.Fatalf("无 alt 文本时 AltText 应为空: %+v", runs[0].AltText)
	}
}

func TestFirstParagraphStyling(t *testing.T) {
	d := layoutText(t, "", "# Title\n\nLede paragraph line one.\n\nBody.", 800)
	if d.Title() != "Title" {
		t.Fatalf("Title = %q", d.Title())
	}
	runs := d.Runs()
	if len(runs) != 3 {
		t.Fatalf("runs = %+v", runs)
	}
	type style struct {
		Text  string
		Font  FontID
		Color ColorID
		Y     int
	}
	var got []style
	for _, r := range runs {
		got = append(got, style{r.Text, r.Font, r.Color, r.Bounds.Min.Y})
	}
	want := []style{
		{"Title", FontHeader1, ColorWhite, 0},
		{"Lede paragraph line one.", FontFirstParagraph, ColorGray88, 60},
		{"Body.", FontParagraph, ColorGray75, 100},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("样式不符 (-want +got):\n%s", diff)
	}
	if d.Size() != image.Pt(800, 120) {
		t.Fatalf("Size = %v", d.Size())
	}
}

func TestFirstTextResetByOtherLines(t *testing.T) {
	d := layoutText(t, "", "* item\nplain", 800)
	runs := textRuns(d)
	if len(runs) != 2 || runs[1].Font != FontParagraph || runs[1].Color != ColorGray75 {
		t.Fatalf("列表项之后的正文不应使用首段样式: %+v", runs)
	}
}

func TestConsecutiveLinks(t *testing.T) {
	d := layoutText(t, "gemini://host/", "=> a A\n=> b B\n=> c C", 800)
	runs := textRuns(d)
	if len(runs) != 3 || d.NumLinks() != 3 {
		t.Fatalf("runs=%+v links=%d", runs, d.NumLinks())
	}
	skip := int(0.1 * 20)
	for i := 1; i < len(runs); i++ {
		if gap := runs[i].Bounds.Min.Y - runs[i-1].Bounds.Max.Y; gap != skip {
			t.Fatalf("链接 %d 与上一行的间距 = %d, want %d", i, gap, skip)
		}
		if runs[i].LinkID != links.ID(i+1) {
			t.Fatalf("LinkID = %d", runs[i].LinkID)
		}
	}
	if got := d.LinkURL(2); got != "gemini://host/b" {
		t.Fatalf("LinkURL(2) = %q", got)
	}
}

func TestInlineImagePlacement(t *testing.T) {
	d := layoutText(t, "gemini://host/", "# Heading\n=> pic.png Pic", 800)
	if !d.SetImage(1, "image/png", &ImageData{Size: image.Pt(200, 100), Texture: "tex", NumBytes: 1234}) {
		t.Fatalf("SetImage 被拒绝")
	}
	var img *Run
	for i, r := range d.Runs() {
		if r.ImageID != 0 {
			img = &d.Runs()[i]
		}
	}
	if img == nil {
		t.Fatalf("没有图片 Run: %+v", d.Runs())
	}
	// 链接文字在 y=60..80，下方留 0.5H 的间距。
	if img.Bounds.Min.Y != 90 || img.Bounds.Dx() != 800 {
		t.Fatalf("图片 Bounds = %v", img.Bounds)
	}
	if img.VisBounds.Dx() != 200 || img.VisBounds.Min.X != 300 {
		t.Fatalf("图片不应放大且应居中: %v", img.VisBounds)
	}
	if dy := img.VisBounds.Dy(); math.Abs(float64(dy-100)) > 1 {
		t.Fatalf("图片可视高度 = %d", dy)
	}
	if img.Bounds.Dy() != img.VisBounds.Dy() {
		t.Fatalf("图片选择区高度应等于可视高度: %v vs %v", img.Bounds, img.VisBounds)
	}
	if !img.Loc.IsNull() || img.Text != "" || img.LinkID != 1 {
		t.Fatalf("图片 Run = %+v", img)
	}
	if !d.LinkFlags(1).Has(links.Content) {
		t.Fatalf("链接应带 content 标志: %v", d.LinkFlags(1))
	}
	if d.LinkImage(1) != 1 || d.ImageTexture(1) != "tex" {
		t.Fatalf("LinkImage=%d ImageTexture=%v", d.LinkImage(1), d.ImageTexture(1))
	}
	if info := d.ImageInfo(1); info.MIME != "image/png" || info.NumBytes != 1234 || info.Size != image.Pt(200, 100) {
		t.Fatalf("ImageInfo = %+v", info)
	}
	if d.Size().Y != 200 {
		t.Fatalf("总高度 = %d", d.Size().Y)
	}

	// 宽度小于图片时按比例缩放，不居中偏移。
	d.SetWidth(100)
	for _, r := range d.Runs() {
		if r.ImageID != 0 && (r.VisBounds.Dx() != 100 || r.VisBounds.Dy() != 50 || r.Bounds != r.VisBounds) {
			t.Fatalf("窄宽度下图片 = %+v", r)
		}
	}
}

func TestSetImageRejectAndRemove(t *testing.T) {
	d := layoutText(t, "gemini://host/", "=> pic.png", 800)
	before := append([]Run(nil), d.Runs()...)
	if d.SetImage(1, "image/png", &ImageData{Size: image.Pt(10, 10)}) {
		t.Fatalf("没有纹理的图片应被拒绝")
	}
	if diff := cmp.Diff(before, d.Runs()); diff != "" {
		t.Fatalf("拒绝图片后不应重新排版:\n%s", diff)
	}
	d.SetImage(1, "image/png", &ImageData{Size: image.Pt(10, 10), Texture: 1})
	d.SetImage(1, "image/gif", &ImageData{Size: image.Pt(20, 10), Texture: 2})
	if d.LinkImage(1) != 1 || d.ImageInfo(1).MIME != "image/gif" {
		t.Fatalf("同一链接的图片应原位替换: %+v", d.ImageInfo(1))
	}
	if !d.SetImage(1, "", nil) {
		t.Fatalf("删除图片失败")
	}
	if d.LinkImage(1) != 0 || d.LinkFlags(1).Has(links.Content) {
		t.Fatalf("删除后仍有图片: image=%d flags=%v", d.LinkImage(1), d.LinkFlags(1))
	}
	for _, r := range d.Runs() {
		if r.ImageID != 0 {
			t.Fatalf("删除后仍有图片 Run")
		}
	}
}

func TestSetImageUnknownLink(t *testing.T) {
	d := layoutText(t, "gemini://host/", "=> pic.png", 800)
	before := append([]Run(nil), d.Runs()...)
	data := &ImageData{Size: image.Pt(10, 10), Texture: 1}
	for _, id := range []links.ID{0, 2, 9} {
		if d.SetImage(id, "image/png", data) {
			t.Fatalf("SetImage(%d) 应被拒绝", id)
		}
		if d.SetImage(id, "", nil) {
			t.Fatalf("SetImage(%d, nil) 应被拒绝", id)
		}
	}
	if d.LinkImage(0) != 0 || d.LinkImage(9) != 0 || d.ImageTexture(1) != nil {
		t.Fatalf("未知链接不应登记图片: image(0)=%d image(9)=%d", d.LinkImage(0), d.LinkImage(9))
	}
	if diff := cmp.Diff(before, d.Runs()); diff != "" {
		t.Fatalf("拒绝后不应重新排版:\n%s", diff)
	}
	if !d.SetImage(1, "image/png", data) || d.LinkImage(1) != 1 {
		t.Fatalf("第一个图片编号应为 1: %d", d.LinkImage(1))
	}
}

func TestVisitedLinks(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	hist := stubHistory{
		"gemini://host/seen": when,
		"gemini://host/":     when,
	}
	d := newTestDocument(t, hist)
	d.SetURL("gemini://host/")
	d.SetSource("=> seen\n=> gemini://host/ Home\n=> new", 800)
	if !d.LinkFlags(1).Has(links.Visited) || !d.LinkTime(1).Equal(when) {
		t.Fatalf("link 1 flags=%v time=%v", d.LinkFlags(1), d.LinkTime(1))
	}
	if d.LinkFlags(2).Has(links.Visited) {
		t.Fatalf("指向自身的链接不应标记为已访问")
	}
	if d.LinkFlags(3).Has(links.Visited) || !d.LinkTime(3).IsZero() {
		t.Fatalf("link 3 不应已访问")
	}
	if icon := d.Runs()[0]; icon.Color != ColorTeal {
		t.Fatalf("已访问链接的图标应变暗: %v", icon.Color)
	}
}

func TestLinkColors(t *testing.T) {
	d := layoutText(t, "gemini://host/", "=> https://w.org/ W\n=> gopher://g.org/ G\n=> foo:bar F\n=> file:///tmp/x F", 800)
	want := []ColorID{ColorOrange, ColorBlue, ColorRed, ColorCyan}
	for i, c := range want {
		if got := d.LinkColor(links.ID(i + 1)); got != c {
			t.Fatalf("LinkColor(%d) = %v, want %v", i+1, got, c)
		}
	}
	if runs := d.Runs(); runs[len(runs)-2].Text != folderIcon {
		t.Fatalf("file 链接应使用文件夹图标: %q", runs[len(runs)-2].Text)
	}
	if d.LinkColor(0) != ColorWhite || d.LinkColor(99) != ColorWhite || d.LinkURL(99) != "" {
		t.Fatalf("无效编号应返回默认值")
	}
}

func TestMalformedLinkIsText(t *testing.T) {
	d := layoutText(t, "", "=>", 800)
	runs := d.Runs()
	if d.NumLinks() != 0 || len(runs) != 1 || runs[0].Text != "=>" || runs[0].LinkID != 0 {
		t.Fatalf("links=%d runs=%+v", d.NumLinks(), runs)
	}
}

func TestBullet(t *testing.T) {
	d := layoutText(t, "", "* item", 800)
	runs := d.Runs()
	if len(runs) != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	// 符号以缩进列为中心：40 - (16 - 10/2) = 29。
	if b := runs[0]; b.Text != bulletIcon || b.VisBounds != image.Rect(29, 0, 39, 20) || b.Bounds != (image.Rectangle{}) {
		t.Fatalf("bullet = %+v", b)
	}
	if r := runs[1]; r.Text != "item" || r.Bounds.Min != image.Pt(40, 0) {
		t.Fatalf("item = %+v", r)
	}
}

func TestWrapping(t *testing.T) {
	d := layoutText(t, "", "aaaa bbbb cccc dddd eeee ffff", 200)
	runs := d.Runs()
	if len(runs) != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Text != "aaaa bbbb cccc" || runs[0].Loc != (Range{0, 14}) || runs[0].Flags != StartOfLine {
		t.Fatalf("run[0] = %+v", runs[0])
	}
	if runs[1].Text != "dddd eeee ffff" || runs[1].Loc != (Range{15, 29}) || runs[1].Flags != EndOfLine {
		t.Fatalf("run[1] = %+v", runs[1])
	}
	if runs[1].Bounds.Min.Y != 22 {
		t.Fatalf("折行之间应有 0.1H 的额外间距: y=%d", runs[1].Bounds.Min.Y)
	}
	if runs[0].Font != FontFirstParagraph || runs[1].Font != FontFirstParagraph {
		t.Fatalf("首段整行都使用首段字体")
	}
	if runs[0].Bounds.Max.X != 200 || runs[0].VisBounds.Max.X != 160 {
		t.Fatalf("Bounds=%v VisBounds=%v", runs[0].Bounds, runs[0].VisBounds)
	}
	if d.Size().Y != 42 {
		t.Fatalf("总高度 = %d", d.Size().Y)
	}
}

func TestPlainText(t *testing.T) {
	d := newTestDocument(t, nil)
	d.SetFormat(PlainText)
	d.SetSource("# not a header\n=> x y\n\tz", 800)
	runs := d.Runs()
	if d.NumLinks() != 0 || d.Title() != "" || len(runs) != 3 {
		t.Fatalf("links=%d title=%q runs=%+v", d.NumLinks(), d.Title(), runs)
	}
	for i, want := range []string{"# not a header", "=> x y", "        z"} {
		r := runs[i]
		if r.Text != want || r.Font != FontPreformatted || r.Color != ColorGray75 {
			t.Fatalf("run[%d] = %+v", i, r)
		}
		if r.Bounds.Min.Y != 20*i {
			t.Fatalf("run[%d] y = %d", i, r.Bounds.Min.Y)
		}
	}
}

func TestEmptyInputs(t *testing.T) {
	d := layoutText(t, "", "", 800)
	if len(d.Runs()) != 0 || d.Size().Y != 0 {
		t.Fatalf("空源文本: runs=%d size=%v", len(d.Runs()), d.Size())
	}
	d = layoutText(t, "", "# A\n=> x", 0)
	if len(d.Runs()) != 0 || d.Size().Y != 0 || d.Title() != "" || d.NumLinks() != 0 {
		t.Fatalf("零宽度应清空输出: %+v", d.Snapshot())
	}
}

func TestReset(t *testing.T) {
	d := layoutText(t, "gemini://host/", "# T\n=> pic.png", 800)
	d.SetImage(1, "image/png", &ImageData{Size: image.Pt(10, 10), Texture: 1})
	d.Reset()
	if len(d.Runs()) != 0 || d.NumLinks() != 0 || d.URL() != "" || d.Title() != "" || d.ImageTexture(1) != nil {
		t.Fatalf("Reset 后仍有状态: %+v", d.Snapshot())
	}
	d.SetWidth(800)
	if d.Title() != "T" || d.LinkURL(1) != "pic.png" {
		t.Fatalf("Reset 应保留源文本: title=%q url=%q", d.Title(), d.LinkURL(1))
	}
}

func TestNewRequiresTypesetter(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("缺少 Typesetter 时应返回错误")
	}
}
