package layout

import (
	"image"
	"log/slog"
	"math"
	"strings"

	"github.com/ByLCY/gemdoc/gemtext"
	"github.com/ByLCY/gemdoc/links"
)

const (
	midRunSkip  = 0.1 // 折行之间、连续链接之间的额外间距（行高倍数）
	imageMargin = 0.5 // 内嵌图片上下的间距（段落行高倍数）
)

const (
	arrowIcon  = "→"
	bulletIcon = "•"
	folderIcon = "\U0001f4c1"
	globeIcon  = "\U0001f310"
)

// flowState 是一次排版过程中的游标与状态。
type flowState struct {
	pos       image.Point
	prevType  gemtext.LineType
	pre       bool
	firstText bool
	preFont   FontID
	preAlt    Range
}

// layout 根据当前源文本、宽度、历史记录与图片表重新计算全部 Run。
// 链接表在开始时清空；图片表保留。
func (d *Document) layout() {
	d.runs = nil
	d.links.Clear()
	d.title = ""
	d.size.Y = 0
	if d.size.X <= 0 || d.source == "" {
		return
	}
	ts := d.typesetter
	src := d.source
	gap := d.metrics.Gap
	paraHeight := ts.LineHeight(FontParagraph)
	lines := gemtext.Lines(src)

	st := flowState{
		prevType:  gemtext.Text,
		firstText: true,
		preFont:   FontPreformatted,
		preAlt:    NoRange,
	}
	if d.format == PlainText {
		st.pre = true
		st.firstText = false
	}

	for i, sp := range lines {
		line := Range{Start: sp.Start, End: sp.End}
		run := Run{Color: ColorWhite, Loc: NoRange, AltText: NoRange}
		var typ gemtext.LineType
		indent := 0
		// 绝对链接的显示文本与源文本不同时使用。
		display := ""

		if !st.pre {
			raw := src[line.Start:line.End]
			typ = gemtext.Classify(raw)
			indent = lineStyles[typ].Indent
			if typ == gemtext.Preformatted {
				st.pre = true
				st.preFont = FontPreformatted
				// 块内容过宽时改用小号字体。
				body := preformattedBody(src, lines, i)
				if ts.MeasureRange(st.preFont, body).X > d.size.X-lineStyles[gemtext.Preformatted].Indent*gap {
					st.preFont = FontPreformattedSmall
				}
				alt, off := gemtext.Trim(raw, typ)
				st.preAlt = Range{Start: line.Start + off, End: line.Start + off + len(alt)}
				continue
			}
			if typ == gemtext.Link {
				if id, shown, text, ok := d.addLink(raw, line.Start); ok {
					run.LinkID = id
					line = shown
					display = text
				} else {
					typ = gemtext.Text
				}
			}
			trimmed, off := gemtext.Trim(src[line.Start:line.End], typ)
			line = Range{Start: line.Start + off, End: line.Start + off + len(trimmed)}
			run.Font = lineStyles[typ].Font
		} else {
			typ = gemtext.Preformatted
			if d.format == Gemini && gemtext.IsFence(src[line.Start:line.End]) {
				st.pre = false
				st.preAlt = NoRange
				continue
			}
			run.Font = st.preFont
			run.AltText = st.preAlt
			indent = lineStyles[typ].Indent
		}

		// 空行不产生 Run。
		if line.Len() == 0 {
			st.pos.Y += ts.LineHeight(run.Font)
			st.prevType = gemtext.Text
			continue
		}

		// 与上一个可见 Run 之间的间距。连续的预格式化行之间不留间距。
		if !st.pre || st.prevType != gemtext.Preformatted {
			required := int(math.Max(lineStyles[typ].Top, lineStyles[st.prevType].Bottom) * float64(paraHeight))
			switch {
			case typ == gemtext.Link && st.prevType == gemtext.Link:
				required = int(midRunSkip * float64(paraHeight))
			case typ == gemtext.Quote && st.prevType == gemtext.Quote:
				required = 0
			}
			if len(d.runs) == 0 {
				required = 0
			}
			if delta := st.pos.Y - d.lastVisibleRunBottom(); delta < required {
				st.pos.Y += required - delta
			}
		}

		if typ == gemtext.Header1 && d.title == "" {
			d.title = src[line.Start:line.End]
		}

		if typ == gemtext.Bullet {
			d.runs = append(d.runs, d.bulletRun(run, st.pos, indent))
		}
		if typ == gemtext.Link {
			d.runs = append(d.runs, d.linkIconRun(run, st.pos, indent))
		}

		run.Color = lineStyles[typ].Color
		if d.format == PlainText {
			run.Color = lineStyles[gemtext.Text].Color
		}
		if typ == gemtext.Link {
			run.Color = d.LinkColor(run.LinkID)
		}
		// 第一段正文（副标题、导语）使用专门的字体与颜色。
		if typ == gemtext.Text && st.firstText {
			run.Font = FontFirstParagraph
			run.Color = ColorGray88
			st.firstText = false
		} else if typ != gemtext.Header1 {
			st.firstText = false
		}

		d.wrapLine(&st, run, typ, line, display, indent)

		if typ == gemtext.Link {
			d.placeImage(&st, run, paraHeight)
		}
		st.prevType = typ
	}
	d.size.Y = st.pos.Y

	Logger().Debug("layout done",
		slog.Int("width", d.size.X),
		slog.Int("height", d.size.Y),
		slog.Int("runs", len(d.runs)),
		slog.Int("links", d.links.Len()))
}

// wrapLine 把一行文字按可用宽度拆成若干 Run。
// display 非空时表示显示文本不取自源文本（相对链接的绝对 URL）。
func (d *Document) wrapLine(st *flowState, run Run, typ gemtext.LineType, line Range, display string, indent int) {
	ts := d.typesetter
	gap := d.metrics.Gap
	text := d.source[line.Start:line.End]
	fromSource := display == ""
	if !fromSource {
		text = display
	}
	extraSkip := typ == gemtext.Text || typ == gemtext.Quote || typ == gemtext.Bullet
	run.Flags = StartOfLine
	first := true
	off := 0
	for text != "" {
		if !first && extraSkip {
			st.pos.Y += int(midRunSkip * float64(ts.LineHeight(run.Font)))
		}
		first = false
		origin := st.pos.Add(image.Pt(indent*gap, 0))
		avail := d.size.X - origin.X
		maxWidth := avail
		if st.pre {
			maxWidth = 0
		}
		dims, cont := ts.TryAdvance(run.Font, text, maxWidth)
		if cont <= 0 || cont > len(text) {
			cont = len(text)
		}
		run.Text = text[:cont]
		if fromSource {
			run.Loc = Range{Start: line.Start + off, End: line.Start + off + cont}
		} else {
			// 显示文本与源文本没有逐字节对应，每段都指向整个原始 URL。
			run.Loc = line
		}
		run.Bounds = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(max(avail, dims.X), dims.Y))}
		run.VisBounds = image.Rectangle{Min: origin, Max: origin.Add(dims)}
		d.runs = append(d.runs, run)
		run.Flags &^= StartOfLine
		st.pos.Y += ts.LineHeight(run.Font)

		rest := strings.TrimLeftFunc(text[cont:], isASCIISpace)
		off += len(text) - len(rest)
		text = rest
	}
	if n := len(d.runs); n > 0 {
		d.runs[n-1].Flags |= EndOfLine
	}
}

// lastVisibleRunBottom 返回最后一个带文字的 Run 的底边。
func (d *Document) lastVisibleRunBottom() int {
	for i := len(d.runs) - 1; i >= 0; i-- {
		if d.runs[i].Text == "" {
			continue
		}
		return d.runs[i].Bounds.Max.Y
	}
	return 0
}

// preformattedBody 返回从 fence 行之后到下一个 fence（或文末）之间的块内容。
func preformattedBody(src string, lines []gemtext.Span, fence int) string {
	start := lines[fence].End + 1
	if start > len(src) {
		start = len(src)
	}
	end := start
	for j := fence + 1; j < len(lines); j++ {
		if gemtext.IsFence(lines[j].Of(src)) {
			break
		}
		end = lines[j].End
	}
	return src[start:end]
}

// addLink 解析链接行，登记链接并返回其编号、显示区间与显示文本。
// 格式不合法时返回 false。
func (d *Document) addLink(raw string, lineStart int) (links.ID, Range, string, bool) {
	pl, ok := gemtext.ParseLink(raw)
	if !ok {
		return 0, NoRange, "", false
	}
	rawURL := pl.URL.Of(raw)
	link := &links.Link{URL: links.Resolve(d.url, rawURL)}
	link.Flags = links.Classify(link.URL, d.localHost)
	if d.history != nil && link.URL != d.url {
		if when, ok := d.history.VisitTime(link.URL); ok {
			link.When = when
			link.Flags |= links.Visited
		}
	}
	id := d.links.Add(link)
	if pl.HasDesc() {
		link.Flags |= links.UserFriendly
		return id, Range{Start: lineStart + pl.Desc.Start, End: lineStart + pl.Desc.End}, "", true
	}
	shown := Range{Start: lineStart + pl.URL.Start, End: lineStart + pl.URL.End}
	display := ""
	if link.URL != rawURL {
		display = link.URL
	}
	return id, shown, display, true
}

// bulletRun 生成列表符号，只有视觉区域。
func (d *Document) bulletRun(run Run, pos image.Point, indent int) Run {
	gap := d.metrics.Gap
	size := d.typesetter.Advance(run.Font, bulletIcon)
	x := pos.X + indent*gap - (4*gap - size.X/2)
	run.VisBounds = image.Rect(x, pos.Y, x+size.X, pos.Y+size.Y)
	run.Bounds = image.Rectangle{}
	run.Text = bulletIcon
	run.Color = lineStyles[gemtext.Bullet].Color
	return run
}

// linkIconRun 生成链接前的图标：本地文件为文件夹，远程主机为地球，其余为箭头。
func (d *Document) linkIconRun(run Run, pos image.Point, indent int) Run {
	gap := d.metrics.Gap
	flags := d.LinkFlags(run.LinkID)
	run.VisBounds = image.Rectangle{
		Min: pos,
		Max: pos.Add(image.Pt(indent*gap, d.typesetter.LineHeight(run.Font))),
	}
	run.Bounds = image.Rectangle{}
	switch {
	case flags&links.File != 0:
		run.Text = folderIcon
	case flags&links.Remote != 0:
		run.Text = globeIcon
	default:
		run.Text = arrowIcon
	}
	if flags&links.Remote != 0 {
		run.VisBounds = run.VisBounds.Sub(image.Pt(gap/2, 0))
	}
	run.Color = d.LinkColor(run.LinkID)
	if flags&links.Visited != 0 {
		run.Color = run.Color.Darker()
	}
	return run
}

// placeImage 在链接行下方放置该链接的内嵌图片（若已注册）。
func (d *Document) placeImage(st *flowState, run Run, paraHeight int) {
	idx := d.images.find(run.LinkID)
	if idx < 0 {
		return
	}
	if link := d.links.Get(run.LinkID); link != nil {
		link.Flags |= links.Content
	}
	img := d.images.images[idx]
	margin := int(imageMargin * float64(paraHeight))
	st.pos.Y += margin

	width := d.size.X
	aspect := float64(img.Size.Y) / float64(img.Size.X)
	height := int(float64(width) * aspect)
	bounds := image.Rectangle{Min: st.pos, Max: st.pos.Add(image.Pt(width, height))}
	vis := bounds
	// 不放大图片：视觉尺寸不超过像素尺寸乘以屏幕像素比。
	maxWidth := int(float64(img.Size.X) * d.metrics.PixelRatio)
	if width > maxWidth {
		visHeight := height * maxWidth / width
		x := bounds.Min.X + width/2 - maxWidth/2
		vis = image.Rect(x, st.pos.Y, x+maxWidth, st.pos.Y+visHeight)
		bounds.Max.Y = bounds.Min.Y + visHeight
	}

	run.Text = ""
	run.Loc = NoRange
	run.Font = FontRegular
	run.Color = ColorBlack
	run.Flags = 0
	run.Bounds = bounds
	run.VisBounds = vis
	run.ImageID = ImageID(idx + 1)
	d.runs = append(d.runs, run)
	st.pos.Y += bounds.Dy() + margin
}

func isASCIISpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\v' || r == '\f' || r == '\r'
}
