package history

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/gemdoc/layout"
	"github.com/ByLCY/gemdoc/links"
)

var _ layout.History = (*History)(nil)

func TestVisitKeepsLatest(t *testing.T) {
	h := New()
	early := time.Unix(100, 0)
	late := time.Unix(200, 0)
	h.Visit("gemini://a/", late)
	h.Visit("gemini://a/", early)
	got, ok := h.VisitTime("gemini://a/")
	if !ok || !got.Equal(late) {
		t.Fatalf("VisitTime = %v, %v", got, ok)
	}
	if _, ok := h.VisitTime("gemini://b/"); ok {
		t.Fatalf("未访问的 URL 不应有记录")
	}
	h.Visit("", late)
	if h.Len() != 1 {
		t.Fatalf("空 URL 不应记录: Len=%d", h.Len())
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	src := "# visited\n\n1700000000 gemini://b.org/\n1600000000 gemini://a.org/page\n"
	h := New()
	if err := h.Load(strings.NewReader(src)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
	var sb strings.Builder
	if err := h.Save(&sb); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := "1600000000 gemini://a.org/page\n1700000000 gemini://b.org/\n"
	if sb.String() != want {
		t.Fatalf("Save 输出:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, bad := range []string{"1700000000\n", "abc gemini://x/\n"} {
		if err := New().Load(strings.NewReader(bad)); err == nil {
			t.Fatalf("Load(%q) 应失败", bad)
		}
	}
}

func TestMarksVisitedLinks(t *testing.T) {
	h := New()
	h.Visit("gemini://host/seen", time.Unix(1700000000, 0))
	d, err := layout.New(layout.Options{Typesetter: fixedTypesetter{}, History: h, Metrics: layout.DefaultMetrics()})
	if err != nil {
		t.Fatalf("layout.New: %v", err)
	}
	d.SetURL("gemini://host/")
	d.SetSource("=> seen\n=> other", 400)
	if !d.LinkFlags(1).Has(links.Visited) || d.LinkFlags(2).Has(links.Visited) {
		t.Fatalf("flags = %v, %v", d.LinkFlags(1), d.LinkFlags(2))
	}
}

// fixedTypesetter 把每个字节当作 8px 宽、行高 16px，且从不折行。
type fixedTypesetter struct{}

func (fixedTypesetter) Advance(_ layout.FontID, text string) image.Point {
	return image.Pt(8*len(text), 16)
}

func (f fixedTypesetter) TryAdvance(font layout.FontID, text string, _ int) (image.Point, int) {
	return f.Advance(font, text), len(text)
}

func (fixedTypesetter) TryAdvanceNoWrap(_ layout.FontID, text string, x int) int {
	return min(max(x/8, 0), len(text))
}

func (fixedTypesetter) LineHeight(layout.FontID) int { return 16 }

func (f fixedTypesetter) MeasureRange(font layout.FontID, text string) image.Point {
	return f.Advance(font, text)
}
