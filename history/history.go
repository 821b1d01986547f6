// Package history 记录已访问的 URL 及访问时间，供排版时标记已访问链接。
package history

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// History 是内存中的访问记录，可从文件加载与保存。
// 文件每行一条记录：`<unix 秒> <url>`，空行与 '#' 开头的行被忽略。
type History struct {
	mu     sync.RWMutex
	visits map[string]time.Time
}

// New 创建空的访问记录。
func New() *History {
	return &History{visits: map[string]time.Time{}}
}

// Visit 记录一次访问；已有记录时保留较新的时间。
func (h *History) Visit(url string, when time.Time) {
	if url == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.visits[url]; ok && prev.After(when) {
		return
	}
	h.visits[url] = when
}

// VisitTime 返回 url 最近一次访问时间。
func (h *History) VisitTime(url string) (time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.visits[url]
	return t, ok
}

// Len 返回记录数。
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.visits)
}

// Load 从 r 读取记录并合并到 h。
func (h *History) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		secs, url, ok := strings.Cut(line, " ")
		url = strings.TrimSpace(url)
		if !ok || url == "" {
			return fmt.Errorf("第 %d 行格式错误: %q", lineNo, line)
		}
		n, err := strconv.ParseInt(secs, 10, 64)
		if err != nil {
			return fmt.Errorf("第 %d 行时间无效: %w", lineNo, err)
		}
		h.Visit(url, time.Unix(n, 0).UTC())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("读取访问记录失败: %w", err)
	}
	return nil
}

// Save 按 URL 顺序把全部记录写入 w。
func (h *History) Save(w io.Writer) error {
	h.mu.RLock()
	urls := make([]string, 0, len(h.visits))
	for u := range h.visits {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	bw := bufio.NewWriter(w)
	for _, u := range urls {
		fmt.Fprintf(bw, "%d %s\n", h.visits[u].Unix(), u)
	}
	h.mu.RUnlock()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("写入访问记录失败: %w", err)
	}
	return nil
}
