package layout

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discardHandler 丢弃所有日志；Enabled 恒为 false，调用方不会格式化参数。
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

var current atomic.Pointer[slog.Logger]

func init() {
	SetLogger(nil)
}

// SetLogger 设置排版过程使用的日志器，传入 nil 恢复为静默。
// 排版完成时输出 Debug 记录，拒绝图片时输出 Warn 记录。
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	current.Store(l)
}

// Logger 返回当前日志器。
func Logger() *slog.Logger { return current.Load() }
