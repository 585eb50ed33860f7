package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// componentHandler 按组件过滤级别的 slog.Handler
//
// pkg/lib/log 的 LazyLogger 通过 With("component", name) 标记组件，
// 这里在 WithAttrs 中识别该属性并切换到组件自己的级别。
type componentHandler struct {
	cfg       *Config
	component string
	level     slog.Level
	inner     slog.Handler
}

// NewHandler 创建按组件过滤的 Handler
func NewHandler(w io.Writer, cfg *Config) slog.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &slog.HandlerOptions{
		// 真正的过滤在 componentHandler.Enabled 中完成
		Level: cfg.MinLevel(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}

	return &componentHandler{
		cfg:   cfg,
		level: cfg.DefaultLevel,
		inner: inner,
	}
}

// Enabled 检查是否启用指定级别
func (h *componentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle 处理日志记录
func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs 添加属性，识别 component 属性
func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &componentHandler{
		cfg:       h.cfg,
		component: h.component,
		level:     h.level,
		inner:     h.inner.WithAttrs(attrs),
	}
	for _, a := range attrs {
		if a.Key == "component" {
			next.component = a.Value.String()
			next.level = h.cfg.LevelFor(next.component)
		}
	}
	return next
}

// WithGroup 添加组
func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{
		cfg:       h.cfg,
		component: h.component,
		level:     h.level,
		inner:     h.inner.WithGroup(name),
	}
}

// Setup 安装全局 Handler
//
// w 为 nil 时输出到 stderr；cfg 为 nil 时读取环境变量。
func Setup(w io.Writer, cfg *Config) {
	if w == nil {
		w = os.Stderr
	}
	if cfg == nil {
		cfg = ConfigFromEnv()
	}
	slog.SetDefault(slog.New(NewHandler(w, cfg)))
}

// discardHandler 丢弃所有日志的 Handler（用于测试）
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard 安装丢弃所有日志的全局 Handler
func Discard() {
	slog.SetDefault(slog.New(discardHandler{}))
}
