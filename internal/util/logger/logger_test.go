package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevels(t *testing.T) {
	cfg := DefaultConfig()
	ParseLevels(cfg, "explorer=debug, history/network=warn ,error,bogus=loud")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.ComponentLevels["explorer"])
	assert.Equal(t, slog.LevelWarn, cfg.ComponentLevels["history/network"])
	_, ok := cfg.ComponentLevels["bogus"]
	assert.False(t, ok, "无效级别应被忽略")
}

func TestConfig_LevelFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ComponentLevels["history"] = slog.LevelWarn
	cfg.ComponentLevels["history/network"] = slog.LevelDebug

	assert.Equal(t, slog.LevelDebug, cfg.LevelFor("history/network"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelFor("history/store"))
	assert.Equal(t, slog.LevelInfo, cfg.LevelFor("historyx"))
	assert.Equal(t, slog.LevelInfo, cfg.LevelFor("explorer"))
	assert.Equal(t, slog.LevelDebug, cfg.MinLevel())
}

func TestSetup_ComponentFiltering(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.ComponentLevels["explorer"] = slog.LevelDebug
	Setup(buf, cfg)

	// logger 在 Setup 之前或之后创建都应生效
	explorerLog := log.Logger("explorer")
	storeLog := log.Logger("history/store")

	explorerLog.Debug("explorer debug", "key", "value")
	storeLog.Debug("store debug")
	storeLog.Info("store info")

	out := buf.String()
	assert.True(t, strings.Contains(out, "explorer debug"))
	assert.True(t, strings.Contains(out, "key=value"))
	assert.True(t, strings.Contains(out, "component=explorer"))
	assert.False(t, strings.Contains(out, "store debug"), "history/store 的 debug 应被过滤")
	assert.True(t, strings.Contains(out, "store info"))
}

func TestSetup_JSONFormat(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Format = FormatJSON
	Setup(buf, cfg)

	log.Logger("routing").Info("hello")
	assert.Contains(t, buf.String(), `"component":"routing"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestDiscard(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	Discard()
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelError))
}
