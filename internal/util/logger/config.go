// Package logger 安装 ultralight 的全局日志 Handler
//
// 支持通过环境变量配置：
//   - ULTRALIGHT_LOG_LEVEL: 日志级别，支持按组件配置
//     格式: 组件=级别,组件=级别,默认级别
//     示例: explorer=debug,history/network=warn,info
//   - ULTRALIGHT_LOG_FORMAT: 日志格式 (text 或 json)
//
// 组件名即 pkg/lib/log.Logger(component) 传入的名称，按前缀匹配，
// "history" 同时作用于 "history/network" 和 "history/store"。
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// 环境变量名
const (
	EnvLogLevel  = "ULTRALIGHT_LOG_LEVEL"
	EnvLogFormat = "ULTRALIGHT_LOG_FORMAT"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// ComponentLevels 各组件的日志级别
	ComponentLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat
}

// DefaultConfig 返回默认配置（info，文本格式）
func DefaultConfig() *Config {
	return &Config{
		DefaultLevel:    slog.LevelInfo,
		ComponentLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}
}

// LevelFor 返回组件的日志级别
//
// 取最长的匹配前缀；没有匹配时返回默认级别。
func (c *Config) LevelFor(component string) slog.Level {
	level := c.DefaultLevel
	best := -1
	for name, lvl := range c.ComponentLevels {
		if component != name && !strings.HasPrefix(component, name+"/") {
			continue
		}
		if len(name) > best {
			best = len(name)
			level = lvl
		}
	}
	return level
}

// MinLevel 返回所有配置中最低的级别
func (c *Config) MinLevel() slog.Level {
	min := c.DefaultLevel
	for _, lvl := range c.ComponentLevels {
		if lvl < min {
			min = lvl
		}
	}
	return min
}

// ConfigFromEnv 从环境变量解析配置
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if levelStr := os.Getenv(EnvLogLevel); levelStr != "" {
		ParseLevels(cfg, levelStr)
	}
	if strings.EqualFold(os.Getenv(EnvLogFormat), "json") {
		cfg.Format = FormatJSON
	}
	return cfg
}

// ParseLevels 解析日志级别配置字符串
// 格式: component=level,component=level,defaultLevel
func ParseLevels(cfg *Config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, levelName, found := strings.Cut(part, "=")
		if !found {
			if level, ok := ParseLevel(part); ok {
				cfg.DefaultLevel = level
			}
			continue
		}
		if level, ok := ParseLevel(strings.TrimSpace(levelName)); ok {
			cfg.ComponentLevels[strings.TrimSpace(name)] = level
		}
	}
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
