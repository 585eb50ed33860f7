package config

import (
	"fmt"
	"strings"

	"github.com/PinkDiamond1/ultralight/internal/util/logger"
)

// LogConfig 日志配置
//
// 环境变量 ULTRALIGHT_LOG_LEVEL / ULTRALIGHT_LOG_FORMAT 优先于此配置。
type LogConfig struct {
	// Level 日志级别字符串，格式同 ULTRALIGHT_LOG_LEVEL
	// 例如 "info" 或 "explorer=debug,warn"
	Level string `json:"level,omitempty"`

	// Format 输出格式: "text" 或 "json"
	Format string `json:"format,omitempty"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", c.Format)
	}
	for _, part := range strings.Split(c.Level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, name, found := strings.Cut(part, "="); found {
			part = strings.TrimSpace(name)
		}
		if _, ok := logger.ParseLevel(part); !ok {
			return fmt.Errorf("log: unknown level %q", part)
		}
	}
	return nil
}

// LoggerConfig 转换为 logger.Config
func (c LogConfig) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	logger.ParseLevels(cfg, c.Level)
	if strings.EqualFold(c.Format, "json") {
		cfg.Format = logger.FormatJSON
	}
	return cfg
}
