// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载和保存配置。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Storage.DataDir = "/var/lib/ultralight"
//	cfg.History.Alpha = 5
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("ultralight.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 是 ultralight 的完整配置结构
//
// 配置按照功能模块组织：
//   - Identity: 本地节点 ID
//   - Storage: 本地内容存储（BadgerDB）
//   - Routing: 路由表（k-桶）
//   - History: History 内容网络查询
//   - Log: 日志
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Routing 路由表配置
	Routing RoutingConfig `json:"routing"`

	// History History 网络配置
	History HistoryConfig `json:"history"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity: DefaultIdentityConfig(),
		Storage:  DefaultStorageConfig(),
		Routing:  DefaultRoutingConfig(),
		History:  DefaultHistoryConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回第一个发现的错误。
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Routing.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Clone 返回配置的拷贝
//
// 所有子配置均为值类型，浅拷贝即深拷贝。
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cloned := *c
	return &cloned
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现在 JSON 中的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "storage": {"data_dir": "/var/lib/ultralight"},
//	  "history": {"alpha": 5, "query_timeout": "5s"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}

// ToJSON 将配置序列化为缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
