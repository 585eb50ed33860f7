package config

import (
	"errors"
	"time"
)

// RoutingConfig 路由表配置
type RoutingConfig struct {
	// BucketSize 每个 k-桶的容量（discv5 为 16）
	BucketSize int `json:"bucket_size,omitempty"`

	// ReplacementCacheSize 每个 k-桶的替换缓存容量
	ReplacementCacheSize int `json:"replacement_cache_size,omitempty"`

	// NodeExpiry 节点超过该时长未见即过期，0 表示不过期
	NodeExpiry Duration `json:"node_expiry,omitempty"`
}

// DefaultRoutingConfig 返回默认路由表配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		BucketSize:           16,
		ReplacementCacheSize: 10,
		NodeExpiry:           Duration(24 * time.Hour),
	}
}

// Validate 验证路由表配置
func (c RoutingConfig) Validate() error {
	if c.BucketSize <= 0 {
		return errors.New("routing: bucket_size must be positive")
	}
	if c.ReplacementCacheSize < 0 {
		return errors.New("routing: replacement_cache_size must not be negative")
	}
	if c.NodeExpiry < 0 {
		return errors.New("routing: node_expiry must not be negative")
	}
	return nil
}
