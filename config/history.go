package config

import (
	"errors"
	"time"
)

// HistoryConfig History 内容网络配置
type HistoryConfig struct {
	// ChainID 内容键中编码的链 ID（主网为 1）
	ChainID uint16 `json:"chain_id"`

	// Alpha 内容查询的并发度
	Alpha int `json:"alpha,omitempty"`

	// LookupPeers 每次查询最多询问的最近节点数
	LookupPeers int `json:"lookup_peers,omitempty"`

	// QueryTimeout 单个节点查询超时
	QueryTimeout Duration `json:"query_timeout,omitempty"`
}

// DefaultHistoryConfig 返回默认 History 配置
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		ChainID:      1,
		Alpha:        3,
		LookupPeers:  16,
		QueryTimeout: Duration(5 * time.Second),
	}
}

// Validate 验证 History 配置
func (c HistoryConfig) Validate() error {
	if c.Alpha <= 0 {
		return errors.New("history: alpha must be positive")
	}
	if c.LookupPeers <= 0 {
		return errors.New("history: lookup_peers must be positive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("history: query_timeout must be positive")
	}
	return nil
}
