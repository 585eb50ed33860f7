package config

import (
	"fmt"

	"github.com/PinkDiamond1/ultralight/pkg/types"
)

// IdentityConfig 身份配置
type IdentityConfig struct {
	// NodeID 本地节点 ID（64 位十六进制，可带 0x 前缀）
	// 为空时每次启动随机生成
	NodeID string `json:"node_id,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.NodeID == "" {
		return nil
	}
	if _, err := types.ParseNodeID(c.NodeID); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// ResolveNodeID 返回配置的节点 ID，未配置时随机生成
func (c IdentityConfig) ResolveNodeID() (types.NodeID, error) {
	if c.NodeID == "" {
		return types.RandomNodeID(), nil
	}
	return types.ParseNodeID(c.NodeID)
}
