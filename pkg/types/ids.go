package types

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// ============================================================================
//                              NodeID - 节点标识
// ============================================================================

// NodeIDSize NodeID 字节长度（256 位）
const NodeIDSize = 32

// NodeID 节点唯一标识符（256 位）
//
// 外部表示格式为小写十六进制（与 ENR 中的 node id 一致）。
// 赋值后不可变，按值传递。
type NodeID [NodeIDSize]byte

// EmptyNodeID 空节点ID
var EmptyNodeID NodeID

// ErrInvalidNodeID 无效的节点ID错误
var ErrInvalidNodeID = errors.New("invalid node ID: must be 32 bytes hex")

// String 返回 NodeID 的十六进制表示（不带 0x 前缀）
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// ShortString 返回前 8 个十六进制字符，用于日志
func (id NodeID) ShortString() string {
	return id.String()[:8]
}

// Bytes 返回 NodeID 的字节切片副本
func (id NodeID) Bytes() []byte {
	b := make([]byte, NodeIDSize)
	copy(b, id[:])
	return b
}

// IsEmpty 检查 NodeID 是否为空
func (id NodeID) IsEmpty() bool {
	return id == EmptyNodeID
}

// MarshalText 实现 encoding.TextMarshaler，输出 0x 前缀十六进制
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte("0x" + id.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NodeIDFromBytes 从字节切片创建 NodeID
func NodeIDFromBytes(b []byte) (NodeID, error) {
	if len(b) != NodeIDSize {
		return EmptyNodeID, ErrInvalidNodeID
	}
	var id NodeID
	copy(id[:], b)
	return id, nil
}

// ParseNodeID 从十六进制字符串解析 NodeID
//
// 接受带或不带 "0x" 前缀的 64 位十六进制字符串。
func ParseNodeID(s string) (NodeID, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return EmptyNodeID, ErrInvalidNodeID
	}
	return NodeIDFromBytes(b)
}

// RandomNodeID 生成随机 NodeID
//
// 节点启动时未配置身份的情况下使用。
func RandomNodeID() NodeID {
	var id NodeID
	if _, err := rand.Read(id[:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return id
}

// ============================================================================
//                              SubnetworkID - 子网标识
// ============================================================================

// SubnetworkID Portal 子网标识
//
// 每个子网维护独立的路由表与内容存储。
type SubnetworkID uint16

// 已知子网
const (
	// StateNetwork 状态子网
	StateNetwork SubnetworkID = 0x500A
	// HistoryNetwork 历史子网（区块头、区块体、收据）
	HistoryNetwork SubnetworkID = 0x500B
)

// String 返回子网名称
func (s SubnetworkID) String() string {
	switch s {
	case StateNetwork:
		return "state"
	case HistoryNetwork:
		return "history"
	default:
		return "0x" + hex.EncodeToString([]byte{byte(s >> 8), byte(s)})
	}
}
