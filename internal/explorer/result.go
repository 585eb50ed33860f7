package explorer

import (
	"github.com/PinkDiamond1/ultralight/internal/history"
)

// State 重建结果状态
type State int

const (
	// StateReady 区块已组装并成为当前区块
	StateReady State = iota + 1
	// StateInvalidKey 内容键无效，未发起任何查找
	StateInvalidKey
	// StateIncomplete 区块头或区块体缺失
	StateIncomplete
	// StateAssemblyFailed 区块头和区块体都在，但无法组装
	StateAssemblyFailed
	// StateSuperseded 有更新的请求，本次结果被丢弃
	StateSuperseded
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateInvalidKey:
		return "invalid_key"
	case StateIncomplete:
		return "incomplete"
	case StateAssemblyFailed:
		return "assembly_failed"
	case StateSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Result 一次重建的结果
type Result struct {
	// Key 请求的内容键；内容键无效时清空为 ""
	Key string

	// State 最终状态
	State State

	// Block 组装出的区块，仅 StateReady 时非 nil
	Block *history.Block

	// HeaderErr 区块头获取错误
	HeaderErr error

	// BodyErr 区块体获取错误
	BodyErr error

	// Err 汇总错误，StateReady 时为 nil
	Err error

	// Token 本次调用的序号
	Token uint64
}

// OK 是否成功
func (r *Result) OK() bool {
	return r.State == StateReady
}
