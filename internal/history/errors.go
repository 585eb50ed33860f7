package history

import "errors"

var (
	// ErrContentNotFound 本地和网络中都没有找到内容
	ErrContentNotFound = errors.New("history: content not found")

	// ErrInvalidBlockHash 区块哈希格式无效（需 0x 前缀、32 字节十六进制）
	ErrInvalidBlockHash = errors.New("history: invalid block hash")

	// ErrInvalidContentKey 内容键编码无效
	ErrInvalidContentKey = errors.New("history: invalid content key")

	// ErrPeerUnreachable Transport 无法联系目标节点
	ErrPeerUnreachable = errors.New("history: peer unreachable")

	// ErrDecode 区块数据解码失败
	ErrDecode = errors.New("history: decode failed")
)
