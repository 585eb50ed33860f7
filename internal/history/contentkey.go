package history

import (
	"encoding/binary"
	"fmt"

	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/minio/sha256-simd"
)

// Selector 内容类型
type Selector byte

// History 子网内容类型
const (
	SelectorBlockHeader Selector = 0x00
	SelectorBlockBody   Selector = 0x01
	SelectorReceipts    Selector = 0x02
)

// MainnetChainID 以太坊主网链 ID
const MainnetChainID uint16 = 1

// contentKeySize selector(1) + chainID(2) + blockHash(32)
const contentKeySize = 1 + 2 + common.HashLength

// String 返回内容类型名称
func (s Selector) String() string {
	switch s {
	case SelectorBlockHeader:
		return "header"
	case SelectorBlockBody:
		return "body"
	case SelectorReceipts:
		return "receipts"
	default:
		return fmt.Sprintf("selector(%d)", byte(s))
	}
}

// ContentKey History 子网内容键
type ContentKey struct {
	Selector  Selector
	ChainID   uint16
	BlockHash common.Hash
}

// NewContentKey 创建内容键
func NewContentKey(selector Selector, chainID uint16, blockHash common.Hash) ContentKey {
	return ContentKey{
		Selector:  selector,
		ChainID:   chainID,
		BlockHash: blockHash,
	}
}

// Serialize 返回内容键的线上编码
func (k ContentKey) Serialize() []byte {
	out := make([]byte, contentKeySize)
	out[0] = byte(k.Selector)
	binary.LittleEndian.PutUint16(out[1:3], k.ChainID)
	copy(out[3:], k.BlockHash[:])
	return out
}

// DecodeContentKey 解析线上编码的内容键
func DecodeContentKey(b []byte) (ContentKey, error) {
	if len(b) != contentKeySize {
		return ContentKey{}, fmt.Errorf("%w: length %d", ErrInvalidContentKey, len(b))
	}
	if Selector(b[0]) > SelectorReceipts {
		return ContentKey{}, fmt.Errorf("%w: unknown selector %d", ErrInvalidContentKey, b[0])
	}
	return ContentKey{
		Selector:  Selector(b[0]),
		ChainID:   binary.LittleEndian.Uint16(b[1:3]),
		BlockHash: common.BytesToHash(b[3:]),
	}, nil
}

// ContentID 返回内容 ID（查找键）
//
// 内容 ID 与节点 ID 处于同一个 256 位空间，用于选择最近的节点。
func (k ContentKey) ContentID() types.NodeID {
	return types.NodeID(sha256.Sum256(k.Serialize()))
}

// String 返回 0x 前缀的十六进制编码
func (k ContentKey) String() string {
	return hexutil.Encode(k.Serialize())
}

// ParseBlockHash 解析 0x 前缀的 32 字节十六进制区块哈希
func ParseBlockHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", ErrInvalidBlockHash, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidBlockHash, common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
