package history

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// Header 执行层区块头
//
// 字段顺序即 RLP 编码顺序；分叉后新增的字段为可选尾部字段。
type Header struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       [256]byte
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       [8]byte

	// London
	BaseFee *big.Int `rlp:"optional"`

	// Shanghai
	WithdrawalsHash *common.Hash `rlp:"optional"`

	// Cancun
	BlobGasUsed      *uint64      `rlp:"optional"`
	ExcessBlobGas    *uint64      `rlp:"optional"`
	ParentBeaconRoot *common.Hash `rlp:"optional"`

	// Prague
	RequestsHash *common.Hash `rlp:"optional"`
}

// Body 区块体
//
// 交易和提款保持原始 RLP，不在此解析。
type Body struct {
	Transactions []rlp.RawValue
	Uncles       []*Header
	Withdrawals  []rlp.RawValue `rlp:"optional"`
}

// Block 由区块头和区块体组装出的区块
type Block struct {
	header *Header
	body   *Body
	hash   common.Hash
}

// Hash 区块哈希（区块头 RLP 的 Keccak-256）
func (b *Block) Hash() common.Hash { return b.hash }

// ParentHash 父区块哈希
func (b *Block) ParentHash() common.Hash { return b.header.ParentHash }

// Number 区块高度
func (b *Block) Number() *big.Int {
	if b.header.Number == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.header.Number)
}

// NumberU64 区块高度
func (b *Block) NumberU64() uint64 { return b.Number().Uint64() }

// Header 返回区块头
func (b *Block) Header() *Header { return b.header }

// Transactions 返回原始交易
func (b *Block) Transactions() []rlp.RawValue { return b.body.Transactions }

// Uncles 返回叔块头
func (b *Block) Uncles() []*Header { return b.body.Uncles }

// Withdrawals 返回原始提款记录
func (b *Block) Withdrawals() []rlp.RawValue { return b.body.Withdrawals }

// keccak256 计算 Keccak-256
func keccak256(data []byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// HeaderHash 返回区块头 RLP 编码的哈希
func HeaderHash(headerRLP []byte) common.Hash {
	return keccak256(headerRLP)
}

// DecodeHeader 解码 RLP 区块头
func DecodeHeader(data []byte) (*Header, error) {
	var h Header
	if err := rlp.DecodeBytes(data, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrDecode, err)
	}
	return &h, nil
}

// DecodeBody 解码 RLP 区块体
func DecodeBody(data []byte) (*Body, error) {
	var b Body
	if err := rlp.DecodeBytes(data, &b); err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrDecode, err)
	}
	return &b, nil
}

// DecodeBlock 由区块头和区块体的 RLP 编码组装区块
func DecodeBlock(header, body []byte) (*Block, error) {
	h, err := DecodeHeader(header)
	if err != nil {
		return nil, err
	}
	b, err := DecodeBody(body)
	if err != nil {
		return nil, err
	}
	return &Block{
		header: h,
		body:   b,
		hash:   HeaderHash(header),
	}, nil
}

// EncodeHeader 编码区块头
func EncodeHeader(h *Header) ([]byte, error) {
	return rlp.EncodeToBytes(h)
}

// EncodeBody 编码区块体
func EncodeBody(b *Body) ([]byte, error) {
	return rlp.EncodeToBytes(b)
}
