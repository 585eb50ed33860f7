// Package historytest 提供 history 相关测试和演示使用的区块固件
//
// 仅供测试和本地演示使用，编码失败时直接 panic。
package historytest

import (
	"math/big"

	"github.com/PinkDiamond1/ultralight/internal/history"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// FixtureBlock 构造一个可解码的区块头和区块体编码
//
// 不是有效的链上区块：难度为 0，包含两笔占位交易。
func FixtureBlock(number uint64, parent common.Hash) (header, body []byte, hash common.Hash) {
	h := &history.Header{
		ParentHash: parent,
		Difficulty: big.NewInt(0),
		Number:     new(big.Int).SetUint64(number),
		GasLimit:   30_000_000,
		Time:       1_700_000_000 + number*12,
		Extra:      []byte("ultralight"),
	}

	header, err := history.EncodeHeader(h)
	if err != nil {
		panic(err)
	}

	txs := []rlp.RawValue{
		mustEncode([]uint64{number, 1}),
		mustEncode([]uint64{number, 2}),
	}
	body, err = history.EncodeBody(&history.Body{Transactions: txs})
	if err != nil {
		panic(err)
	}

	return header, body, history.HeaderHash(header)
}

func mustEncode(v interface{}) rlp.RawValue {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(err)
	}
	return b
}
