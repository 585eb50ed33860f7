package explorer

import "errors"

var (
	// ErrInvalidKey 内容键不是 0x 前缀的 32 字节十六进制区块哈希
	ErrInvalidKey = errors.New("explorer: invalid content key")

	// ErrFetchFailed 区块头或区块体获取失败
	ErrFetchFailed = errors.New("explorer: fetch failed")

	// ErrIncomplete 区块头或区块体缺失，无法组装
	ErrIncomplete = errors.New("explorer: block incomplete")

	// ErrAssemblyFailed 区块头和区块体都已获取，但组装失败
	ErrAssemblyFailed = errors.New("explorer: assembly failed")

	// ErrHashMismatch 组装出的区块哈希与请求的不一致
	ErrHashMismatch = errors.New("explorer: block hash mismatch")

	// ErrNoBlock 解码器没有返回错误也没有返回区块
	ErrNoBlock = errors.New("explorer: decoder returned no block")

	// ErrSuperseded 有更新的重建请求，本次结果被丢弃
	ErrSuperseded = errors.New("explorer: superseded by newer request")
)
