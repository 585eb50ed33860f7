// Package explorer 根据区块哈希从 History 子网重建区块
//
// 一次重建：校验内容键，派生区块头和区块体的内容键，
// 并发获取两部分（两部分都会尝试），都拿到后组装区块。
// 每次调用领取一个递增序号，组装时如果已有更新的调用，
// 本次结果标记为 StateSuperseded，不会覆盖当前区块。
package explorer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/PinkDiamond1/ultralight/internal/history"
	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var logger = log.Logger("explorer")

// ContentNetwork 重建所需的内容网络能力
type ContentNetwork interface {
	ChainID() uint16
	Lookup(ctx context.Context, key history.ContentKey) ([]byte, error)
	Get(key history.ContentKey) ([]byte, error)
}

// Decoder 由区块头和区块体编码组装区块
type Decoder func(header, body []byte) (*history.Block, error)

// Recorder 重建指标记录
type Recorder interface {
	ReconstructionFinished(state string)
	FetchFailed(part string)
}

// Explorer 区块浏览器
type Explorer struct {
	network  ContentNetwork
	decode   Decoder
	recorder Recorder

	seq atomic.Uint64

	mu         sync.RWMutex
	current    *history.Block
	currentKey string
}

// Option Explorer 选项
type Option func(*Explorer)

// WithDecoder 替换区块解码器
func WithDecoder(d Decoder) Option {
	return func(e *Explorer) {
		e.decode = d
	}
}

// WithRecorder 设置指标记录
func WithRecorder(r Recorder) Option {
	return func(e *Explorer) {
		e.recorder = r
	}
}

// New 创建区块浏览器
func New(network ContentNetwork, opts ...Option) *Explorer {
	e := &Explorer{
		network: network,
		decode:  history.DecodeBlock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current 返回最近一次成功重建的区块
func (e *Explorer) Current() *history.Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// CurrentKey 返回当前区块对应的内容键
func (e *Explorer) CurrentKey() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentKey
}

// Reconstruct 根据 0x 前缀的区块哈希重建区块
//
// 失败不返回 error，状态和原因记录在 Result 中。
func (e *Explorer) Reconstruct(ctx context.Context, contentKey string) *Result {
	res := &Result{
		Key:   contentKey,
		Token: e.seq.Add(1),
	}
	defer e.finish(res)

	hash, err := history.ParseBlockHash(contentKey)
	if err != nil {
		res.Key = ""
		res.State = StateInvalidKey
		res.Err = fmt.Errorf("%w: %w", ErrInvalidKey, err)
		logger.Warn("内容键无效", "key", contentKey, "error", err)
		return res
	}

	chainID := e.network.ChainID()
	headerKey := history.NewContentKey(history.SelectorBlockHeader, chainID, hash)
	bodyKey := history.NewContentKey(history.SelectorBlockBody, chainID, hash)

	var header, body []byte
	var g errgroup.Group
	g.Go(func() error {
		header, res.HeaderErr = e.fetch(ctx, headerKey)
		return nil
	})
	g.Go(func() error {
		body, res.BodyErr = e.fetch(ctx, bodyKey)
		return nil
	})
	_ = g.Wait()

	if e.stale(res.Token) {
		return e.supersede(res)
	}

	if res.HeaderErr != nil || res.BodyErr != nil {
		res.State = StateIncomplete
		res.Err = fmt.Errorf("%w: %w", ErrIncomplete, multierr.Combine(res.HeaderErr, res.BodyErr))
		return res
	}

	block, err := e.decode(header, body)
	switch {
	case err != nil:
	case block == nil:
		err = ErrNoBlock
	case block.Hash() != hash:
		err = fmt.Errorf("%w: got %s", ErrHashMismatch, block.Hash().Hex())
	}
	if err != nil {
		res.State = StateAssemblyFailed
		res.Err = fmt.Errorf("%w: %w", ErrAssemblyFailed, err)
		logger.Warn("区块组装失败", "key", log.ShortHex(contentKey, 10), "error", err)
		return res
	}

	if !e.publish(res.Token, contentKey, block) {
		return e.supersede(res)
	}

	res.State = StateReady
	res.Block = block
	logger.Info("区块已重建",
		"hash", log.ShortHex(contentKey, 10),
		"number", block.NumberU64(),
		"txs", len(block.Transactions()))
	return res
}

// FollowParent 重建 block 的父区块
func (e *Explorer) FollowParent(ctx context.Context, block *history.Block) *Result {
	if block == nil {
		return e.Reconstruct(ctx, "")
	}
	return e.Reconstruct(ctx, block.ParentHash().Hex())
}

// fetch 查找并读取一部分内容
func (e *Explorer) fetch(ctx context.Context, key history.ContentKey) ([]byte, error) {
	part := key.Selector.String()

	if _, err := e.network.Lookup(ctx, key); err != nil {
		e.fetchFailed(part, key, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, part, err)
	}

	data, err := e.network.Get(key)
	if err != nil {
		e.fetchFailed(part, key, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, part, err)
	}
	return data, nil
}

func (e *Explorer) fetchFailed(part string, key history.ContentKey, err error) {
	logger.Warn("获取区块部件失败", "part", part, "key", key.String(), "error", err)
	if e.recorder != nil {
		e.recorder.FetchFailed(part)
	}
}

func (e *Explorer) stale(token uint64) bool {
	return token != e.seq.Load()
}

// publish 在没有更新请求时把 block 设为当前区块
func (e *Explorer) publish(token uint64, key string, block *history.Block) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stale(token) {
		return false
	}
	e.current = block
	e.currentKey = key
	return true
}

func (e *Explorer) supersede(res *Result) *Result {
	res.State = StateSuperseded
	res.Block = nil
	res.Err = ErrSuperseded
	logger.Debug("重建结果已过期", "token", res.Token)
	return res
}

func (e *Explorer) finish(res *Result) {
	if e.recorder != nil {
		e.recorder.ReconstructionFinished(res.State.String())
	}
}
