package explorer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/PinkDiamond1/ultralight/internal/core/metrics"
	"github.com/PinkDiamond1/ultralight/internal/history"
	"github.com/PinkDiamond1/ultralight/internal/history/historytest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNetwork 内存中的 ContentNetwork
//
// remote 中的内容在 Lookup 时"下载"到 local，Get 只读 local。
type fakeNetwork struct {
	mu      sync.Mutex
	remote  map[history.ContentKey][]byte
	local   map[history.ContentKey][]byte
	lookups atomic.Int32

	// gate 非 nil 时 Lookup 先等待 gate 关闭
	gate chan struct{}
	// entered 每次 Lookup 开始时发送一个信号（可选）
	entered chan struct{}
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		remote: make(map[history.ContentKey][]byte),
		local:  make(map[history.ContentKey][]byte),
	}
}

func (f *fakeNetwork) ChainID() uint16 { return history.MainnetChainID }

func (f *fakeNetwork) Lookup(ctx context.Context, key history.ContentKey) ([]byte, error) {
	f.lookups.Add(1)

	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.local[key]; ok {
		return v, nil
	}
	v, ok := f.remote[key]
	if !ok {
		return nil, history.ErrContentNotFound
	}
	f.local[key] = v
	return v, nil
}

func (f *fakeNetwork) Get(key history.ContentKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.local[key]
	if !ok {
		return nil, history.ErrContentNotFound
	}
	return v, nil
}

// seed 把一个区块放到远端
func (f *fakeNetwork) seed(header, body []byte, hash common.Hash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if header != nil {
		f.remote[history.NewContentKey(history.SelectorBlockHeader, history.MainnetChainID, hash)] = header
	}
	if body != nil {
		f.remote[history.NewContentKey(history.SelectorBlockBody, history.MainnetChainID, hash)] = body
	}
}

func seedChain(f *fakeNetwork, n int) []common.Hash {
	var hashes []common.Hash
	parent := common.Hash{}
	for i := 0; i < n; i++ {
		header, body, hash := historytest.FixtureBlock(uint64(i), parent)
		f.seed(header, body, hash)
		hashes = append(hashes, hash)
		parent = hash
	}
	return hashes
}

// ============================================================================
// 内容键校验
// ============================================================================

func TestReconstruct_InvalidKey(t *testing.T) {
	tests := []string{
		"",
		"0x",
		strings.Repeat("ab", 32),
		"0x" + strings.Repeat("zz", 32),
		"0x1234",
	}

	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			net := newFakeNetwork()
			e := New(net)

			res := e.Reconstruct(context.Background(), key)

			assert.Equal(t, StateInvalidKey, res.State)
			assert.Equal(t, "", res.Key, "无效键被清空")
			assert.ErrorIs(t, res.Err, ErrInvalidKey)
			assert.Nil(t, res.Block)
			assert.Equal(t, int32(0), net.lookups.Load(), "不发起任何查找")
			assert.Nil(t, e.Current())
		})
	}
}

// ============================================================================
// 成功路径
// ============================================================================

func TestReconstruct_Ready(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 2)
	e := New(net)

	res := e.Reconstruct(context.Background(), hashes[1].Hex())

	require.Equal(t, StateReady, res.State, "err: %v", res.Err)
	assert.True(t, res.OK())
	assert.NoError(t, res.Err)
	assert.Equal(t, hashes[1].Hex(), res.Key)
	assert.Equal(t, hashes[1], res.Block.Hash())
	assert.Equal(t, hashes[0], res.Block.ParentHash())
	assert.Equal(t, uint64(1), res.Block.NumberU64())

	assert.Same(t, res.Block, e.Current())
	assert.Equal(t, hashes[1].Hex(), e.CurrentKey())
	assert.Equal(t, int32(2), net.lookups.Load(), "区块头和区块体各查找一次")

	t.Log("✅ 区块重建测试通过")
}

func TestFollowParent(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 3)
	e := New(net)

	res := e.Reconstruct(context.Background(), hashes[2].Hex())
	require.True(t, res.OK())

	parent := e.FollowParent(context.Background(), res.Block)
	require.True(t, parent.OK(), "err: %v", parent.Err)
	assert.Equal(t, hashes[1], parent.Block.Hash())
	assert.Equal(t, hashes[1].Hex(), parent.Key)
	assert.Same(t, parent.Block, e.Current())

	grandparent := e.FollowParent(context.Background(), parent.Block)
	require.True(t, grandparent.OK())
	assert.Equal(t, uint64(0), grandparent.Block.NumberU64())

	// 创世块的父区块不存在
	missing := e.FollowParent(context.Background(), grandparent.Block)
	assert.Equal(t, StateIncomplete, missing.State)
	assert.Same(t, grandparent.Block, e.Current())
}

func TestFollowParent_NilBlock(t *testing.T) {
	e := New(newFakeNetwork())

	res := e.FollowParent(context.Background(), nil)
	assert.Equal(t, StateInvalidKey, res.State)
}

// ============================================================================
// 失败路径
// ============================================================================

func TestReconstruct_HeaderMissingBodyStillFetched(t *testing.T) {
	net := newFakeNetwork()
	_, body, hash := historytest.FixtureBlock(5, common.Hash{})
	net.seed(nil, body, hash)
	e := New(net)

	res := e.Reconstruct(context.Background(), hash.Hex())

	assert.Equal(t, StateIncomplete, res.State)
	assert.ErrorIs(t, res.Err, ErrIncomplete)
	assert.ErrorIs(t, res.HeaderErr, ErrFetchFailed)
	assert.ErrorIs(t, res.HeaderErr, history.ErrContentNotFound)
	assert.NoError(t, res.BodyErr)
	assert.Nil(t, res.Block)
	assert.Nil(t, e.Current())

	// 区块体仍然被获取并保存
	bodyKey := history.NewContentKey(history.SelectorBlockBody, history.MainnetChainID, hash)
	got, err := net.Get(bodyKey)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, int32(2), net.lookups.Load())
}

func TestReconstruct_BothMissing(t *testing.T) {
	e := New(newFakeNetwork())
	hash := common.HexToHash("0xdead")

	res := e.Reconstruct(context.Background(), hash.Hex())

	assert.Equal(t, StateIncomplete, res.State)
	assert.Error(t, res.HeaderErr)
	assert.Error(t, res.BodyErr)
	assert.ErrorIs(t, res.Err, ErrFetchFailed)
	assert.Contains(t, res.Err.Error(), "header")
	assert.Contains(t, res.Err.Error(), "body")
}

func TestReconstruct_IncompleteKeepsCurrent(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 1)
	e := New(net)

	first := e.Reconstruct(context.Background(), hashes[0].Hex())
	require.True(t, first.OK())

	res := e.Reconstruct(context.Background(), common.HexToHash("0xbeef").Hex())
	assert.Equal(t, StateIncomplete, res.State)
	assert.Same(t, first.Block, e.Current(), "失败不改变当前区块")
}

func TestReconstruct_AssemblyFailed(t *testing.T) {
	net := newFakeNetwork()
	hash := common.HexToHash("0x0abc")
	net.seed([]byte{0x01}, []byte{0x02}, hash)
	e := New(net)

	res := e.Reconstruct(context.Background(), hash.Hex())

	assert.Equal(t, StateAssemblyFailed, res.State)
	assert.ErrorIs(t, res.Err, ErrAssemblyFailed)
	assert.ErrorIs(t, res.Err, history.ErrDecode)
	assert.NoError(t, res.HeaderErr)
	assert.NoError(t, res.BodyErr)
	assert.Nil(t, res.Block)
	assert.Nil(t, e.Current())
}

func TestReconstruct_HashMismatch(t *testing.T) {
	net := newFakeNetwork()
	header, body, _ := historytest.FixtureBlock(9, common.Hash{})
	wrong := common.HexToHash("0x0bad")
	net.seed(header, body, wrong)
	e := New(net)

	res := e.Reconstruct(context.Background(), wrong.Hex())

	assert.Equal(t, StateAssemblyFailed, res.State)
	assert.ErrorIs(t, res.Err, ErrHashMismatch)
	assert.Nil(t, e.Current())
}

func TestReconstruct_CustomDecoder(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 1)

	decodeErr := errors.New("unsupported fork")
	e := New(net, WithDecoder(func(_, _ []byte) (*history.Block, error) {
		return nil, decodeErr
	}))

	res := e.Reconstruct(context.Background(), hashes[0].Hex())
	assert.Equal(t, StateAssemblyFailed, res.State)
	assert.ErrorIs(t, res.Err, decodeErr)
}

func TestReconstruct_DecoderReturnsNoBlock(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 1)

	e := New(net, WithDecoder(func(_, _ []byte) (*history.Block, error) {
		return nil, nil
	}))

	var res *Result
	require.NotPanics(t, func() {
		res = e.Reconstruct(context.Background(), hashes[0].Hex())
	})
	assert.Equal(t, StateAssemblyFailed, res.State)
	assert.ErrorIs(t, res.Err, ErrAssemblyFailed)
	assert.ErrorIs(t, res.Err, ErrNoBlock)
	assert.Nil(t, res.Block)
	assert.Nil(t, e.Current())
}

// ============================================================================
// 过期请求
// ============================================================================

func TestReconstruct_Superseded(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 2)
	e := New(net)

	gate := make(chan struct{})
	entered := make(chan struct{}, 2)
	net.mu.Lock()
	net.gate, net.entered = gate, entered
	net.mu.Unlock()

	done := make(chan *Result, 1)
	go func() {
		done <- e.Reconstruct(context.Background(), hashes[0].Hex())
	}()

	// 等待第一个请求的两次查找都已开始
	<-entered
	<-entered

	net.mu.Lock()
	net.gate, net.entered = nil, nil
	net.mu.Unlock()

	second := e.Reconstruct(context.Background(), hashes[1].Hex())
	require.True(t, second.OK())

	close(gate)
	first := <-done

	assert.Equal(t, StateSuperseded, first.State)
	assert.ErrorIs(t, first.Err, ErrSuperseded)
	assert.Nil(t, first.Block)
	assert.Less(t, first.Token, second.Token)
	assert.Same(t, second.Block, e.Current(), "过期结果不覆盖当前区块")

	t.Log("✅ 过期请求测试通过")
}

// ============================================================================
// 指标
// ============================================================================

func TestReconstruct_Metrics(t *testing.T) {
	net := newFakeNetwork()
	hashes := seedChain(net, 1)
	m := metrics.New()
	e := New(net, WithRecorder(m))

	e.Reconstruct(context.Background(), hashes[0].Hex())
	e.Reconstruct(context.Background(), "nope")
	e.Reconstruct(context.Background(), common.HexToHash("0x01").Hex())

	expected := `
# HELP ultralight_reconstructions_total Block reconstructions by final state.
# TYPE ultralight_reconstructions_total counter
ultralight_reconstructions_total{state="incomplete"} 1
ultralight_reconstructions_total{state="invalid_key"} 1
ultralight_reconstructions_total{state="ready"} 1
# HELP ultralight_fetch_failures_total Failed content fetches by block part.
# TYPE ultralight_fetch_failures_total counter
ultralight_fetch_failures_total{part="body"} 1
ultralight_fetch_failures_total{part="header"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"ultralight_reconstructions_total", "ultralight_fetch_failures_total"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "invalid_key", StateInvalidKey.String())
	assert.Equal(t, "incomplete", StateIncomplete.String())
	assert.Equal(t, "assembly_failed", StateAssemblyFailed.String())
	assert.Equal(t, "superseded", StateSuperseded.String())
	assert.Equal(t, "unknown", State(0).String())
}
