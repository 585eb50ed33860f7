package history

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine"
	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine/badger"
	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEngine 创建测试用引擎
func testEngine(t *testing.T) engine.Engine {
	t.Helper()

	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "history.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

// testNode 一个挂在 MemoryHub 上的测试节点
type testNode struct {
	id      types.NodeID
	table   *routing.Table
	network *Network
}

func newTestNode(t *testing.T, hub *MemoryHub) *testNode {
	t.Helper()

	id := types.RandomNodeID()
	table := routing.NewTable(id, routing.DefaultConfig())

	var transport Transport
	if hub != nil {
		transport = hub
	}
	network := NewNetwork(NewStore(testEngine(t)), table, transport, DefaultConfig())
	if hub != nil {
		hub.Register(id, network.Serve)
	}
	return &testNode{id: id, table: table, network: network}
}

func (n *testNode) record() types.PeerRecord {
	return types.PeerRecord{ID: n.id, IP: net.ParseIP("127.0.0.1"), Port: 9000}
}

func (n *testNode) connect(t *testing.T, others ...*testNode) {
	t.Helper()
	for _, o := range others {
		_, err := n.table.Add(o.record())
		require.NoError(t, err)
	}
}

func headerKey(hash common.Hash) ContentKey {
	return NewContentKey(SelectorBlockHeader, MainnetChainID, hash)
}

// ============================================================================
// Store 测试
// ============================================================================

func TestStore_PutGet(t *testing.T) {
	s := NewStore(testEngine(t))
	key := headerKey(common.HexToHash("0x01"))

	_, err := s.Get(key)
	assert.ErrorIs(t, err, ErrContentNotFound)

	require.NoError(t, s.Put(key, []byte("header")))

	got, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("header"), got)

	ok, err := s.Has(key)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, s.Delete(key))
	ok, err = s.Has(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================================================
// Network 测试
// ============================================================================

func TestNetwork_LocalHit(t *testing.T) {
	node := newTestNode(t, nil)
	key := headerKey(common.HexToHash("0x02"))

	require.NoError(t, node.network.Offer(key, []byte("local")))

	got, err := node.network.Lookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("local"), got)
}

func TestNetwork_NoTransport(t *testing.T) {
	node := newTestNode(t, nil)

	_, err := node.network.Lookup(context.Background(), headerKey(common.HexToHash("0x03")))
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestNetwork_NoPeers(t *testing.T) {
	node := newTestNode(t, NewMemoryHub())

	_, err := node.network.Lookup(context.Background(), headerKey(common.HexToHash("0x03")))
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestNetwork_LookupFromPeer(t *testing.T) {
	hub := NewMemoryHub()
	a := newTestNode(t, hub)
	b := newTestNode(t, hub)
	c := newTestNode(t, hub)
	a.connect(t, b, c)

	key := headerKey(common.HexToHash("0x04"))
	require.NoError(t, c.network.Offer(key, []byte("from-c")))

	got, err := a.network.Lookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("from-c"), got)

	// 查找结果写入本地存储
	local, err := a.network.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("from-c"), local)

	t.Log("✅ 远端查找测试通过")
}

func TestNetwork_LookupMissEverywhere(t *testing.T) {
	hub := NewMemoryHub()
	a := newTestNode(t, hub)
	b := newTestNode(t, hub)
	a.connect(t, b)

	key := headerKey(common.HexToHash("0x05"))
	_, err := a.network.Lookup(context.Background(), key)
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = a.network.Get(key)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestNetwork_UnreachablePeerSkipped(t *testing.T) {
	hub := NewMemoryHub()
	a := newTestNode(t, hub)
	b := newTestNode(t, hub)
	a.connect(t, b)

	// 路由表中有一个没有注册到 hub 的节点
	ghost := types.PeerRecord{ID: types.RandomNodeID(), IP: net.ParseIP("127.0.0.1"), Port: 1}
	_, err := a.table.Add(ghost)
	require.NoError(t, err)

	key := headerKey(common.HexToHash("0x06"))
	require.NoError(t, b.network.Offer(key, []byte("from-b")))

	got, err := a.network.Lookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("from-b"), got)
}

// countingTransport 统计并发请求数
type countingTransport struct {
	inflight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (c *countingTransport) FindContent(ctx context.Context, _ types.PeerRecord, _ ContentKey) ([]byte, error) {
	c.calls.Add(1)
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	select {
	case <-time.After(5 * time.Millisecond):
		return nil, errors.New("miss")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestNetwork_AlphaLimit(t *testing.T) {
	id := types.RandomNodeID()
	table := routing.NewTable(id, routing.DefaultConfig())
	for i := 0; i < 10; i++ {
		_, err := table.Add(types.PeerRecord{ID: types.RandomNodeID()})
		require.NoError(t, err)
	}

	transport := &countingTransport{}
	cfg := DefaultConfig()
	cfg.Alpha = 2
	network := NewNetwork(NewStore(testEngine(t)), table, transport, cfg)

	_, err := network.Lookup(context.Background(), headerKey(common.HexToHash("0x07")))
	assert.ErrorIs(t, err, ErrContentNotFound)

	assert.Equal(t, int32(10), transport.calls.Load())
	assert.LessOrEqual(t, transport.peak.Load(), int32(2))
}

func TestNetwork_ContextCanceled(t *testing.T) {
	id := types.RandomNodeID()
	table := routing.NewTable(id, routing.DefaultConfig())
	_, err := table.Add(types.PeerRecord{ID: types.RandomNodeID()})
	require.NoError(t, err)

	network := NewNetwork(NewStore(testEngine(t)), table, &countingTransport{}, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = network.Lookup(ctx, headerKey(common.HexToHash("0x08")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryHub_Unregister(t *testing.T) {
	hub := NewMemoryHub()
	node := newTestNode(t, hub)
	hub.Unregister(node.id)

	_, err := hub.FindContent(context.Background(), node.record(), headerKey(common.Hash{}))
	assert.ErrorIs(t, err, ErrPeerUnreachable)
}
