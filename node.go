package ultralight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/internal/addressbook"
	"github.com/PinkDiamond1/ultralight/internal/core/metrics"
	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine"
	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/internal/explorer"
	"github.com/PinkDiamond1/ultralight/internal/history"
	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var logger = log.Logger("ultralight")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle NodeState = iota

	// StateStarting 启动中（Fx App 启动中）
	StateStarting

	// StateRunning 运行中
	StateRunning

	// StateStopping 停止中
	StateStopping

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// initializeTimeout 初始化超时（Fx App Start）
	initializeTimeout = 30 * time.Second

	// shutdownTimeout 关闭超时（Fx App Stop）
	shutdownTimeout = 30 * time.Second
)

// Node ultralight 节点
//
// Node 是用户与 History 子网交互的主入口，聚合了所有内部组件：
//   - Content Layer: Explorer, AddressBook, History Network
//   - Discovery Layer: 路由表 Manager
//   - Core Layer: Storage, Metrics
type Node struct {
	// ────────────────────────────────────────────────────────────────────────
	// 配置和状态
	// ────────────────────────────────────────────────────────────────────────

	config *nodeConfig
	app    *fx.App

	// ────────────────────────────────────────────────────────────────────────
	// 核心组件（由 Fx 注入）
	// ────────────────────────────────────────────────────────────────────────

	localID  types.NodeID
	unified  *config.Config
	engine   engine.Engine
	routing  *routing.Manager
	network  *history.Network
	book     *addressbook.Book
	explorer *explorer.Explorer
	metrics  *metrics.Metrics

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期状态
	// ────────────────────────────────────────────────────────────────────────

	mu      sync.RWMutex
	state   NodeState
	started bool
	closed  bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建新节点
//
// 创建节点但不启动，需要调用 Start() 启动。
func New(_ context.Context, opts ...Option) (*Node, error) {
	cfg := newNodeConfig()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	node := &Node{config: cfg}

	var err error
	node.app, err = buildFxApp(cfg, node)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	return node, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Start()。
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if err := node.Start(ctx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}

	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动节点
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	n.state = StateStarting
	logger.Info("正在启动节点", "node", n.localID.ShortString())

	startCtx, cancel := context.WithTimeout(ctx, initializeTimeout)
	defer cancel()

	if err := n.app.Start(startCtx); err != nil {
		n.state = StateStopped
		logger.Error("启动节点失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	n.state = StateRunning
	n.started = true
	logger.Info("节点已启动", "node", n.localID.ShortString(), "chain", n.network.ChainID())
	return nil
}

// Stop 停止节点
//
// 存储引擎随之关闭，停止后的节点只能 Close。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}

	n.state = StateStopping
	logger.Info("正在停止节点")

	err := n.app.Stop(ctx)
	n.state = StateStopped
	n.started = false
	if err != nil {
		logger.Error("停止节点失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}

	logger.Info("节点已停止")
	return nil
}

// Close 关闭节点并释放所有资源
//
// 可重复调用；未启动的节点直接标记为关闭。
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	if n.started {
		n.state = StateStopping
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := n.app.Stop(ctx); err != nil {
			logger.Warn("停止 Fx 应用失败", "error", err)
		}
	} else if n.engine != nil {
		// 存储引擎在构建 Fx 应用时已打开
		if err := n.engine.Close(); err != nil {
			logger.Warn("关闭存储引擎失败", "error", err)
		}
	}

	n.state = StateStopped
	n.started = false
	n.closed = true
	logger.Info("节点已关闭")
	return nil
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// IsRunning 节点是否在运行
func (n *Node) IsRunning() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.started && !n.closed
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回本地节点 ID
func (n *Node) ID() types.NodeID {
	return n.localID
}

// ChainID 返回内容键使用的链 ID
func (n *Node) ChainID() uint16 {
	return n.network.ChainID()
}

// Config 返回节点配置的副本
func (n *Node) Config() *config.Config {
	return n.unified.Clone()
}

// MetricsRegistry 返回节点指标注册表
func (n *Node) MetricsRegistry() *prometheus.Registry {
	return n.metrics.Registry()
}

// ════════════════════════════════════════════════════════════════════════════
//                              节点管理
// ════════════════════════════════════════════════════════════════════════════

// AddPeer 把节点加入 History 路由表
//
// 返回 true 表示节点新进入路由表。地址簿随之重新计算。
func (n *Node) AddPeer(rec types.PeerRecord) (bool, error) {
	if rec.ID.IsEmpty() {
		return false, ErrInvalidPeer
	}
	table, err := n.routing.Table(types.HistoryNetwork)
	if err != nil {
		return false, err
	}
	return table.Add(rec)
}

// RemovePeer 从 History 路由表移除节点
func (n *Node) RemovePeer(id types.NodeID) bool {
	table, err := n.routing.Table(types.HistoryNetwork)
	if err != nil {
		return false
	}
	return table.Remove(id)
}

// Peers 返回 History 路由表中的节点
func (n *Node) Peers() []types.PeerRecord {
	peers, err := n.routing.ListPeers(types.HistoryNetwork)
	if err != nil {
		return nil
	}
	return peers
}

// AddressBook 返回按距离分桶的已知节点列表
//
// 返回的列表不会被后续更新修改。
func (n *Node) AddressBook() types.BucketedPeerList {
	return n.book.Current()
}

// RefreshAddressBook 立即重新计算地址簿
func (n *Node) RefreshAddressBook() types.BucketedPeerList {
	return n.book.Refresh()
}

// ════════════════════════════════════════════════════════════════════════════
//                              内容
// ════════════════════════════════════════════════════════════════════════════

// Offer 把区块头和区块体写入本地存储
//
// 写入前检查区块头哈希，不一致时拒绝。
func (n *Node) Offer(header, body []byte) (common.Hash, error) {
	if _, err := history.DecodeHeader(header); err != nil {
		return common.Hash{}, err
	}
	if _, err := history.DecodeBody(body); err != nil {
		return common.Hash{}, err
	}

	hash := history.HeaderHash(header)
	chainID := n.network.ChainID()

	if err := n.network.Offer(history.NewContentKey(history.SelectorBlockHeader, chainID, hash), header); err != nil {
		return common.Hash{}, fmt.Errorf("store header: %w", err)
	}
	if err := n.network.Offer(history.NewContentKey(history.SelectorBlockBody, chainID, hash), body); err != nil {
		return common.Hash{}, fmt.Errorf("store body: %w", err)
	}
	return hash, nil
}

// Reconstruct 按 0x 前缀的区块哈希重建区块
func (n *Node) Reconstruct(ctx context.Context, blockHash string) *explorer.Result {
	return n.explorer.Reconstruct(ctx, blockHash)
}

// FollowParent 重建 block 的父区块
func (n *Node) FollowParent(ctx context.Context, block *history.Block) *explorer.Result {
	return n.explorer.FollowParent(ctx, block)
}

// CurrentBlock 返回最近一次成功重建的区块
func (n *Node) CurrentBlock() *history.Block {
	return n.explorer.Current()
}
