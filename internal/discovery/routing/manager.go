// Package routing 维护各 Portal 子网的 Kademlia 路由表
//
// 每个子网一张路由表（256 个 k-桶，按对数距离划分）。
// 路由表成员变化通过 Notifiee 同步通知订阅者，
// 地址簿据此重新计算按距离分桶的节点列表。
package routing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
	"github.com/PinkDiamond1/ultralight/pkg/types"
)

var logger = log.Logger("discovery/routing")

// PeerSource 只读的节点来源
//
// 地址簿通过它读取某个子网当前已知的节点。
type PeerSource interface {
	ListPeers(subnetwork types.SubnetworkID) ([]types.PeerRecord, error)
}

// Manager 管理各子网的路由表
type Manager struct {
	localID types.NodeID
	cfg     Config

	mu     sync.RWMutex
	tables map[types.SubnetworkID]*Table

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager 创建路由表管理器
func NewManager(localID types.NodeID, cfg Config) *Manager {
	cfg.applyDefaults()
	return &Manager{
		localID: localID,
		cfg:     cfg,
		tables:  make(map[types.SubnetworkID]*Table),
	}
}

// LocalID 返回本地节点 ID
func (m *Manager) LocalID() types.NodeID {
	return m.localID
}

// Register 为子网创建路由表，已存在时返回现有的表
func (m *Manager) Register(subnetwork types.SubnetworkID) *Table {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tables[subnetwork]; ok {
		return t
	}
	t := NewTable(m.localID, m.cfg)
	m.tables[subnetwork] = t
	logger.Debug("注册子网路由表", "subnetwork", subnetwork.String())
	return t
}

// Table 返回子网的路由表
func (m *Manager) Table(subnetwork types.SubnetworkID) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[subnetwork]
	if !ok {
		return nil, ErrUnknownSubnetwork
	}
	return t, nil
}

// Subnetworks 返回已注册的子网，升序
func (m *Manager) Subnetworks() []types.SubnetworkID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]types.SubnetworkID, 0, len(m.tables))
	for s := range m.tables {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	return subs
}

// ListPeers 实现 PeerSource
func (m *Manager) ListPeers(subnetwork types.SubnetworkID) ([]types.PeerRecord, error) {
	t, err := m.Table(subnetwork)
	if err != nil {
		return nil, err
	}
	return t.Peers(), nil
}

// Start 启动过期节点清理
func (m *Manager) Start() {
	if m.cfg.NodeExpiry <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	interval := m.cfg.NodeExpiry / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	m.wg.Add(1)
	go m.expireLoop(ctx, interval)
}

func (m *Manager) expireLoop(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()

	ticker := m.cfg.Clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *Manager) removeExpired() {
	for _, sub := range m.Subnetworks() {
		t, err := m.Table(sub)
		if err != nil {
			continue
		}
		if n := t.RemoveExpired(); n > 0 {
			logger.Info("清理过期节点", "subnetwork", sub.String(), "count", n)
		}
	}
}

// Stop 停止后台任务
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

var _ PeerSource = (*Manager)(nil)
