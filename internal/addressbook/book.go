// Package addressbook 维护按 XOR 距离分桶的已知节点视图
//
// Book 订阅 History 子网路由表的成员变化，每次变化都从 PeerSource
// 重新读取完整节点列表并重新计算分桶结果。新结果整体替换旧结果，
// 读者要么看到旧列表，要么看到新列表，不会看到中间状态。
package addressbook

import (
	"sync"
	"sync/atomic"

	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
	"github.com/PinkDiamond1/ultralight/pkg/types"
)

var logger = log.Logger("addressbook")

// Recorder 地址簿指标记录
type Recorder interface {
	AddressBookRebuilt(buckets, peers int)
}

// Book 分桶地址簿
type Book struct {
	localID    types.NodeID
	source     routing.PeerSource
	subnetwork types.SubnetworkID
	recorder   Recorder

	// refreshMu 串行化重新计算，保证发布顺序与调用顺序一致
	refreshMu sync.Mutex
	current   atomic.Pointer[types.BucketedPeerList]
}

// Option Book 选项
type Option func(*Book)

// WithRecorder 设置指标记录
func WithRecorder(r Recorder) Option {
	return func(b *Book) {
		b.recorder = r
	}
}

// NewBook 创建地址簿
//
// 初始为空列表；调用 Refresh 或由路由表通知触发计算。
func NewBook(localID types.NodeID, source routing.PeerSource, subnetwork types.SubnetworkID, opts ...Option) *Book {
	b := &Book{
		localID:    localID,
		source:     source,
		subnetwork: subnetwork,
	}
	for _, opt := range opts {
		opt(b)
	}

	empty := types.BucketedPeerList{}
	b.current.Store(&empty)
	return b
}

// LocalID 返回本地节点 ID
func (b *Book) LocalID() types.NodeID {
	return b.localID
}

// Refresh 从 PeerSource 重新读取节点并重新计算分桶
//
// 读取失败（子网未注册等）时发布空列表，不返回错误。
func (b *Book) Refresh() types.BucketedPeerList {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	var list types.BucketedPeerList
	peers, err := b.source.ListPeers(b.subnetwork)
	if err != nil {
		logger.Warn("读取节点列表失败，地址簿置空",
			"subnetwork", b.subnetwork.String(),
			"error", err)
		list = types.BucketedPeerList{}
	} else {
		list = ComputeBuckets(b.localID, peers)
	}

	b.current.Store(&list)

	if b.recorder != nil {
		b.recorder.AddressBookRebuilt(len(list), list.Len())
	}
	logger.Debug("地址簿已更新", "buckets", len(list), "peers", list.Len())
	return list
}

// Current 返回最近一次计算的结果
//
// 返回的列表不会被后续计算修改。
func (b *Book) Current() types.BucketedPeerList {
	return *b.current.Load()
}

// NodeAdded 实现 routing.Notifiee
func (b *Book) NodeAdded(rec types.PeerRecord) {
	logger.Debug("节点加入，重新计算地址簿", "peer", rec.ID.ShortString())
	b.Refresh()
}

// NodeUpdated 实现 routing.Notifiee
func (b *Book) NodeUpdated(rec types.PeerRecord) {
	logger.Debug("节点地址变化，重新计算地址簿", "peer", rec.ID.ShortString(), "addr", rec.Addr())
	b.Refresh()
}

// NodeRemoved 实现 routing.Notifiee
func (b *Book) NodeRemoved(rec types.PeerRecord) {
	logger.Debug("节点移除，重新计算地址簿", "peer", rec.ID.ShortString())
	b.Refresh()
}

var _ routing.Notifiee = (*Book)(nil)
