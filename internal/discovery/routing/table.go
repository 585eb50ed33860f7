package routing

import (
	"sort"
	"sync"
	"time"

	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              常量定义
// ============================================================================

const (
	// DefaultBucketSize discv5 的 k-桶大小
	DefaultBucketSize = 16

	// DefaultReplacementCacheSize 每个桶的替换缓存大小
	DefaultReplacementCacheSize = 10

	// DefaultNodeExpiry 节点过期时间
	DefaultNodeExpiry = 24 * time.Hour
)

// Config 路由表配置
type Config struct {
	// BucketSize k-桶容量
	BucketSize int

	// ReplacementCacheSize 替换缓存容量
	ReplacementCacheSize int

	// NodeExpiry 节点过期时间，0 表示不过期
	NodeExpiry time.Duration

	// Clock 时间源，测试时注入 clock.NewMock()
	Clock clock.Clock
}

// DefaultConfig 返回默认路由表配置
func DefaultConfig() Config {
	return Config{
		BucketSize:           DefaultBucketSize,
		ReplacementCacheSize: DefaultReplacementCacheSize,
		NodeExpiry:           DefaultNodeExpiry,
		Clock:                clock.New(),
	}
}

func (c *Config) applyDefaults() {
	if c.BucketSize <= 0 {
		c.BucketSize = DefaultBucketSize
	}
	if c.ReplacementCacheSize < 0 {
		c.ReplacementCacheSize = 0
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
}

// ============================================================================
//                              路由表节点
// ============================================================================

// Node 路由表中的节点
type Node struct {
	// Record 节点公开记录
	Record types.PeerRecord

	// LastSeen 最后一次见到的时间
	LastSeen time.Time
}

// ============================================================================
//                              K 桶
// ============================================================================

// KBucket K 桶
//
// 由所属 Table 的锁保护，自身不加锁。
type KBucket struct {
	// 节点列表（最近活跃的在前）
	nodes []*Node

	// 替换缓存（当桶满时存储候选节点）
	replacements []*Node
}

func (b *KBucket) indexOf(id types.NodeID) int {
	for i, n := range b.nodes {
		if n.Record.ID == id {
			return i
		}
	}
	return -1
}

// add 添加或刷新节点
//
// added 表示节点新进入活跃列表，updated 表示已在活跃列表中的节点记录发生了变化。
func (b *KBucket) add(node *Node, size, cacheSize int) (added, updated bool) {
	if i := b.indexOf(node.Record.ID); i >= 0 {
		updated = !b.nodes[i].Record.Equal(node.Record)
		// 移动到列表前端（最近活跃）
		b.nodes = append(b.nodes[:i], b.nodes[i+1:]...)
		b.nodes = append([]*Node{node}, b.nodes...)
		return false, updated
	}

	if len(b.nodes) < size {
		b.nodes = append([]*Node{node}, b.nodes...)
		return true, false
	}

	b.addReplacement(node, cacheSize)
	return false, false
}

func (b *KBucket) addReplacement(node *Node, cacheSize int) {
	if cacheSize == 0 {
		return
	}
	for i, existing := range b.replacements {
		if existing.Record.ID == node.Record.ID {
			b.replacements = append(b.replacements[:i], b.replacements[i+1:]...)
			break
		}
	}
	b.replacements = append([]*Node{node}, b.replacements...)
	if len(b.replacements) > cacheSize {
		b.replacements = b.replacements[:cacheSize]
	}
}

// pruneReplacements 丢弃 deadline 之前最后见到的候选节点
func (b *KBucket) pruneReplacements(deadline time.Time) {
	kept := b.replacements[:0]
	for _, n := range b.replacements {
		if !n.LastSeen.Before(deadline) {
			kept = append(kept, n)
		}
	}
	for i := len(kept); i < len(b.replacements); i++ {
		b.replacements[i] = nil
	}
	b.replacements = kept
}

// remove 移除节点
//
// 返回被移除的节点和从替换缓存提升的节点（可能为 nil）。
func (b *KBucket) remove(id types.NodeID) (removed, promoted *Node) {
	if i := b.indexOf(id); i >= 0 {
		removed = b.nodes[i]
		b.nodes = append(b.nodes[:i], b.nodes[i+1:]...)

		if len(b.replacements) > 0 {
			promoted = b.replacements[0]
			b.replacements = b.replacements[1:]
			b.nodes = append(b.nodes, promoted)
		}
		return removed, promoted
	}

	for i, n := range b.replacements {
		if n.Record.ID == id {
			b.replacements = append(b.replacements[:i], b.replacements[i+1:]...)
			break
		}
	}
	return nil, nil
}

// ============================================================================
//                              路由表
// ============================================================================

// Notifiee 路由表成员变化的订阅者
//
// 回调在路由表锁释放后同步调用，调用顺序与变化顺序一致。
// 已在表中的节点以不同的 IP、端口或 ENR 重新加入时调用 NodeUpdated。
type Notifiee interface {
	NodeAdded(rec types.PeerRecord)
	NodeUpdated(rec types.PeerRecord)
	NodeRemoved(rec types.PeerRecord)
}

type eventKind uint8

const (
	eventAdded eventKind = iota
	eventUpdated
	eventRemoved
)

type tableEvent struct {
	rec  types.PeerRecord
	kind eventKind
}

// Table Kademlia 路由表
type Table struct {
	localID types.NodeID
	cfg     Config
	clock   clock.Clock

	mu      sync.RWMutex
	buckets [KeySize]*KBucket

	notifyMu  sync.Mutex
	notifiees []Notifiee
}

// NewTable 创建新的路由表
func NewTable(localID types.NodeID, cfg Config) *Table {
	cfg.applyDefaults()

	t := &Table{
		localID: localID,
		cfg:     cfg,
		clock:   cfg.Clock,
	}
	for i := range t.buckets {
		t.buckets[i] = &KBucket{}
	}
	return t
}

// LocalID 返回本地节点 ID
func (t *Table) LocalID() types.NodeID {
	return t.localID
}

// Notify 订阅成员变化
func (t *Table) Notify(n Notifiee) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.notifiees = append(t.notifiees, n)
}

// StopNotify 取消订阅
func (t *Table) StopNotify(n Notifiee) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	for i, existing := range t.notifiees {
		if existing == n {
			t.notifiees = append(t.notifiees[:i], t.notifiees[i+1:]...)
			return
		}
	}
}

func (t *Table) dispatch(events []tableEvent) {
	if len(events) == 0 {
		return
	}

	t.notifyMu.Lock()
	notifiees := make([]Notifiee, len(t.notifiees))
	copy(notifiees, t.notifiees)
	t.notifyMu.Unlock()

	for _, ev := range events {
		for _, n := range notifiees {
			switch ev.kind {
			case eventAdded:
				n.NodeAdded(ev.rec)
			case eventUpdated:
				n.NodeUpdated(ev.rec)
			case eventRemoved:
				n.NodeRemoved(ev.rec)
			}
		}
	}
}

// Add 添加或刷新节点
//
// 返回 true 表示节点新进入路由表；已存在的节点只刷新 LastSeen 和记录，
// 记录有变化时通知 NodeUpdated。桶已满时节点进入替换缓存，返回 false。
func (t *Table) Add(rec types.PeerRecord) (bool, error) {
	if rec.ID == t.localID {
		return false, ErrSelf
	}

	node := &Node{Record: rec, LastSeen: t.clock.Now()}
	idx := BucketIndex(t.localID, rec.ID)

	t.mu.Lock()
	added, updated := t.buckets[idx].add(node, t.cfg.BucketSize, t.cfg.ReplacementCacheSize)
	t.mu.Unlock()

	switch {
	case added:
		logger.Debug("节点加入路由表", "peer", rec.ID.ShortString(), "bucket", idx)
		t.dispatch([]tableEvent{{rec: rec, kind: eventAdded}})
	case updated:
		logger.Debug("节点记录已更新", "peer", rec.ID.ShortString(), "addr", rec.Addr())
		t.dispatch([]tableEvent{{rec: rec, kind: eventUpdated}})
	}
	return added, nil
}

// Remove 移除节点
//
// 如果替换缓存中有候选节点，会提升一个进入活跃列表。
func (t *Table) Remove(id types.NodeID) bool {
	if id == t.localID {
		return false
	}

	idx := BucketIndex(t.localID, id)

	t.mu.Lock()
	removed, promoted := t.buckets[idx].remove(id)
	t.mu.Unlock()

	if removed == nil {
		return false
	}

	events := []tableEvent{{rec: removed.Record, kind: eventRemoved}}
	if promoted != nil {
		events = append(events, tableEvent{rec: promoted.Record, kind: eventAdded})
	}
	logger.Debug("节点移出路由表", "peer", id.ShortString(), "bucket", idx)
	t.dispatch(events)
	return true
}

// Get 获取节点记录
func (t *Table) Get(id types.NodeID) (types.PeerRecord, bool) {
	if id == t.localID {
		return types.PeerRecord{}, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	b := t.buckets[BucketIndex(t.localID, id)]
	if i := b.indexOf(id); i >= 0 {
		return b.nodes[i].Record, true
	}
	return types.PeerRecord{}, false
}

// Size 返回路由表中的节点总数
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := 0
	for _, b := range t.buckets {
		total += len(b.nodes)
	}
	return total
}

// Peers 返回所有节点记录
//
// 按桶索引升序，桶内最近活跃的在前。
func (t *Table) Peers() []types.PeerRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var peers []types.PeerRecord
	for _, b := range t.buckets {
		for _, n := range b.nodes {
			peers = append(peers, n.Record)
		}
	}
	return peers
}

// NearestPeers 查找距离 target 最近的 count 个节点
func (t *Table) NearestPeers(target types.NodeID, count int) []types.PeerRecord {
	peers := t.Peers()

	sort.SliceStable(peers, func(i, j int) bool {
		return CompareDistance(peers[i].ID, peers[j].ID, target) < 0
	})

	if len(peers) > count {
		peers = peers[:count]
	}
	return peers
}

// RemoveExpired 移除超过 NodeExpiry 未见的节点
//
// 同样过期的候选节点先从替换缓存中丢弃，不会被提升。返回移除的数量。
func (t *Table) RemoveExpired() int {
	if t.cfg.NodeExpiry <= 0 {
		return 0
	}

	deadline := t.clock.Now().Add(-t.cfg.NodeExpiry)

	var events []tableEvent
	t.mu.Lock()
	for _, b := range t.buckets {
		b.pruneReplacements(deadline)

		var expired []types.NodeID
		for _, n := range b.nodes {
			if n.LastSeen.Before(deadline) {
				expired = append(expired, n.Record.ID)
			}
		}
		for _, id := range expired {
			removed, promoted := b.remove(id)
			if removed == nil {
				continue
			}
			events = append(events, tableEvent{rec: removed.Record, kind: eventRemoved})
			if promoted != nil {
				events = append(events, tableEvent{rec: promoted.Record, kind: eventAdded})
			}
		}
	}
	t.mu.Unlock()

	t.dispatch(events)

	count := 0
	for _, ev := range events {
		if ev.kind == eventRemoved {
			count++
		}
	}
	return count
}
