package types

import (
	"net"
	"strconv"
)

// ============================================================================
//                              PeerRecord - 节点公开记录
// ============================================================================

// PeerRecord 已发现节点的公开记录
//
// 由路由表持有，其他组件只读。
type PeerRecord struct {
	// ID 节点 ID
	ID NodeID

	// IP 节点 IP 地址
	IP net.IP

	// Port UDP 端口
	Port uint16

	// ENR 节点的 ENR 文本（可选，仅用于展示）
	ENR string
}

// Equal 判断两条记录是否完全相同
func (r PeerRecord) Equal(o PeerRecord) bool {
	return r.ID == o.ID && r.IP.Equal(o.IP) && r.Port == o.Port && r.ENR == o.ENR
}

// Addr 返回 "ip:port" 形式的地址
func (r PeerRecord) Addr() string {
	return net.JoinHostPort(r.IP.String(), strconv.Itoa(int(r.Port)))
}

// AddrInfo 返回用于展示的地址信息
func (r PeerRecord) AddrInfo() PeerAddr {
	return PeerAddr{
		ID:   r.ID,
		IP:   r.IP.String(),
		Port: r.Port,
	}
}

// ============================================================================
//                              BucketedPeerList - 按距离分桶的节点列表
// ============================================================================

// PeerAddr 展示用的节点地址信息
type PeerAddr struct {
	ID   NodeID `json:"id"`
	IP   string `json:"ip"`
	Port uint16 `json:"port"`
}

// PeerBucket 一个距离桶及其中的节点
type PeerBucket struct {
	// Bucket 距离桶编号 [0, 256)
	Bucket int `json:"bucket"`

	// Peers 落入该桶的节点，保持输入扫描顺序
	Peers []PeerAddr `json:"peers"`
}

// BucketedPeerList 按距离桶升序排列的节点列表
//
// 稀疏表示：没有节点的桶不出现。每次重新计算都构建新的列表，
// 旧列表不会被原地修改。
type BucketedPeerList []PeerBucket

// Len 返回所有桶中节点总数
func (l BucketedPeerList) Len() int {
	n := 0
	for _, b := range l {
		n += len(b.Peers)
	}
	return n
}

// Bucket 返回指定编号的桶
func (l BucketedPeerList) Bucket(idx int) (PeerBucket, bool) {
	for _, b := range l {
		if b.Bucket == idx {
			return b, true
		}
	}
	return PeerBucket{}, false
}
