package addressbook

import (
	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/holiman/uint256"
)

// BucketCount 距离桶数量，桶编号范围 [0, BucketCount)
const BucketCount = 256

// Distance 返回两个节点 ID 的 XOR 距离（256 位无符号整数）
func Distance(a, b types.NodeID) *uint256.Int {
	d := routing.XORDistance(a, b)
	return new(uint256.Int).SetBytes32(d[:])
}

// BucketOf 返回 remote 相对 local 的距离桶编号
//
// 桶编号为 floor(distance * 256 / 2^256)，即距离的最高字节；
// 与自身的距离为 0，落入桶 0。
func BucketOf(local, remote types.NodeID) int {
	d := Distance(local, remote)
	return int(d.Rsh(d, 256-8).Uint64())
}

// ComputeBuckets 把节点按到 localID 的距离分桶
//
// 结果按桶编号升序，空桶省略；同一桶内保持输入顺序。
// 纯函数，不修改输入。
func ComputeBuckets(localID types.NodeID, peers []types.PeerRecord) types.BucketedPeerList {
	var grouped [BucketCount][]types.PeerAddr
	for _, p := range peers {
		idx := BucketOf(localID, p.ID)
		grouped[idx] = append(grouped[idx], p.AddrInfo())
	}

	list := make(types.BucketedPeerList, 0)
	for idx, addrs := range grouped {
		if len(addrs) == 0 {
			continue
		}
		list = append(list, types.PeerBucket{Bucket: idx, Peers: addrs})
	}
	return list
}
