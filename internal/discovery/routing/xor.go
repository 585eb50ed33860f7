package routing

import (
	"bytes"
	"math/bits"

	"github.com/PinkDiamond1/ultralight/pkg/types"
)

// KeySize ID 位数，也是 k-桶数量
const KeySize = types.NodeIDSize * 8

// XORDistance 计算两个 NodeID 的 XOR 距离
// 返回距离的字节表示（大端序）
func XORDistance(a, b types.NodeID) [types.NodeIDSize]byte {
	var distance [types.NodeIDSize]byte
	for i := range distance {
		distance[i] = a[i] ^ b[i]
	}
	return distance
}

// CompareDistance 比较 a 和 b 到 target 的距离
// 返回：
//
//	-1 如果 dist(a, target) < dist(b, target)
//	 0 如果 dist(a, target) == dist(b, target)
//	 1 如果 dist(a, target) > dist(b, target)
func CompareDistance(a, b, target types.NodeID) int {
	distA := XORDistance(a, target)
	distB := XORDistance(b, target)
	return bytes.Compare(distA[:], distB[:])
}

// CommonPrefixLen 计算两个 NodeID 的共同前缀长度（按位计数）
func CommonPrefixLen(a, b types.NodeID) int {
	distance := XORDistance(a, b)
	for i, d := range distance {
		if d != 0 {
			return i*8 + bits.LeadingZeros8(d)
		}
	}
	return KeySize
}

// LogDistance 返回 discv5 定义的对数距离 log2(a XOR b) + 1
//
// 相同 ID 返回 0，最远为 256。
func LogDistance(a, b types.NodeID) int {
	return KeySize - CommonPrefixLen(a, b)
}

// BucketIndex 计算 remote 应该放入本地路由表的哪个 k-桶
//
// 返回 [0, KeySize) 的索引；对数距离 d 的节点放入桶 d-1。
// remote == local 时返回 -1。
func BucketIndex(local, remote types.NodeID) int {
	return LogDistance(local, remote) - 1
}
