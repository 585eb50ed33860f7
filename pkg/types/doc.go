// Package types 定义 ultralight 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - ids.go  - NodeID, SubnetworkID
//   - peer.go - PeerRecord, PeerAddr, PeerBucket, BucketedPeerList
package types
