// Package history 实现 Portal History 子网的内容访问
//
// # 内容键
//
// 内容键为 selector || chainID(uint16 小端) || blockHash，
// 内容 ID（查找键）为内容键的 SHA-256：
//
//	selector | 内容
//	---------|-----------
//	0x00     | 区块头（RLP）
//	0x01     | 区块体（RLP: [transactions, uncles, withdrawals?]）
//	0x02     | 收据（保留）
//
// # 查找
//
// Network.Lookup 先查本地 Store，未命中时按内容 ID 选取 History
// 路由表中最近的节点，以 Alpha 并发度通过 Transport 询问，
// 第一个成功的结果写入本地 Store 后返回。
package history
