// Package ultralight 是 Portal 网络 History 子网的轻量客户端
//
// 节点只在本地存储少量内容，通过 History 子网从其他节点获取区块头和区块体，
// 并按区块哈希重建完整区块。
//
// # 核心概念
//
//   - Node: 用户交互的主入口，聚合所有内部组件
//   - AddressBook: 按 XOR 距离分桶的已知节点列表
//   - Reconstruct: 按区块哈希并发获取区块头和区块体并组装
//
// # 快速开始
//
//	node, err := ultralight.Start(ctx,
//	    ultralight.WithDataDir("/var/lib/ultralight"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	res := node.Reconstruct(ctx, "0x88e96d4537bea4d9c05d12549907b32561d3bf31f45aae734cdc119f13406cb6")
//	if res.OK() {
//	    fmt.Println(res.Block.NumberU64())
//	}
//
//	// 沿父哈希继续
//	parent := node.FollowParent(ctx, res.Block)
package ultralight

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "ultralight " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}
