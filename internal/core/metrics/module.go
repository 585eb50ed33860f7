package metrics

import (
	"go.uber.org/fx"
)

// Module 是 metrics 的 Fx 模块
//
// 提供 *Metrics；地址簿和浏览器模块通过可选依赖使用它。
var Module = fx.Module("metrics",
	fx.Provide(New),
)
