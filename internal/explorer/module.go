package explorer

import (
	"github.com/PinkDiamond1/ultralight/internal/core/metrics"
	"github.com/PinkDiamond1/ultralight/internal/history"
	"go.uber.org/fx"
)

// Params Explorer 模块依赖参数
type Params struct {
	fx.In

	Network *history.Network
	Metrics *metrics.Metrics `optional:"true"`
}

// Module 返回 Explorer Fx 模块
func Module() fx.Option {
	return fx.Module("explorer",
		fx.Provide(ProvideExplorer),
	)
}

// ProvideExplorer 提供区块浏览器
func ProvideExplorer(p Params) *Explorer {
	var opts []Option
	if p.Metrics != nil {
		opts = append(opts, WithRecorder(p.Metrics))
	}
	return New(p.Network, opts...)
}
