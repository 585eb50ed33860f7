package routing

import (
	"context"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
)

// Params Routing 模块依赖参数
type Params struct {
	fx.In

	LocalID    types.NodeID
	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Result Routing 模块提供的结果
type Result struct {
	fx.Out

	Manager *Manager
	Source  PeerSource
}

// Module 返回 Routing Fx 模块
//
// 提供:
//   - *Manager: 路由表管理器（已注册 History 子网）
//   - PeerSource: 同一个 Manager
//
// 生命周期:
//   - OnStart: 启动过期节点清理
//   - OnStop: 停止清理
func Module() fx.Option {
	return fx.Module("routing",
		fx.Provide(ProvideManager),
		fx.Invoke(registerLifecycle),
	)
}

// ConfigFromUnified 从统一配置创建路由表配置
func ConfigFromUnified(cfg *config.Config) Config {
	rc := DefaultConfig()
	if cfg == nil {
		return rc
	}
	rc.BucketSize = cfg.Routing.BucketSize
	rc.ReplacementCacheSize = cfg.Routing.ReplacementCacheSize
	rc.NodeExpiry = cfg.Routing.NodeExpiry.Duration()
	return rc
}

// ProvideManager 提供路由表管理器
func ProvideManager(p Params) Result {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if p.Clock != nil {
		cfg.Clock = p.Clock
	}

	m := NewManager(p.LocalID, cfg)
	m.Register(types.HistoryNetwork)

	return Result{Manager: m, Source: m}
}

func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			m.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			m.Stop()
			return nil
		},
	})
}
