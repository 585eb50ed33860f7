package history

import (
	"context"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine"
	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"go.uber.org/fx"
)

// Params History 模块依赖参数
type Params struct {
	fx.In

	Engine     engine.Engine
	Manager    *routing.Manager
	Transport  Transport      `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Result History 模块提供的结果
type Result struct {
	fx.Out

	Store   *Store
	Network *Network
}

// Module 返回 History Fx 模块
//
// 提供:
//   - *Store: 本地内容存储
//   - *Network: History 子网内容客户端
//
// 生命周期:
//   - OnStart: Transport 支持注册时（如 MemoryHub），注册本节点的内容服务
//   - OnStop: 注销
func Module() fx.Option {
	return fx.Module("history",
		fx.Provide(ProvideNetwork),
		fx.Invoke(registerLifecycle),
	)
}

// ConfigFromUnified 从统一配置创建 History 配置
func ConfigFromUnified(cfg *config.Config) Config {
	hc := DefaultConfig()
	if cfg == nil {
		return hc
	}
	hc.ChainID = cfg.History.ChainID
	hc.Alpha = cfg.History.Alpha
	hc.LookupPeers = cfg.History.LookupPeers
	hc.QueryTimeout = cfg.History.QueryTimeout.Duration()
	return hc
}

// ProvideNetwork 提供本地存储和网络客户端
func ProvideNetwork(p Params) (Result, error) {
	table, err := p.Manager.Table(types.HistoryNetwork)
	if err != nil {
		return Result{}, err
	}

	store := NewStore(p.Engine)
	network := NewNetwork(store, table, p.Transport, ConfigFromUnified(p.UnifiedCfg))

	return Result{Store: store, Network: network}, nil
}

// registrar 支持节点注册的 Transport
type registrar interface {
	Register(id types.NodeID, handler ContentHandler)
	Unregister(id types.NodeID)
}

func registerLifecycle(lc fx.Lifecycle, network *Network, m *routing.Manager, p Params) {
	reg, ok := p.Transport.(registrar)
	if !ok {
		return
	}
	localID := m.LocalID()

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			reg.Register(localID, network.Serve)
			logger.Debug("注册内容服务", "node", localID.ShortString())
			return nil
		},
		OnStop: func(_ context.Context) error {
			reg.Unregister(localID)
			return nil
		},
	})
}
