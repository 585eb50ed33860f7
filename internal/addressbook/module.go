package addressbook

import (
	"context"

	"github.com/PinkDiamond1/ultralight/internal/core/metrics"
	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"go.uber.org/fx"
)

// Params AddressBook 模块依赖参数
type Params struct {
	fx.In

	LocalID types.NodeID
	Source  routing.PeerSource
	Metrics *metrics.Metrics `optional:"true"`
}

// Module 返回 AddressBook Fx 模块
//
// 提供 History 子网的 *Book。
//
// 生命周期:
//   - OnStart: 订阅 History 路由表并计算初始列表
//   - OnStop: 取消订阅
func Module() fx.Option {
	return fx.Module("addressbook",
		fx.Provide(ProvideBook),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideBook 提供地址簿
func ProvideBook(p Params) *Book {
	var opts []Option
	if p.Metrics != nil {
		opts = append(opts, WithRecorder(p.Metrics))
	}
	return NewBook(p.LocalID, p.Source, types.HistoryNetwork, opts...)
}

func registerLifecycle(lc fx.Lifecycle, book *Book, m *routing.Manager) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if table, err := m.Table(types.HistoryNetwork); err == nil {
				table.Notify(book)
			} else {
				logger.Warn("History 路由表未注册，地址簿不会自动更新", "error", err)
			}
			book.Refresh()
			return nil
		},
		OnStop: func(_ context.Context) error {
			if table, err := m.Table(types.HistoryNetwork); err == nil {
				table.StopNotify(book)
			}
			return nil
		},
	})
}
