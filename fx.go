package ultralight

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/pkg/lib/log"

	// Core Layer
	"github.com/PinkDiamond1/ultralight/internal/core/metrics"
	"github.com/PinkDiamond1/ultralight/internal/core/storage"
	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine"

	// Discovery Layer
	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"

	// Content Layer
	"github.com/PinkDiamond1/ultralight/internal/addressbook"
	"github.com/PinkDiamond1/ultralight/internal/explorer"
	"github.com/PinkDiamond1/ultralight/internal/history"

	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/benbjohnson/clock"
)

var fxLogger = log.Logger("ultralight/fx")

// buildFxApp 构建 Fx 应用
//
// 模块加载顺序：
//  1. 配置和身份
//  2. Core Layer: Storage, Metrics
//  3. Discovery Layer: Routing
//  4. Content Layer: History, AddressBook, Explorer
//  5. 用户扩展
//  6. Node 组件注入
func buildFxApp(cfg *nodeConfig, node *Node) (*fx.App, error) {
	localID, err := cfg.resolveNodeID()
	if err != nil {
		return nil, fmt.Errorf("resolve node id: %w", err)
	}

	var modules []fx.Option

	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置和身份
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Supply(cfg.config),
		fx.Supply(localID),
	)

	if cfg.transport != nil {
		transport := cfg.transport
		modules = append(modules, fx.Provide(func() history.Transport { return transport }))
	}
	if cfg.clock != nil {
		clk := cfg.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. Core Layer
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		storage.Module(),
		metrics.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. Discovery Layer
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, routing.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 4. Content Layer
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		history.Module(),
		addressbook.Module(),
		explorer.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(cfg.userFxOptions) > 0 {
		modules = append(modules, cfg.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// ════════════════════════════════════════════════════════════════════════
	// 7. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	fxLogger.Debug("构建 Fx 应用", "node", localID.ShortString(), "modules", len(modules))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入辅助函数
// ════════════════════════════════════════════════════════════════════════════

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	LocalID  types.NodeID
	Config   *config.Config
	Engine   engine.Engine
	Manager  *routing.Manager
	Network  *history.Network
	Book     *addressbook.Book
	Explorer *explorer.Explorer
	Metrics  *metrics.Metrics
}

// injectNodeComponents 把 Fx 构造的组件注入 Node
func injectNodeComponents(node *Node) func(p nodeInjectParams) {
	return func(p nodeInjectParams) {
		node.localID = p.LocalID
		node.unified = p.Config
		node.engine = p.Engine
		node.routing = p.Manager
		node.network = p.Network
		node.book = p.Book
		node.explorer = p.Explorer
		node.metrics = p.Metrics
	}
}
