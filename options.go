package ultralight

import (
	"errors"
	"fmt"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/internal/history"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
)

// Option 用户配置选项函数
type Option func(*nodeConfig) error

// nodeConfig 内部选项结构
type nodeConfig struct {
	// config 统一配置
	config *config.Config

	// nodeID 显式指定的节点 ID（优先于配置文件）
	nodeID *types.NodeID

	// transport 内容请求传输，nil 时只使用本地存储
	transport history.Transport

	// clock 路由表时间源
	clock clock.Clock

	// userFxOptions 用户扩展
	userFxOptions []fx.Option
}

func newNodeConfig() *nodeConfig {
	return &nodeConfig{
		config: config.NewConfig(),
	}
}

// resolveNodeID 返回本地节点 ID
func (c *nodeConfig) resolveNodeID() (types.NodeID, error) {
	if c.nodeID != nil {
		return *c.nodeID, nil
	}
	return c.config.Identity.ResolveNodeID()
}

// WithConfig 使用完整配置替换默认配置
func WithConfig(cfg *config.Config) Option {
	return func(c *nodeConfig) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		c.config = cfg.Clone()
		return nil
	}
}

// WithDataDir 设置数据目录
func WithDataDir(dir string) Option {
	return func(c *nodeConfig) error {
		if dir == "" {
			return errors.New("data dir cannot be empty")
		}
		c.config.Storage.DataDir = dir
		return nil
	}
}

// WithInMemory 使用纯内存存储
func WithInMemory() Option {
	return func(c *nodeConfig) error {
		c.config.Storage.InMemory = true
		return nil
	}
}

// WithNodeID 设置本地节点 ID
func WithNodeID(id types.NodeID) Option {
	return func(c *nodeConfig) error {
		if id.IsEmpty() {
			return errors.New("node id cannot be empty")
		}
		c.nodeID = &id
		return nil
	}
}

// WithChainID 设置内容键中的链 ID
func WithChainID(chainID uint16) Option {
	return func(c *nodeConfig) error {
		c.config.History.ChainID = chainID
		return nil
	}
}

// WithTransport 设置内容请求传输
//
// 传入 *history.MemoryHub 时，节点启动后会在 hub 上注册自己的内容服务。
func WithTransport(t history.Transport) Option {
	return func(c *nodeConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		c.transport = t
		return nil
	}
}

// WithClock 设置路由表时间源（测试用）
func WithClock(clk clock.Clock) Option {
	return func(c *nodeConfig) error {
		c.clock = clk
		return nil
	}
}

// WithFxOption 追加用户自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(c *nodeConfig) error {
		c.userFxOptions = append(c.userFxOptions, opts...)
		return nil
	}
}
