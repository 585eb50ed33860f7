package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PinkDiamond1/ultralight/internal/discovery/routing"
	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"golang.org/x/sync/errgroup"
)

var logger = log.Logger("history")

// Config History 网络配置
type Config struct {
	// ChainID 内容键中的链 ID
	ChainID uint16

	// Alpha 并发查询数
	Alpha int

	// LookupPeers 每次查询最多询问的节点数
	LookupPeers int

	// QueryTimeout 单个节点查询超时
	QueryTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ChainID:      MainnetChainID,
		Alpha:        3,
		LookupPeers:  16,
		QueryTimeout: 5 * time.Second,
	}
}

// Network History 子网内容客户端
type Network struct {
	store     *Store
	table     *routing.Table
	transport Transport
	cfg       Config
}

// NewNetwork 创建 History 网络客户端
//
// transport 为 nil 时只使用本地存储。
func NewNetwork(store *Store, table *routing.Table, transport Transport, cfg Config) *Network {
	if cfg.Alpha <= 0 {
		cfg.Alpha = 1
	}
	if cfg.LookupPeers <= 0 {
		cfg.LookupPeers = DefaultConfig().LookupPeers
	}
	return &Network{
		store:     store,
		table:     table,
		transport: transport,
		cfg:       cfg,
	}
}

// ChainID 返回内容键使用的链 ID
func (n *Network) ChainID() uint16 {
	return n.cfg.ChainID
}

// Store 返回本地内容存储
func (n *Network) Store() *Store {
	return n.store
}

// Lookup 查找内容
//
// 本地命中时直接返回；否则询问最近的节点，结果写入本地存储。
func (n *Network) Lookup(ctx context.Context, key ContentKey) ([]byte, error) {
	value, err := n.store.Get(key)
	if err == nil {
		logger.Debug("本地命中", "key", key.String(), "type", key.Selector.String())
		return value, nil
	}
	if !errors.Is(err, ErrContentNotFound) {
		return nil, err
	}

	if n.transport == nil {
		return nil, fmt.Errorf("%w: %s not stored locally", ErrContentNotFound, key.Selector)
	}

	peers := n.table.NearestPeers(key.ContentID(), n.cfg.LookupPeers)
	if len(peers) == 0 {
		return nil, fmt.Errorf("%w: no peers to query", ErrContentNotFound)
	}

	value, err = n.queryPeers(ctx, key, peers)
	if err != nil {
		return nil, err
	}

	if err := n.store.Put(key, value); err != nil {
		logger.Warn("保存查找结果失败", "key", key.String(), "error", err)
	}
	return value, nil
}

// queryPeers 以 Alpha 并发度询问节点，第一个成功的结果胜出
func (n *Network) queryPeers(ctx context.Context, key ContentKey, peers []types.PeerRecord) ([]byte, error) {
	qctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(qctx)
	g.SetLimit(n.cfg.Alpha)

	var (
		once  sync.Once
		found []byte
	)

	for _, p := range peers {
		p := p
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			reqCtx := gctx
			if n.cfg.QueryTimeout > 0 {
				var reqCancel context.CancelFunc
				reqCtx, reqCancel = context.WithTimeout(gctx, n.cfg.QueryTimeout)
				defer reqCancel()
			}

			value, err := n.transport.FindContent(reqCtx, p, key)
			if err != nil {
				logger.Debug("节点查询失败", "peer", p.ID.ShortString(), "type", key.Selector.String(), "error", err)
				return nil
			}

			once.Do(func() {
				found = value
				cancel()
			})
			return nil
		})
	}
	_ = g.Wait()

	if found != nil {
		return found, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: queried %d peers", ErrContentNotFound, len(peers))
}

// Get 从本地存储读取内容
func (n *Network) Get(key ContentKey) ([]byte, error) {
	return n.store.Get(key)
}

// Offer 把内容写入本地存储
func (n *Network) Offer(key ContentKey, value []byte) error {
	if err := n.store.Put(key, value); err != nil {
		return err
	}
	logger.Debug("保存内容", "key", key.String(), "type", key.Selector.String(), "size", len(value))
	return nil
}

// Serve 响应远端的内容请求，只返回本地存储中的内容
func (n *Network) Serve(_ context.Context, key ContentKey) ([]byte, error) {
	return n.store.Get(key)
}
