package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/PinkDiamond1/ultralight/pkg/types"
)

// Transport 向远端节点请求内容
type Transport interface {
	FindContent(ctx context.Context, peer types.PeerRecord, key ContentKey) ([]byte, error)
}

// ContentHandler 节点处理内容请求的函数
type ContentHandler func(ctx context.Context, key ContentKey) ([]byte, error)

// MemoryHub 进程内 Transport
//
// 每个节点以自己的 ID 注册一个 ContentHandler，FindContent
// 直接调用目标节点的 handler。用于测试和单进程多节点演示。
type MemoryHub struct {
	mu       sync.RWMutex
	handlers map[types.NodeID]ContentHandler
}

// NewMemoryHub 创建进程内 Transport
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{handlers: make(map[types.NodeID]ContentHandler)}
}

// Register 注册节点的内容处理函数
func (h *MemoryHub) Register(id types.NodeID, handler ContentHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[id] = handler
}

// Unregister 注销节点
func (h *MemoryHub) Unregister(id types.NodeID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, id)
}

// FindContent 实现 Transport
func (h *MemoryHub) FindContent(ctx context.Context, peer types.PeerRecord, key ContentKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	handler, ok := h.handlers[peer.ID]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPeerUnreachable, peer.ID.ShortString())
	}
	return handler(ctx, key)
}

var _ Transport = (*MemoryHub)(nil)
