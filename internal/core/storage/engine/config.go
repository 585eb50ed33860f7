package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 创建临时目录；InMemory 仅用于
// 不需要持久化的一次性节点（如 CLI 的 -ephemeral）。
type Config struct {
	// Path 数据目录路径（InMemory 为 false 时必需）
	Path string

	// InMemory 纯内存模式，不写磁盘
	InMemory bool

	// SyncWrites 是否同步写入
	SyncWrites bool

	// ReadOnly 是否只读模式
	ReadOnly bool

	// MemTableSize 内存表大小（字节），默认 64MB
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节），默认 256MB
	ValueLogFileSize int64

	// BlockCacheSize 块缓存大小（字节），默认 64MB
	BlockCacheSize int64

	// GCInterval 值日志 GC 间隔，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio 值日志 GC 丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:             path,
		MemTableSize:     64 << 20,
		ValueLogFileSize: 256 << 20,
		BlockCacheSize:   64 << 20,
		GCInterval:       10 * time.Minute,
		GCDiscardRatio:   0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" && !c.InMemory {
		return ErrInvalidConfig
	}
	if c.MemTableSize < 1<<20 { // 最小 1MB
		return ErrInvalidConfig
	}
	if c.ValueLogFileSize < 1<<20 {
		return ErrInvalidConfig
	}
	if c.GCInterval > 0 && (c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1) {
		return ErrInvalidConfig
	}
	return nil
}

// EnsureDir 确保数据目录存在
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0755)
}
