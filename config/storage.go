package config

import (
	"errors"
	"path/filepath"
	"time"
)

// StorageConfig 存储配置
//
// 本地内容（区块头、区块体）保存在单个 BadgerDB 实例中，
// 通过 Key 前缀隔离。
//
// 数据目录结构：
//
//	${DataDir}/
//	└── ultralight.db/      # BadgerDB 主数据库
//	    ├── 000001.vlog     # Value Log
//	    ├── 000001.sst      # SSTable
//	    └── MANIFEST        # 数据库元信息
type StorageConfig struct {
	// DataDir 数据目录路径
	// 默认值: "./data"
	DataDir string `json:"data_dir"`

	// InMemory 纯内存模式，不写磁盘（一次性节点）
	InMemory bool `json:"in_memory,omitempty"`

	// SyncWrites 是否同步写入
	SyncWrites bool `json:"sync_writes,omitempty"`

	// GCInterval 值日志 GC 间隔
	GCInterval Duration `json:"gc_interval,omitempty"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:    "./data",
		GCInterval: Duration(10 * time.Minute),
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return errors.New("storage: data_dir cannot be empty")
	}
	if c.GCInterval < 0 {
		return errors.New("storage: gc_interval must not be negative")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c *StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "ultralight.db")
}
