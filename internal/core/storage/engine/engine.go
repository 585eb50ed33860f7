// Package engine 定义存储引擎接口
//
// 各组件不直接依赖 BadgerDB，而是通过 Engine 接口访问底层存储，
// 再由 kv.Store 按前缀划分命名空间。
//
// # 线程安全
//
// 所有实现必须保证线程安全。
package engine

// Engine 存储引擎接口
type Engine interface {
	// Get 获取指定键的值，键不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 设置键值对
	Put(key, value []byte) error

	// Delete 删除指定键，键不存在时不报错
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// NewPrefixIterator 创建前缀迭代器
	//
	// 调用者负责在使用后调用 Close()。
	NewPrefixIterator(prefix []byte) Iterator

	// Start 启动后台任务（值日志 GC）
	Start() error

	// Close 关闭引擎，多次调用是安全的
	Close() error
}

// Iterator 迭代器接口
//
// 使用模式:
//
//	iter := eng.NewPrefixIterator(prefix)
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    key := iter.Key()
//	    value := iter.Value()
//	}
//
//	if err := iter.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 移动到第一个键值对
	First() bool

	// Next 移动到下一个键值对
	Next() bool

	// Valid 检查迭代器是否指向有效位置
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// Close 关闭迭代器
	Close()

	// Error 返回迭代过程中的错误
	Error() error
}
