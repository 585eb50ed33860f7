package history

import (
	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine"
	"github.com/PinkDiamond1/ultralight/internal/core/storage/kv"
)

// StorePrefix 本地内容在存储引擎中的键前缀
const StorePrefix = "h/c/"

// Store 本地内容存储
//
// 以内容 ID 为键，保存区块头、区块体的原始编码。
type Store struct {
	kv *kv.Store
}

// NewStore 创建本地内容存储
func NewStore(eng engine.Engine) *Store {
	return &Store{kv: kv.New(eng, []byte(StorePrefix))}
}

// Put 保存内容
func (s *Store) Put(key ContentKey, value []byte) error {
	id := key.ContentID()
	return s.kv.Put(id[:], value)
}

// Get 读取内容，不存在时返回 ErrContentNotFound
func (s *Store) Get(key ContentKey) ([]byte, error) {
	id := key.ContentID()
	value, err := s.kv.Get(id[:])
	if engine.IsNotFound(err) {
		return nil, ErrContentNotFound
	}
	return value, err
}

// Has 检查内容是否存在
func (s *Store) Has(key ContentKey) (bool, error) {
	id := key.ContentID()
	return s.kv.Has(id[:])
}

// Delete 删除内容
func (s *Store) Delete(key ContentKey) error {
	id := key.ContentID()
	return s.kv.Delete(id[:])
}

// Count 返回本地保存的内容条数
func (s *Store) Count() (int64, error) {
	return s.kv.Count(nil)
}
