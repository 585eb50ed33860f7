package kv

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine"
	"github.com/PinkDiamond1/ultralight/internal/core/storage/engine/badger"
)

// testEngine 创建测试用引擎
// 使用 t.TempDir() 创建临时目录，测试结束后自动清理
func testEngine(t *testing.T) engine.Engine {
	t.Helper()

	cfg := engine.DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	eng, err := badger.New(cfg)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	t.Cleanup(func() {
		if err := eng.Close(); err != nil {
			t.Errorf("failed to close engine: %v", err)
		}
	})

	return eng
}

// ============= 基础操作测试 =============

func TestStore_PutGet(t *testing.T) {
	s := New(testEngine(t), []byte("test/"))

	key := []byte("key1")
	value := []byte("value1")

	if err := s.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}
}

func TestStore_PrefixIsolation(t *testing.T) {
	eng := testEngine(t)
	a := New(eng, []byte("a/"))
	b := New(eng, []byte("b/"))

	if err := a.Put([]byte("k"), []byte("from-a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, err := b.Get([]byte("k")); !engine.IsNotFound(err) {
		t.Errorf("b.Get = %v, want ErrNotFound", err)
	}

	// 底层引擎中的实际键带前缀
	raw, err := eng.Get([]byte("a/k"))
	if err != nil {
		t.Fatalf("engine Get failed: %v", err)
	}
	if string(raw) != "from-a" {
		t.Errorf("raw value = %q", raw)
	}
}

func TestStore_HasDelete(t *testing.T) {
	s := New(testEngine(t), []byte("test/"))

	key := []byte("key")
	if err := s.Put(key, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ok, _ := s.Has(key); !ok {
		t.Fatal("Has returned false after Put")
	}
	if err := s.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := s.Has(key); ok {
		t.Fatal("Has returned true after Delete")
	}
}

// ============= 前缀迭代测试 =============

func TestStore_ScanKeysCount(t *testing.T) {
	eng := testEngine(t)
	s := New(eng, []byte("test/"))
	other := New(eng, []byte("other/"))

	for i := 0; i < 3; i++ {
		if err := s.Put([]byte(fmt.Sprintf("x/%d", i)), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := s.Put([]byte("y/0"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := other.Put([]byte("x/9"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	keys, err := s.Keys([]byte("x/"))
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("Keys returned %d keys, want 3", len(keys))
	}
	for _, k := range keys {
		if !bytes.HasPrefix(k, []byte("x/")) {
			t.Errorf("key %q not stripped of store prefix", k)
		}
	}

	count, err := s.Count(nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Count = %d, want 4", count)
	}

	// 回调返回 false 时停止
	seen := 0
	if err := s.PrefixScan(nil, func(_, _ []byte) bool {
		seen++
		return false
	}); err != nil {
		t.Fatalf("PrefixScan failed: %v", err)
	}
	if seen != 1 {
		t.Errorf("PrefixScan visited %d entries, want 1", seen)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	s := New(testEngine(t), []byte("test/"))

	for i := 0; i < 3; i++ {
		if err := s.Put([]byte(fmt.Sprintf("x/%d", i)), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := s.Put([]byte("keep"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := s.DeletePrefix([]byte("x/")); err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}

	count, _ := s.Count(nil)
	if count != 1 {
		t.Errorf("Count after DeletePrefix = %d, want 1", count)
	}
}
