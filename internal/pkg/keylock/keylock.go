// Package keylock 提供按 key 串行化的互斥锁
package keylock

import (
	"strconv"
	"sync"

	"github.com/puzpuzpuz/xsync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock 按用户 ID 加锁，无人持有时回收条目
type KeyLock struct {
	entries *xsync.MapOf[string, *entry]
	guard   sync.Mutex
}

func New() *KeyLock {
	return &KeyLock{entries: xsync.NewMapOf[*entry]()}
}

// Lock 获取 id 对应的锁，返回解锁函数
func (k *KeyLock) Lock(id int64) func() {
	key := strconv.FormatInt(id, 10)

	k.guard.Lock()
	e, _ := k.entries.LoadOrStore(key, &entry{})
	e.refs++
	k.guard.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.guard.Lock()
		e.refs--
		if e.refs == 0 {
			k.entries.Delete(key)
		}
		k.guard.Unlock()
	}
}

// Len 当前持有或等待中的 key 数量
func (k *KeyLock) Len() int {
	return k.entries.Size()
}
