package keymutex

import (
	"context"
	"sync"
)

// KeyMutex набор мьютексов по строковому ключу.
// Разные ключи не блокируют друг друга; запись удаляется, когда ключ никто не держит.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch      chan struct{}
	waiters int
}

// New создает KeyMutex
func New() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*entry)}
}

// Acquire захватывает ключ. Ожидание прерывается отменой контекста.
// Возвращаемая функция освобождает ключ, повторный вызов безопасен.
func (k *KeyMutex) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.waiters++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.leave(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.leave(key, e)
		})
	}, nil
}

func (k *KeyMutex) leave(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.waiters--
	if e.waiters == 0 {
		delete(k.locks, key)
	}
}

// Len количество ключей, которые сейчас захвачены или ожидаются
func (k *KeyMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
