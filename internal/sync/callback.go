package sync

import gosync "sync"

// Callback receives the outcome of an async operation
type Callback[R any] interface {
	Result(result R, err error)
}

type simpleCallback[R any] struct {
	callback func(result R, err error)
}

func NewCallback[R any](callback func(result R, err error)) Callback[R] {
	return &simpleCallback[R]{callback: callback}
}

func NewNoopCallback[R any]() Callback[R] {
	return &simpleCallback[R]{callback: func(result R, err error) {}}
}

func (c *simpleCallback[R]) Result(result R, err error) {
	c.callback(result, err)
}

// CallbackResult pairs an outcome with its error for channel delivery
type CallbackResult[R any] struct {
	Result R
	Error  error
}

// NewBlockingCallback returns a callback and the channel its single result
// will be delivered on
func NewBlockingCallback[R any]() (Callback[R], chan CallbackResult[R]) {
	c := make(chan CallbackResult[R], 1)
	callback := NewCallback[R](func(result R, err error) {
		c <- CallbackResult[R]{Result: result, Error: err}
	})
	return callback, c
}

// callbackList holds subscriber callbacks. The list is copied on change so
// invocation never holds the lock.
type callbackList[T any] struct {
	mutex     gosync.Mutex
	nextID    int
	callbacks map[int]T
}

func (l *callbackList[T]) add(callback T) func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.callbacks == nil {
		l.callbacks = map[int]T{}
	}
	id := l.nextID
	l.nextID += 1
	l.callbacks[id] = callback
	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		delete(l.callbacks, id)
	}
}

func (l *callbackList[T]) get() []T {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	out := make([]T, 0, len(l.callbacks))
	for _, callback := range l.callbacks {
		out = append(out, callback)
	}
	return out
}
