package core

// Poolable objects are told when they leave (Reinit) and re-enter (CleanUp)
// an ObjectPool.
type Poolable interface {
	Reinit()
	CleanUp()
}

// Factory creates new pooled objects when storage is empty.
type Factory[T any] interface {
	Create() T
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc[T any] func() T

func (f FactoryFunc[T]) Create() T { return f() }

const defaultPoolCapacity = 16

// ObjectPool is a reusable-object store with pluggable storage and factory.
//
// ObjectPool is not synchronized. It is meant to be owned by a single
// goroutine, like the Scheduler that keeps its runners in one.
type ObjectPool[T Poolable] struct {
	storage Storage[T]
	factory Factory[T]
}

// NewObjectPool builds a pool over storage and factory.
// It returns ErrNilStorage or ErrNilFactory when either is missing.
func NewObjectPool[T Poolable](storage Storage[T], factory Factory[T]) (*ObjectPool[T], error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	return &ObjectPool[T]{storage: storage, factory: factory}, nil
}

// NewObjectPoolFunc builds a pool backed by a QueueStorage of the default capacity.
func NewObjectPoolFunc[T Poolable](create func() T) (*ObjectPool[T], error) {
	if create == nil {
		return nil, ErrNilFactory
	}
	return NewObjectPool[T](NewQueueStorage[T](defaultPoolCapacity), FactoryFunc[T](create))
}

// Get returns an idle object, reinitialized, or a new one from the factory.
func (p *ObjectPool[T]) Get() T {
	if v, ok := p.storage.TryGet(); ok {
		v.Reinit()
		return v
	}
	return p.factory.Create()
}

// Release cleans obj up and hands it to storage. It reports whether storage
// accepted it.
func (p *ObjectPool[T]) Release(obj T) bool {
	obj.CleanUp()
	return p.storage.TryAdd(obj)
}

// ReleaseOrDispose releases obj and calls dispose when storage rejects it.
func (p *ObjectPool[T]) ReleaseOrDispose(obj T, dispose func(T)) {
	if !p.Release(obj) && dispose != nil {
		dispose(obj)
	}
}

// ReleaseAll releases every item, disposing the rejected ones when dispose is non-nil.
func (p *ObjectPool[T]) ReleaseAll(items []T, dispose func(T)) {
	for _, item := range items {
		p.ReleaseOrDispose(item, dispose)
	}
}

// Prewarm creates n objects and releases them into storage.
// It stops early once storage refuses an object.
func (p *ObjectPool[T]) Prewarm(n int) int {
	added := 0
	for range n {
		if !p.Release(p.factory.Create()) {
			break
		}
		added++
	}
	return added
}

// Clear drops every idle object.
func (p *ObjectPool[T]) Clear() {
	p.storage.Clear()
}

// ClearWith drains storage, handing each idle object to dispose.
func (p *ObjectPool[T]) ClearWith(dispose func(T)) {
	for {
		v, ok := p.storage.TryGet()
		if !ok {
			return
		}
		dispose(v)
	}
}

// Len returns the number of idle objects.
func (p *ObjectPool[T]) Len() int {
	return p.storage.Len()
}
