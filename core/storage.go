package core

// Storage holds idle pooled objects. Implementations decide their own
// capacity policy: TryAdd returns false when the object is not accepted.
type Storage[T any] interface {
	TryAdd(v T) bool
	TryGet() (T, bool)
	Len() int
	Clear()
}

// QueueStorage hands idle objects back in release order (oldest first).
// A capacity <= 0 means unbounded.
type QueueStorage[T any] struct {
	capacity int
	items    fifo[T]
}

func NewQueueStorage[T any](capacity int) *QueueStorage[T] {
	return &QueueStorage[T]{capacity: capacity, items: newFIFO[T]()}
}

func (s *QueueStorage[T]) TryAdd(v T) bool {
	if s.capacity > 0 && s.items.Len() >= s.capacity {
		return false
	}
	s.items.Push(v)
	return true
}

func (s *QueueStorage[T]) TryGet() (T, bool) { return s.items.Pop() }
func (s *QueueStorage[T]) Len() int          { return s.items.Len() }
func (s *QueueStorage[T]) Clear()            { s.items.Clear() }

// Capacity returns the configured capacity, <= 0 meaning unbounded.
func (s *QueueStorage[T]) Capacity() int { return s.capacity }

// StackStorage hands back the most recently released object first, which
// keeps a small hot set of objects in use.
type StackStorage[T any] struct {
	capacity int
	items    fifo[T]
}

func NewStackStorage[T any](capacity int) *StackStorage[T] {
	return &StackStorage[T]{capacity: capacity, items: newFIFO[T]()}
}

func (s *StackStorage[T]) TryAdd(v T) bool {
	if s.capacity > 0 && s.items.Len() >= s.capacity {
		return false
	}
	s.items.Push(v)
	return true
}

func (s *StackStorage[T]) TryGet() (T, bool) { return s.items.PopLast() }
func (s *StackStorage[T]) Len() int          { return s.items.Len() }
func (s *StackStorage[T]) Clear()            { s.items.Clear() }

func (s *StackStorage[T]) Capacity() int { return s.capacity }
