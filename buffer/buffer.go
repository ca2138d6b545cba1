// Package buffer holds the bounded, time-ordered sample store that
// backs the live plot. Capacity is fixed at construction; once full,
// appends evict the oldest samples first.
package buffer

import (
	"github.com/gammazero/deque"
	"github.com/lzwang26/stress-sensing-mitigation/schema"
)

type Buffer struct {
	values   *deque.Deque[schema.Sample]
	capacity int
}

// New returns an empty buffer. capacity must be > 0.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("buffer: capacity must be positive")
	}
	return &Buffer{
		values:   deque.New[schema.Sample](0, 64),
		capacity: capacity,
	}
}

// Append adds a sample at the tail, evicting from the head if the
// buffer is full. O(1) amortized; sample rates can exceed the render
// tick rate, so this is on the hot path.
func (b *Buffer) Append(s schema.Sample) {
	b.values.PushBack(s)
	for b.values.Len() > b.capacity {
		b.values.PopFront()
	}
}

func (b *Buffer) Len() int {
	return b.values.Len()
}

func (b *Buffer) Cap() int {
	return b.capacity
}

// First returns the oldest retained sample.
func (b *Buffer) First() (schema.Sample, bool) {
	if b.values.Len() == 0 {
		return schema.Sample{}, false
	}
	return b.values.Front(), true
}

// Last returns the newest sample.
func (b *Buffer) Last() (schema.Sample, bool) {
	if b.values.Len() == 0 {
		return schema.Sample{}, false
	}
	return b.values.Back(), true
}

// Snapshot copies the current contents into parallel time/value
// slices, oldest first. The returned slices are owned by the caller.
func (b *Buffer) Snapshot() (times, values []float64) {
	n := b.values.Len()
	if n == 0 {
		return nil, nil
	}
	times = make([]float64, n)
	values = make([]float64, n)
	for i := 0; i < n; i++ {
		s := b.values.At(i)
		times[i] = s.T
		values[i] = s.Value
	}
	return times, values
}
