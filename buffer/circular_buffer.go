package buffer

import (
	"fmt"
	"io"
)

// CircularBuffer is a growable double ended queue over a ring.
// Logical index i lives in physical slot (front+i) % Capacity().
type CircularBuffer[T any] struct {
	store []T
	front int
	size  int
}

// NewCircularBuffer returns an empty CircularBuffer with capacity 1.
func NewCircularBuffer[T any]() *CircularBuffer[T] {
	return &CircularBuffer[T]{store: make([]T, 1)}
}

// InsertFront puts v before the current first element.
func (b *CircularBuffer[T]) InsertFront(v T) {
	b.grow()
	b.front = (b.front - 1 + len(b.store)) % len(b.store)
	b.store[b.front] = v
	b.size++
}

// InsertBack puts v after the current last element.
func (b *CircularBuffer[T]) InsertBack(v T) {
	b.grow()
	b.store[b.slot(b.size)] = v
	b.size++
}

// RemoveFront removes and returns the first element.
func (b *CircularBuffer[T]) RemoveFront() (T, error) {
	var zero T
	if b.size == 0 {
		return zero, fmt.Errorf("%w: remove front of empty buffer", ErrOutOfBounds)
	}
	v := b.store[b.front]
	b.store[b.front] = zero
	b.front = (b.front + 1) % len(b.store)
	b.size--
	b.shrink()
	return v, nil
}

// RemoveBack removes and returns the last element.
func (b *CircularBuffer[T]) RemoveBack() (T, error) {
	var zero T
	if b.size == 0 {
		return zero, fmt.Errorf("%w: remove back of empty buffer", ErrOutOfBounds)
	}
	last := b.slot(b.size - 1)
	v := b.store[last]
	b.store[last] = zero
	b.size--
	b.shrink()
	return v, nil
}

// Get returns the element at logical index i.
func (b *CircularBuffer[T]) Get(i int) (T, error) {
	if i < 0 || i >= b.size {
		var zero T
		return zero, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, i, b.size)
	}
	return b.store[b.slot(i)], nil
}

// Set replaces the element at logical index i.
// i == Size() inserts at the back and i == -1 inserts at the front.
func (b *CircularBuffer[T]) Set(i int, v T) error {
	switch {
	case i == b.size:
		b.InsertBack(v)
	case i == -1:
		b.InsertFront(v)
	case i < -1 || i > b.size:
		return fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, i, b.size)
	default:
		b.store[b.slot(i)] = v
	}
	return nil
}

// Size returns the number of elements.
func (b *CircularBuffer[T]) Size() int { return b.size }

// Capacity returns the length of the ring.
func (b *CircularBuffer[T]) Capacity() int {
	b.lazyInit()
	return len(b.store)
}

// Extract returns a copy of the contents in logical order, exactly Size() long,
// and resets b to an empty buffer of capacity 1.
func (b *CircularBuffer[T]) Extract() []T {
	out := make([]T, b.size)
	for i := range out {
		out[i] = b.store[b.slot(i)]
	}
	b.store = make([]T, 1)
	b.front = 0
	b.size = 0
	return out
}

// Display writes the elements as [a,b,c] in logical order, printing each one with show.
func (b *CircularBuffer[T]) Display(w io.Writer, show func(io.Writer, T)) {
	display(w, b.size, func(i int) T { return b.store[b.slot(i)] }, show)
}

// UnionCDA moves every element of donor to the back of recipient, in order.
// donor is left empty.
func UnionCDA[T any](recipient, donor *CircularBuffer[T]) {
	for _, v := range donor.Extract() {
		recipient.InsertBack(v)
	}
}

func (b *CircularBuffer[T]) slot(i int) int {
	return (b.front + i) % len(b.store)
}

func (b *CircularBuffer[T]) lazyInit() {
	if len(b.store) == 0 {
		b.store = make([]T, 1)
		b.front = 0
	}
}

func (b *CircularBuffer[T]) grow() {
	b.lazyInit()
	if b.size == len(b.store) {
		b.resize(2 * len(b.store))
	}
}

func (b *CircularBuffer[T]) shrink() {
	if len(b.store) > 1 && 4*b.size < len(b.store) {
		b.resize(len(b.store) / 2)
	}
}

// resize copies the elements starting at the old front, so the new ring starts at 0.
func (b *CircularBuffer[T]) resize(capacity int) {
	store := make([]T, capacity)
	for i := 0; i < b.size; i++ {
		store[i] = b.store[b.slot(i)]
	}
	b.store = store
	b.front = 0
}
