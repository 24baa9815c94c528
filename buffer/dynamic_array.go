package buffer

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrOutOfBounds is returned when removing from an empty container.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrIndexOutOfRange is returned by Get and Set for an index outside the container.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// DynamicArray is a growable, single ended array.
// It doubles its backing store when full and halves it
// when less than a quarter of it is in use.
type DynamicArray[T any] struct {
	store []T
	size  int
}

// NewDynamicArray returns an empty DynamicArray with capacity 1.
func NewDynamicArray[T any]() *DynamicArray[T] {
	return &DynamicArray[T]{store: make([]T, 1)}
}

// Insert appends v to the back.
func (a *DynamicArray[T]) Insert(v T) {
	a.lazyInit()
	if a.size == len(a.store) {
		a.resize(2 * len(a.store))
	}
	a.store[a.size] = v
	a.size++
}

// Remove removes and returns the last element.
func (a *DynamicArray[T]) Remove() (T, error) {
	var zero T
	if a.size == 0 {
		return zero, fmt.Errorf("%w: remove from empty array", ErrOutOfBounds)
	}
	a.size--
	v := a.store[a.size]
	a.store[a.size] = zero
	a.shrink()
	return v, nil
}

// Get returns the element at index i.
func (a *DynamicArray[T]) Get(i int) (T, error) {
	if i < 0 || i >= a.size {
		var zero T
		return zero, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, i, a.size)
	}
	return a.store[i], nil
}

// Set replaces the element at index i.
// Setting at i == Size() is the same as Insert.
func (a *DynamicArray[T]) Set(i int, v T) error {
	if i == a.size {
		a.Insert(v)
		return nil
	}
	if i < 0 || i > a.size {
		return fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, i, a.size)
	}
	a.store[i] = v
	return nil
}

// Size returns the number of elements.
func (a *DynamicArray[T]) Size() int { return a.size }

// Capacity returns the length of the backing store.
func (a *DynamicArray[T]) Capacity() int {
	a.lazyInit()
	return len(a.store)
}

// Extract returns a copy of the contents, exactly Size() long,
// and resets a to an empty array of capacity 1.
func (a *DynamicArray[T]) Extract() []T {
	out := make([]T, a.size)
	copy(out, a.store[:a.size])
	a.store = make([]T, 1)
	a.size = 0
	return out
}

// Display writes the elements as [a,b,c], printing each one with show.
func (a *DynamicArray[T]) Display(w io.Writer, show func(io.Writer, T)) {
	display(w, a.size, func(i int) T { return a.store[i] }, show)
}

// UnionDA moves every element of donor to the back of recipient, in order.
// donor is left empty.
func UnionDA[T any](recipient, donor *DynamicArray[T]) {
	for _, v := range donor.Extract() {
		recipient.Insert(v)
	}
}

func (a *DynamicArray[T]) lazyInit() {
	if len(a.store) == 0 {
		a.store = make([]T, 1)
	}
}

func (a *DynamicArray[T]) shrink() {
	if len(a.store) > 1 && 4*a.size < len(a.store) {
		a.resize(len(a.store) / 2)
	}
}

func (a *DynamicArray[T]) resize(capacity int) {
	store := make([]T, capacity)
	copy(store, a.store[:a.size])
	a.store = store
}

func display[T any](w io.Writer, size int, at func(int) T, show func(io.Writer, T)) {
	_, _ = fmt.Fprint(w, "[")
	for i := 0; i < size; i++ {
		if i > 0 {
			_, _ = fmt.Fprint(w, ",")
		}
		show(w, at(i))
	}
	_, _ = fmt.Fprint(w, "]")
}
