package buffer

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contents[T any](t *testing.T, b *CircularBuffer[T]) []T {
	t.Helper()
	out := make([]T, 0, b.Size())
	for i := 0; i < b.Size(); i++ {
		v, err := b.Get(i)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestCircularBuffer_FrontBackOrder(t *testing.T) {
	b := NewCircularBuffer[int]()

	b.InsertBack(2)
	b.InsertFront(1)
	b.InsertBack(3)
	b.InsertFront(0)
	b.InsertBack(4)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, contents(t, b))

	v, err := b.RemoveFront()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	v, err = b.RemoveBack()
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, []int{1, 2, 3}, contents(t, b))
}

func TestCircularBuffer_RemoveEmpty(t *testing.T) {
	b := NewCircularBuffer[int]()

	_, err := b.RemoveFront()
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = b.RemoveBack()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCircularBuffer_Set(t *testing.T) {
	b := NewCircularBuffer[int]()

	require.NoError(t, b.Set(0, 5))  // back
	require.NoError(t, b.Set(-1, 4)) // front
	require.NoError(t, b.Set(2, 6))  // back
	require.NoError(t, b.Set(1, 50))

	assert.Equal(t, []int{4, 50, 6}, contents(t, b))
	assert.ErrorIs(t, b.Set(4, 0), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.Set(-2, 0), ErrIndexOutOfRange)
	_, err := b.Get(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

// Mirrors every operation on a plain slice and compares after each step.
func TestCircularBuffer_RandomOpsMatchDeque(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	b := NewCircularBuffer[int]()
	var want []int
	inserts, removes := 0, 0

	for step := 0; step < 5000; step++ {
		switch op := rnd.Intn(5); {
		case op == 0:
			b.InsertFront(step)
			want = append([]int{step}, want...)
			inserts++
		case op == 1 || op == 2:
			b.InsertBack(step)
			want = append(want, step)
			inserts++
		case op == 3:
			v, err := b.RemoveFront()
			if len(want) == 0 {
				assert.ErrorIs(t, err, ErrOutOfBounds)
				break
			}
			require.NoError(t, err)
			assert.Equal(t, want[0], v)
			want = want[1:]
			removes++
		default:
			v, err := b.RemoveBack()
			if len(want) == 0 {
				assert.ErrorIs(t, err, ErrOutOfBounds)
				break
			}
			require.NoError(t, err)
			assert.Equal(t, want[len(want)-1], v)
			want = want[:len(want)-1]
			removes++
		}

		require.Equal(t, inserts-removes, b.Size())
		require.GreaterOrEqual(t, b.Capacity(), 1)
		require.GreaterOrEqual(t, b.Capacity(), b.Size())
		if step%97 == 0 {
			for i, w := range want {
				v, err := b.Get(i)
				require.NoError(t, err)
				require.Equal(t, w, v)
			}
		}
	}
}

func TestCircularBuffer_GrowthIsLogarithmic(t *testing.T) {
	b := NewCircularBuffer[int]()
	resizes := 0
	last := b.Capacity()

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			b.InsertFront(i)
		} else {
			b.InsertBack(i)
		}
		if c := b.Capacity(); c != last {
			resizes++
			last = c
		}
	}
	assert.Equal(t, 10, resizes) // 1 -> 1024
	assert.Equal(t, 1024, b.Capacity())

	for b.Size() > 0 {
		_, err := b.RemoveFront()
		require.NoError(t, err)
		assert.LessOrEqual(t, b.Capacity(), 4*(b.Size()+1))
	}
}

func TestCircularBuffer_ResizeKeepsWrappedOrder(t *testing.T) {
	b := NewCircularBuffer[int]()
	for i := 0; i < 4; i++ {
		b.InsertBack(i)
	}
	// front now sits mid ring
	_, _ = b.RemoveFront()
	_, _ = b.RemoveFront()
	b.InsertBack(4)
	b.InsertBack(5)
	require.Equal(t, 4, b.Capacity())

	b.InsertBack(6) // forces a resize while wrapped

	assert.Equal(t, 8, b.Capacity())
	assert.Equal(t, []int{2, 3, 4, 5, 6}, contents(t, b))
}

func TestCircularBuffer_ExtractRoundTrip(t *testing.T) {
	b := NewCircularBuffer[string]()
	for _, s := range []string{"c", "d", "e"} {
		b.InsertBack(s)
	}
	b.InsertFront("b")
	b.InsertFront("a")
	before := contents(t, b)

	got := b.Extract()
	assert.Equal(t, before, got)
	assert.Len(t, got, 5)
	assert.Equal(t, 0, b.Size())
	assert.Equal(t, 1, b.Capacity())

	for _, s := range got {
		b.InsertBack(s)
	}
	assert.Equal(t, before, contents(t, b))
}

func TestUnionCDA(t *testing.T) {
	recipient := NewCircularBuffer[int]()
	donor := NewCircularBuffer[int]()
	recipient.InsertBack(1)
	donor.InsertBack(3)
	donor.InsertFront(2)

	UnionCDA(recipient, donor)

	assert.Equal(t, []int{1, 2, 3}, contents(t, recipient))
	assert.Equal(t, 0, donor.Size())
	assert.Equal(t, 1, donor.Capacity())
}

func TestCircularBuffer_Display(t *testing.T) {
	b := NewCircularBuffer[int]()
	var buf bytes.Buffer

	b.Display(&buf, showInt)
	assert.Equal(t, "[]", buf.String())

	buf.Reset()
	b.InsertBack(2)
	b.InsertFront(1)
	b.Display(&buf, showInt)
	assert.Equal(t, "[1,2]", buf.String())
}
