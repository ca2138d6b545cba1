package buffer

import (
	"testing"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/stretchr/testify/require"
)

func sampleN(i int) schema.Sample {
	return schema.Sample{T: float64(i) * 0.01, Value: float64(i)}
}

func TestAppendNeverExceedsCapacity(t *testing.T) {
	b := New(10)
	for i := 0; i < 100; i++ {
		b.Append(sampleN(i))
		require.LessOrEqual(t, b.Len(), 10)
	}
	require.Equal(t, 10, b.Len())
}

func TestOldestRetainedIndex(t *testing.T) {
	b := New(7)
	for i := 0; i < 25; i++ {
		b.Append(sampleN(i))

		first, ok := b.First()
		require.True(t, ok)

		wantOldest := i + 1 - 7
		if wantOldest < 0 {
			wantOldest = 0
		}
		require.Equal(t, float64(wantOldest), first.Value)
	}
}

func TestEvictionKeepsNewestInOrder(t *testing.T) {
	b := New(500)
	for i := 0; i < 1500; i++ {
		b.Append(sampleN(i))
	}

	require.Equal(t, 500, b.Len())

	times, values := b.Snapshot()
	require.Len(t, times, 500)
	for i := 0; i < 500; i++ {
		require.Equal(t, float64(1000+i), values[i])
	}
	for i := 1; i < 500; i++ {
		require.GreaterOrEqual(t, times[i], times[i-1])
	}
}

func TestEmptyBuffer(t *testing.T) {
	b := New(5)

	require.Equal(t, 0, b.Len())
	require.Equal(t, 5, b.Cap())

	_, ok := b.First()
	require.False(t, ok)
	_, ok = b.Last()
	require.False(t, ok)

	times, values := b.Snapshot()
	require.Nil(t, times)
	require.Nil(t, values)
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New(5)
	b.Append(sampleN(0))
	b.Append(sampleN(1))

	times, values := b.Snapshot()
	times[0] = -1
	values[0] = -1

	again, vAgain := b.Snapshot()
	require.Equal(t, 0.0, again[0])
	require.Equal(t, 0.0, vAgain[0])
}

func TestZeroCapacityPanics(t *testing.T) {
	require.Panics(t, func() { New(0) })
}
