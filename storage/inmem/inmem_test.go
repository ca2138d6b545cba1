package inmem

import (
	"testing"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/stretchr/testify/require"
)

func TestLoadWindowFiltersByStart(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.CreateSeries([]string{"gsr"}))

	for i := 0; i < 10; i++ {
		err := b.Append("gsr", schema.Sample{T: float64(i), Value: float64(i * 10)})
		require.NoError(t, err)
	}

	window, err := b.LoadWindow("gsr", 6)
	require.NoError(t, err)
	require.Len(t, window, 4)
	require.Equal(t, 6.0, window[0].T)
	require.Equal(t, 9.0, window[3].T)
}

func TestLoadWindowUnknownSeries(t *testing.T) {
	b := NewBackend()

	window, err := b.LoadWindow("missing", 0)
	require.NoError(t, err)
	require.Empty(t, window)
}
