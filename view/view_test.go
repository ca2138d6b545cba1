package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyBufferDefaults(t *testing.T) {
	cfg := Serial()
	b := Compute(cfg, nil, nil, 42.0)

	require.Equal(t, 0.0, b.XMin)
	require.Equal(t, 10.0, b.XMax)
	require.Equal(t, 0.0, b.YMin)
	require.Equal(t, 100.0, b.YMax)
	require.False(t, b.RateOK)
}

func TestXWindowSlides(t *testing.T) {
	cfg := Serial()
	times := []float64{19.0, 19.5, 20.0}
	values := []float64{1, 2, 3}

	b := Compute(cfg, times, values, 20.0)
	require.InDelta(t, 20.5, b.XMax, 1e-9)
	require.InDelta(t, 10.5, b.XMin, 1e-9)
}

func TestXMinClampsAtZero(t *testing.T) {
	cfg := Serial()
	b := Compute(cfg, []float64{0.5}, []float64{1}, 1.0)
	require.Equal(t, 0.0, b.XMin)
	require.InDelta(t, 1.5, b.XMax, 1e-9)
}

func TestMidpointPolicy(t *testing.T) {
	cfg := Serial()
	values := []float64{100, 100, 100, 200}
	times := []float64{0, 1, 2, 3}

	b := Compute(cfg, times, values, 3.0)

	// mid 150, span max(50, 100) = 100
	require.InDelta(t, 150-100/1.8, b.YMin, 1e-9)
	require.InDelta(t, 150+100/1.8, b.YMax, 1e-9)
}

func TestMidpointFloorPreventsCollapse(t *testing.T) {
	cfg := Serial()
	values := []float64{80, 80, 80}
	times := []float64{0, 1, 2}

	b := Compute(cfg, times, values, 2.0)

	require.InDelta(t, 80-50/1.8, b.YMin, 1e-9)
	require.InDelta(t, 80+50/1.8, b.YMax, 1e-9)
	require.Greater(t, b.YMax, b.YMin)
}

func TestPaddingPolicy(t *testing.T) {
	cfg := Camera()
	values := []float64{120, 140, 130}
	times := []float64{0, 0.1, 0.2}

	b := Compute(cfg, times, values, 0.2)

	require.InDelta(t, 110.0, b.YMin, 1e-9)
	require.InDelta(t, 150.0, b.YMax, 1e-9)
}

func TestRateOverSpan(t *testing.T) {
	cfg := Serial()

	// 11 samples spanning exactly 1.0s -> 10 Hz
	times := make([]float64, 11)
	values := make([]float64, 11)
	for i := range times {
		times[i] = float64(i) * 0.1
		values[i] = float64(i)
	}

	b := Compute(cfg, times, values, 1.0)
	require.True(t, b.RateOK)
	require.InDelta(t, 10.0, b.RateHz, 1e-6)
}

func TestRateUnavailableBelowMinimumCount(t *testing.T) {
	cfg := Serial()

	times := make([]float64, 10)
	values := make([]float64, 10)
	for i := range times {
		times[i] = float64(i) * 0.1
	}

	b := Compute(cfg, times, values, 1.0)
	require.False(t, b.RateOK)
}

func TestRateUnavailableOnZeroSpan(t *testing.T) {
	cfg := Serial()

	times := make([]float64, 12)
	values := make([]float64, 12)

	b := Compute(cfg, times, values, 0.0)
	require.False(t, b.RateOK)
}
