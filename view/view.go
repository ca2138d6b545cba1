// Package view derives the rolling display window from the buffer's
// current contents: x-range sliding with wall time, auto-scaled
// y-range, and an averaged sample-rate estimate. Compute is a pure
// function of its inputs and keeps no state between ticks.
package view

import "math"

// YPolicy selects how the y-range is derived from the buffered values.
type YPolicy int

const (
	// YMidpoint centers the range on the midpoint of min/max and
	// spans max(MinRange, max-min)/1.8 on each side. Stable under a
	// noisy baseline with rare large excursions; used for the serial
	// signal.
	YMidpoint YPolicy = iota

	// YPadding is plain min/max with a fixed padding on each side.
	// More responsive; used for the camera intensity signal.
	YPadding
)

type Config struct {
	// Window is the visible span in seconds.
	Window float64

	// XMargin is a cosmetic lookahead past "now" so the newest point
	// isn't flush against the plot edge.
	XMargin float64

	Policy YPolicy

	// MinRange floors the y-range under YMidpoint so the axes don't
	// collapse when the signal is momentarily flat.
	MinRange float64

	// Padding is the fixed y padding under YPadding.
	Padding float64

	// DefaultY is the y-range reported while the buffer is empty.
	DefaultY [2]float64

	// MinRateCount is the sample count that must be exceeded before a
	// rate is reported.
	MinRateCount int
}

// Serial returns the configuration used for the microcontroller
// signal: 10s window, midpoint scaling with a floor of 50 units.
func Serial() Config {
	return Config{
		Window:       10,
		XMargin:      0.5,
		Policy:       YMidpoint,
		MinRange:     50,
		DefaultY:     [2]float64{0, 100},
		MinRateCount: 10,
	}
}

// Camera returns the configuration used for the PPG intensity signal:
// 10s window, fixed ±10 intensity padding.
func Camera() Config {
	return Config{
		Window:       10,
		XMargin:      0.1,
		Policy:       YPadding,
		Padding:      10,
		DefaultY:     [2]float64{0, 100},
		MinRateCount: 10,
	}
}

// Bounds is the derived display window for one tick.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64

	// RateHz is (count-1)/(tLast-tFirst) over the buffer span — an
	// average over the visible window, not an instantaneous rate.
	// Valid only when RateOK is set.
	RateHz float64
	RateOK bool
}

// Compute derives the bounds for the given buffer snapshot at wall
// time now (seconds since acquisition start). times and values are
// parallel, oldest first.
func Compute(cfg Config, times, values []float64, now float64) Bounds {
	b := Bounds{
		XMax: now + cfg.XMargin,
		YMin: cfg.DefaultY[0],
		YMax: cfg.DefaultY[1],
	}
	b.XMin = math.Max(0, b.XMax-cfg.Window)

	if len(values) == 0 {
		b.XMin = 0
		b.XMax = cfg.Window
		return b
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	switch cfg.Policy {
	case YMidpoint:
		mid := (lo + hi) / 2
		span := math.Max(cfg.MinRange, hi-lo)
		b.YMin = mid - span/1.8
		b.YMax = mid + span/1.8
	case YPadding:
		b.YMin = lo - cfg.Padding
		b.YMax = hi + cfg.Padding
	}

	if n := len(times); n > cfg.MinRateCount {
		span := times[n-1] - times[0]
		if span > 0 {
			b.RateHz = float64(n-1) / span
			b.RateOK = true
		}
	}

	return b
}
