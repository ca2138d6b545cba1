package schema

import "fmt"

// Sample is one scalar reading. T is seconds since acquisition start;
// t=0 is fixed at the first successful read of the run.
type Sample struct {
	T     float64
	Value float64
}

// Frame is the per-tick snapshot handed to display surfaces and
// published on the broker. Times and Values are copies of the buffer
// contents; subscribers never see the live buffer.
type Frame struct {
	Series string    `json:"series"`
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`

	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`

	// RateHz is the averaged sample rate over the buffer span, valid
	// only when RateOK is set.
	RateHz float64 `json:"rateHz"`
	RateOK bool    `json:"rateOk"`

	// DecodeErrors counts malformed samples skipped since the run
	// started.
	DecodeErrors uint64 `json:"decodeErrors"`
}

// RateLabel renders the rate for plot titles, e.g. "48.7 Hz".
func (f *Frame) RateLabel() string {
	if !f.RateOK {
		return "-- Hz"
	}
	return fmt.Sprintf("%.1f Hz", f.RateHz)
}
