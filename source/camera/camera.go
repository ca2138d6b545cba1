// Package camera derives a PPG proxy signal from video frames: each
// frame is reduced to the mean intensity of its red channel, which
// tracks blood-volume-driven absorption changes in skin.
package camera

import (
	"time"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/pkg/errors"
)

// Grabber captures one frame and reduces it to a scalar. Frame pacing
// is determined by the device, not by the caller; Grab may block until
// the next frame arrives.
type Grabber interface {
	Grab() (float64, error)
	Close() error
}

// DefaultMinInterval spaces frame grabs so a drain cannot spin on the
// camera faster than frames can plausibly arrive (40 Hz ceiling).
const DefaultMinInterval = 25 * time.Millisecond

// Source adapts a Grabber to the polled sample-source contract.
// Availability is gated on a minimum inter-grab interval, so a drain
// consumes at most the frames that have had time to arrive.
type Source struct {
	grabber     Grabber
	clock       func() time.Time
	minInterval time.Duration

	epoch    time.Time
	started  bool
	closed   bool
	lastGrab time.Time
}

func NewSource(grabber Grabber) *Source {
	return newSource(grabber, time.Now, DefaultMinInterval)
}

func newSource(grabber Grabber, clock func() time.Time, minInterval time.Duration) *Source {
	return &Source{
		grabber:     grabber,
		clock:       clock,
		minInterval: minInterval,
	}
}

func (s *Source) HasMore() bool {
	if s.closed {
		return false
	}
	return s.clock().Sub(s.lastGrab) >= s.minInterval
}

func (s *Source) ReadOne() (schema.Sample, error) {
	value, err := s.grabber.Grab()
	if err != nil {
		return schema.Sample{}, errors.Wrap(err, "grab frame")
	}

	now := s.clock()
	s.lastGrab = now
	if !s.started {
		s.epoch = now
		s.started = true
	}

	return schema.Sample{
		T:     now.Sub(s.epoch).Seconds(),
		Value: value,
	}, nil
}

func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.grabber.Close()
}
