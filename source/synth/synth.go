// Package synth generates a synthetic signal for demos and manual
// testing when no sensor hardware is attached: a sine carrier with
// random jitter, paced like a real device.
package synth

import (
	"math"
	"math/rand"
	"time"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
)

type Source struct {
	clock       func() time.Time
	minInterval time.Duration

	epoch    time.Time
	started  bool
	closed   bool
	lastRead time.Time
}

// New returns a source producing roughly rateHz samples per second.
func New(rateHz float64) *Source {
	return newSource(time.Now, time.Duration(float64(time.Second)/rateHz))
}

func newSource(clock func() time.Time, minInterval time.Duration) *Source {
	return &Source{
		clock:       clock,
		minInterval: minInterval,
	}
}

func (s *Source) HasMore() bool {
	if s.closed {
		return false
	}
	return s.clock().Sub(s.lastRead) >= s.minInterval
}

func (s *Source) ReadOne() (schema.Sample, error) {
	now := s.clock()
	s.lastRead = now
	if !s.started {
		s.epoch = now
		s.started = true
	}

	t := now.Sub(s.epoch).Seconds()
	value := 512 + 200*math.Sin(2*math.Pi*1.2*t) + 20*(rand.Float64()-0.5)

	return schema.Sample{T: t, Value: value}, nil
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}
