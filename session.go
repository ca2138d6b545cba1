// Package sensing ties one sample source, a bounded buffer, and the
// rolling-window view into a render loop driven by a fixed-interval
// tick. Samples are polled synchronously inside each tick; the buffer
// is owned and mutated only by the tick loop, so it needs no locking.
package sensing

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lzwang26/stress-sensing-mitigation/broker"
	"github.com/lzwang26/stress-sensing-mitigation/buffer"
	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/lzwang26/stress-sensing-mitigation/source"
	"github.com/lzwang26/stress-sensing-mitigation/storage"
	"github.com/lzwang26/stress-sensing-mitigation/view"
	"github.com/pkg/errors"
)

// State is the run lifecycle. Every run passes through Closing before
// Closed, including runs ended by a mid-tick failure.
type State int32

const (
	StateIdle State = iota
	StateAcquiring
	StateRunning
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Surface renders one frame. Update is called at most once per tick.
// The frame and its slices are immutable snapshots.
type Surface interface {
	Update(frame *schema.Frame) error
}

// DefaultInterval is the render tick period.
const DefaultInterval = 10 * time.Millisecond

type Config struct {
	// Series names the signal, e.g. "gsr" or "ppg".
	Series string

	// Capacity of the sample buffer.
	Capacity int

	// Interval between render ticks. Defaults to DefaultInterval.
	Interval time.Duration

	View view.Config
}

// Session owns one acquisition run: source, buffer, view computation,
// and the tick loop that drives them.
type Session struct {
	cfg      Config
	src      source.Source
	buf      *buffer.Buffer
	broker   *broker.Broker[*schema.Frame]
	surfaces []Surface
	recorder storage.Backend
	logger   *slog.Logger
	clock    func() time.Time

	state     atomic.Int32
	stopCh    chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once

	latest       atomic.Pointer[schema.Frame]
	decodeErrors uint64

	// epoch aligns the session clock with the source's sample
	// timestamps; fixed when the first sample arrives.
	epoch   time.Time
	started bool
}

// NewSession wires a session around an already-opened source. br is
// shared with any display servers subscribing to frames; the session
// publishes but does not own it.
func NewSession(
	cfg Config,
	src source.Source,
	br *broker.Broker[*schema.Frame],
	logger *slog.Logger,
) *Session {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}

	return &Session{
		cfg:    cfg,
		src:    src,
		buf:    buffer.New(cfg.Capacity),
		broker: br,
		logger: logger.With("series", cfg.Series),
		clock:  time.Now,
		stopCh: make(chan struct{}),
	}
}

// AttachSurface adds a display surface. Must be called before Run.
func (s *Session) AttachSurface(surface Surface) {
	s.surfaces = append(s.surfaces, surface)
}

// SetRecorder enables recording of drained samples. Must be called
// before Run.
func (s *Session) SetRecorder(backend storage.Backend) {
	s.recorder = backend
}

func (s *Session) Series() string {
	return s.cfg.Series
}

func (s *Session) Recorder() storage.Backend {
	return s.recorder
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Latest returns the most recently published frame, or nil before the
// first tick.
func (s *Session) Latest() *schema.Frame {
	return s.latest.Load()
}

// Stop requests a cooperative shutdown. Safe to call from any
// goroutine, any number of times; the tick loop observes it at the
// next tick boundary.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Run drives the tick loop until Stop is called or a fatal error
// occurs. The source is released exactly once on the way out, even
// when the loop exits via an error.
func (s *Session) Run() error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateAcquiring)) {
		return errors.New("session already started")
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	defer s.close()

	s.state.Store(int32(StateRunning))
	s.logger.Info("session running", "interval", s.cfg.Interval, "capacity", s.cfg.Capacity)

	for {
		select {
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			if err := s.tick(); err != nil {
				return err
			}
		}
	}
}

// close performs Closing -> Closed, releasing the source exactly once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))
		if err := s.src.Close(); err != nil {
			s.logger.Error("closing source", "err", err)
		}
		s.state.Store(int32(StateClosed))
		s.logger.Info("session closed")
	})
}

func (s *Session) ingest(sample schema.Sample) {
	if !s.started {
		// align wall clock with the source's time axis
		s.epoch = s.clock().Add(-time.Duration(sample.T * float64(time.Second)))
		s.started = true
	}

	s.buf.Append(sample)

	if s.recorder != nil {
		if err := s.recorder.Append(s.cfg.Series, sample); err != nil {
			s.logger.Warn("recording sample", "err", err)
		}
	}
}

// now returns the current time on the sample axis (seconds since
// acquisition start), or 0 before the first sample.
func (s *Session) now() float64 {
	if !s.started {
		return 0
	}
	return s.clock().Sub(s.epoch).Seconds()
}

func (s *Session) tick() error {
	_, decodeErrs, err := Drain(s.src, s.ingest, s.logger)
	s.decodeErrors += uint64(decodeErrs)
	if err != nil {
		// device gone; the run cannot continue
		return errors.Wrap(err, "acquisition failed")
	}

	times, values := s.buf.Snapshot()
	bounds := view.Compute(s.cfg.View, times, values, s.now())

	frame := &schema.Frame{
		Series:       s.cfg.Series,
		Times:        times,
		Values:       values,
		XMin:         bounds.XMin,
		XMax:         bounds.XMax,
		YMin:         bounds.YMin,
		YMax:         bounds.YMax,
		RateHz:       bounds.RateHz,
		RateOK:       bounds.RateOK,
		DecodeErrors: s.decodeErrors,
	}

	s.latest.Store(frame)
	if s.broker != nil {
		s.broker.Publish(frame)
	}

	for _, surface := range s.surfaces {
		if err := surface.Update(frame); err != nil {
			return errors.Wrap(err, "display failed")
		}
	}

	return nil
}
