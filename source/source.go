// Package source defines the capability contract for sample producers
// and the error taxonomy for acquisition failures.
package source

import (
	"fmt"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/pkg/errors"
)

// Source produces timestamped scalar samples on demand. Acquisition is
// polled, never pushed: the render loop calls HasMore/ReadOne once per
// tick until no more data is immediately available.
type Source interface {
	// HasMore reports whether a sample is immediately available. It
	// may perform at most one short, bounded read attempt against the
	// underlying device.
	HasMore() bool

	// ReadOne pulls and parses exactly one sample. It must not block
	// beyond a small fixed timeout. A malformed reading is returned
	// as *DecodeError; any other error means the device itself has
	// failed.
	ReadOne() (schema.Sample, error)

	// Close releases the underlying device. Idempotent.
	Close() error
}

// ErrNoDevice means no acquisition device could be found. Fatal to
// starting a run; reported once, the run never starts.
var ErrNoDevice = errors.New("no acquisition device found")

// DecodeError is one malformed sample. Recovered locally: the drain
// logs it, counts it, and moves on without touching the buffer.
type DecodeError struct {
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Input, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a per-sample decode failure, as
// opposed to a source-level one.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
