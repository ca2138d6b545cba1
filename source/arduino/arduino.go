// Package arduino reads the line-oriented serial protocol spoken by
// the sensing microcontroller: one decimal integer per line at 115200
// baud. It also locates the device by matching USB port metadata
// against known controller identifiers.
package arduino

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/lzwang26/stress-sensing-mitigation/source"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	BaudRate = 115200

	// ReadTimeout keeps the per-tick read attempt short so the render
	// loop stays responsive.
	ReadTimeout = 10 * time.Millisecond
)

// Identifiers seen in port descriptions for the supported controllers
// (vendor chips and USB-serial drivers).
var descriptionHints = []string{
	"arduino",
	"ch340",
	"usb serial",
	"usb2.0-serial",
	"usb2.0-s",
	"iobusbhostdevice",
}

// Device-name fragments used by USB-serial drivers.
var deviceHints = []string{
	"usbmodem",
	"usbserial",
	"tty.usbmodem",
	"tty.usbserial",
}

func matchPort(device, description string) bool {
	device = strings.ToLower(device)
	description = strings.ToLower(description)

	for _, hint := range descriptionHints {
		if strings.Contains(description, hint) {
			return true
		}
	}
	for _, hint := range deviceHints {
		if strings.Contains(device, hint) {
			return true
		}
	}
	return false
}

// Discover enumerates serial ports and returns the device name of the
// first one matching the controller allow-list. Returns
// source.ErrNoDevice when nothing matches.
func Discover() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", errors.Wrap(err, "list ports")
	}

	for _, port := range ports {
		if matchPort(port.Name, port.Product) {
			return port.Name, nil
		}
	}

	return "", source.ErrNoDevice
}

// Source decodes samples from a serial port. It buffers partial lines
// between reads; each HasMore miss performs at most one bounded read.
type Source struct {
	port    io.ReadCloser
	clock   func() time.Time
	epoch   time.Time
	started bool
	closed  bool

	pending []byte
	lines   []string
	failed  error
}

// Open connects to the named port. Use Discover (or OpenAuto) to find
// the port name.
func Open(portName string) (*Source, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: BaudRate})
	if err != nil {
		return nil, errors.Wrapf(err, "open port %s", portName)
	}

	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		_ = port.Close()
		return nil, errors.Wrap(err, "set read timeout")
	}
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, errors.Wrap(err, "reset input buffer")
	}

	return newSource(port, time.Now), nil
}

// OpenAuto discovers the controller and connects to it.
func OpenAuto() (*Source, error) {
	portName, err := Discover()
	if err != nil {
		return nil, err
	}
	return Open(portName)
}

func newSource(port io.ReadCloser, clock func() time.Time) *Source {
	return &Source{
		port:  port,
		clock: clock,
	}
}

func (s *Source) HasMore() bool {
	if s.closed {
		return false
	}
	if len(s.lines) == 0 && s.failed == nil {
		s.fill()
	}
	// a pending failure must be surfaced through ReadOne
	return len(s.lines) > 0 || s.failed != nil
}

// fill performs one bounded read and splits any complete lines off the
// pending byte buffer.
func (s *Source) fill() {
	buf := make([]byte, 4096)
	n, err := s.port.Read(buf)
	if err != nil && err != io.EOF {
		s.failed = errors.Wrap(err, "read port")
		return
	}
	if err == io.EOF {
		s.failed = errors.New("port closed by device")
		return
	}
	if n == 0 {
		// read timeout, nothing available this tick
		return
	}

	s.pending = append(s.pending, buf[:n]...)
	for {
		idx := bytes.IndexByte(s.pending, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSpace(string(s.pending[:idx]))
		s.pending = s.pending[idx+1:]
		if line != "" {
			s.lines = append(s.lines, line)
		}
	}
}

func (s *Source) ReadOne() (schema.Sample, error) {
	if len(s.lines) == 0 {
		if s.failed != nil {
			return schema.Sample{}, s.failed
		}
		return schema.Sample{}, errors.New("no sample available")
	}

	line := s.lines[0]
	s.lines = s.lines[1:]

	value, err := strconv.Atoi(line)
	if err != nil {
		return schema.Sample{}, &source.DecodeError{Input: line, Err: err}
	}

	now := s.clock()
	if !s.started {
		s.epoch = now
		s.started = true
	}

	return schema.Sample{
		T:     now.Sub(s.epoch).Seconds(),
		Value: float64(value),
	}, nil
}

func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
