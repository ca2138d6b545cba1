package sensing

import (
	"log/slog"
	"strconv"
	"testing"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/lzwang26/stress-sensing-mitigation/source"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// lineSource feeds scripted lines through the decode path, like the
// serial source but without a device.
type lineSource struct {
	lines  []string
	failAt int // fail with a source-level error after this many reads (-1 disables)
	reads  int
	t      float64
	closed int
}

func newLineSource(lines ...string) *lineSource {
	return &lineSource{lines: lines, failAt: -1}
}

func (s *lineSource) HasMore() bool {
	if s.failAt >= 0 && s.reads >= s.failAt {
		return true
	}
	return len(s.lines) > 0
}

func (s *lineSource) ReadOne() (schema.Sample, error) {
	if s.failAt >= 0 && s.reads >= s.failAt {
		return schema.Sample{}, errors.New("device disconnected")
	}
	s.reads++

	line := s.lines[0]
	s.lines = s.lines[1:]

	value, err := strconv.Atoi(line)
	if err != nil {
		return schema.Sample{}, &source.DecodeError{Input: line, Err: err}
	}

	s.t += 0.01
	return schema.Sample{T: s.t, Value: float64(value)}, nil
}

func (s *lineSource) Close() error {
	s.closed++
	return nil
}

func collect(t *testing.T, src source.Source) (samples []schema.Sample, decodeErrs int) {
	t.Helper()
	ingested, decodeErrs, err := Drain(src, func(sample schema.Sample) {
		samples = append(samples, sample)
	}, slog.Default())
	require.NoError(t, err)
	require.Equal(t, len(samples), ingested)
	return samples, decodeErrs
}

func TestDrainIngestsAvailableSamples(t *testing.T) {
	src := newLineSource("10", "20", "30")

	samples, decodeErrs := collect(t, src)
	require.Len(t, samples, 3)
	require.Equal(t, 0, decodeErrs)
	require.Equal(t, 10.0, samples[0].Value)
	require.Equal(t, 30.0, samples[2].Value)
}

func TestDrainSkipsMalformedSamples(t *testing.T) {
	src := newLineSource("12", "oops", "34")

	samples, decodeErrs := collect(t, src)
	require.Len(t, samples, 2)
	require.Equal(t, 1, decodeErrs)
	require.Equal(t, 12.0, samples[0].Value)
	require.Equal(t, 34.0, samples[1].Value)
}

func TestDrainStopsWhenSourceIsDry(t *testing.T) {
	src := newLineSource()

	samples, _ := collect(t, src)
	require.Empty(t, samples)
}

func TestDrainEscalatesSourceFailure(t *testing.T) {
	src := newLineSource("1", "2")
	src.failAt = 2

	var samples []schema.Sample
	ingested, _, err := Drain(src, func(sample schema.Sample) {
		samples = append(samples, sample)
	}, slog.Default())

	require.Error(t, err)
	require.False(t, source.IsDecodeError(err))
	require.Equal(t, 2, ingested)
	require.Len(t, samples, 2)
}

func TestDrainIsBoundedUnderSustainedInput(t *testing.T) {
	lines := make([]string, 2*maxPerDrain)
	for i := range lines {
		lines[i] = strconv.Itoa(i)
	}
	src := newLineSource(lines...)

	count := 0
	ingested, _, err := Drain(src, func(schema.Sample) { count++ }, slog.Default())
	require.NoError(t, err)
	require.Equal(t, maxPerDrain, ingested)
	require.Equal(t, maxPerDrain, count)
}
