// Package storage defines the optional recording backend. The render
// pipeline never requires one; when configured, drained samples are
// handed to the backend as copies and the web surface uses it to
// backfill new subscribers.
package storage

import "github.com/lzwang26/stress-sensing-mitigation/schema"

type Backend interface {
	CreateSeries(seriesNames []string) error

	// Append records one sample for the named series. Implementations
	// may batch; Append must not block the caller for long.
	Append(seriesName string, sample schema.Sample) error

	// LoadWindow returns the samples with T >= start, in time order.
	LoadWindow(seriesName string, start float64) ([]schema.Sample, error)
}
