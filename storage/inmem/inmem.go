package inmem

import (
	"sync"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
)

// Backend keeps recorded samples in memory. Used in tests and for
// websocket backfill on short-lived runs.
type Backend struct {
	lock   sync.Mutex
	values map[string][]schema.Sample
}

func NewBackend() *Backend {
	return &Backend{
		values: map[string][]schema.Sample{},
	}
}

func (b *Backend) CreateSeries(seriesNames []string) error {
	return nil
}

func (b *Backend) Append(seriesName string, sample schema.Sample) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.values[seriesName] = append(b.values[seriesName], sample)
	return nil
}

func (b *Backend) LoadWindow(seriesName string, start float64) ([]schema.Sample, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	var result []schema.Sample
	for _, sample := range b.values[seriesName] {
		if sample.T < start {
			continue
		}
		result = append(result, sample)
	}
	return result, nil
}
