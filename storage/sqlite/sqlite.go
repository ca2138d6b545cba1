// Package sqlite records sessions to a sqlite file via gorm. Appends
// are batched through a writer goroutine so the render tick never
// waits on a transaction.
package sqlite

import (
	"crypto/rand"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Series struct {
	Name string `gorm:"primary_key"`
	Unit string
}

type Reading struct {
	ID     []byte `gorm:"primary_key"`
	Series string `gorm:"index;not null"`
	T      float64
	Value  float64
}

type Backend struct {
	db      *gorm.DB
	objects chan Reading
	errCh   chan<- error
}

const flushInterval = 100 * time.Millisecond

// Open opens (creating if needed) the recording database and starts
// the batched writer. Writer failures are reported on errCh.
func Open(filename string, errCh chan<- error) (*Backend, error) {
	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	for _, table := range []any{
		&Series{},
		&Reading{},
	} {
		if err := db.AutoMigrate(table); err != nil {
			return nil, errors.Wrap(err, "migrate")
		}
	}

	b := &Backend{
		db:      db,
		objects: make(chan Reading, 1024),
		errCh:   errCh,
	}
	go b.runWriter()

	return b, nil
}

func randomID() []byte {
	var result [16]byte
	if _, err := rand.Read(result[:]); err != nil {
		panic(err)
	}
	return result[:]
}

func (b *Backend) CreateSeries(seriesNames []string) error {
	for _, name := range seriesNames {
		tx := b.db.Where(Series{Name: name}).FirstOrCreate(&Series{Name: name})
		if tx.Error != nil {
			return errors.Wrap(tx.Error, "create series")
		}
	}
	return nil
}

func (b *Backend) Append(seriesName string, sample schema.Sample) error {
	select {
	case b.objects <- Reading{
		ID:     randomID(),
		Series: seriesName,
		T:      sample.T,
		Value:  sample.Value,
	}:
	default:
		// writer is behind; drop rather than stall the render tick
	}
	return nil
}

func (b *Backend) LoadWindow(seriesName string, start float64) ([]schema.Sample, error) {
	var rows []Reading
	tx := b.db.Where(
		"series = ? and t >= ?",
		seriesName,
		start,
	).Order("t asc").Find(&rows)
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "find")
	}

	result := make([]schema.Sample, len(rows))
	for idx, row := range rows {
		result[idx] = schema.Sample{T: row.T, Value: row.Value}
	}
	return result, nil
}

func (b *Backend) insert(rows []Reading) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if res := tx.Create(&row); res.Error != nil {
				return errors.Wrap(res.Error, "create")
			}
		}
		return nil
	})
}

func (b *Backend) runWriter() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var rows []Reading

	for {
		select {
		case obj := <-b.objects:
			rows = append(rows, obj)
		case <-ticker.C:
			if len(rows) == 0 {
				continue
			}

			err := b.insert(rows)
			rows = nil

			if err != nil {
				b.errCh <- errors.Wrap(err, "transaction")
				return
			}
		}
	}
}
