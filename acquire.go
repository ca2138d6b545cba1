package sensing

import (
	"log/slog"

	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/lzwang26/stress-sensing-mitigation/source"
)

// maxPerDrain bounds a single drain under sustained input. At the
// highest expected sample rates (a few hundred Hz) a 10ms tick sees a
// handful of samples, so the cap only matters when a source floods
// after a stall.
const maxPerDrain = 512

// Drain pulls every sample currently available from src and hands it
// to ingest, stopping as soon as the source reports no more data (or
// the per-drain cap is hit). A malformed sample is logged, counted,
// and skipped; it never aborts the drain and nothing is ingested for
// it. Any other read error means the source itself has failed and is
// returned to the caller.
func Drain(
	src source.Source,
	ingest func(schema.Sample),
	logger *slog.Logger,
) (ingested int, decodeErrors int, err error) {
	for i := 0; i < maxPerDrain && src.HasMore(); i++ {
		sample, err := src.ReadOne()
		if err != nil {
			if source.IsDecodeError(err) {
				decodeErrors++
				logger.Warn("skipping malformed sample", "err", err)
				continue
			}
			return ingested, decodeErrors, err
		}

		ingest(sample)
		ingested++
	}

	return ingested, decodeErrors, nil
}
