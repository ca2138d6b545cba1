package sensing

import (
	"log/slog"

	"github.com/lzwang26/stress-sensing-mitigation/broker"
	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/prometheus/client_golang/prometheus"
)

type seriesMetrics struct {
	lastValue    prometheus.Gauge
	rateHz       prometheus.Gauge
	bufferLen    prometheus.Gauge
	decodeErrors prometheus.Gauge
}

// PublishMetrics mirrors broker frames into prometheus gauges, one
// set per series, registered on first sight. Runs until the broker
// stops. Served by the Server's /metrics endpoint.
func PublishMetrics(br *broker.Broker[*schema.Frame], logger *slog.Logger) {
	metricMap := map[string]*seriesMetrics{}

	msgCh := br.Subscribe()
	defer br.Unsubscribe(msgCh)

	for frame := range msgCh {
		m, ok := metricMap[frame.Series]
		if !ok {
			m = newSeriesMetrics(frame.Series)
			metricMap[frame.Series] = m

			for _, g := range []prometheus.Gauge{
				m.lastValue, m.rateHz, m.bufferLen, m.decodeErrors,
			} {
				if err := prometheus.Register(g); err != nil {
					logger.Error("register prometheus metric", "err", err)
				}
			}
		}

		if n := len(frame.Values); n > 0 {
			m.lastValue.Set(frame.Values[n-1])
		}
		if frame.RateOK {
			m.rateHz.Set(frame.RateHz)
		}
		m.bufferLen.Set(float64(len(frame.Values)))
		m.decodeErrors.Set(float64(frame.DecodeErrors))
	}
}

func newSeriesMetrics(series string) *seriesMetrics {
	labels := prometheus.Labels{"series": series}
	return &seriesMetrics{
		lastValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "sensing_last_value",
			Help:        "Most recent sample value.",
			ConstLabels: labels,
		}),
		rateHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "sensing_rate_hz",
			Help:        "Averaged sample rate over the visible window.",
			ConstLabels: labels,
		}),
		bufferLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "sensing_buffer_len",
			Help:        "Samples currently buffered.",
			ConstLabels: labels,
		}),
		decodeErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "sensing_decode_errors_total",
			Help:        "Malformed samples skipped since the run started.",
			ConstLabels: labels,
		}),
	}
}
