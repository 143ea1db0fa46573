package sendmail

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Delivery results recorded in the sendmail_deliveries_total result label.
const (
	ResultSuccess     = "success"
	ResultSpawnError  = "spawn_error"
	ResultWriteError  = "write_error"
	ResultTempFailure = "temp_failure"
	ResultFailure     = "failure"
)

// Metrics records delivery attempts made through an instrumented Runner.
type Metrics struct {
	deliveriesTotal  *prometheus.CounterVec
	deliveryDuration prometheus.Histogram
	recipients       prometheus.Histogram
}

// NewMetrics creates the delivery metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sendmail_deliveries_total",
			Help: "Total number of messages handed to the MTA, by result.",
		}, []string{"result"}),
		deliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sendmail_delivery_duration_seconds",
			Help:    "Time from starting the MTA until it exited.",
			Buckets: prometheus.DefBuckets,
		}),
		recipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sendmail_delivery_recipients",
			Help:    "Number of envelope recipients per delivery.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
	}

	reg.MustRegister(
		m.deliveriesTotal,
		m.deliveryDuration,
		m.recipients,
	)

	return m
}

// Instrument wraps next so every Run is counted and timed.
func (m *Metrics) Instrument(next Runner) Runner {
	return RunnerFunc(func(ctx context.Context, c *Command, body io.Reader) error {
		start := time.Now()
		err := next.Run(ctx, c, body)

		m.deliveryDuration.Observe(time.Since(start).Seconds())
		m.deliveriesTotal.WithLabelValues(Result(err)).Inc()
		if n := len(c.Envelope) - 3; n > 0 {
			m.recipients.Observe(float64(n))
		}

		return err
	})
}

// Result classifies an error returned by a Runner into one of the Result*
// constants.
func Result(err error) string {
	var (
		spawnErr *SpawnError
		writeErr *WriteError
		exitErr  *ExitError
	)

	switch {
	case err == nil:
		return ResultSuccess
	case errors.As(err, &spawnErr):
		return ResultSpawnError
	case errors.As(err, &exitErr) && exitErr.Temporary():
		return ResultTempFailure
	case errors.As(err, &writeErr):
		return ResultWriteError
	default:
		return ResultFailure
	}
}
