// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reminders

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry of the reminder engine
type Observer interface {
	// RecordEnqueue is called each time a Pending entry is created
	RecordEnqueue(kind string)
	// RecordDelivery is called after each delivery attempt
	RecordDelivery(kind string, duration time.Duration, err error)
	// RecordSweep is called at the end of each sweep
	RecordSweep(duration time.Duration, due int)
}

// PrometheusObserver exports reminder metrics to Prometheus
type PrometheusObserver struct {
	enqueued         *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	sweepDuration    prometheus.Histogram
	dueEntries       prometheus.Gauge
}

// NewPrometheusObserver registers the reminder metrics on reg, or on the
// default registerer if reg is nil. Already registered metrics are reused.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "crm_reminders"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	enqueued, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enqueued_total",
		Help:      "Count of reminder queue entries created.",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	deliveries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Count of reminder delivery attempts by result.",
	}, []string{"kind", "result"}))
	if err != nil {
		return nil, err
	}
	deliveryDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_duration_seconds",
		Help:      "Latency of reminder deliveries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	sweepDuration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of reminder sweeps.",
		Buckets:   prometheus.DefBuckets,
	}))
	if err != nil {
		return nil, err
	}
	dueEntries, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "due_entries",
		Help:      "Number of due entries found by the last sweep.",
	}))
	if err != nil {
		return nil, err
	}
	return &PrometheusObserver{
		enqueued:         enqueued,
		deliveries:       deliveries,
		deliveryDuration: deliveryDuration,
		sweepDuration:    sweepDuration,
		dueEntries:       dueEntries,
	}, nil
}

// register registers collector on reg and returns the collector
// already registered with the same description if any.
func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, errors.Wrap(err, "register reminder metric")
	}
	return collector, nil
}

// RecordEnqueue counts a created Pending entry
func (o *PrometheusObserver) RecordEnqueue(kind string) {
	if o == nil {
		return
	}
	o.enqueued.WithLabelValues(kind).Inc()
}

// RecordDelivery tracks delivery duration and result
func (o *PrometheusObserver) RecordDelivery(kind string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.deliveryDuration.WithLabelValues(kind).Observe(duration.Seconds())
	result := "sent"
	if err != nil {
		result = "failed"
	}
	o.deliveries.WithLabelValues(kind, result).Inc()
}

// RecordSweep tracks sweep duration and due entries
func (o *PrometheusObserver) RecordSweep(duration time.Duration, due int) {
	if o == nil {
		return
	}
	o.sweepDuration.Observe(duration.Seconds())
	o.dueEntries.Set(float64(due))
}

type nopObserver struct{}

func (nopObserver) RecordEnqueue(string) {}

func (nopObserver) RecordDelivery(string, time.Duration, error) {}

func (nopObserver) RecordSweep(time.Duration, int) {}

var _ Observer = new(PrometheusObserver)
var _ Observer = nopObserver{}
