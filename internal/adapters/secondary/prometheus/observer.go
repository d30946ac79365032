package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ports "inventory-media-service/internal/core/ports/output"
)

const defaultNamespace = "inventory_media"

// Observer exports pipeline metrics.
type Observer struct {
	duration  *prom.HistogramVec
	errors    *prom.CounterVec
	written   *prom.CounterVec
	fallbacks prom.Counter
}

var _ ports.MediaObserver = (*Observer)(nil)

func NewObserver(namespace string, reg prom.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	o := &Observer{
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of media pipeline operations.",
			Buckets:   prom.DefBuckets,
		}, []string{"operation", "kind"}),
		errors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed media pipeline operations.",
		}, []string{"operation", "kind"}),
		written: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "written_bytes_total",
			Help:      "Bytes of artifacts written to storage.",
		}, []string{"kind"}),
		fallbacks: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "image_raw_fallback_total",
			Help:      "Images stored as raw copies because they could not be decoded.",
		}),
	}

	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	if o.errors, err = register(reg, o.errors); err != nil {
		return nil, err
	}
	if o.written, err = register(reg, o.written); err != nil {
		return nil, err
	}
	if o.fallbacks, err = register(reg, o.fallbacks); err != nil {
		return nil, err
	}
	return o, nil
}

// register returns the already registered collector when the same metric was
// registered before, e.g. by a second observer in tests.
func register[C prom.Collector](reg prom.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prom.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register media metric: %w", err)
	}
	return c, nil
}

func (o *Observer) RecordNormalize(d time.Duration, sizeBytes int64, fallback bool, err error) {
	if o == nil {
		return
	}
	o.record("normalize", "image", d, err)
	if err != nil {
		return
	}
	o.written.WithLabelValues("image").Add(float64(sizeBytes))
	if fallback {
		o.fallbacks.Inc()
	}
}

func (o *Observer) RecordDocument(d time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.record("document", "document", d, err)
	if err == nil {
		o.written.WithLabelValues("document").Add(float64(sizeBytes))
	}
}

func (o *Observer) RecordLabel(d time.Duration, size string, err error) {
	o.record("label", size, d, err)
}

func (o *Observer) RecordDelete(kind string, d time.Duration, err error) {
	o.record("delete", kind, d, err)
}

func (o *Observer) record(op, kind string, d time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op, kind).Observe(d.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op, kind).Inc()
	}
}
