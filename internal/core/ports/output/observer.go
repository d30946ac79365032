package ports

import "time"

// MediaObserver captures telemetry for pipeline operations.
type MediaObserver interface {
	RecordNormalize(duration time.Duration, sizeBytes int64, fallback bool, err error)
	RecordDocument(duration time.Duration, sizeBytes int64, err error)
	RecordLabel(duration time.Duration, size string, err error)
	RecordDelete(kind string, duration time.Duration, err error)
}

type NopObserver struct{}

func (NopObserver) RecordNormalize(time.Duration, int64, bool, error) {}

func (NopObserver) RecordDocument(time.Duration, int64, error) {}

func (NopObserver) RecordLabel(time.Duration, string, error) {}

func (NopObserver) RecordDelete(string, time.Duration, error) {}
