package prometheus

import (
	"errors"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_RecordNormalize(t *testing.T) {
	reg := prom.NewRegistry()
	o, err := NewObserver("test", reg)
	require.NoError(t, err)

	o.RecordNormalize(10*time.Millisecond, 2048, false, nil)
	o.RecordNormalize(5*time.Millisecond, 100, true, nil)
	o.RecordNormalize(time.Millisecond, 0, false, errors.New("disk full"))

	assert.Equal(t, float64(2148), testutil.ToFloat64(o.written.WithLabelValues("image")))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.fallbacks))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.errors.WithLabelValues("normalize", "image")))
}

func TestObserver_RecordDeleteAndLabel(t *testing.T) {
	reg := prom.NewRegistry()
	o, err := NewObserver("test", reg)
	require.NoError(t, err)

	o.RecordDelete("document", time.Millisecond, nil)
	o.RecordLabel(time.Millisecond, "small", errors.New("boom"))

	assert.Equal(t, float64(0), testutil.ToFloat64(o.errors.WithLabelValues("delete", "document")))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.errors.WithLabelValues("label", "small")))
}

func TestNewObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewObserver("test", reg)
	require.NoError(t, err)
	second, err := NewObserver("test", reg)
	require.NoError(t, err)

	second.RecordDocument(time.Millisecond, 10, nil)
	assert.Equal(t, float64(10), testutil.ToFloat64(first.written.WithLabelValues("document")))
}

func TestObserver_NilIsSafe(t *testing.T) {
	var o *Observer
	assert.NotPanics(t, func() {
		o.RecordDelete("image", time.Millisecond, nil)
	})
}
