package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLoad(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoad("cancer", 2*time.Second, nil)
	m.ObserveLoad("cancer", time.Second, errors.New("boom"))
	m.CacheHit("cancer")
	m.CacheHit("cancer")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("cancer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("cancer", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("cancer")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.loadDuration))
}

func TestObservePass(t *testing.T) {
	m := New(nil)

	m.ObservePass("survey", 5*time.Millisecond, 42, true, nil)
	m.ObservePass("survey", time.Millisecond, 0, false, errors.New("unknown column"))

	assert.Equal(t, 42.0, testutil.ToFloat64(m.subsetRows.WithLabelValues("survey")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notices.WithLabelValues("survey")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues("survey", "error")))
}

func TestRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })

	families, err := reg.Gather()
	require.NoError(t, err)
	// vectors without observations export no families yet
	assert.Empty(t, families)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad("cancer", time.Second, nil)
		m.CacheHit("cancer")
		m.ObservePass("cancer", time.Second, 1, true, nil)
	})
}
