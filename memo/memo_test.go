package memo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spektr-org/vizdash/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *counter) load(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []string{"Austria", "Spain"}, nil
}

func TestGetLoadsOnce(t *testing.T) {
	stub := &counter{}
	cache := New(Key("cancer", "deaths.csv", "pop.csv"), stub.load)
	assert.Equal(t, "cancer|deaths.csv|pop.csv", cache.Key())
	assert.False(t, cache.Loaded())

	for i := 0; i < 25; i++ {
		v, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Austria", "Spain"}, v)
	}
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, cache.Loads())
	assert.True(t, cache.Loaded())
}

func TestFailedLoadIsNotCached(t *testing.T) {
	stub := &counter{err: errors.New("source down")}
	cache := New("k", stub.load)

	_, err := cache.Get(context.Background())
	require.EqualError(t, err, "source down")
	assert.False(t, cache.Loaded())

	stub.err = nil
	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, v, 2)

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestConcurrentGetSharesOneLoad(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	cache := New("k", func(ctx context.Context) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return 42, nil
	})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestInvalidate(t *testing.T) {
	stub := &counter{}
	cache := New("k", stub.load)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	cache.Invalidate()
	assert.False(t, cache.Loaded())

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Loads())
}

func TestInvalidateDuringLoadIsNotStored(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	cache := New("k", func(context.Context) (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(entered)
			<-release
		}
		return n, nil
	})

	done := make(chan int)
	go func() {
		v, err := cache.Get(context.Background())
		assert.NoError(t, err)
		done <- v
	}()

	<-entered
	cache.Invalidate()
	close(release)
	assert.Equal(t, 1, <-done)
	assert.False(t, cache.Loaded())

	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, cache.Loaded())
	assert.Equal(t, 2, cache.Loads())
}

func TestLoaderSeesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "pass-1")
	cache := New("k", func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v, nil
	})
	v, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pass-1", v)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	stub := &counter{}
	cache := New("k", stub.load, WithMetrics(m, "cancer"))

	for i := 0; i < 3; i++ {
		_, err := cache.Get(context.Background())
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	got := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				got[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, got["vizdash_loads_total"])
	assert.Equal(t, 2.0, got["vizdash_cache_hits_total"])
	assert.Equal(t, 1, mustCount(t, reg, "vizdash_load_duration_seconds"))
}

func mustCount(t *testing.T, reg prometheus.Gatherer, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	return n
}
