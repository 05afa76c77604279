package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/gopool/pkg/gopool"
)

func freshCollector(t *testing.T) *Collector {
	t.Helper()
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	return NewCollector()
}

func TestNewCollector(t *testing.T) {
	c := freshCollector(t)

	require.NotNil(t, c)
	assert.NotNil(t, c.tasksSubmitted)
	assert.NotNil(t, c.tasksRejected)
	assert.NotNil(t, c.workersSpawned)
	assert.NotNil(t, c.workersEvicted)
	assert.NotNil(t, c.taskDuration)
	assert.NotNil(t, c.queueDepth)
	assert.NotNil(t, c.workersCurrent)
	assert.NotNil(t, c.workersIdle)
}

func TestHooksUpdateCounters(t *testing.T) {
	c := freshCollector(t)
	h := c.Hooks()

	h.OnSubmit()
	h.OnSubmit()
	h.OnReject()
	h.OnWorkerSpawn()
	h.OnWorkerEvict()
	h.OnTaskDone(5*time.Millisecond, nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.tasksSubmitted))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksRejected))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.workersSpawned))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.workersEvicted))
}

type fakeStatSource struct {
	stats gopool.Stats
}

func (f fakeStatSource) Stats() gopool.Stats { return f.stats }

func TestWatchStatsUpdatesGauges(t *testing.T) {
	c := freshCollector(t)
	src := fakeStatSource{stats: gopool.Stats{
		CurrentWorkers: 4,
		IdleWorkers:    2,
		QueueDepth:     7,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.WatchStats(ctx, src, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(c.queueDepth) == 7
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, float64(4), testutil.ToFloat64(c.workersCurrent))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.workersIdle))

	cancel()
	<-done
}
