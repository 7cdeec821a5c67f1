package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPeriodicRunsUntilStopped(t *testing.T) {
	var runs int32
	p := NewPeriodic("test", func(context.Context, time.Time) {
		atomic.AddInt32(&runs, 1)
	}, PeriodicConfig{Interval: 5 * time.Millisecond})

	p.Start(context.Background())
	p.Start(context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, time.Millisecond)
	p.Stop()

	after := atomic.LoadInt32(&runs)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&runs))
}

func TestPeriodicSurvivesPanic(t *testing.T) {
	var runs int32
	p := NewPeriodic("panicky", func(context.Context, time.Time) {
		if atomic.AddInt32(&runs, 1) == 1 {
			panic("boom")
		}
	}, PeriodicConfig{Interval: 5 * time.Millisecond})

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	NewPeriodic("idle", func(context.Context, time.Time) {}, PeriodicConfig{}).Stop()
}
