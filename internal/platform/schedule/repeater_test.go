package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeater(t *testing.T) {
	t.Run("runs immediately then on every tick", func(t *testing.T) {
		clock := NewManualClock()
		r := New(time.Minute, WithTickerFactory(clock.Factory()))
		var calls atomic.Int32

		require.True(t, r.Start(context.Background(), func(context.Context) { calls.Add(1) }))
		t.Cleanup(r.Stop)

		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		clock.Tick()
		clock.Tick()
		assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, time.Millisecond)
	})

	t.Run("second start does not stack a timer", func(t *testing.T) {
		clock := NewManualClock()
		r := New(time.Minute, WithTickerFactory(clock.Factory()))
		task := func(context.Context) {}

		assert.True(t, r.Start(context.Background(), task))
		assert.False(t, r.Start(context.Background(), task))
		assert.False(t, r.Start(context.Background(), task))
		t.Cleanup(r.Stop)

		assert.Equal(t, 1, clock.Created())
		assert.Equal(t, 1, clock.Active())
	})

	t.Run("stop cancels the ticker and allows restart", func(t *testing.T) {
		clock := NewManualClock()
		r := New(time.Minute, WithTickerFactory(clock.Factory()))
		var cancelled atomic.Bool

		r.Start(context.Background(), func(ctx context.Context) {
			go func() {
				<-ctx.Done()
				cancelled.Store(true)
			}()
		})
		r.Stop()

		assert.False(t, r.Running())
		assert.Equal(t, 0, clock.Active())
		assert.Eventually(t, cancelled.Load, time.Second, time.Millisecond)

		assert.True(t, r.Start(context.Background(), func(context.Context) {}))
		r.Stop()
		assert.Equal(t, 2, clock.Created())
	})

	t.Run("stop on idle repeater is a no-op", func(t *testing.T) {
		r := New(0)
		assert.NotPanics(t, r.Stop)
		assert.Equal(t, time.Minute, r.Interval())
	})
}
