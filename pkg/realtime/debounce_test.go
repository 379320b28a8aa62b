package realtime

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebounce_CoalescesBurst(t *testing.T) {
	var calls int32
	d := Debounce(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 20; i++ {
		d.Trigger()
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebounce_SeparateBurstsFireSeparately(t *testing.T) {
	var calls int32
	d := Debounce(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebounce_StopCancelsPending(t *testing.T) {
	var calls int32
	d := Debounce(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDebounce_SteadyStreamStillFires(t *testing.T) {
	var calls int32
	d := Debounce(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	defer d.Stop()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestDebounce_TriggerAfterFireArmsAgain(t *testing.T) {
	var calls int32
	d := Debounce(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	defer d.Stop()

	d.Trigger()
	time.Sleep(10 * time.Millisecond)
	d.Trigger()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 2*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
