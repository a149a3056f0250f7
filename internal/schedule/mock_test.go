package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func TestManualClockAdvanceFiresInDeadlineOrder(t *testing.T) {
	c := NewManualClock(base)

	var order []string
	c.Schedule(10*time.Minute, func() { order = append(order, "second") })
	c.Schedule(5*time.Minute, func() { order = append(order, "first") })
	c.Schedule(20*time.Minute, func() { order = append(order, "late") })

	c.Advance(15 * time.Minute)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, base.Add(15*time.Minute), c.Now())
	assert.Equal(t, 1, c.PendingTimers())
}

func TestManualClockNowMatchesDeadlineDuringCallback(t *testing.T) {
	c := NewManualClock(base)

	var observed time.Time
	c.Schedule(5*time.Minute, func() { observed = c.Now() })

	c.Advance(30 * time.Minute)

	// 回调看到的是自己的到期时刻，不是推进终点
	assert.Equal(t, base.Add(5*time.Minute), observed)
	assert.Equal(t, base.Add(30*time.Minute), c.Now())
}

func TestManualClockRescheduleInsideCallback(t *testing.T) {
	c := NewManualClock(base)

	fired := 0
	var rearm func()
	rearm = func() {
		fired++
		c.Schedule(10*time.Minute, rearm)
	}
	c.Schedule(10*time.Minute, rearm)

	c.Advance(35 * time.Minute)

	// 10、20、30 分钟各触发一次
	assert.Equal(t, 3, fired)
	assert.Equal(t, 1, c.PendingTimers())
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock(base)

	fired := false
	timer := c.Schedule(5*time.Minute, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(10 * time.Minute)
	assert.False(t, fired)

	done := c.Schedule(0, func() {})
	c.Advance(0)
	assert.False(t, done.Stop())
}

func TestSystemClockSchedule(t *testing.T) {
	c := NewSystemClock()

	ch := make(chan struct{})
	c.Schedule(time.Millisecond, func() { close(ch) })

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
