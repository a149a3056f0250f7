package schedule

import (
	"sort"
	"sync"
	"time"
)

// ManualClock 手动推进的时钟，实现 Clock 接口。
// Advance 按到期顺序触发回调，回调执行期间不持有内部锁，
// 因此回调内可以再次 Schedule（定时器重挂）。
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Schedule(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}

	c.mu.Lock()
	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	c.mu.Unlock()

	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance 将时钟推进 d，依次触发期间到期的所有定时器。
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.popNextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	c.mu.Lock()
	if target.After(c.now) {
		c.now = target
	}
	c.mu.Unlock()
}

// popNextDue 取出 target 之前最早到期的未触发定时器，并把时钟推到其到期点
func (c *ManualClock) popNextDue(target time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := make([]*manualTimer, 0, len(c.timers))
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(target) {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].deadline.Before(pending[j].deadline)
	})

	next := pending[0]
	next.fired = true
	if next.deadline.After(c.now) {
		c.now = next.deadline
	}
	return next
}

// PendingTimers 返回未触发且未停止的定时器数量，用于断言资源清理。
func (c *ManualClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
