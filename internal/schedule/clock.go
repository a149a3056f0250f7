package schedule

// 行程监护的定时触发层。定时器由 JourneyService 持有，
// 与任何 UI 生命周期无关，页面切换后监护照常运行。

import "time"

// Timer 一次性定时器句柄。Stop 返回 false 表示回调已经触发或已停止。
type Timer interface {
	Stop() bool
}

// Clock 可注入的时钟抽象。生产环境用 SystemClock，
// 测试用 ManualClock 模拟时间推进。
type Clock interface {
	Now() time.Time
	Schedule(d time.Duration, fn func()) Timer
}

// SystemClock 基于 time.AfterFunc 的真实时钟
type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

func (c *SystemClock) Schedule(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, fn)
}
