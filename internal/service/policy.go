package service

// 升级策略：纯决策函数，不做任何副作用。
// 调度器只是驱动者，定时器触发时调用这里决定下一步。

import (
	"time"

	"SafeTrip/internal/model"
)

// Decision 策略评估结果
type Decision string

const (
	DecisionOK             Decision = "ok"              // 一切正常
	DecisionNeedsCheckIn   Decision = "needs_checkin"   // 到达打卡周期，需要平安确认
	DecisionOverdueWarning Decision = "overdue_warning" // 超过预计时长，仍在宽限期内
	DecisionForceAlert     Decision = "force_alert"     // 超过预计时长 + 宽限期，自动触发警报
)

// PolicyInput 策略评估输入，全部为值，便于独立单测
type PolicyInput struct {
	Status           model.JourneyStatus
	StartedAt        time.Time
	LastCheckInAt    time.Time
	EstimatedMinutes int
	CheckInMinutes   int
	GraceMinutes     int
	Now              time.Time
}

// EvaluatePolicy 按优先级评估升级规则：
//  1. 已用时长 >= 预计时长 + 宽限期 -> 强制警报（原因 timeout）
//  2. 已用时长 >= 预计时长 -> 超时预警
//  3. 距上次打卡 >= 打卡周期 -> 需要平安确认
//  4. 其他 -> 正常
func EvaluatePolicy(in PolicyInput) Decision {
	if in.Status.IsTerminal() {
		return DecisionOK
	}

	elapsed := in.Now.Sub(in.StartedAt)
	estimated := time.Duration(in.EstimatedMinutes) * time.Minute
	grace := time.Duration(in.GraceMinutes) * time.Minute

	if elapsed >= estimated+grace {
		return DecisionForceAlert
	}

	if elapsed >= estimated {
		return DecisionOverdueWarning
	}

	if in.Now.Sub(in.LastCheckInAt) >= time.Duration(in.CheckInMinutes)*time.Minute {
		return DecisionNeedsCheckIn
	}

	return DecisionOK
}

// IsOverdue 判断行程是否已超过预计时长（派生标记，不是独立状态）
func IsOverdue(in PolicyInput) bool {
	if in.Status.IsTerminal() {
		return false
	}
	return in.Now.Sub(in.StartedAt) >= time.Duration(in.EstimatedMinutes)*time.Minute
}
