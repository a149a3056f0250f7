package model

import "time"

// JourneyStatus 行程状态枚举
type JourneyStatus string

const (
	JourneyStatusActive          JourneyStatus = "active"           // 进行中
	JourneyStatusAwaitingCheckIn JourneyStatus = "awaiting_checkin" // 等待平安确认
	JourneyStatusArrived         JourneyStatus = "arrived"          // 已安全到达
	JourneyStatusAlert           JourneyStatus = "alert"            // 已触发警报
	JourneyStatusCancelled       JourneyStatus = "cancelled"        // 已取消
)

// IsTerminal 判断状态是否为终态
func (s JourneyStatus) IsTerminal() bool {
	switch s {
	case JourneyStatusArrived, JourneyStatusAlert, JourneyStatusCancelled:
		return true
	}
	return false
}

// AlertReason 警报触发原因
type AlertReason string

const (
	AlertReasonTimeout AlertReason = "timeout" // 超过预计时长 + 宽限期
	AlertReasonSOS     AlertReason = "sos"     // 用户手动触发
)

// Location GPS 定位采样
type Location struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Journey 表示一次受监护的行程。同一时刻至多存在一条非终态行程，
// 仅由 JourneyService 持有和修改。
type Journey struct {
	ID               int64         `json:"id"`
	Destination      string        `json:"destination"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	CheckInMinutes   int           `json:"check_in_minutes"`
	Guardian         Contact       `json:"guardian"`
	StartLocation    *Location     `json:"start_location,omitempty"`
	LastLocation     *Location     `json:"last_location,omitempty"`
	Path             []Location    `json:"path,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	LastCheckInAt    time.Time     `json:"last_check_in_at"`
	Status           JourneyStatus `json:"status"`
}

// HistoryEntry 行程终态快照，写入后不可变
type HistoryEntry struct {
	Journey
	EndedAt        time.Time     `json:"ended_at"`
	FinalStatus    JourneyStatus `json:"final_status"`
	ElapsedMinutes int           `json:"elapsed_minutes"`
	AlertReason    AlertReason   `json:"alert_reason,omitempty"`
}

// HistoryStats 历史记录聚合统计
type HistoryStats struct {
	Total     int `json:"total"`
	Arrived   int `json:"arrived"`
	Alerts    int `json:"alerts"`
	Cancelled int `json:"cancelled"`
}

// CadenceSettings 跨重启保留的打卡节奏偏好
type CadenceSettings struct {
	CheckInMinutes int `json:"check_in_minutes"`
	GraceMinutes   int `json:"grace_minutes"`
}
