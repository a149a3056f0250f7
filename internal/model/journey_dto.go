package model

// StartJourneyRequest 开始行程的请求体。
type StartJourneyRequest struct {
	Destination      string    `json:"destination"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	CheckInMinutes   int       `json:"check_in_minutes"` // 0 表示使用节奏设置默认值
	Guardian         Contact   `json:"guardian"`
	StartLocation    *Location `json:"start_location"`
}

// ExtendJourneyRequest 延长行程预计时长的请求体。
type ExtendJourneyRequest struct {
	AdditionalMinutes int `json:"additional_minutes"`
}

// ForceAlertRequest 手动触发警报的请求体。
type ForceAlertRequest struct {
	Reason string `json:"reason"`
}

// UpdateLocationRequest 上报当前位置的请求体。
type UpdateLocationRequest struct {
	Location Location `json:"location"`
}

// JourneyStatusData 行程状态快照，供 UI 轮询展示。
type JourneyStatusData struct {
	Status           JourneyStatus `json:"status"`
	Destination      string        `json:"destination,omitempty"`
	GuardianName     string        `json:"guardian_name,omitempty"`
	ElapsedMinutes   int           `json:"elapsed_minutes"`
	RemainingMinutes int           `json:"remaining_minutes"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	Progress         float64       `json:"progress"`
	IsOverdue        bool          `json:"is_overdue"`
	PointsCount      int           `json:"points_count"`
}

// JourneyStatusIdle 无活跃行程时的状态标签（标准状态之外仅用于快照展示）。
const JourneyStatusIdle JourneyStatus = "idle"
