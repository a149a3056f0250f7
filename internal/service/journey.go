package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"SafeTrip/internal/model"
	"SafeTrip/internal/schedule"
	pkgerrors "SafeTrip/pkg/errors"
	"SafeTrip/pkg/logger"
	"SafeTrip/pkg/metrics"
	"SafeTrip/pkg/snowflake"
)

// 路径采样去抖阈值，约 10 米（经纬度欧氏距离近似）
const minPathDelta = 0.0001

// JourneyService 行程状态机，整个监护流程的唯一权威。
// 同一时刻至多一条非终态行程；全部状态迁移都在 mu 保护下进行，
// 通知与历史写入在释放锁之后执行，保证投递慢不会卡住状态机。
type JourneyService struct {
	mu       sync.Mutex
	clock    schedule.Clock
	notifier *NotifierService
	history  *HistoryService
	contacts *ContactService
	settings *SettingsService

	current *model.Journey
	grace   int

	// gen 每次重置定时器时递增，旧定时器的回调带着旧值进来会被丢弃。
	// 防止 Stop 与已经在途的回调赛跑。
	gen          uint64
	checkInTimer schedule.Timer
	warnTimer    schedule.Timer
	alertTimer   schedule.Timer
}

// JourneyDeps 构造依赖。测试时注入 ManualClock 和内存替身。
type JourneyDeps struct {
	Clock    schedule.Clock
	Notifier *NotifierService
	History  *HistoryService
	Contacts *ContactService
	Settings *SettingsService
}

var (
	journeyService *JourneyService
	journeyOnce    sync.Once
)

func NewJourney(deps JourneyDeps) *JourneyService {
	if deps.Clock == nil {
		deps.Clock = schedule.NewSystemClock()
	}
	return &JourneyService{
		clock:    deps.Clock,
		notifier: deps.Notifier,
		history:  deps.History,
		contacts: deps.Contacts,
		settings: deps.Settings,
	}
}

func Journey() *JourneyService {
	journeyOnce.Do(func() {
		journeyService = NewJourney(JourneyDeps{
			Clock:    schedule.NewSystemClock(),
			Notifier: Notifier(),
			History:  History(),
			Contacts: Contacts(),
			Settings: Settings(),
		})
	})
	return journeyService
}

// Start 开始一段受监护的行程。已经有活跃行程时拒绝，
// 不做隐式替换，避免吞掉上一段行程的警报窗口。
func (s *JourneyService) Start(ctx context.Context, req model.StartJourneyRequest) (*model.Journey, error) {
	destination := strings.TrimSpace(req.Destination)
	if destination == "" || req.EstimatedMinutes <= 0 {
		return nil, pkgerrors.InvalidInput
	}
	if req.Guardian.Phone == "" {
		return nil, pkgerrors.InvalidInput
	}

	cadence := s.settings.Get(ctx)
	interval := req.CheckInMinutes
	if interval <= 0 {
		interval = cadence.CheckInMinutes
	}
	// 打卡周期必须短于预计时长，否则整个行程一次平安确认都不会发生
	if interval >= req.EstimatedMinutes {
		return nil, pkgerrors.InvalidInput
	}

	now := s.clock.Now()

	id, err := snowflake.NextID()
	if err != nil {
		// 没初始化雪花节点（纯内存测试场景）时退化为时间戳
		id = now.UnixNano()
	}

	journey := &model.Journey{
		ID:               id,
		Destination:      destination,
		EstimatedMinutes: req.EstimatedMinutes,
		CheckInMinutes:   interval,
		Guardian:         req.Guardian,
		StartLocation:    req.StartLocation,
		StartedAt:        now,
		LastCheckInAt:    now,
		Status:           model.JourneyStatusActive,
	}
	if req.StartLocation != nil {
		journey.Path = []model.Location{*req.StartLocation}
	}

	s.mu.Lock()
	if s.current != nil && !s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return nil, pkgerrors.AlreadyActive
	}
	s.current = journey
	s.grace = cadence.GraceMinutes
	s.armTimersLocked(now)
	snapshot := *journey
	s.mu.Unlock()

	logger.Logger.Info("Journey started",
		zap.Int64("journey_id", snapshot.ID),
		zap.String("destination", snapshot.Destination),
		zap.Int("estimated_minutes", snapshot.EstimatedMinutes),
		zap.Int("check_in_minutes", snapshot.CheckInMinutes),
	)
	metrics.RecordJourneyStarted(ctx)

	s.notifier.NotifyStart(ctx, snapshot, now)
	return &snapshot, nil
}

// CheckIn 平安确认：重置打卡计时，awaiting_checkin 回到 active
func (s *JourneyService) CheckIn(ctx context.Context) (*model.Journey, error) {
	now := s.clock.Now()

	s.mu.Lock()
	if s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return nil, pkgerrors.NoActiveJourney
	}
	s.current.LastCheckInAt = now
	s.current.Status = model.JourneyStatusActive
	s.armTimersLocked(now)
	snapshot := *s.current
	s.mu.Unlock()

	logger.Logger.Info("Journey check-in", zap.Int64("journey_id", snapshot.ID))
	return &snapshot, nil
}

// ConfirmArrival 安全到达，行程进入终态 arrived
func (s *JourneyService) ConfirmArrival(ctx context.Context) (*model.HistoryEntry, error) {
	now := s.clock.Now()

	s.mu.Lock()
	if s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return nil, pkgerrors.NoActiveJourney
	}
	entry := s.finishLocked(model.JourneyStatusArrived, "", now)
	s.mu.Unlock()

	logger.Logger.Info("Journey arrived",
		zap.Int64("journey_id", entry.ID),
		zap.Int("elapsed_minutes", entry.ElapsedMinutes),
	)
	metrics.RecordJourneyCompleted(ctx, string(model.JourneyStatusArrived))

	s.notifier.NotifyArrival(ctx, entry.Journey, entry.ElapsedMinutes, now)
	s.appendHistory(ctx, entry)
	return &entry, nil
}

// Cancel 取消行程。刚开始就取消（不足一分钟）不打扰监护人。
func (s *JourneyService) Cancel(ctx context.Context) (*model.HistoryEntry, error) {
	now := s.clock.Now()

	s.mu.Lock()
	if s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return nil, pkgerrors.NoActiveJourney
	}
	entry := s.finishLocked(model.JourneyStatusCancelled, "", now)
	s.mu.Unlock()

	logger.Logger.Info("Journey cancelled", zap.Int64("journey_id", entry.ID))
	metrics.RecordJourneyCompleted(ctx, string(model.JourneyStatusCancelled))

	if entry.ElapsedMinutes > 0 {
		s.notifier.NotifyCancellation(ctx, entry.Journey, now)
	}
	s.appendHistory(ctx, entry)
	return &entry, nil
}

// ForceAlert 触发警报（SOS 或超时），广播监护人和全部紧急联系人。
// 无活跃行程时静默返回：SOS 按钮可能在行程结束后被重复按下。
func (s *JourneyService) ForceAlert(ctx context.Context, reason model.AlertReason) (*model.HistoryEntry, error) {
	if reason == "" {
		reason = model.AlertReasonSOS
	}
	now := s.clock.Now()

	s.mu.Lock()
	if s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return nil, nil
	}
	entry := s.finishLocked(model.JourneyStatusAlert, reason, now)
	s.mu.Unlock()

	logger.Logger.Warn("Journey alert triggered",
		zap.Int64("journey_id", entry.ID),
		zap.String("reason", string(reason)),
		zap.Int("elapsed_minutes", entry.ElapsedMinutes),
	)
	metrics.RecordJourneyAlert(ctx, string(reason))

	contacts := s.contacts.List(ctx)
	s.notifier.NotifyAlert(ctx, entry.Journey, contacts, entry.ElapsedMinutes, reason, now)
	s.appendHistory(ctx, entry)
	return &entry, nil
}

// Extend 延长预计时长，行程回到 active 并重置全部定时器
func (s *JourneyService) Extend(ctx context.Context, additionalMinutes int) (*model.Journey, error) {
	if additionalMinutes <= 0 {
		return nil, pkgerrors.InvalidInput
	}
	now := s.clock.Now()

	s.mu.Lock()
	if s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return nil, pkgerrors.NoActiveJourney
	}
	s.current.EstimatedMinutes += additionalMinutes
	s.current.Status = model.JourneyStatusActive
	s.armTimersLocked(now)
	snapshot := *s.current
	s.mu.Unlock()

	logger.Logger.Info("Journey extended",
		zap.Int64("journey_id", snapshot.ID),
		zap.Int("additional_minutes", additionalMinutes),
		zap.Int("estimated_minutes", snapshot.EstimatedMinutes),
	)
	return &snapshot, nil
}

// UpdateLocation 上报当前位置。移动距离过小的采样只更新
// 最近位置，不追加到轨迹，避免原地漂移刷爆 Path。
func (s *JourneyService) UpdateLocation(ctx context.Context, loc model.Location) error {
	if loc.Timestamp.IsZero() {
		loc.Timestamp = s.clock.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Status.IsTerminal() {
		return pkgerrors.NoActiveJourney
	}

	s.current.LastLocation = &loc

	if n := len(s.current.Path); n > 0 {
		prev := s.current.Path[n-1]
		if math.Hypot(loc.Lat-prev.Lat, loc.Lng-prev.Lng) < minPathDelta {
			return nil
		}
	}
	s.current.Path = append(s.current.Path, loc)
	return nil
}

// Status 当前行程的只读快照。无活跃行程时返回 idle。
func (s *JourneyService) Status(ctx context.Context) model.JourneyStatusData {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Status.IsTerminal() {
		return model.JourneyStatusData{Status: model.JourneyStatusIdle}
	}

	j := s.current
	elapsed := elapsedMinutes(j.StartedAt, now)
	remaining := j.EstimatedMinutes - elapsed
	if remaining < 0 {
		remaining = 0
	}
	progress := float64(elapsed) / float64(j.EstimatedMinutes)
	if progress > 1 {
		progress = 1
	}

	return model.JourneyStatusData{
		Status:           j.Status,
		Destination:      j.Destination,
		GuardianName:     j.Guardian.Name,
		ElapsedMinutes:   elapsed,
		RemainingMinutes: remaining,
		EstimatedMinutes: j.EstimatedMinutes,
		Progress:         progress,
		IsOverdue: IsOverdue(PolicyInput{
			Status:           j.Status,
			StartedAt:        j.StartedAt,
			EstimatedMinutes: j.EstimatedMinutes,
			Now:              now,
		}),
		PointsCount: len(j.Path),
	}
}

// armTimersLocked 重置三个监护定时器：打卡提醒、超时预警、自动警报。
// 调用方必须持有 mu。
func (s *JourneyService) armTimersLocked(now time.Time) {
	s.cancelTimersLocked()
	s.gen++
	g := s.gen
	j := s.current

	checkInAt := j.LastCheckInAt.Add(time.Duration(j.CheckInMinutes) * time.Minute)
	warnAt := j.StartedAt.Add(time.Duration(j.EstimatedMinutes) * time.Minute)
	alertAt := warnAt.Add(time.Duration(s.grace) * time.Minute)

	s.checkInTimer = s.clock.Schedule(checkInAt.Sub(now), func() { s.onCheckInDue(g) })
	if warnAt.After(now) {
		s.warnTimer = s.clock.Schedule(warnAt.Sub(now), func() { s.onOverdue(g) })
	}
	s.alertTimer = s.clock.Schedule(alertAt.Sub(now), func() { s.onAlertDue(g) })
}

func (s *JourneyService) cancelTimersLocked() {
	for _, t := range []schedule.Timer{s.checkInTimer, s.warnTimer, s.alertTimer} {
		if t != nil {
			t.Stop()
		}
	}
	s.checkInTimer, s.warnTimer, s.alertTimer = nil, nil, nil
}

// onCheckInDue 打卡周期到：行程转入 awaiting_checkin 并安排下一轮
func (s *JourneyService) onCheckInDue(g uint64) {
	now := s.clock.Now()

	s.mu.Lock()
	if g != s.gen || s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	if s.current.Status == model.JourneyStatusActive {
		s.current.Status = model.JourneyStatusAwaitingCheckIn
	}
	// 只重排打卡定时器，预警和警报定时器照旧计时
	next := now.Add(time.Duration(s.current.CheckInMinutes) * time.Minute)
	gg := s.gen
	s.checkInTimer = s.clock.Schedule(next.Sub(now), func() { s.onCheckInDue(gg) })
	snapshot := *s.current
	s.mu.Unlock()

	logger.Logger.Info("Check-in due",
		zap.Int64("journey_id", snapshot.ID),
		zap.Int("elapsed_minutes", elapsedMinutes(snapshot.StartedAt, now)),
	)
}

// onOverdue 超过预计时长但仍在宽限期内：记录预警日志
func (s *JourneyService) onOverdue(g uint64) {
	now := s.clock.Now()

	s.mu.Lock()
	if g != s.gen || s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	snapshot := *s.current
	s.mu.Unlock()

	logger.Logger.Warn("Journey overdue, grace period started",
		zap.Int64("journey_id", snapshot.ID),
		zap.Int("estimated_minutes", snapshot.EstimatedMinutes),
		zap.Int("elapsed_minutes", elapsedMinutes(snapshot.StartedAt, now)),
	)
}

// onAlertDue 宽限期耗尽：重新评估策略后自动触发警报。
// 重新评估是为了覆盖定时器触发前一刻刚好 Extend 的窗口。
func (s *JourneyService) onAlertDue(g uint64) {
	ctx := context.Background()
	now := s.clock.Now()

	s.mu.Lock()
	if g != s.gen || s.current == nil || s.current.Status.IsTerminal() {
		s.mu.Unlock()
		return
	}
	decision := EvaluatePolicy(PolicyInput{
		Status:           s.current.Status,
		StartedAt:        s.current.StartedAt,
		LastCheckInAt:    s.current.LastCheckInAt,
		EstimatedMinutes: s.current.EstimatedMinutes,
		CheckInMinutes:   s.current.CheckInMinutes,
		GraceMinutes:     s.grace,
		Now:              now,
	})
	if decision != DecisionForceAlert {
		s.mu.Unlock()
		return
	}
	entry := s.finishLocked(model.JourneyStatusAlert, model.AlertReasonTimeout, now)
	s.mu.Unlock()

	logger.Logger.Warn("Journey alert triggered",
		zap.Int64("journey_id", entry.ID),
		zap.String("reason", string(model.AlertReasonTimeout)),
		zap.Int("elapsed_minutes", entry.ElapsedMinutes),
	)
	metrics.RecordJourneyAlert(ctx, string(model.AlertReasonTimeout))

	contacts := s.contacts.List(ctx)
	s.notifier.NotifyAlert(ctx, entry.Journey, contacts, entry.ElapsedMinutes, model.AlertReasonTimeout, now)
	s.appendHistory(ctx, entry)
}

// finishLocked 把当前行程收束到终态：停表、出历史快照、清空槽位。
// 调用方必须持有 mu，并在解锁后自行负责通知和历史落盘。
func (s *JourneyService) finishLocked(final model.JourneyStatus, reason model.AlertReason, now time.Time) model.HistoryEntry {
	s.cancelTimersLocked()
	s.gen++

	j := s.current
	j.Status = final
	entry := model.HistoryEntry{
		Journey:        *j,
		EndedAt:        now,
		FinalStatus:    final,
		ElapsedMinutes: elapsedMinutes(j.StartedAt, now),
		AlertReason:    reason,
	}
	s.current = nil
	return entry
}

func (s *JourneyService) appendHistory(ctx context.Context, entry model.HistoryEntry) {
	if err := s.history.Append(ctx, entry); err != nil {
		logger.Logger.Warn("Failed to persist journey history",
			zap.Int64("journey_id", entry.ID),
			zap.Error(err),
		)
	}
}

func elapsedMinutes(startedAt, now time.Time) int {
	return int(now.Sub(startedAt) / time.Minute)
}
