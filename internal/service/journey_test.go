package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SafeTrip/internal/model"
	"SafeTrip/internal/schedule"
)

var testStart = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func newTestJourney(t *testing.T) (*JourneyService, *schedule.ManualClock, *recordingDispatcher) {
	t.Helper()

	rdb := newTestRedis(t)
	clock := schedule.NewManualClock(testStart)
	dispatcher := &recordingDispatcher{}

	svc := NewJourney(JourneyDeps{
		Clock:    clock,
		Notifier: NewNotifier(dispatcher),
		History:  NewHistory(rdb, 20),
		Contacts: NewContacts(rdb, 10),
		Settings: NewSettings(rdb, model.CadenceSettings{CheckInMinutes: 10, GraceMinutes: 5}),
	})
	return svc, clock, dispatcher
}

func startRequest() model.StartJourneyRequest {
	return model.StartJourneyRequest{
		Destination:      "Yaba bus stop",
		EstimatedMinutes: 30,
		Guardian:         model.Contact{Name: "Ada", Phone: "+2348012345678"},
		StartLocation:    &model.Location{Lat: 6.5244, Lng: 3.3792, Timestamp: testStart},
	}
}

func TestStartValidation(t *testing.T) {
	svc, _, _ := newTestJourney(t)
	ctx := context.Background()

	req := startRequest()
	req.Destination = "   "
	_, err := svc.Start(ctx, req)
	assert.Error(t, err)

	req = startRequest()
	req.EstimatedMinutes = 0
	_, err = svc.Start(ctx, req)
	assert.Error(t, err)

	req = startRequest()
	req.Guardian.Phone = ""
	_, err = svc.Start(ctx, req)
	assert.Error(t, err)

	// 打卡周期不能超过预计时长
	req = startRequest()
	req.CheckInMinutes = 30
	_, err = svc.Start(ctx, req)
	assert.Error(t, err)
}

func TestStartUsesCadenceDefaults(t *testing.T) {
	svc, _, _ := newTestJourney(t)

	journey, err := svc.Start(context.Background(), startRequest())
	require.NoError(t, err)

	assert.Equal(t, 10, journey.CheckInMinutes)
	assert.Equal(t, model.JourneyStatusActive, journey.Status)
	assert.Equal(t, testStart, journey.StartedAt)
	assert.Len(t, journey.Path, 1)
}

func TestSingleActiveJourney(t *testing.T) {
	svc, _, dispatcher := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	_, err = svc.Start(ctx, startRequest())
	assert.Error(t, err)

	// 结束后可以再次开始
	_, err = svc.ConfirmArrival(ctx)
	require.NoError(t, err)

	_, err = svc.Start(ctx, startRequest())
	assert.NoError(t, err)

	assert.Equal(t, []string{"journey_start", "journey_arrival", "journey_start"}, dispatcher.categories())
}

func TestStatusSnapshot(t *testing.T) {
	svc, clock, _ := newTestJourney(t)
	ctx := context.Background()

	assert.Equal(t, model.JourneyStatusIdle, svc.Status(ctx).Status)

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)

	status := svc.Status(ctx)
	assert.Equal(t, model.JourneyStatusActive, status.Status)
	assert.Equal(t, "Yaba bus stop", status.Destination)
	assert.Equal(t, "Ada", status.GuardianName)
	assert.Equal(t, 9, status.ElapsedMinutes)
	assert.Equal(t, 21, status.RemainingMinutes)
	assert.Equal(t, 30, status.EstimatedMinutes)
	assert.InDelta(t, 0.3, status.Progress, 0.001)
	assert.False(t, status.IsOverdue)
	assert.Equal(t, 1, status.PointsCount)
}

func TestCheckInCadence(t *testing.T) {
	svc, clock, _ := newTestJourney(t)
	ctx := context.Background()

	req := startRequest()
	req.EstimatedMinutes = 60
	_, err := svc.Start(ctx, req)
	require.NoError(t, err)

	// 打卡周期到，行程转入等待确认
	clock.Advance(10 * time.Minute)
	assert.Equal(t, model.JourneyStatusAwaitingCheckIn, svc.Status(ctx).Status)

	journey, err := svc.CheckIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JourneyStatusActive, journey.Status)
	assert.Equal(t, testStart.Add(10*time.Minute), journey.LastCheckInAt)

	// 打卡重置了计时：9 分钟后仍在周期内
	clock.Advance(9 * time.Minute)
	assert.Equal(t, model.JourneyStatusActive, svc.Status(ctx).Status)

	clock.Advance(1 * time.Minute)
	assert.Equal(t, model.JourneyStatusAwaitingCheckIn, svc.Status(ctx).Status)
}

func TestNormalTrip(t *testing.T) {
	svc, clock, dispatcher := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = svc.CheckIn(ctx)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = svc.CheckIn(ctx)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	entry, err := svc.ConfirmArrival(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.JourneyStatusArrived, entry.FinalStatus)
	assert.Equal(t, 25, entry.ElapsedMinutes)
	assert.Equal(t, []string{"journey_start", "journey_arrival"}, dispatcher.categories())
	assert.Equal(t, model.JourneyStatusIdle, svc.Status(ctx).Status)
	assert.Equal(t, 0, clock.PendingTimers())

	entries := svc.history.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, model.JourneyStatusArrived, entries[0].FinalStatus)
}

func TestMissedCheckInEscalatesToAlert(t *testing.T) {
	svc, clock, dispatcher := newTestJourney(t)
	ctx := context.Background()

	require.NoError(t, svc.contacts.saveLocked(ctx, []model.Contact{
		{Name: "Bisi", Phone: "+2348011111111", Priority: 1},
		{Name: "Chidi", Phone: "+2348022222222", Priority: 2},
	}))

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	// 全程无人打卡：30 分钟到预计时长，35 分钟宽限耗尽
	clock.Advance(35 * time.Minute)

	assert.Equal(t, model.JourneyStatusIdle, svc.Status(ctx).Status)

	entries := svc.history.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, model.JourneyStatusAlert, entries[0].FinalStatus)
	assert.Equal(t, model.AlertReasonTimeout, entries[0].AlertReason)
	assert.Equal(t, 35, entries[0].ElapsedMinutes)

	// 警报广播：监护人 + 两名联系人
	assert.Equal(t, []string{"journey_start", "journey_alert", "journey_alert", "journey_alert"}, dispatcher.categories())
	assert.Equal(t, []string{"+2348012345678", "+2348012345678", "+2348011111111", "+2348022222222"}, dispatcher.phones())
	assert.Equal(t, 0, clock.PendingTimers())
}

func TestCheckInDoesNotDelayAlert(t *testing.T) {
	svc, clock, _ := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	// 即使持续打卡，超过预计时长 + 宽限期仍然触发警报
	for i := 0; i < 4; i++ {
		clock.Advance(8 * time.Minute)
		if _, err := svc.CheckIn(ctx); err != nil {
			break
		}
	}
	clock.Advance(5 * time.Minute)

	entries := svc.history.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AlertReasonTimeout, entries[0].AlertReason)
}

func TestForceAlertSOS(t *testing.T) {
	svc, clock, dispatcher := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	entry, err := svc.ForceAlert(ctx, model.AlertReasonSOS)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.AlertReasonSOS, entry.AlertReason)
	assert.Equal(t, 5, entry.ElapsedMinutes)
	assert.Contains(t, dispatcher.categories(), "journey_alert")

	// 行程已终结，再次 SOS 是空操作
	entry, err = svc.ForceAlert(ctx, model.AlertReasonSOS)
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestTerminalOperationsRejected(t *testing.T) {
	svc, _, _ := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)
	_, err = svc.ConfirmArrival(ctx)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx)
	assert.Error(t, err)
	_, err = svc.ConfirmArrival(ctx)
	assert.Error(t, err)
	_, err = svc.Cancel(ctx)
	assert.Error(t, err)
	_, err = svc.Extend(ctx, 10)
	assert.Error(t, err)
	err = svc.UpdateLocation(ctx, model.Location{Lat: 1, Lng: 1})
	assert.Error(t, err)
}

func TestCancelRightAfterStartSkipsNotification(t *testing.T) {
	svc, _, dispatcher := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	entry, err := svc.Cancel(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JourneyStatusCancelled, entry.FinalStatus)
	assert.Equal(t, 0, entry.ElapsedMinutes)

	// 不足一分钟取消不打扰监护人
	assert.Equal(t, []string{"journey_start"}, dispatcher.categories())
}

func TestExtendPushesAlertWindow(t *testing.T) {
	svc, clock, _ := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	clock.Advance(32 * time.Minute)
	status := svc.Status(ctx)
	assert.True(t, status.IsOverdue)

	journey, err := svc.Extend(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, 45, journey.EstimatedMinutes)
	assert.Equal(t, model.JourneyStatusActive, journey.Status)

	// 旧的 35 分钟警报点已失效
	clock.Advance(5 * time.Minute)
	assert.NotEqual(t, model.JourneyStatusIdle, svc.Status(ctx).Status)

	// 新的警报点：45 + 5 分钟
	clock.Advance(13 * time.Minute)
	assert.Equal(t, model.JourneyStatusIdle, svc.Status(ctx).Status)

	entries := svc.history.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AlertReasonTimeout, entries[0].AlertReason)
	assert.Equal(t, 50, entries[0].ElapsedMinutes)
}

func TestUpdateLocationFiltersJitter(t *testing.T) {
	svc, clock, _ := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	// 原地漂移：只更新最近位置，不追加轨迹点
	err = svc.UpdateLocation(ctx, model.Location{Lat: 6.52443, Lng: 3.37921, Timestamp: clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Status(ctx).PointsCount)

	// 真实位移
	err = svc.UpdateLocation(ctx, model.Location{Lat: 6.5260, Lng: 3.3810, Timestamp: clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Status(ctx).PointsCount)

	entry, err := svc.ForceAlert(ctx, model.AlertReasonSOS)
	require.NoError(t, err)
	require.NotNil(t, entry.LastLocation)
	assert.InDelta(t, 6.5260, entry.LastLocation.Lat, 1e-9)
}

func TestAlertIncludesLastKnownPosition(t *testing.T) {
	svc, _, dispatcher := newTestJourney(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, startRequest())
	require.NoError(t, err)

	err = svc.UpdateLocation(ctx, model.Location{Lat: 6.5300, Lng: 3.3900})
	require.NoError(t, err)

	_, err = svc.ForceAlert(ctx, model.AlertReasonSOS)
	require.NoError(t, err)

	last := dispatcher.messages[len(dispatcher.messages)-1]
	assert.Contains(t, last.Body, "maps.google.com")
	assert.Contains(t, last.Body, "6.530000")
}
