package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SafeTrip/internal/model"
)

func testJourneyFixture() model.Journey {
	return model.Journey{
		ID:               42,
		Destination:      "Ikeja mall",
		EstimatedMinutes: 30,
		CheckInMinutes:   10,
		Guardian:         model.Contact{Name: "Ada", Phone: "+2348012345678"},
		StartLocation:    &model.Location{Lat: 6.6018, Lng: 3.3515},
		StartedAt:        testStart,
		LastCheckInAt:    testStart,
		Status:           model.JourneyStatusActive,
	}
}

func TestNotifyStartComposition(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d)

	n.NotifyStart(context.Background(), testJourneyFixture(), testStart)

	require.Len(t, d.messages, 1)
	msg := d.messages[0]
	assert.Equal(t, model.NotificationCategoryJourneyStart, msg.Category)
	assert.Equal(t, "+2348012345678", msg.Phone)
	assert.Equal(t, int64(42), msg.JourneyID)
	assert.NotEmpty(t, msg.MessageID)
	assert.Contains(t, msg.Body, "Ikeja mall")
	assert.Contains(t, msg.Body, "30 min")
	assert.Contains(t, msg.Body, "maps.google.com")
}

func TestNotifyStartWithoutLocation(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d)

	j := testJourneyFixture()
	j.StartLocation = nil
	n.NotifyStart(context.Background(), j, testStart)

	require.Len(t, d.messages, 1)
	assert.Contains(t, d.messages[0].Body, "position unavailable")
}

func TestNotifyAlertBroadcastDedupes(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d)

	contacts := []model.Contact{
		{Name: "Bisi", Phone: "+2348011111111"},
		{Name: "Ada twice", Phone: "+2348012345678"}, // 与监护人同号
		{Name: "no phone", Phone: ""},
	}
	n.NotifyAlert(context.Background(), testJourneyFixture(), contacts, 35, model.AlertReasonTimeout, testStart.Add(35*time.Minute))

	// 监护人 + Bisi，重号和空号被跳过
	require.Len(t, d.messages, 2)
	assert.Equal(t, "+2348012345678", d.messages[0].Phone)
	assert.Equal(t, "+2348011111111", d.messages[1].Phone)
	assert.Contains(t, d.messages[0].Body, "timeout")
	assert.Contains(t, d.messages[0].Body, "35 of 30 min")
}

func TestNotifyDispatchFailureIsSwallowed(t *testing.T) {
	d := &recordingDispatcher{failNext: true}
	n := NewNotifier(d)

	// 投递失败不能 panic 或向上传播
	n.NotifyArrival(context.Background(), testJourneyFixture(), 25, testStart.Add(25*time.Minute))
	assert.Empty(t, d.messages)

	n.NotifyArrival(context.Background(), testJourneyFixture(), 25, testStart.Add(25*time.Minute))
	assert.Len(t, d.messages, 1)
}
