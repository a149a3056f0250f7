package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SafeTrip/internal/model"
)

func policyInput(elapsed, sinceCheckIn time.Duration) PolicyInput {
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	now := start.Add(elapsed)
	return PolicyInput{
		Status:           model.JourneyStatusActive,
		StartedAt:        start,
		LastCheckInAt:    now.Add(-sinceCheckIn),
		EstimatedMinutes: 30,
		CheckInMinutes:   10,
		GraceMinutes:     5,
		Now:              now,
	}
}

func TestEvaluatePolicy(t *testing.T) {
	tests := []struct {
		name         string
		elapsed      time.Duration
		sinceCheckIn time.Duration
		want         Decision
	}{
		{"fresh journey", 1 * time.Minute, 1 * time.Minute, DecisionOK},
		{"just before check-in due", 9 * time.Minute, 9 * time.Minute, DecisionOK},
		{"check-in due", 10 * time.Minute, 10 * time.Minute, DecisionNeedsCheckIn},
		{"checked in recently", 25 * time.Minute, 2 * time.Minute, DecisionOK},
		{"at estimate", 30 * time.Minute, 2 * time.Minute, DecisionOverdueWarning},
		{"inside grace", 34 * time.Minute, 2 * time.Minute, DecisionOverdueWarning},
		{"grace exhausted", 35 * time.Minute, 2 * time.Minute, DecisionForceAlert},
		{"far past grace", 2 * time.Hour, 2 * time.Minute, DecisionForceAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluatePolicy(policyInput(tt.elapsed, tt.sinceCheckIn)))
		})
	}
}

func TestEvaluatePolicyAlertWinsOverCheckIn(t *testing.T) {
	// 宽限期耗尽和打卡超期同时成立时，强制警报优先
	in := policyInput(40*time.Minute, 40*time.Minute)
	assert.Equal(t, DecisionForceAlert, EvaluatePolicy(in))
}

func TestEvaluatePolicyTerminalStatus(t *testing.T) {
	in := policyInput(2*time.Hour, 2*time.Hour)
	in.Status = model.JourneyStatusArrived
	assert.Equal(t, DecisionOK, EvaluatePolicy(in))
}

func TestIsOverdue(t *testing.T) {
	assert.False(t, IsOverdue(policyInput(29*time.Minute, time.Minute)))
	assert.True(t, IsOverdue(policyInput(30*time.Minute, time.Minute)))

	terminal := policyInput(time.Hour, time.Minute)
	terminal.Status = model.JourneyStatusAlert
	assert.False(t, IsOverdue(terminal))
}
