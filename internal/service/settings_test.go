package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SafeTrip/internal/model"
	pkgerrors "SafeTrip/pkg/errors"
)

func TestSettingsDefaults(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewSettings(rdb, model.CadenceSettings{CheckInMinutes: 10, GraceMinutes: 5})
	ctx := context.Background()

	got := s.Get(ctx)
	assert.Equal(t, 10, got.CheckInMinutes)
	assert.Equal(t, 5, got.GraceMinutes)
}

func TestSettingsUpdateAndGet(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewSettings(rdb, model.CadenceSettings{CheckInMinutes: 10, GraceMinutes: 5})
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, model.CadenceSettings{CheckInMinutes: 15, GraceMinutes: 3}))

	got := s.Get(ctx)
	assert.Equal(t, 15, got.CheckInMinutes)
	assert.Equal(t, 3, got.GraceMinutes)
}

func TestSettingsUpdateValidation(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewSettings(rdb, model.CadenceSettings{CheckInMinutes: 10, GraceMinutes: 5})
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, model.CadenceSettings{CheckInMinutes: 0, GraceMinutes: 5}), pkgerrors.InvalidInput)
	assert.ErrorIs(t, s.Update(ctx, model.CadenceSettings{CheckInMinutes: 10, GraceMinutes: -1}), pkgerrors.InvalidInput)
}

func TestSettingsCorruptFallsBackToDefaults(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewSettings(rdb, model.CadenceSettings{CheckInMinutes: 10, GraceMinutes: 5})
	ctx := context.Background()

	require.NoError(t, rdb.Set(ctx, "strip:settings:cadence", "garbage", 0).Err())
	assert.Equal(t, 10, s.Get(ctx).CheckInMinutes)
}
