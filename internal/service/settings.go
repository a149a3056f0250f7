package service

import (
	"context"
	"encoding/json"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"SafeTrip/config"
	"SafeTrip/internal/model"
	pkgerrors "SafeTrip/pkg/errors"
	"SafeTrip/pkg/logger"
	"SafeTrip/storage/redis"
)

const settingsKeySuffix = "settings:cadence"

// SettingsService 签到节奏设置。未显式保存过时回退到配置默认值。
type SettingsService struct {
	mu       sync.Mutex
	rdb      *goredis.Client
	defaults model.CadenceSettings
}

var (
	settingsService *SettingsService
	settingsOnce    sync.Once
)

func NewSettings(rdb *goredis.Client, defaults model.CadenceSettings) *SettingsService {
	return &SettingsService{rdb: rdb, defaults: defaults}
}

func Settings() *SettingsService {
	settingsOnce.Do(func() {
		settingsService = NewSettings(redis.Client(), model.CadenceSettings{
			CheckInMinutes: config.Cfg.JourneyCheckInIntervalMinutes,
			GraceMinutes:           config.Cfg.JourneyGraceMinutes,
		})
	})
	return settingsService
}

// Get 读取当前节奏设置
func (s *SettingsService) Get(ctx context.Context) model.CadenceSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.rdb.Get(ctx, redis.Key(settingsKeySuffix)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Logger.Warn("Failed to load cadence settings, using defaults", zap.Error(err))
		}
		return s.defaults
	}

	var settings model.CadenceSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		logger.Logger.Warn("Corrupt cadence settings, using defaults", zap.Error(err))
		return s.defaults
	}
	if settings.CheckInMinutes <= 0 || settings.GraceMinutes < 0 {
		return s.defaults
	}
	return settings
}

// Update 保存新的节奏设置
func (s *SettingsService) Update(ctx context.Context, settings model.CadenceSettings) error {
	if settings.CheckInMinutes <= 0 || settings.GraceMinutes < 0 {
		return pkgerrors.InvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redis.Key(settingsKeySuffix), raw, 0).Err()
}
