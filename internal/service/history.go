package service

import (
	"context"
	"encoding/json"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"SafeTrip/config"
	"SafeTrip/internal/model"
	"SafeTrip/pkg/logger"
	"SafeTrip/storage/redis"
)

const historyKeySuffix = "journey:history"

// HistoryService 行程终态的持久记录。
// 只追加，最新在前，保留最近 maxEntries 条。
type HistoryService struct {
	mu         sync.Mutex
	rdb        *goredis.Client
	maxEntries int
}

var (
	historyService *HistoryService
	historyOnce    sync.Once
)

func NewHistory(rdb *goredis.Client, maxEntries int) *HistoryService {
	if maxEntries <= 0 {
		maxEntries = 20
	}
	return &HistoryService{rdb: rdb, maxEntries: maxEntries}
}

func History() *HistoryService {
	historyOnce.Do(func() {
		historyService = NewHistory(redis.Client(), config.Cfg.JourneyHistoryMaxEntries)
	})
	return historyService
}

// Append 头插一条终态记录并截断到 maxEntries，随后持久化
func (s *HistoryService) Append(ctx context.Context, entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked(ctx)

	entries = append([]model.HistoryEntry{entry}, entries...)
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	return s.saveLocked(ctx, entries)
}

// Load 返回持久化的历史列表。缺失或损坏的数据当作空历史，从不报错。
func (s *HistoryService) Load(ctx context.Context) []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Stats 按终态聚合历史记录
func (s *HistoryService) Stats(ctx context.Context) model.HistoryStats {
	entries := s.Load(ctx)

	stats := model.HistoryStats{Total: len(entries)}
	for _, e := range entries {
		switch e.FinalStatus {
		case model.JourneyStatusArrived:
			stats.Arrived++
		case model.JourneyStatusAlert:
			stats.Alerts++
		case model.JourneyStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// Clear 清空历史
func (s *HistoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb.Del(ctx, redis.Key(historyKeySuffix)).Err()
}

func (s *HistoryService) loadLocked(ctx context.Context) []model.HistoryEntry {
	raw, err := s.rdb.Get(ctx, redis.Key(historyKeySuffix)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Logger.Warn("Failed to load journey history", zap.Error(err))
		}
		return []model.HistoryEntry{}
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Logger.Warn("Corrupt journey history, treating as empty", zap.Error(err))
		return []model.HistoryEntry{}
	}
	return entries
}

func (s *HistoryService) saveLocked(ctx context.Context, entries []model.HistoryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redis.Key(historyKeySuffix), raw, 0).Err()
}
