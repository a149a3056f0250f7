package service

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"SafeTrip/internal/model"
	"SafeTrip/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// recordingDispatcher 记录所有投递的通知，实现 Dispatcher 接口
type recordingDispatcher struct {
	mu       sync.Mutex
	messages []model.NotificationMessage
	failNext bool
}

func (d *recordingDispatcher) Send(ctx context.Context, msg model.NotificationMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failNext {
		d.failNext = false
		return assertDispatchError{}
	}
	d.messages = append(d.messages, msg)
	return nil
}

func (d *recordingDispatcher) categories() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, 0, len(d.messages))
	for _, m := range d.messages {
		out = append(out, string(m.Category))
	}
	return out
}

func (d *recordingDispatcher) phones() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, 0, len(d.messages))
	for _, m := range d.messages {
		out = append(out, m.Phone)
	}
	return out
}

type assertDispatchError struct{}

func (assertDispatchError) Error() string { return "dispatch failed" }

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}
