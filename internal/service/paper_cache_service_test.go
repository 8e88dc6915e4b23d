package service

import (
	"context"
	"errors"
	"papershare_backend/internal/config"
	"papershare_backend/internal/repository"
	"papershare_backend/pkg/cache"
	"testing"
	"time"
)

func cacheForTest() *PaperCacheService {
	return NewPaperCacheService(cache.NewMemoryStore(), &config.Config{})
}

func TestCacheListRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := cacheForTest()
	filter := repository.QuestionListFilter{DepartmentID: 1, Page: 1, Limit: 20}

	if _, ok := c.GetList(ctx, filter); ok {
		t.Fatal("expected cold cache miss")
	}

	c.SetList(ctx, filter, `{"list":[]}`)
	payload, ok := c.GetList(ctx, filter)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if payload != `{"list":[]}` {
		t.Fatalf("got %q", payload)
	}

	// 不同过滤参数是不同的键
	other := repository.QuestionListFilter{DepartmentID: 2, Page: 1, Limit: 20}
	if _, ok := c.GetList(ctx, other); ok {
		t.Fatal("different filter must not share an entry")
	}
}

func TestInvalidateOrphansAllLists(t *testing.T) {
	ctx := context.Background()
	c := cacheForTest()

	a := repository.QuestionListFilter{DepartmentID: 1, Page: 1, Limit: 20}
	b := repository.QuestionListFilter{CourseID: 5, Page: 2, Limit: 10}
	c.SetList(ctx, a, "payload-a")
	c.SetList(ctx, b, "payload-b")

	c.Invalidate(ctx, 99)

	if _, ok := c.GetList(ctx, a); ok {
		t.Fatal("list entry survived version bump")
	}
	if _, ok := c.GetList(ctx, b); ok {
		t.Fatal("list entry survived version bump")
	}
}

func TestInvalidateEvictsOnlyTargetDetail(t *testing.T) {
	ctx := context.Background()
	c := cacheForTest()

	c.SetDetail(ctx, 1, "detail-1")
	c.SetDetail(ctx, 2, "detail-2")

	c.Invalidate(ctx, 1)

	if _, ok := c.GetDetail(ctx, 1); ok {
		t.Fatal("invalidated detail still cached")
	}
	payload, ok := c.GetDetail(ctx, 2)
	if !ok || payload != "detail-2" {
		t.Fatal("unrelated detail entry must survive invalidation")
	}
}

// brokenStore 所有操作都失败的后端
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Del(ctx context.Context, keys ...string) error {
	return errors.New("connection refused")
}
func (brokenStore) Incr(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestBackendErrorsBehaveAsMiss(t *testing.T) {
	ctx := context.Background()
	c := NewPaperCacheService(brokenStore{}, &config.Config{})
	filter := repository.QuestionListFilter{Page: 1, Limit: 20}

	if _, ok := c.GetList(ctx, filter); ok {
		t.Fatal("backend error must behave as a miss")
	}
	if _, ok := c.GetDetail(ctx, 1); ok {
		t.Fatal("backend error must behave as a miss")
	}

	// 写入和失效也不能panic或冒泡错误
	c.SetList(ctx, filter, "x")
	c.SetDetail(ctx, 1, "x")
	c.Invalidate(ctx, 1)
}

func TestTTLDefaults(t *testing.T) {
	c := cacheForTest()
	if c.ListTTL != 2*time.Minute {
		t.Fatalf("got list TTL %v", c.ListTTL)
	}
	if c.DetailTTL != 5*time.Minute {
		t.Fatalf("got detail TTL %v", c.DetailTTL)
	}

	cfg := &config.Config{}
	cfg.Cache.ListTTLSeconds = 30
	cfg.Cache.DetailTTLSeconds = 90
	c = NewPaperCacheService(cache.NewMemoryStore(), cfg)
	if c.ListTTL != 30*time.Second || c.DetailTTL != 90*time.Second {
		t.Fatalf("configured TTLs not applied: %v / %v", c.ListTTL, c.DetailTTL)
	}
}
