package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"papershare_backend/internal/config"
	"papershare_backend/internal/repository"
	"papershare_backend/pkg/cache"
	"papershare_backend/pkg/logger"
	"papershare_backend/pkg/monitoring"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	listVersionKey  = "papers:index_version"
	listKeyPrefix   = "papers:list:"
	detailKeyPrefix = "papers:detail:"
)

// PaperCacheService 公开读路径的版本化缓存。
// 列表键掺入全局版本号，版本自增一次即孤立全部旧列表条目，无需逐个删除；
// 详情键只按Question主键，失效时点删。
// 缓存只是性能优化：后端任何错误一律按miss处理，正确性永远由主存储兜底。
type PaperCacheService struct {
	Store     cache.Store
	ListTTL   time.Duration
	DetailTTL time.Duration
}

func NewPaperCacheService(store cache.Store, cfg *config.Config) *PaperCacheService {
	listTTL := 2 * time.Minute
	if cfg.Cache.ListTTLSeconds > 0 {
		listTTL = time.Duration(cfg.Cache.ListTTLSeconds) * time.Second
	}
	detailTTL := 5 * time.Minute
	if cfg.Cache.DetailTTLSeconds > 0 {
		detailTTL = time.Duration(cfg.Cache.DetailTTLSeconds) * time.Second
	}

	return &PaperCacheService{
		Store:     store,
		ListTTL:   listTTL,
		DetailTTL: detailTTL,
	}
}

// listVersion 读取全局列表版本号，任何错误按0处理
func (s *PaperCacheService) listVersion(ctx context.Context) int64 {
	val, err := s.Store.Get(ctx, listVersionKey)
	if err != nil {
		return 0
	}
	version, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return version
}

// ListKey 版本号与全部过滤参数共同散列成列表键
func (s *PaperCacheService) ListKey(ctx context.Context, filter repository.QuestionListFilter) string {
	raw := fmt.Sprintf("%d|%d|%d|%d|%d|%d|%d",
		s.listVersion(ctx),
		filter.DepartmentID, filter.CourseID, filter.SemesterID, filter.ExamTypeID,
		filter.Page, filter.Limit,
	)
	sum := sha1.Sum([]byte(raw))
	return listKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *PaperCacheService) DetailKey(questionID uint) string {
	return detailKeyPrefix + strconv.FormatUint(uint64(questionID), 10)
}

func (s *PaperCacheService) GetList(ctx context.Context, filter repository.QuestionListFilter) (string, bool) {
	return s.lookup(ctx, "list", s.ListKey(ctx, filter))
}

func (s *PaperCacheService) SetList(ctx context.Context, filter repository.QuestionListFilter, payload string) {
	if err := s.Store.Set(ctx, s.ListKey(ctx, filter), payload, s.ListTTL); err != nil {
		logger.Log.Warn("cache set failed", zap.Error(err))
	}
}

func (s *PaperCacheService) GetDetail(ctx context.Context, questionID uint) (string, bool) {
	return s.lookup(ctx, "detail", s.DetailKey(questionID))
}

func (s *PaperCacheService) SetDetail(ctx context.Context, questionID uint, payload string) {
	if err := s.Store.Set(ctx, s.DetailKey(questionID), payload, s.DetailTTL); err != nil {
		logger.Log.Warn("cache set failed", zap.Error(err))
	}
}

// Invalidate 任何对Question或其Submission的写入提交后调用：
// 先点删详情条目，再把列表版本号+1孤立所有列表条目。
func (s *PaperCacheService) Invalidate(ctx context.Context, questionID uint) {
	if err := s.Store.Del(ctx, s.DetailKey(questionID)); err != nil {
		logger.Log.Warn("cache detail eviction failed", zap.Error(err), zap.Uint("questionId", questionID))
	}
	if _, err := s.Store.Incr(ctx, listVersionKey); err != nil {
		logger.Log.Warn("cache version bump failed", zap.Error(err))
	}
}

func (s *PaperCacheService) lookup(ctx context.Context, entry, key string) (string, bool) {
	payload, err := s.Store.Get(ctx, key)
	if err == cache.ErrMiss {
		monitoring.CacheCounter.WithLabelValues(entry, "miss").Inc()
		return "", false
	}
	if err != nil {
		// 后端不可用按miss处理
		monitoring.CacheCounter.WithLabelValues(entry, "error").Inc()
		logger.Log.Warn("cache lookup failed", zap.Error(err))
		return "", false
	}
	monitoring.CacheCounter.WithLabelValues(entry, "hit").Inc()
	return payload, true
}
