package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/repository"
	"safety_training_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 聚合只要求底层读的最终一致性，短缓存即可
const completionCacheTTL = 60 * time.Second

type DashboardService struct {
	Repo  *repository.DashboardRepository
	Redis *redis.Client
}

func NewDashboardService(repo *repository.DashboardRepository, rdb *redis.Client) *DashboardService {
	return &DashboardService{Repo: repo, Redis: rdb}
}

// CompletionStat (公司, 培训) 的完成率
type CompletionStat struct {
	CompanyID  uint `json:"companyId"`
	TrainingID uint `json:"trainingId"`
	Completed  int  `json:"completed"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
}

type CompletionSummary struct {
	Stats     []CompletionStat `json:"stats"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	// 过滤范围内的整体完成率
	Percentage int `json:"percentage"`
}

func completionRate(completed, total int) int {
	if total == 0 {
		// 没有符合条件的员工时是 0%，不是错误
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// CompletionStats 按 (公司, 培训) 汇总完成率，companyID/trainingID 为 0 表示不过滤
func (s *DashboardService) CompletionStats(ctx context.Context, companyID, trainingID uint) (*CompletionSummary, error) {
	cacheKey := fmt.Sprintf("dashboard:completion:%d:%d", companyID, trainingID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var summary CompletionSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	rows, err := s.Repo.CompletionStats(companyID, trainingID)
	if err != nil {
		return nil, err
	}

	summary := &CompletionSummary{Stats: make([]CompletionStat, len(rows))}
	for i, row := range rows {
		summary.Stats[i] = CompletionStat{
			CompanyID:  row.CompanyID,
			TrainingID: row.TrainingID,
			Completed:  row.Completed,
			Total:      row.Total,
			Percentage: completionRate(row.Completed, row.Total),
		}
		summary.Completed += row.Completed
		summary.Total += row.Total
	}
	summary.Percentage = completionRate(summary.Completed, summary.Total)

	if s.Redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, completionCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache completion stats", zap.Error(err))
			}
		}
	}

	return summary, nil
}

// NotEnrolledWorkers 公司里还没有该培训报名记录的员工，分页返回
func (s *DashboardService) NotEnrolledWorkers(companyID, trainingID uint, page, limit int) ([]model.Worker, int64, error) {
	return s.Repo.NotEnrolledWorkers(companyID, trainingID, page, limit)
}
