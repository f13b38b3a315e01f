package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"retail_service/internal/model"
)

// ==================== 仓储接口 ====================

// JobLogRepository 后台任务日志仓储接口
type JobLogRepository interface {
	Create(ctx context.Context, log *model.JobLog) error
	ListByName(ctx context.Context, name string, limit int) ([]model.JobLog, error)
	CountByStatus(ctx context.Context, since time.Time) ([]JobStatusCount, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// JobStatusCount 按任务名/状态汇总
type JobStatusCount struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

// ==================== 仓储实现 ====================

type jobLogRepo struct {
	db *gorm.DB
}

// NewJobLogRepository 创建任务日志仓储
func NewJobLogRepository(db *gorm.DB) JobLogRepository {
	return &jobLogRepo{db: db}
}

func (r *jobLogRepo) Create(ctx context.Context, log *model.JobLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByName 最近的执行记录
func (r *jobLogRepo) ListByName(ctx context.Context, name string, limit int) ([]model.JobLog, error) {
	var logs []model.JobLog
	if limit <= 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *jobLogRepo) CountByStatus(ctx context.Context, since time.Time) ([]JobStatusCount, error) {
	var counts []JobStatusCount
	err := r.db.WithContext(ctx).Model(&model.JobLog{}).
		Select("name, status, COUNT(*) as total").
		Where("created_at >= ?", since).
		Group("name, status").
		Order("name, status").
		Scan(&counts).Error
	return counts, err
}

// DeleteBefore 清理过期记录, 返回删除条数
func (r *jobLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&model.JobLog{})
	return result.RowsAffected, result.Error
}
