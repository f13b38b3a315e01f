package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"retail_service/internal/repository"
)

// JobLogCleanupTask 定期清理过期的任务日志
type JobLogCleanupTask struct {
	repo      repository.JobLogRepository
	Cron      *cron.Cron
	spec      string
	retention time.Duration
}

// NewJobLogCleanupTask spec 为带秒的 cron 表达式, 如 "0 30 3 * * *"
func NewJobLogCleanupTask(repo repository.JobLogRepository, spec string, retentionDays int) *JobLogCleanupTask {
	if spec == "" {
		spec = "0 30 3 * * *"
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &JobLogCleanupTask{
		repo:      repo,
		Cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start 启动定时任务
func (t *JobLogCleanupTask) Start() error {
	_, err := t.Cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := t.RunOnce(ctx, time.Now()); err != nil {
			zap.L().Error("[JobLogCleanup] 清理失败", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	t.Cron.Start()
	zap.L().Info("[JobLogCleanup] 任务日志清理已启动", zap.String("spec", t.spec), zap.Duration("retention", t.retention))
	return nil
}

// Stop 停止定时任务, 等待正在执行的清理结束
func (t *JobLogCleanupTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 删除 now - retention 之前的日志, 返回删除条数
func (t *JobLogCleanupTask) RunOnce(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := t.repo.DeleteBefore(ctx, now.Add(-t.retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		zap.L().Info("[JobLogCleanup] 已清理过期任务日志", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
