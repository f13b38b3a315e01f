package task

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理任务队列与定时任务
type TaskManager struct {
	queue   *Queue
	cleanup *JobLogCleanupTask
}

// NewTaskManager 创建任务管理器, cleanup 为 nil 时不启用日志清理
func NewTaskManager(queue *Queue, cleanup *JobLogCleanupTask) *TaskManager {
	return &TaskManager{queue: queue, cleanup: cleanup}
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	zap.L().Info("[TaskManager] 正在启动后台任务...")

	tm.queue.Start()
	if tm.cleanup != nil {
		if err := tm.cleanup.Start(); err != nil {
			return err
		}
	}

	zap.L().Info("[TaskManager] 后台任务已全部启动")
	return nil
}

// Stop 先停止定时任务, 再等待队列中的任务执行完毕
func (tm *TaskManager) Stop(ctx context.Context) error {
	zap.L().Info("[TaskManager] 正在停止后台任务...")

	if tm.cleanup != nil {
		tm.cleanup.Stop()
	}
	if err := tm.queue.Stop(ctx); err != nil {
		return err
	}

	zap.L().Info("[TaskManager] 后台任务已全部停止")
	return nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态, 附带最近 24 小时的执行统计
func (tm *TaskManager) Status() map[string]interface{} {
	status := map[string]interface{}{
		"queue_pending": tm.queue.Pending(),
		"cleanup":       tm.cleanup != nil,
	}

	if tm.queue.logRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		counts, err := tm.queue.logRepo.CountByStatus(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			zap.L().Warn("[TaskManager] 统计任务日志失败", zap.Error(err))
		} else {
			status["jobs_24h"] = counts
		}
	}
	return status
}
