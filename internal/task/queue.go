package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"retail_service/internal/model"
	"retail_service/internal/repository"
)

// ==================== 后台任务队列 ====================

// Handler 任务处理函数, 参数即投递时的 args
type Handler func(ctx context.Context, args ...any) error

// QueueConfig 队列配置
type QueueConfig struct {
	Workers     int
	Size        int
	MaxAttempts int
	JobTimeout  time.Duration
	RetryDelay  time.Duration
}

// DefaultQueueConfig 默认配置
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Workers:     4,
		Size:        256,
		MaxAttempts: 3,
		JobTimeout:  30 * time.Second,
		RetryDelay:  time.Second,
	}
}

type job struct {
	id       string
	name     string
	args     []any
	queuedAt time.Time
}

// Queue 进程内任务队列: 带缓冲通道 + 固定数量的 worker
// Enqueue 从不阻塞调用方, 队列已满时任务被丢弃并记录
type Queue struct {
	cfg      QueueConfig
	jobs     chan job
	handlers map[string]Handler
	logRepo  repository.JobLogRepository
	logger   *zap.Logger

	mu      sync.RWMutex
	running bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue 创建任务队列, logRepo 为 nil 时不写任务日志
func NewQueue(cfg QueueConfig, logRepo repository.JobLogRepository, logger *zap.Logger) *Queue {
	def := DefaultQueueConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		cfg:      cfg,
		jobs:     make(chan job, cfg.Size),
		handlers: make(map[string]Handler),
		logRepo:  logRepo,
		logger:   logger.Named("queue"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register 注册任务处理函数, 需在 Start 之前调用
func (q *Queue) Register(name string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = handler
}

// Enqueue 投递任务并返回任务 ID
func (q *Queue) Enqueue(name string, args ...any) string {
	j := job{id: uuid.NewString(), name: name, args: args, queuedAt: time.Now()}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if _, ok := q.handlers[name]; !ok {
		q.logger.Error("[Queue] 未注册的任务", zap.String("job", name), zap.String("job_id", j.id))
		q.record(j, 0, 0, model.JobStatusDropped, "handler not registered")
		return j.id
	}
	if q.stopped {
		q.logger.Warn("[Queue] 队列已停止, 任务被丢弃", zap.String("job", name), zap.String("job_id", j.id))
		q.record(j, 0, 0, model.JobStatusDropped, "queue stopped")
		return j.id
	}

	select {
	case q.jobs <- j:
	default:
		q.logger.Warn("[Queue] 队列已满, 任务被丢弃", zap.String("job", name), zap.String("job_id", j.id))
		q.record(j, 0, 0, model.JobStatusDropped, "queue full")
	}
	return j.id
}

// Pending 等待执行的任务数
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// ==================== 生命周期管理 ====================

// Start 启动 worker
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running || q.stopped {
		return
	}
	q.running = true

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("[Queue] 任务队列已启动", zap.Int("workers", q.cfg.Workers), zap.Int("size", q.cfg.Size))
}

// Stop 停止接收新任务, 等待已投递的任务执行完毕
// ctx 到期后取消仍在执行的任务
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.jobs)
	running := q.running
	q.mu.Unlock()

	if !running {
		q.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("[Queue] 任务队列已停止")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return fmt.Errorf("等待任务完成超时: %w", ctx.Err())
	}
}

// ==================== 执行 ====================

func (q *Queue) worker(idx int) {
	defer q.wg.Done()
	for j := range q.jobs {
		q.run(j)
	}
	q.logger.Debug("[Queue] worker 退出", zap.Int("worker", idx))
}

func (q *Queue) run(j job) {
	q.mu.RLock()
	handler := q.handlers[j.name]
	q.mu.RUnlock()

	start := time.Now()
	var err error
	attempts := 0

	for attempts < q.cfg.MaxAttempts {
		attempts++
		err = q.invoke(handler, j)
		if err == nil || IsPermanent(err) || q.ctx.Err() != nil {
			break
		}
		if attempts < q.cfg.MaxAttempts && !q.sleep(time.Duration(attempts)*q.cfg.RetryDelay) {
			break
		}
	}

	duration := time.Since(start)
	if err != nil {
		q.logger.Error("[Queue] 任务失败",
			zap.String("job", j.name),
			zap.String("job_id", j.id),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		q.record(j, attempts, duration, model.JobStatusFailed, err.Error())
		return
	}

	q.logger.Debug("[Queue] 任务完成",
		zap.String("job", j.name),
		zap.String("job_id", j.id),
		zap.Duration("wait", start.Sub(j.queuedAt)),
		zap.Duration("duration", duration),
	)
	q.record(j, attempts, duration, model.JobStatusSuccess, "")
}

// invoke 单次执行, panic 视为失败
func (q *Queue) invoke(handler Handler, j job) (err error) {
	ctx, cancel := context.WithTimeout(q.ctx, q.cfg.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, j.args...)
}

func (q *Queue) sleep(d time.Duration) bool {
	if d <= 0 {
		return q.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-q.ctx.Done():
		return false
	}
}

// record 写入任务日志, 失败只记录不影响任务本身
func (q *Queue) record(j job, attempts int, duration time.Duration, status, errMsg string) {
	if q.logRepo == nil {
		return
	}

	args, err := json.Marshal(j.args)
	if err != nil {
		args = []byte("null")
	}
	if r := []rune(errMsg); len(r) > 500 {
		errMsg = string(r[:500])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = q.logRepo.Create(ctx, &model.JobLog{
		JobID:      j.id,
		Name:       j.name,
		Args:       datatypes.JSON(args),
		Attempts:   attempts,
		DurationMs: duration.Milliseconds(),
		Status:     status,
		ErrorMsg:   errMsg,
	})
	if err != nil {
		q.logger.Warn("[Queue] 写入任务日志失败", zap.String("job_id", j.id), zap.Error(err))
	}
}

// ==================== 不可重试错误 ====================

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记错误不再重试
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 是否为不可重试错误
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
