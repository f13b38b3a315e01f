package task

import (
	"context"
	"errors"
	"fmt"

	"retail_service/internal/service"
)

// ==================== 任务注册 ====================

// RegisterJobs 注册全部后台任务
func RegisterJobs(q *Queue, notify *service.NotificationService, thumbs *service.ThumbnailService) {
	q.Register(service.JobSendWelcomeEmail, byID(notify.SendWelcomeEmail))
	q.Register(service.JobSendOrderConfirmationEmail, byID(notify.SendOrderConfirmationEmail))
	q.Register(service.JobProcessOrder, byID(notify.ProcessOrder))
	q.Register(service.JobGenerateAvatarThumbnail, byID(thumbs.GenerateAvatarThumbnail))
	q.Register(service.JobGenerateProductThumbnail, byID(thumbs.GenerateProductThumbnail))
}

// byID 适配只接收一个 ID 参数的处理函数
// 记录不存在或数据不合法时不再重试
func byID(fn func(ctx context.Context, id int64) error) Handler {
	return func(ctx context.Context, args ...any) error {
		id, err := int64Arg(args, 0)
		if err != nil {
			return Permanent(err)
		}

		err = fn(ctx, id)
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrFormat) || errors.Is(err, service.ErrValidation) {
			return Permanent(err)
		}
		return err
	}
}

func int64Arg(args []any, idx int) (int64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("缺少第 %d 个参数", idx+1)
	}
	switch v := args[idx].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("参数类型错误: %T", args[idx])
	}
}
