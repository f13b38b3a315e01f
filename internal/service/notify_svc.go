package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"retail_service/internal/model"
	"retail_service/internal/repository"
)

// ==================== 后台任务 ====================

// 后台任务名
const (
	JobSendWelcomeEmail           = "send_welcome_email"
	JobSendOrderConfirmationEmail = "send_order_confirmation_email"
	JobProcessOrder               = "process_order"
	JobGenerateAvatarThumbnail    = "generate_avatar_thumbnail"
	JobGenerateProductThumbnail   = "generate_product_thumbnail"
)

// JobEnqueuer 后台任务投递, 投递即返回, 调用方不等待执行结果
type JobEnqueuer interface {
	Enqueue(name string, args ...any) string
}

// ==================== 邮件 ====================

// Mail 邮件内容
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer 将邮件写入日志, 用于开发环境或未配置邮件网关时
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer 创建日志邮件发送器
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.Info("[Mailer] 发送邮件",
		zap.String("to", mail.To),
		zap.String("subject", mail.Subject),
		zap.Int("body_len", len(mail.Body)),
	)
	return nil
}

// ==================== NotificationService 通知服务 ====================

// NotificationService 后台任务中的邮件与订单处理
type NotificationService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.ConfirmTokenRepository
	orderRepo repository.OrderRepository
	mailer    Mailer
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	userRepo repository.UserRepository,
	tokenRepo repository.ConfirmTokenRepository,
	orderRepo repository.OrderRepository,
	mailer Mailer,
) *NotificationService {
	return &NotificationService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		orderRepo: orderRepo,
		mailer:    mailer,
	}
}

// SendWelcomeEmail 欢迎邮件, 附带邮箱确认令牌
func (s *NotificationService) SendWelcomeEmail(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Здравствуйте, %s!\n\nСпасибо за регистрацию.\n", displayName(user))

	token, err := s.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if token != nil {
		fmt.Fprintf(&body, "Код подтверждения email: %s\n", token.Key)
	}

	return s.mailer.Send(ctx, Mail{
		To:      user.Email,
		Subject: "Добро пожаловать!",
		Body:    body.String(),
	})
}

// SendOrderConfirmationEmail 下单确认邮件
func (s *NotificationService) SendOrderConfirmationEmail(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.User == nil {
		return notFoundErr("订单 %d 不存在", orderID)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Заказ №%d принят. Статус: %s.\n", order.ID, order.Status)
	for _, item := range order.Items {
		if item.ProductInfo == nil || item.ProductInfo.Product == nil {
			continue
		}
		fmt.Fprintf(&body, "- %s x %d\n", item.ProductInfo.Product.Name, item.Quantity)
	}
	fmt.Fprintf(&body, "Итого: %s\n", order.TotalSum().StringFixed(2))

	return s.mailer.Send(ctx, Mail{
		To:      order.User.Email,
		Subject: fmt.Sprintf("Подтверждение заказа №%d", order.ID),
		Body:    body.String(),
	})
}

// ProcessOrder 新订单后续处理, 状态流转由商家侧完成, 这里只做记录
func (s *NotificationService) ProcessOrder(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return notFoundErr("订单 %d 不存在", orderID)
	}

	zap.L().Info("[NotificationService] 订单已处理",
		zap.Int64("order_id", order.ID),
		zap.String("status", order.Status),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.TotalSum().StringFixed(2)),
	)
	return nil
}

func displayName(user *model.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Email
	}
	return name
}
