package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"retail_service/internal/repository"
	"retail_service/pkg/config"
	"retail_service/pkg/utils"
)

// ThumbnailService 头像与商品图片缩略图
type ThumbnailService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	storage     StorageProvider
	client      *resty.Client
	cfg         config.ThumbnailConfig
}

// NewThumbnailService 创建缩略图服务
func NewThumbnailService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	storage StorageProvider,
	client *resty.Client,
	cfg config.ThumbnailConfig,
) *ThumbnailService {
	return &ThumbnailService{
		userRepo:    userRepo,
		productRepo: productRepo,
		storage:     storage,
		client:      client,
		cfg:         cfg,
	}
}

// GenerateAvatarThumbnail 为用户头像生成缩略图
func (s *ThumbnailService) GenerateAvatarThumbnail(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.AvatarURL == "" {
		return nil
	}

	url, err := s.render(ctx, user.AvatarURL, fmt.Sprintf("thumbnails/avatars/%d.jpg", userID))
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"avatar_thumb_url": url})
}

// GenerateProductThumbnail 为商品图片生成缩略图
func (s *ThumbnailService) GenerateProductThumbnail(ctx context.Context, productID int64) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return notFoundErr("商品 %d 不存在", productID)
	}
	if product.ImageURL == "" {
		return nil
	}

	url, err := s.render(ctx, product.ImageURL, fmt.Sprintf("thumbnails/products/%d.jpg", productID))
	if err != nil {
		return err
	}
	return s.productRepo.UpdateFields(ctx, productID, map[string]interface{}{"image_thumb_url": url})
}

// render 下载 -> 缩放 -> 上传, 返回缩略图地址
func (s *ThumbnailService) render(ctx context.Context, sourceURL, filename string) (string, error) {
	data, err := utils.DownloadImage(ctx, s.client, sourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	thumb, err := utils.MakeThumbnail(data, s.cfg.Width, s.cfg.Height, s.cfg.Quality)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}

	url, err := s.storage.Upload(ctx, thumb, filename, "image/jpeg")
	if err != nil {
		return "", err
	}

	zap.L().Debug("[ThumbnailService] 缩略图已生成",
		zap.String("source", sourceURL),
		zap.String("thumb", url),
		zap.Int("bytes", len(thumb)),
	)
	return url, nil
}
