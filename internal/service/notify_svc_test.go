package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/internal/testutil"
	"retail_service/pkg/config"
	"retail_service/pkg/utils"
)

// recordMailer 记录发送的邮件
type recordMailer struct {
	mu    sync.Mutex
	sent  []Mail
	fails bool
}

func (m *recordMailer) Send(ctx context.Context, mail Mail) error {
	if m.fails {
		return errors.New("smtp unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

func TestNotificationService(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &recordMailer{}
	jobs := &testutil.FakeEnqueuer{}
	notify := NewNotificationService(
		repository.NewUserRepository(db),
		repository.NewConfirmTokenRepository(db),
		repository.NewOrderRepository(db),
		mailer,
	)
	users := newTestUserService(db, jobs)
	cart := newTestCartService(db, jobs)
	ctx := context.Background()

	info, err := users.Register(ctx, &dto.RegisterRequest{Email: "buyer@test.com", Password: testPassword, FirstName: "Анна"})
	assert.NoError(t, err)
	assert.NoError(t, notify.SendWelcomeEmail(ctx, info.ID))
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, "buyer@test.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "Анна")

	token, _ := repository.NewConfirmTokenRepository(db).GetByUserID(ctx, info.ID)
	assert.Contains(t, mailer.sent[0].Body, token.Key)

	owner := seedUser(t, db, "shop@test.com", model.UserTypeShop, true)
	shop := seedShop(t, db, owner, "Связной")
	phone := seedListing(t, db, shop, 100, "Phone", "49.90")
	buyer := seedUser(t, db, "active@test.com", model.UserTypeBuyer, true)
	contact := seedContact(t, db, buyer)

	added, err := cart.AddToCart(ctx, buyer.ID, []dto.CartItem{{ProductID: int64Ptr(phone.ID), Quantity: 2}})
	assert.NoError(t, err)
	assert.NoError(t, cart.ConfirmOrder(ctx, buyer.ID, &dto.ConfirmOrderRequest{OrderID: int64Ptr(added.OrderID), ContactID: int64Ptr(contact.ID)}))

	assert.NoError(t, notify.SendOrderConfirmationEmail(ctx, added.OrderID))
	assert.Len(t, mailer.sent, 2)
	assert.Equal(t, "active@test.com", mailer.sent[1].To)
	assert.Contains(t, mailer.sent[1].Body, "Phone x 2")
	assert.Contains(t, mailer.sent[1].Body, "99.80")

	assert.NoError(t, notify.ProcessOrder(ctx, added.OrderID))
	assert.True(t, errors.Is(notify.ProcessOrder(ctx, 9999), ErrNotFound))
	assert.True(t, errors.Is(notify.SendWelcomeEmail(ctx, 9999), ErrNotFound))

	mailer.fails = true
	assert.Error(t, notify.SendOrderConfirmationEmail(ctx, added.OrderID))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码图片失败: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnailService(t *testing.T) {
	picture := testPNG(t, 400, 300)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(picture)
		case "/not-image.png":
			_, _ = w.Write([]byte("plain text"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	db := testutil.NewDB(t)
	storage, err := NewLocalStorage(config.StorageConfig{LocalDir: t.TempDir(), PublicURL: "/media"})
	assert.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	svc := NewThumbnailService(userRepo, productRepo, storage,
		utils.NewHTTPClient(utils.ClientOptions{}),
		config.ThumbnailConfig{Width: 100, Height: 100, Quality: 80},
	)
	ctx := context.Background()

	user := seedUser(t, db, "buyer@test.com", model.UserTypeBuyer, true)
	assert.NoError(t, svc.GenerateAvatarThumbnail(ctx, user.ID), "无头像时跳过")

	assert.NoError(t, userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"avatar_url": server.URL + "/a.png"}))
	assert.NoError(t, svc.GenerateAvatarThumbnail(ctx, user.ID))

	reloaded, _ := userRepo.GetByID(ctx, user.ID)
	assert.True(t, strings.HasPrefix(reloaded.AvatarThumbURL, "/media/thumbnails/avatars/"))

	owner := seedUser(t, db, "shop@test.com", model.UserTypeShop, true)
	listing := seedListing(t, db, seedShop(t, db, owner, "Связной"), 1, "Phone", "10")

	tests := []struct {
		name    string
		image   string
		wantErr error
	}{
		{"下载失败", server.URL + "/missing.png", ErrFetch},
		{"不是图片", server.URL + "/not-image.png", ErrFormat},
		{"正常", server.URL + "/a.png", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, productRepo.UpdateFields(ctx, listing.ProductID, map[string]interface{}{"image_url": tt.image}))
			err := svc.GenerateProductThumbnail(ctx, listing.ProductID)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
				return
			}
			assert.NoError(t, err)
			product, _ := productRepo.GetByID(ctx, listing.ProductID)
			assert.True(t, strings.HasPrefix(product.ImageThumbURL, "/media/thumbnails/products/"))
		})
	}

	assert.True(t, errors.Is(svc.GenerateProductThumbnail(ctx, 9999), ErrNotFound))
}
