package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/internal/testutil"
)

func TestUserService_RegisterConfirmLogin(t *testing.T) {
	db := testutil.NewDB(t)
	jobs := &testutil.FakeEnqueuer{}
	svc := newTestUserService(db, jobs)
	ctx := context.Background()

	info, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:     " Shop@Test.com ",
		Password:  testPassword,
		FirstName: "Иван",
		LastName:  "Петров",
		Type:      model.UserTypeShop,
	})
	assert.NoError(t, err)
	assert.Equal(t, "shop@test.com", info.Email)
	assert.False(t, info.IsActive)
	assert.Equal(t, []string{JobSendWelcomeEmail}, jobs.Names())

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "shop@test.com", Password: testPassword})
	assert.True(t, errors.Is(err, ErrValidation), "重复邮箱")

	login := &dto.LoginRequest{Email: "shop@test.com", Password: testPassword}
	_, err = svc.Login(ctx, login)
	assert.True(t, errors.Is(err, ErrPermission), "未激活不能登录")

	err = svc.ConfirmEmail(ctx, &dto.ConfirmEmailRequest{Email: "shop@test.com", Token: "wrong"})
	assert.True(t, errors.Is(err, ErrValidation))

	token, err := repository.NewConfirmTokenRepository(db).GetByUserID(ctx, info.ID)
	assert.NoError(t, err)
	assert.Len(t, token.Key, 64)

	assert.NoError(t, svc.ConfirmEmail(ctx, &dto.ConfirmEmailRequest{Email: "shop@test.com", Token: token.Key}))

	resp, err := svc.Login(ctx, login)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, resp.User.IsActive)
	assert.Equal(t, model.UserTypeShop, resp.User.Type)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "shop@test.com", Password: "bad-password"})
	assert.True(t, errors.Is(err, ErrUnauthorized))

	refreshed, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: resp.AccessToken})
	assert.True(t, errors.Is(err, ErrUnauthorized), "access token 不能用于刷新")
}

func TestUserService_RegisterRollback(t *testing.T) {
	db := testutil.NewDB(t)
	jobs := &testutil.FakeEnqueuer{}
	svc := newTestUserService(db, jobs)
	ctx := context.Background()

	// 令牌写入失败时用户也不应落库
	assert.NoError(t, db.Migrator().DropTable(&model.ConfirmEmailToken{}))

	req := &dto.RegisterRequest{Email: "rollback@test.com", Password: testPassword, FirstName: "Иван", LastName: "Петров"}
	_, err := svc.Register(ctx, req)
	assert.Error(t, err)
	assert.Empty(t, jobs.Names())

	exists, err := repository.NewUserRepository(db).ExistsByEmail(ctx, "rollback@test.com")
	assert.NoError(t, err)
	assert.False(t, exists)

	// 恢复后同一邮箱可以重新注册
	assert.NoError(t, db.AutoMigrate(&model.ConfirmEmailToken{}))
	info, err := svc.Register(ctx, req)
	assert.NoError(t, err)
	assert.False(t, info.IsActive)
}

func TestUserService_Profile(t *testing.T) {
	db := testutil.NewDB(t)
	jobs := &testutil.FakeEnqueuer{}
	svc := newTestUserService(db, jobs)
	ctx := context.Background()
	user := seedUser(t, db, "buyer@test.com", model.UserTypeBuyer, true)

	company := "ООО Ромашка"
	info, err := svc.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{Company: &company, Password: "new-password-1"})
	assert.NoError(t, err)
	assert.Equal(t, company, info.Company)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "new-password-1"})
	assert.NoError(t, err)

	info, err = svc.SetAvatar(ctx, user.ID, "https://cdn.example.com/a.png")
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", info.AvatarURL)
	assert.Equal(t, []string{JobGenerateAvatarThumbnail}, jobs.Names())

	_, err = svc.GetProfile(ctx, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}
