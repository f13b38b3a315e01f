package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"retail_service/internal/api/dto"
	"retail_service/internal/controller"
	"retail_service/internal/model"
	"retail_service/internal/repository"
	"retail_service/internal/router"
	"retail_service/internal/service"
	"retail_service/internal/testutil"
	"retail_service/pkg/config"
	"retail_service/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const priceList = `
shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - id: 100
    name: Hammer
    model: H1
    category: 1
    price: "9.99"
    price_rrc: "12.99"
    quantity: 5
    parameters:
      weight: "1kg"
`

// ==================== 集成测试套件 ====================

type envelope struct {
	Code    int             `json:"code"`
	Reason  string          `json:"reason"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type IntegrationSuite struct {
	DB     *gorm.DB
	Router *gin.Engine
	Jobs   *testutil.FakeEnqueuer
	T      *testing.T
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	db := testutil.NewDB(t)
	jobs := &testutil.FakeEnqueuer{}

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	catalog := service.NewCatalogService(
		repository.NewShopRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewProductInfoRepository(db),
		userRepo,
	)
	importer := service.NewImportService(
		repository.NewCatalogUnitOfWork(db),
		userRepo,
		utils.NewHTTPClient(utils.ClientOptions{}),
		1<<20,
		jobs,
	)

	r := router.SetupRouter(router.Controllers{
		User: controller.NewUserController(
			service.NewUserService(repository.NewUserUnitOfWork(db), jobs),
			service.NewContactService(contactRepo),
		),
		Catalog: controller.NewCatalogController(catalog),
		Cart: controller.NewCartController(service.NewCartService(
			repository.NewOrderUnitOfWork(db),
			repository.NewOrderRepository(db),
			contactRepo,
			jobs,
		)),
		Partner: controller.NewPartnerController(importer, catalog),
	}, router.Options{
		Logger:    zap.NewNop(),
		CORS:      config.CORSConfig{AllowOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	})

	return &IntegrationSuite{DB: db, Router: r, Jobs: jobs, T: t}
}

func (s *IntegrationSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.T.Fatalf("序列化请求失败: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req, token)
}

func (s *IntegrationSuite) upload(token, filename, content string) (*httptest.ResponseRecorder, envelope) {
	s.T.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		s.T.Fatalf("创建表单失败: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/update-partner/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.serve(req, token)
}

func (s *IntegrationSuite) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

// signUp 注册, 确认邮箱并登录, 返回 access token
func (s *IntegrationSuite) signUp(email, userType string) string {
	s.T.Helper()

	w, _ := s.do(http.MethodPost, "/api/user/register", "", gin.H{
		"email": email, "password": "password123",
		"first_name": "Ivan", "last_name": "Petrov", "type": userType,
	})
	if w.Code != http.StatusCreated {
		s.T.Fatalf("注册失败: %d, %s", w.Code, w.Body.String())
	}

	var token model.ConfirmEmailToken
	if err := s.DB.Joins("JOIN users ON users.id = confirm_email_tokens.user_id").
		Where("users.email = ?", email).First(&token).Error; err != nil {
		s.T.Fatalf("查询确认令牌失败: %v", err)
	}
	w, _ = s.do(http.MethodPost, "/api/user/register/confirm", "", gin.H{"email": email, "token": token.Key})
	if w.Code != http.StatusOK {
		s.T.Fatalf("确认邮箱失败: %d, %s", w.Code, w.Body.String())
	}

	w, env := s.do(http.MethodPost, "/api/user/login", "", gin.H{"email": email, "password": "password123"})
	if w.Code != http.StatusOK {
		s.T.Fatalf("登录失败: %d, %s", w.Code, w.Body.String())
	}
	var login dto.LoginResponse
	decode(s.T, env, &login)
	return login.AccessToken
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("解析响应数据失败: %v, %s", err, string(env.Data))
	}
}

// ==================== 用户模块 ====================

func TestIntegration_UserModule(t *testing.T) {
	suite := NewIntegrationSuite(t)
	email := "buyer@test.com"

	t.Run("注册", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/user/register", "", gin.H{
			"email": email, "password": "password123", "first_name": "Ivan", "last_name": "Petrov",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var user dto.UserInfo
		decode(t, env, &user)
		assert.Equal(t, model.UserTypeBuyer, user.Type)
		assert.False(t, user.IsActive)
		assert.Equal(t, []string{service.JobSendWelcomeEmail}, suite.Jobs.Names())
	})

	t.Run("重复注册", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/user/register", "", gin.H{
			"email": email, "password": "password123", "first_name": "Ivan", "last_name": "Petrov",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", env.Reason)
	})

	t.Run("参数错误", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/user/register", "", gin.H{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", env.Reason)
	})

	t.Run("未激活不能登录", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/user/login", "", gin.H{"email": email, "password": "password123"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "permission_denied", env.Reason)
	})

	t.Run("错误的确认令牌", func(t *testing.T) {
		w, _ := suite.do(http.MethodPost, "/api/user/register/confirm", "", gin.H{"email": email, "token": "wrong"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("密码错误", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/user/login", "", gin.H{"email": email, "password": "wrong-password"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", env.Reason)
	})

	token := suite.signUp("second@test.com", "")

	t.Run("个人信息", func(t *testing.T) {
		w, env := suite.do(http.MethodGet, "/api/user/details", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var user dto.UserInfo
		decode(t, env, &user)
		assert.Equal(t, "second@test.com", user.Email)
		assert.True(t, user.IsActive)

		w, env = suite.do(http.MethodPost, "/api/user/details", token, gin.H{"company": "Acme"})
		assert.Equal(t, http.StatusOK, w.Code)
		decode(t, env, &user)
		assert.Equal(t, "Acme", user.Company)
	})

	t.Run("未登录", func(t *testing.T) {
		w, env := suite.do(http.MethodGet, "/api/user/details", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", env.Reason)
	})

	t.Run("联系方式", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/user/contact", token, gin.H{
			"city": "Москва", "street": "Тверская", "house": "1", "phone": "+79990000000",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		var contact dto.ContactInfo
		decode(t, env, &contact)
		assert.NotZero(t, contact.ID)

		w, _ = suite.do(http.MethodPut, "/api/user/contact", token, gin.H{
			"id": 9999, "city": "Москва", "street": "Тверская", "phone": "+79990000000",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = suite.do(http.MethodDelete, "/api/user/contact", token, gin.H{"items": "abc"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = suite.do(http.MethodDelete, "/api/user/contact", token, gin.H{"items": formatID(contact.ID)})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, env = suite.do(http.MethodDelete, "/api/user/contact", token, gin.H{"items": formatID(contact.ID)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "items_not_found", env.Reason)
	})
}

// ==================== 商家导入与下单 ====================

func TestIntegration_ImportAndOrder(t *testing.T) {
	suite := NewIntegrationSuite(t)
	shopToken := suite.signUp("shop@test.com", model.UserTypeShop)
	buyerToken := suite.signUp("buyer@test.com", model.UserTypeBuyer)

	t.Run("买家不能导入", func(t *testing.T) {
		w, env := suite.upload(buyerToken, "price.yaml", priceList)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "permission_denied", env.Reason)
	})

	t.Run("格式错误", func(t *testing.T) {
		w, env := suite.upload(shopToken, "price.yaml", "shop: [unclosed")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "format_error", env.Reason)
	})

	t.Run("缺少来源", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/update-partner/", shopToken, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", env.Reason)
	})

	t.Run("导入成功", func(t *testing.T) {
		w, env := suite.upload(shopToken, "price.yaml", priceList)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result dto.ImportResult
		decode(t, env, &result)
		assert.True(t, result.Status)
		assert.Equal(t, "Acme", result.Shop)
		assert.Equal(t, 1, result.Goods)
	})

	var products dto.ProductListResponse
	t.Run("浏览目录", func(t *testing.T) {
		w, env := suite.do(http.MethodGet, "/api/products/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		decode(t, env, &products)
		assert.Equal(t, int64(1), products.Total)

		w, env = suite.do(http.MethodGet, "/api/shops/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var shops []dto.ShopInfo
		decode(t, env, &shops)
		assert.Len(t, shops, 1)

		w, _ = suite.do(http.MethodGet, "/api/products/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w, _ = suite.do(http.MethodGet, "/api/products/9999", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
	if len(products.List) != 1 {
		t.Fatalf("商品列表为空")
	}
	infoID := products.List[0].ID

	t.Run("空购物车", func(t *testing.T) {
		w, env := suite.do(http.MethodGet, "/api/cart/", buyerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", env.Reason)
	})

	var cart dto.OrderInfo
	t.Run("加入购物车", func(t *testing.T) {
		w, env := suite.do(http.MethodPost, "/api/cart/", buyerToken, gin.H{"items": []gin.H{
			{"product_id": infoID, "quantity": 2},
			{"product_id": 99999, "quantity": 1},
		}})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var added dto.AddToCartResponse
		decode(t, env, &added)
		assert.Equal(t, 1, added.Added)
		assert.Equal(t, []int64{99999}, added.Skipped)

		w, env = suite.do(http.MethodGet, "/api/cart/", buyerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		decode(t, env, &cart)
		assert.Equal(t, model.OrderStatusBasket, cart.Status)
		assert.Len(t, cart.Items, 1)
		assert.Equal(t, "25.98", cart.TotalSum.StringFixed(2))
	})

	t.Run("空条目", func(t *testing.T) {
		w, _ := suite.do(http.MethodPost, "/api/cart/", buyerToken, gin.H{"items": []gin.H{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("确认下单", func(t *testing.T) {
		contact := &model.Contact{City: "Москва", Street: "Тверская", Phone: "+79990000000"}
		var buyer model.User
		assert.NoError(t, suite.DB.Where("email = ?", "buyer@test.com").First(&buyer).Error)
		contact.UserID = buyer.ID
		assert.NoError(t, suite.DB.WithContext(context.Background()).Create(contact).Error)

		w, env := suite.do(http.MethodPost, "/api/confirm-order/", buyerToken, gin.H{"order_id": cart.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", env.Reason)

		w, _ = suite.do(http.MethodPost, "/api/confirm-order/", buyerToken, gin.H{"order_id": cart.ID, "contact_id": contact.ID})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// 同一购物车不能重复确认
		w, _ = suite.do(http.MethodPost, "/api/confirm-order/", buyerToken, gin.H{"order_id": cart.ID, "contact_id": contact.ID})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, env = suite.do(http.MethodGet, "/api/orders/", buyerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var orders []dto.OrderInfo
		decode(t, env, &orders)
		assert.Len(t, orders, 1)
		assert.Equal(t, model.OrderStatusNew, orders[0].Status)

		names := suite.Jobs.Names()
		assert.Equal(t, []string{service.JobSendOrderConfirmationEmail, service.JobProcessOrder}, names[len(names)-2:])
	})

	t.Run("移除购物车条目", func(t *testing.T) {
		w, _ := suite.do(http.MethodDelete, "/api/cart/", buyerToken, gin.H{"product_ids": formatID(infoID)})
		assert.Equal(t, http.StatusNotFound, w.Code, "确认后没有购物车")

		w, _ = suite.do(http.MethodPost, "/api/cart/", buyerToken, gin.H{"items": []gin.H{{"product_id": infoID, "quantity": 1}}})
		assert.Equal(t, http.StatusCreated, w.Code)

		w, _ = suite.do(http.MethodDelete, "/api/cart/", buyerToken, gin.H{"product_ids": formatID(infoID)})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, env := suite.do(http.MethodDelete, "/api/cart/", buyerToken, gin.H{"product_ids": formatID(infoID)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "items_not_found", env.Reason)
	})

	t.Run("接单状态", func(t *testing.T) {
		w, _ := suite.do(http.MethodPost, "/api/partner/state", shopToken, gin.H{"state": false})
		assert.Equal(t, http.StatusOK, w.Code)

		w, env := suite.do(http.MethodGet, "/api/products/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var list dto.ProductListResponse
		decode(t, env, &list)
		assert.Equal(t, int64(0), list.Total)

		w, _ = suite.do(http.MethodGet, "/api/partner/state", buyerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestIntegration_HTTPEndpoints(t *testing.T) {
	suite := NewIntegrationSuite(t)

	t.Run("HealthCheck", func(t *testing.T) {
		w, _ := suite.do(http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Categories", func(t *testing.T) {
		w, env := suite.do(http.MethodGet, "/api/categories/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, env.Code)
	})

	t.Run("CORS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/shops/", nil)
		req.Header.Set("Origin", "http://frontend.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w, _ := suite.serve(req, "")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
