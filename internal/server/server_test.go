package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/handler"
	"pos/internal/infra/db"
	infraRepo "pos/internal/infra/repository"
	"pos/internal/infra/token"
	"pos/internal/logger"
	"pos/internal/server"
	"pos/internal/usecase"
	auth "pos/internal/usecase/auth_usecase"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// =====================
// テスト用サーバー（SQLite + 本物のrepo/usecase/handler）
// =====================

const testPassword = "password123"

type testServer struct {
	e      *echo.Echo
	db     *gorm.DB
	issuer *token.JWTIssuer
}

type feedbackStub struct {
	rows [][]string
	err  error
}

func (s feedbackStub) Rows(ctx context.Context) ([][]string, error) {
	return s.rows, s.err
}

func newTestServer(t *testing.T, goEnv string, feedback usecase.ResponseSource) *testServer {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pos.db") + "?_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Hour,
		GoEnv:          goEnv,
		FEURL:          "http://localhost:5173",
	}
	log := logger.Discard()

	itemRepo := infraRepo.NewItemGormRepository(gdb)
	categoryRepo := infraRepo.NewCategoryGormRepository(gdb)
	userRepo := infraRepo.NewUserGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	clock := usecase.SystemClock{}

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	require.NoError(t, err)

	loginUC := auth.NewLoginUsecase(userRepo, auth.NewBcryptPasswordVerifier(), issuer, clock)
	h := server.Handlers{
		Auth: handler.NewAuthHandler(loginUC, usecase.NewMeUsecase(userRepo)),
		Orders: handler.NewOrderHandler(usecase.NewOrderUsecase(
			infraRepo.NewTxManagerGorm(gdb), itemRepo,
			infraRepo.NewOrderGormRepository(gdb), infraRepo.NewOrderItemGormRepository(gdb),
			clock, log)),
		Items:      handler.NewItemHandler(usecase.NewItemUsecase(itemRepo, categoryRepo, auditRepo, clock, log)),
		Categories: handler.NewCategoryHandler(usecase.NewCategoryUsecase(categoryRepo, clock)),
		Users: handler.NewUserHandler(usecase.NewUserUsecase(
			userRepo, auditRepo, auth.NewBcryptPasswordHasher(bcrypt.MinCost), clock, log)),
		Reports:   handler.NewReportHandler(usecase.NewReportUsecase(infraRepo.NewReportGormRepository(gdb), clock)),
		Feedback:  handler.NewFeedbackHandler(usecase.NewFeedbackUsecase(feedback, log)),
		AuditLogs: handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(auditRepo)),
	}

	return &testServer{
		e:      server.New(cfg, log, userRepo, h),
		db:     gdb,
		issuer: issuer,
	}
}

func (s *testServer) seedUser(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		FirstName:    "Test",
		LastName:     string(role),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       model.UserStatusActive,
	}
	require.NoError(t, s.db.Create(&u).Error)
	return u
}

func (s *testServer) tokenFor(t *testing.T, u model.User) string {
	t.Helper()
	tok, _, err := s.issuer.Issue(u.ID, u.Role, u.TokenVersion, time.Now())
	require.NoError(t, err)
	return tok
}

func (s *testServer) seedItem(t *testing.T, name, price string) model.Item {
	t.Helper()
	c := model.Category{Name: name + " category"}
	require.NoError(t, s.db.Create(&c).Error)

	it := model.Item{
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Quantity:    10,
		StockLevel:  model.StockLevelAvailable,
		CategoryID:  c.ID,
	}
	require.NoError(t, s.db.Create(&it).Error)
	return it
}

func (s *testServer) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	dec := json.NewDecoder(rec.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(v), rec.Body.String())
}

func (s *testServer) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(m).Count(&n).Error)
	return n
}

// =====================
// テスト
// =====================

func TestHealth(t *testing.T) {
	s := newTestServer(t, "test", nil)

	rec := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestUnknownRoute_ReturnsErrorJSON(t *testing.T) {
	s := newTestServer(t, "test", nil)

	rec := s.do(t, http.MethodGet, "/nope", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var res handler.ErrorResponse
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Error)
}

func TestLogin_ThenMe(t *testing.T) {
	s := newTestServer(t, "test", nil)
	u := s.seedUser(t, "cashier@example.com", model.RoleCashier)

	rec := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "cashier@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out auth.LoginOutput
	decode(t, rec, &out)
	assert.Equal(t, u.ID, out.User.ID)
	require.NotEmpty(t, out.Token.AccessToken)

	rec = s.do(t, http.MethodGet, "/me", nil, out.Token.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	decode(t, rec, &me)
	assert.Equal(t, "cashier@example.com", me.Email)

	rec = s.do(t, http.MethodGet, "/me/menu", nil, out.Token.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var menu []model.MenuEntry
	decode(t, rec, &menu)
	require.Len(t, menu, 1)
	assert.Equal(t, "/products", menu[0].Route)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t, "test", nil)
	s.seedUser(t, "cashier@example.com", model.RoleCashier)

	rec := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "cashier@example.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_InactiveUser(t *testing.T) {
	s := newTestServer(t, "test", nil)
	u := s.seedUser(t, "old@example.com", model.RoleCashier)
	require.NoError(t, s.db.Model(&model.User{}).Where("id = ?", u.ID).Update("status", model.UserStatusInactive).Error)

	rec := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "old@example.com",
		"password": testPassword,
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	s := newTestServer(t, "test", nil)

	rec := s.do(t, http.MethodGet, "/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaleTokenVersion_Unauthorized(t *testing.T) {
	s := newTestServer(t, "test", nil)
	u := s.seedUser(t, "cashier@example.com", model.RoleCashier)
	tok := s.tokenFor(t, u)

	require.NoError(t, s.db.Model(&model.User{}).Where("id = ?", u.ID).
		Update("token_version", gorm.Expr("token_version + 1")).Error)

	rec := s.do(t, http.MethodGet, "/orders", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrder_SavesOrderAndReceipt(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))
	coffee := s.seedItem(t, "Coffee", "3.50")
	tea := s.seedItem(t, "Tea", "2.25")

	rec := s.do(t, http.MethodPost, "/orders", map[string]any{
		"customer_email": "walkin@example.com",
		"first_name":     "Ana",
		"last_name":      "Cruz",
		"total_price":    "1.00",
		"orderItems": []map[string]any{
			{"item_id": coffee.ID, "quantity": 2, "discounted_price": "3.00"},
			{"item_id": tea.ID, "quantity": 1, "discounted_price": "2.25"},
		},
	}, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out usecase.PlaceOrderOutput
	decode(t, rec, &out)
	assert.Equal(t, "8.25", out.GrandTotalSaved.String())
	require.Positive(t, out.OrderID)

	assert.Equal(t, int64(1), s.count(t, &model.Order{}))
	assert.Equal(t, int64(2), s.count(t, &model.OrderItem{}))

	rec = s.do(t, http.MethodGet, "/orders/"+strconv.FormatInt(out.OrderID, 10), nil, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var receipt usecase.Receipt
	decode(t, rec, &receipt)
	assert.Equal(t, "8.25", receipt.TotalPrice.String())
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Coffee", receipt.Items[0].ItemName)
	assert.Equal(t, "6.00", receipt.Items[0].LineTotal.String())
}

// 3桁の単価でも、保存した合計 = 保存した明細の Σ(単価 × 数量)
func TestPlaceOrder_SavedTotalEqualsSavedLines(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))
	coffee := s.seedItem(t, "Coffee", "3.50")
	tea := s.seedItem(t, "Tea", "2.25")

	rec := s.do(t, http.MethodPost, "/orders", map[string]any{
		"customer_email": "walkin@example.com",
		"first_name":     "Ana",
		"last_name":      "Cruz",
		"orderItems": []map[string]any{
			{"item_id": coffee.ID, "quantity": 2, "discounted_price": "1.005"},
			{"item_id": tea.ID, "quantity": 3, "discounted_price": "2.675"},
			{"item_id": coffee.ID, "quantity": 7, "discounted_price": "0.333"},
		},
	}, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out usecase.PlaceOrderOutput
	decode(t, rec, &out)
	assert.Equal(t, "12.37", out.GrandTotalSaved.String())

	var order model.Order
	require.NoError(t, s.db.First(&order, out.OrderID).Error)
	var lines []model.OrderItem
	require.NoError(t, s.db.Where("order_id = ?", out.OrderID).Find(&lines).Error)
	require.Len(t, lines, 3)

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.DiscountedPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	assert.True(t, order.TotalPrice.Equal(sum), "total %s != lines %s", order.TotalPrice, sum)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("12.37")), order.TotalPrice.String())
}

func TestPlaceOrder_UnknownItemIsRejected(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))
	coffee := s.seedItem(t, "Coffee", "3.50")

	rec := s.do(t, http.MethodPost, "/orders", map[string]any{
		"customer_email": "walkin@example.com",
		"first_name":     "Ana",
		"last_name":      "Cruz",
		"orderItems": []map[string]any{
			{"item_id": coffee.ID, "quantity": 1, "discounted_price": "3.50"},
			{"item_id": 9999, "quantity": 1, "discounted_price": "1.00"},
		},
	}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var res handler.ValidationErrorResponse
	decode(t, rec, &res)
	assert.Equal(t, []string{"The selected orderItems.1.item id is invalid."}, res.Errors["orderItems.1.item_id"])
	assert.Zero(t, s.count(t, &model.Order{}))
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))

	rec := s.do(t, http.MethodPost, "/orders", `{"orderItems": [`, tok)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res handler.ErrorResponse
	decode(t, rec, &res)
	assert.Equal(t, "invalid body", res.Error)
}

func TestPreview_DoesNotSave(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))

	rec := s.do(t, http.MethodPost, "/orders/preview", map[string]any{
		"orderItems": []map[string]any{
			{"item_id": 1, "quantity": 3, "discounted_price": "1.10"},
		},
	}, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var out usecase.PreviewOutput
	decode(t, rec, &out)
	assert.Equal(t, "3.30", out.GrandTotal.String())
	assert.True(t, out.Advisory)
	assert.Zero(t, s.count(t, &model.Order{}))
}

func TestItems_CashierCanReadButNotWrite(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))
	s.seedItem(t, "Coffee", "3.50")

	rec := s.do(t, http.MethodGet, "/items", nil, tok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/items", map[string]any{"item_name": "Cake"}, tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCategories_ManagerCreatesAndDuplicateIsRejected(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "manager@example.com", model.RoleManager))

	rec := s.do(t, http.MethodPost, "/categories", map[string]string{"category_name": "Drinks"}, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/categories", map[string]string{"category_name": "Drinks"}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res handler.ValidationErrorResponse
	decode(t, rec, &res)
	assert.Equal(t, []string{"The category name has already been taken."}, res.Errors["category_name"])
}

func TestRevenue_InvalidGroupBy(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "manager@example.com", model.RoleManager))

	rec := s.do(t, http.MethodGet, "/reports/revenue?group_by=year", nil, tok)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res handler.ErrorResponse
	decode(t, rec, &res)
	assert.Equal(t, "invalid group_by", res.Error)
}

func TestReports_CashierForbidden(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "cashier@example.com", model.RoleCashier))

	for _, path := range []string{"/reports/items", "/reports/sales", "/reports/revenue", "/feedback/summary", "/users"} {
		rec := s.do(t, http.MethodGet, path, nil, tok)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestFeedback_NotConfigured(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "manager@example.com", model.RoleManager))

	rec := s.do(t, http.MethodGet, "/feedback/summary", nil, tok)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodGet, "/feedback/questions", nil, tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedback_SourceErrorDetailsHiddenInProd(t *testing.T) {
	src := feedbackStub{err: errors.New("quota exceeded")}

	dev := newTestServer(t, "dev", src)
	rec := dev.do(t, http.MethodGet, "/feedback/responses", nil, dev.tokenFor(t, dev.seedUser(t, "m@example.com", model.RoleManager)))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	var res handler.ErrorResponse
	decode(t, rec, &res)
	assert.True(t, strings.Contains(res.Details, "quota exceeded"), res.Details)

	prod := newTestServer(t, "prod", src)
	rec = prod.do(t, http.MethodGet, "/feedback/responses", nil, prod.tokenFor(t, prod.seedUser(t, "m@example.com", model.RoleManager)))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	res = handler.ErrorResponse{}
	decode(t, rec, &res)
	assert.Empty(t, res.Details)
}

func TestUsers_AdminCannotDeleteSelf(t *testing.T) {
	s := newTestServer(t, "test", nil)
	admin := s.seedUser(t, "admin@example.com", model.RoleAdministrator)
	tok := s.tokenFor(t, admin)

	rec := s.do(t, http.MethodDelete, "/users/"+strconv.FormatInt(admin.ID, 10), nil, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditLogs_InvalidFrom(t *testing.T) {
	s := newTestServer(t, "test", nil)
	tok := s.tokenFor(t, s.seedUser(t, "admin@example.com", model.RoleAdministrator))

	rec := s.do(t, http.MethodGet, "/audit-logs?from=yesterday", nil, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/audit-logs", nil, tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}
