package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ItemRepoMock struct{ mock.Mock }

func (m *ItemRepoMock) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Item)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ItemRepoMock) FindByID(ctx context.Context, id int64) (model.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(model.Item)
	return it, args.Error(1)
}

func (m *ItemRepoMock) ExistingActiveIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).(map[int64]bool)
	return found, args.Error(1)
}

func (m *ItemRepoMock) Create(ctx context.Context, it model.Item) (model.Item, error) {
	args := m.Called(ctx, it)
	created, _ := args.Get(0).(model.Item)
	return created, args.Error(1)
}

func (m *ItemRepoMock) Update(ctx context.Context, it model.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *ItemRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Category)
	return cs, args.Error(1)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, bool, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Bool(1), args.Error(2)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Category)
	return created, args.Error(1)
}

func (m *CategoryRepoMock) Update(ctx context.Context, c model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CategoryRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CategoryRepoMock) CountItems(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (int64, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, id int64) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, page int, perPage int) ([]model.Order, int64, error) {
	args := m.Called(ctx, page, perPage)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type txReposMock struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	items      *ItemRepoMock
}

func (r *txReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposMock) Items() repo.ItemRepository           { return r.items }

// fnをそのまま呼ぶ。nilならcommit扱い
type TxManagerMock struct {
	repos     *txReposMock
	calls     int
	committed int
}

func newTxManagerMock() *TxManagerMock {
	return &TxManagerMock{repos: &txReposMock{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		items:      new(ItemRepoMock),
	}}
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	if err := fn(m.repos); err != nil {
		return err
	}
	m.committed++
	return nil
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) List(ctx context.Context, q repo.UserListQuery) ([]model.User, int64, error) {
	args := m.Called(ctx, q)
	us, _ := args.Get(0).([]model.User)
	return us, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) Update(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type ReportRepoMock struct{ mock.Mock }

func (m *ReportRepoMock) ItemSales(ctx context.Context, r repo.ReportRange) ([]model.ItemSales, error) {
	args := m.Called(ctx, r)
	rows, _ := args.Get(0).([]model.ItemSales)
	return rows, args.Error(1)
}

func (m *ReportRepoMock) SaleLines(ctx context.Context, r repo.ReportRange) ([]model.SaleLine, error) {
	args := m.Called(ctx, r)
	rows, _ := args.Get(0).([]model.SaleLine)
	return rows, args.Error(1)
}

// "hashed:" を付けるだけ
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	adminSession   = model.Session{UserID: 1, Role: model.RoleAdministrator}
	managerSession = model.Session{UserID: 2, Role: model.RoleManager}
	cashierSession = model.Session{UserID: 3, Role: model.RoleCashier}
)

var repoErrNotFound = repo.ErrNotFound
