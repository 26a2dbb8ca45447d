package repository_test

import (
	"context"
	"testing"
	"time"

	"pos/internal/domain/model"
	infraRepo "pos/internal/infra/repository"
	repo "pos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManagerGorm_CommitsOrderAndItems(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	cat := seedCategory(t, gdb, "Drinks")
	coffee := seedItem(t, gdb, cat.ID, "Coffee", "12.50")

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tm := infraRepo.NewTxManagerGorm(gdb)

	var orderID int64
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, model.Order{
			CustomerEmail: "c@example.com",
			FirstName:     "Ana",
			LastName:      "Cruz",
			TotalPrice:    decimal.RequireFromString("20.00"),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		orderID = id
		return r.OrderItems().CreateBulk(ctx, id, []model.OrderItem{
			{ItemID: coffee.ID, Quantity: 2, DiscountedPrice: decimal.RequireFromString("10.00"), CreatedAt: now},
		})
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), count(t, gdb, &model.Order{}))
	assert.Equal(t, int64(1), count(t, gdb, &model.OrderItem{}))

	items, err := infraRepo.NewOrderItemGormRepository(gdb).ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Item)
	assert.Equal(t, "Coffee", items[0].Item.Name)
	assert.True(t, items[0].DiscountedPrice.Equal(decimal.RequireFromString("10")))
}

// 3行中2行目が外部キー違反 → 注文も1行目も残らない
func TestTxManagerGorm_RollsBackWhenSecondLineFails(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	cat := seedCategory(t, gdb, "Food")
	a := seedItem(t, gdb, cat.ID, "Bread", "3.00")
	b := seedItem(t, gdb, cat.ID, "Cake", "8.00")

	now := time.Now().UTC()
	tm := infraRepo.NewTxManagerGorm(gdb)

	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, model.Order{
			CustomerEmail: "c@example.com",
			FirstName:     "Ana",
			LastName:      "Cruz",
			TotalPrice:    decimal.RequireFromString("14.00"),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		return r.OrderItems().CreateBulk(ctx, id, []model.OrderItem{
			{ItemID: a.ID, Quantity: 1, DiscountedPrice: decimal.RequireFromString("3.00"), CreatedAt: now},
			{ItemID: 9999, Quantity: 1, DiscountedPrice: decimal.RequireFromString("3.00"), CreatedAt: now},
			{ItemID: b.ID, Quantity: 1, DiscountedPrice: decimal.RequireFromString("8.00"), CreatedAt: now},
		})
	})
	require.Error(t, err)

	assert.Equal(t, int64(0), count(t, gdb, &model.Order{}))
	assert.Equal(t, int64(0), count(t, gdb, &model.OrderItem{}))
}

func TestTxManagerGorm_RollsBackOnCallbackError(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	tm := infraRepo.NewTxManagerGorm(gdb)

	boom := assert.AnError
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		now := time.Now().UTC()
		if _, err := r.Orders().Create(ctx, model.Order{
			CustomerEmail: "c@example.com", FirstName: "A", LastName: "B",
			TotalPrice: decimal.Zero, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), count(t, gdb, &model.Order{}))
}
