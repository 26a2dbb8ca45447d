package repository

import (
	"context"

	"pos/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// Itemをpreloadして返す（レシート表示用）
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
