package repository

import (
	"context"

	"pos/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, page int, perPage int) ([]model.Order, int64, error)
}
