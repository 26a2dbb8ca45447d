package repository

import (
	"context"

	"pos/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	FindByName(ctx context.Context, name string) (model.Category, bool, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error

	// 商品から参照されている件数（削除フラグの立った商品も含む。FKが残るため）
	CountItems(ctx context.Context, id int64) (int64, error)
}
