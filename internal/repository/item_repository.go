package repository

import (
	"context"

	"pos/internal/domain/model"
)

// 一覧検索（削除済みは含めない）
type ItemListQuery struct {
	Page       int
	PerPage    int
	CategoryID *int64
}

// 商品の保存・取得を約束
type ItemRepository interface {
	List(ctx context.Context, q ItemListQuery) ([]model.Item, int64, error)
	FindByID(ctx context.Context, id int64) (model.Item, error)

	// idsのうち、存在して削除されていないものだけ返す
	ExistingActiveIDs(ctx context.Context, ids []int64) (map[int64]bool, error)

	Create(ctx context.Context, item model.Item) (model.Item, error)
	Update(ctx context.Context, item model.Item) error
	SoftDelete(ctx context.Context, id int64) error
}
