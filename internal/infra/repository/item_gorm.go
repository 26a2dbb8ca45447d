package repository

import (
	"context"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// 削除されていない商品を、カテゴリ付き・ID順・ページング付きで返す。
func (r *ItemGormRepository) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Item{}).Where("is_deleted = ?", false)

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Item{}, 0, err
	}

	err := tx.Preload("Category").
		Order("id asc").
		Offset(offset(q.Page, q.PerPage)).
		Limit(q.PerPage).
		Find(&items).Error
	if err != nil {
		return []model.Item{}, 0, err
	}

	return items, total, nil
}

// IDで商品を取得（削除済みはErrNotFound）
func (r *ItemGormRepository) FindByID(ctx context.Context, id int64) (model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&it).Error
	if err != nil {
		return model.Item{}, translate(err)
	}
	return it, nil
}

func (r *ItemGormRepository) ExistingActiveIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var rows []int64
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Pluck("id", &rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range rows {
		found[id] = true
	}
	return found, nil
}

// 商品の作成
func (r *ItemGormRepository) Create(ctx context.Context, it model.Item) (model.Item, error) {
	it.Category = nil
	if err := r.db.WithContext(ctx).Create(&it).Error; err != nil {
		return model.Item{}, translate(err)
	}
	return it, nil
}

// 商品の更新
func (r *ItemGormRepository) Update(ctx context.Context, it model.Item) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ? AND is_deleted = ?", it.ID, false).
		Updates(map[string]interface{}{
			"name":        it.Name,
			"description": it.Description,
			"price":       it.Price,
			"discount":    it.Discount,
			"quantity":    it.Quantity,
			"stock_level": it.StockLevel,
			"category_id": it.CategoryID,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（フラグのみ）
func (r *ItemGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
