package repository

import (
	"context"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

// 売上集計（読み取りのみ）
type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

func (r *ReportGormRepository) lines(ctx context.Context, rg repo.ReportRange) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Joins("JOIN items AS i ON i.id = oi.item_id").
		Where("o.created_at >= ? AND o.created_at <= ?", rg.From, rg.To)
}

func (r *ReportGormRepository) ItemSales(ctx context.Context, rg repo.ReportRange) ([]model.ItemSales, error) {
	rows := []model.ItemSales{}
	err := r.lines(ctx, rg).
		Select("i.name AS item_name, SUM(oi.quantity) AS total_quantity, SUM(oi.quantity * oi.discounted_price) AS total_sales").
		Group("i.name").
		Order("total_sales DESC").
		Order("i.name ASC").
		Scan(&rows).Error
	if err != nil {
		return []model.ItemSales{}, err
	}
	return rows, nil
}

func (r *ReportGormRepository) SaleLines(ctx context.Context, rg repo.ReportRange) ([]model.SaleLine, error) {
	rows := []model.SaleLine{}
	err := r.lines(ctx, rg).
		Select("oi.order_id AS order_id, o.first_name AS first_name, o.last_name AS last_name, " +
			"i.name AS item_name, oi.quantity AS quantity, oi.discounted_price AS discounted_price, " +
			"o.created_at AS ordered_at").
		Order("o.created_at ASC").
		Order("oi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return []model.SaleLine{}, err
	}
	return rows, nil
}
