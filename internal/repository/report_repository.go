package repository

import (
	"context"
	"time"

	"pos/internal/domain/model"
)

// 期間 [From, To]（両端を含む）
type ReportRange struct {
	From time.Time
	To   time.Time
}

// 売上集計の読み取り専用クエリ
type ReportRepository interface {
	// 商品ごとの数量・売上。売上の多い順
	ItemSales(ctx context.Context, r ReportRange) ([]model.ItemSales, error)

	// 期間内の明細。古い順
	SaleLines(ctx context.Context, r ReportRange) ([]model.SaleLine, error)
}
