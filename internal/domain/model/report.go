package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 売上明細1行（注文明細 + 注文 + 商品名）
type SaleLine struct {
	OrderID         int64           `json:"order_id"`
	FirstName       string          `json:"-"`
	LastName        string          `json:"-"`
	ItemName        string          `json:"item_name"`
	Quantity        int64           `json:"quantity"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	OrderedAt       time.Time       `json:"ordered_at"`
}

// 商品別の集計
type ItemSales struct {
	ItemName      string          `json:"item_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}
